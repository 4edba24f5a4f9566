package state

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/accounts"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/validation"
)

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// Blocks returns a copy of every block in chain order. This implements the
// validation.Chain interface.
func (s *State) Blocks() []database.Block {
	return s.storage.Blocks()
}

// Difficulty returns the number of leading zero hex digits a block hash
// needs. This implements the validation.Chain interface.
func (s *State) Difficulty() uint16 {
	return s.genesis.Difficulty
}

// RewardAt returns the reward minted by the block at the specified height.
// This implements the validation.Chain interface.
func (s *State) RewardAt(height uint64) float64 {
	return s.reward(height)
}

// LatestBlock returns a copy of the current latest block.
func (s *State) LatestBlock() database.Block {
	block, err := s.storage.LatestBlock()
	if err != nil {
		return database.Block{}
	}

	return block
}

// Height returns the index of the latest block.
func (s *State) Height() uint64 {
	l := s.storage.Len()
	if l == 0 {
		return 0
	}

	return uint64(l - 1)
}

// MempoolLength returns the current length of the mempool.
func (s *State) MempoolLength() int {
	return s.mempool.Count()
}

// Mempool returns a copy of the pending transactions in submission order.
func (s *State) Mempool() []database.Tx {
	return s.mempool.Copy()
}

// QueryBalances replays the chain and returns the balance of every account
// that has transacted.
func (s *State) QueryBalances() (map[database.PublicKey]float64, error) {
	act, err := accounts.Replay(s.Blocks())
	if err != nil {
		return nil, err
	}

	return act.Copy(), nil
}

// QueryBalance replays the chain and returns the balance for the account.
func (s *State) QueryBalance(publicKey database.PublicKey) (float64, error) {
	act, err := accounts.Replay(s.Blocks())
	if err != nil {
		return 0, err
	}

	return act.Balance(publicKey), nil
}

// Snapshot returns a detached copy of the chain that can be audited or
// changed without affecting the state.
func (s *State) Snapshot() validation.Snapshot {
	return validation.NewSnapshot(s.Blocks(), s.genesis.Difficulty, s.reward)
}

// Validate runs the full set of chain and economic checks against the
// current chain.
func (s *State) Validate() error {
	err := validation.ValidateMineableChain(s.Snapshot())
	s.metrics.Validated(err)

	if err != nil {
		s.evHandler("state: Validate: WARNING: %s", err)
	}

	return err
}
