// Package validation audits transactions, blocks and whole chains against
// the integrity and economic rules of the blockchain. Every function is read
// only and safe for concurrent use.
package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/ardanlabs/powchain/foundation/blockchain/accounts"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/reward"
	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
)

// Set of errors describing why validation failed.
var (
	ErrNegativeAmount  = errors.New("transaction amount is negative")
	ErrInvalidAmount   = errors.New("transaction amount is not a finite number")
	ErrBadSignature    = errors.New("transaction signature does not verify")
	ErrNotMined        = errors.New("block has no nonce")
	ErrHashMismatch    = errors.New("block hash does not match its contents")
	ErrMissingGenesis  = errors.New("chain has no genesis block")
	ErrGenesisLinked   = errors.New("genesis block has a previous hash")
	ErrGenesisHasTrans = errors.New("genesis block has transactions")
	ErrBrokenLink      = errors.New("block does not link to the previous block")
	ErrUnsolved        = errors.New("block hash does not meet the difficulty")
	ErrMultipleRewards = errors.New("block has more than one reward transaction")
	ErrRewardAmount    = errors.New("reward amount does not match the expected reward")
)

// Chain interface represents the behavior required to audit a chain. The
// difficulty and reward schedule always come from the chain being audited.
type Chain interface {
	Blocks() []database.Block
	Difficulty() uint16
	RewardAt(height uint64) float64
}

// =============================================================================

// Snapshot is a detached copy of a chain that can be audited on its own.
type Snapshot struct {
	blocks     []database.Block
	difficulty uint16
	reward     reward.Func
}

// NewSnapshot constructs a snapshot from the specified blocks and policy.
func NewSnapshot(blocks []database.Block, difficulty uint16, fn reward.Func) Snapshot {
	return Snapshot{
		blocks:     blocks,
		difficulty: difficulty,
		reward:     fn,
	}
}

// Blocks implements the Chain interface. The blocks are not copied.
func (s Snapshot) Blocks() []database.Block {
	return s.blocks
}

// Difficulty implements the Chain interface.
func (s Snapshot) Difficulty() uint16 {
	return s.difficulty
}

// RewardAt implements the Chain interface.
func (s Snapshot) RewardAt(height uint64) float64 {
	if s.reward == nil {
		return 0
	}

	return s.reward(height)
}

// =============================================================================

// ValidateTransaction checks the amount is a finite number that is not
// negative and the signature verifies against the signer's key. For a reward
// transaction the signer is the recipient since there is no source.
func ValidateTransaction(tx database.Tx) error {
	if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) {
		return fmt.Errorf("%s: %w", tx, ErrInvalidAmount)
	}

	if tx.Amount < 0 {
		return fmt.Errorf("%s: %w", tx, ErrNegativeAmount)
	}

	if !signature.Verify(string(tx.SignerKey()), tx.Message(), tx.Signature) {
		return fmt.Errorf("%s: %w", tx, ErrBadSignature)
	}

	return nil
}

// IsValidTransaction reports whether ValidateTransaction passes.
func IsValidTransaction(tx database.Tx) bool {
	return ValidateTransaction(tx) == nil
}

// ValidateBlock checks every transaction in the block and recomputes the
// hash from the previous hash, the transaction signatures and the nonce.
func ValidateBlock(block database.Block) error {
	for i, tx := range block.Trans {
		if err := ValidateTransaction(tx); err != nil {
			return fmt.Errorf("tx %d: %w", i, err)
		}
	}

	if !block.IsMined() {
		return ErrNotMined
	}

	hash := database.CalculateHash(block.PrevBlockHash, block.Trans, *block.Nonce)
	if hash != block.Hash {
		return fmt.Errorf("got %s, exp %s: %w", block.Hash, hash, ErrHashMismatch)
	}

	return nil
}

// IsValidBlock reports whether ValidateBlock passes.
func IsValidBlock(block database.Block) bool {
	return ValidateBlock(block) == nil
}

// ValidateChain checks the genesis block has no previous hash and no
// transactions and that every block after it is valid and links to the stored hash of its predecessor.
func ValidateChain(chain Chain) error {
	blocks := chain.Blocks()
	if len(blocks) == 0 {
		return ErrMissingGenesis
	}

	if blocks[0].PrevBlockHash != "" {
		return ErrGenesisLinked
	}

	if len(blocks[0].Trans) != 0 {
		return fmt.Errorf("genesis txs[%d]: %w", len(blocks[0].Trans), ErrGenesisHasTrans)
	}

	for i := 1; i < len(blocks); i++ {
		block := blocks[i]

		if err := ValidateBlock(block); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}

		if block.PrevBlockHash != blocks[i-1].Hash {
			return fmt.Errorf("block %d: got %s, exp %s: %w", i, block.PrevBlockHash, blocks[i-1].Hash, ErrBrokenLink)
		}
	}

	return nil
}

// IsValidChain reports whether ValidateChain passes.
func IsValidChain(chain Chain) bool {
	return ValidateChain(chain) == nil
}

// ValidateMineableChain performs every ValidateChain check and then applies
// the proof of work and economic rules: every block after genesis is mined
// and meets the chain's difficulty, a block holds at most one reward which
// pays exactly the reward for its height, and replaying every transaction in
// chain order never takes an account below zero.
func ValidateMineableChain(chain Chain) error {
	if err := ValidateChain(chain); err != nil {
		return err
	}

	blocks := chain.Blocks()
	difficulty := chain.Difficulty()

	for i := 1; i < len(blocks); i++ {
		block := blocks[i]

		if !block.IsMined() {
			return fmt.Errorf("block %d: %w", i, ErrNotMined)
		}

		if !database.IsHashSolved(difficulty, block.Hash) {
			return fmt.Errorf("block %d: difficulty %d, hash %s: %w", i, difficulty, block.Hash, ErrUnsolved)
		}
	}

	balances := accounts.New()

	for i, block := range blocks {
		expected := chain.RewardAt(uint64(i))

		var rewards int
		for j, tx := range block.Trans {
			if tx.IsReward() {
				rewards++
				if rewards > 1 {
					return fmt.Errorf("block %d: %w", i, ErrMultipleRewards)
				}

				if tx.Amount != expected {
					return fmt.Errorf("block %d: tx %d: got %v, exp %v: %w", i, j, tx.Amount, expected, ErrRewardAmount)
				}
			}

			if err := balances.ApplyTransaction(tx); err != nil {
				return fmt.Errorf("block %d: tx %d: %w", i, j, err)
			}
		}
	}

	return nil
}

// IsValidMineableChain reports whether ValidateMineableChain passes.
func IsValidMineableChain(chain Chain) bool {
	return ValidateMineableChain(chain) == nil
}
