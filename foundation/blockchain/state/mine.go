package state

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// ErrChainAdvanced is returned when a block was mined on top of a head that
// is no longer the latest block.
var ErrChainAdvanced = errors.New("chain advanced while mining")

// =============================================================================

// MineNewBlock bundles the pending transactions with a reward for the miner
// and searches for a nonce solving the puzzle. On success the block is
// appended and the pending pool is emptied, including transactions that
// arrived while mining. On failure the chain and pool are left as they were.
func (s *State) MineNewBlock(ctx context.Context, privateKey *ecdsa.PrivateKey) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: snapshot chain and mempool")

	s.mu.Lock()
	head, err := s.storage.LatestBlock()
	if err != nil {
		s.mu.Unlock()
		return database.Block{}, err
	}
	height := uint64(s.storage.Len())
	trans := s.mempool.Copy()
	s.mu.Unlock()

	// Mint the reward for the height the new block will have.
	amount := s.reward(height)
	rewardTx, err := database.NewRewardTx(privateKey, amount)
	if err != nil {
		return database.Block{}, fmt.Errorf("reward transaction: %w", err)
	}
	trans = append(trans, rewardTx)

	s.evHandler("state: MineNewBlock: MINING: perform POW: height[%d]: reward[%s]: txs[%d]", height, database.FormatAmount(amount), len(trans))

	// Attempt to create a new block by solving the POW puzzle. This can be cancelled.
	start := time.Now()
	block, err := database.POW(ctx, database.POWArgs{
		Difficulty:  s.genesis.Difficulty,
		PrevBlock:   head,
		Trans:       trans,
		Workers:     s.workers,
		MaxAttempts: s.maxAttempts,
		EvHandler:   s.evHandler,
	})
	duration := time.Since(start)

	if err != nil {
		s.metrics.MiningFailed(duration, failureReason(err))
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: update local state")

	if err := s.updateLocalState(head, block); err != nil {
		s.metrics.MiningFailed(duration, failureReason(err))
		return database.Block{}, err
	}

	s.metrics.BlockMined(duration, amount)

	return block, nil
}

// =============================================================================

// updateLocalState appends the block if the chain has not moved since mining
// started and empties the pending pool.
func (s *State) updateLocalState(head database.Block, block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.storage.LatestBlock()
	if err != nil {
		return err
	}

	if latest.Hash != head.Hash {
		s.evHandler("state: updateLocalState: WARNING: stale block: mined on[%s]: latest[%s]", head.Hash, latest.Hash)
		return ErrChainAdvanced
	}

	s.evHandler("state: updateLocalState: write block[%s]", block.Hash)

	if err := s.storage.Write(block); err != nil {
		return err
	}

	s.evHandler("state: updateLocalState: truncate mempool: txs[%d]", s.mempool.Count())
	s.mempool.Truncate()

	return nil
}

// failureReason maps a mining error to a metrics label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, database.ErrMaxAttempts):
		return "max_attempts"
	case errors.Is(err, ErrChainAdvanced):
		return "stale"
	default:
		return "error"
	}
}
