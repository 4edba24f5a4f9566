package state

import (
	"errors"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// ErrDirectAppend is returned when a caller tries to append a block without
// mining it. Blocks only enter the chain through MineNewBlock.
var ErrDirectAppend = errors.New("blocks can only be added by mining")

// SubmitTransaction appends the transaction to the pending pool and returns
// the new pool length. No validation happens on submission, invalid
// transactions are caught when the chain is validated.
func (s *State) SubmitTransaction(tx database.Tx) int {
	s.mu.Lock()
	n := s.mempool.Add(tx)
	s.mu.Unlock()

	s.evHandler("state: SubmitTransaction: tx[%s]: pending[%d]", tx, n)
	s.metrics.TxSubmitted()

	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return n
}

// AddBlock always fails. It exists so callers that try to append a block
// directly get a loud error instead of a silently unmined chain.
func (s *State) AddBlock(block database.Block) error {
	s.evHandler("state: AddBlock: ERROR: rejected block[%s]", block.Hash)

	return ErrDirectAppend
}
