// Package accounts maintains account balances by replaying the transactions
// recorded on the blockchain.
package accounts

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// ErrInsufficientFunds is returned when applying a transaction would take an
// account into a negative balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Accounts manages the balances of the accounts who have transacted on
// the blockchain. A missing account has a zero balance.
type Accounts struct {
	info map[database.PublicKey]float64
	mu   sync.RWMutex
}

// New constructs an empty set of accounts.
func New() *Accounts {
	return &Accounts{
		info: make(map[database.PublicKey]float64),
	}
}

// Replay applies every transaction of every block in chain order. The
// balances carry over from block to block. Replay stops at the first
// transaction that overdraws an account.
func Replay(blocks []database.Block) (*Accounts, error) {
	act := New()

	for num, block := range blocks {
		for i, tx := range block.Trans {
			if err := act.ApplyTransaction(tx); err != nil {
				return nil, fmt.Errorf("block %d: tx %d: %w", num, i, err)
			}
		}
	}

	return act, nil
}

// Reset removes all account information.
func (act *Accounts) Reset() {
	act.mu.Lock()
	defer act.mu.Unlock()

	act.info = make(map[database.PublicKey]float64)
}

// Balance returns the current balance for the account.
func (act *Accounts) Balance(publicKey database.PublicKey) float64 {
	act.mu.RLock()
	defer act.mu.RUnlock()

	return act.info[publicKey]
}

// Copy makes a copy of the current balances for all accounts.
func (act *Accounts) Copy() map[database.PublicKey]float64 {
	act.mu.RLock()
	defer act.mu.RUnlock()

	accounts := make(map[database.PublicKey]float64, len(act.info))
	for pk, balance := range act.info {
		accounts[pk] = balance
	}
	return accounts
}

// ApplyTransaction performs the business logic for applying a transaction
// to the balances. The source is debited unless this is a reward and the
// recipient is credited. Nothing changes if either balance would end up
// negative or not a number.
func (act *Accounts) ApplyTransaction(tx database.Tx) error {
	act.mu.Lock()
	defer act.mu.Unlock()

	if !tx.IsReward() {
		from := act.info[tx.Source] - tx.Amount
		if !(from >= 0) {
			return fmt.Errorf("account %s, balance %v, needed %v: %w", tx.Source.Short(), act.info[tx.Source], tx.Amount, ErrInsufficientFunds)
		}
		act.info[tx.Source] = from
	}

	to := act.info[tx.Recipient] + tx.Amount
	if !(to >= 0) {
		if !tx.IsReward() {
			act.info[tx.Source] += tx.Amount
		}
		return fmt.Errorf("account %s, balance %v, received %v: %w", tx.Recipient.Short(), act.info[tx.Recipient], tx.Amount, ErrInsufficientFunds)
	}
	act.info[tx.Recipient] = to

	return nil
}
