package database

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ardanlabs/powchain/foundation/blockchain/signature"
	"golang.org/x/sync/errgroup"
)

// ErrMaxAttempts is returned by POW when a bounded search runs out of
// attempts before finding a solution.
var ErrMaxAttempts = errors.New("proof of work exhausted its attempts")

// =============================================================================

// Block represents a group of transactions batched together and linked to
// the block before it.
type Block struct {
	PrevBlockHash string  `json:"prev_block_hash"` // Hash of the previous block, empty only for genesis.
	Hash          string  `json:"hash"`            // Hash solving the puzzle, empty until mined.
	Nonce         *uint64 `json:"nonce"`           // Value used to solve the puzzle, nil until mined.
	Trans         []Tx    `json:"trans"`           // Transactions in the order they are hashed.
}

// NewBlock constructs an unmined block. The block is invalid until a
// nonce is found for it.
func NewBlock(trans []Tx, prevBlockHash string) Block {
	return Block{
		PrevBlockHash: prevBlockHash,
		Trans:         trans,
	}
}

// NewGenesisBlock constructs the first block of a chain. It holds no
// transactions and no previous hash, and is hashed with a zero nonce since
// genesis is not subject to the difficulty rule.
func NewGenesisBlock() Block {
	genesis := NewBlock(nil, "")
	genesis.ComputeHash(0)

	return genesis
}

// ComputeHash derives the hash for the specified nonce and stores both on
// the block. Pointer semantics are being used since the block changes.
func (b *Block) ComputeHash(nonce uint64) string {
	b.Hash = CalculateHash(b.PrevBlockHash, b.Trans, nonce)
	b.Nonce = &nonce

	return b.Hash
}

// PrevHash implements the Hashable interface.
func (b *Block) PrevHash() string {
	return b.PrevBlockHash
}

// Transactions implements the Hashable interface.
func (b *Block) Transactions() []Tx {
	return b.Trans
}

// IsMined reports whether a nonce has been recorded for the block.
func (b Block) IsMined() bool {
	return b.Nonce != nil
}

// NonceValue returns the nonce, or zero if the block was never mined.
func (b Block) NonceValue() uint64 {
	if b.Nonce == nil {
		return 0
	}

	return *b.Nonce
}

// Clone returns a copy of the block that shares no memory with the
// original.
func (b Block) Clone() Block {
	nb := b

	if b.Nonce != nil {
		nonce := *b.Nonce
		nb.Nonce = &nonce
	}

	if b.Trans != nil {
		nb.Trans = make([]Tx, len(b.Trans))
		for i, tx := range b.Trans {
			tx.Signature = append([]byte(nil), tx.Signature...)
			nb.Trans[i] = tx
		}
	}

	return nb
}

// =============================================================================

// CalculateHash returns the hash for a block with the specified previous hash,
// transactions and nonce. Mining and every validation check must use this
// function so both sides agree on the hashed data.
func CalculateHash(prevBlockHash string, trans []Tx, nonce uint64) string {
	var sb strings.Builder

	sb.WriteString(prevBlockHash)
	for _, tx := range trans {
		sb.WriteString(tx.SignatureString())
	}
	sb.WriteString(strconv.FormatUint(nonce, 10))

	return signature.Hash(sb.String())
}

// IsHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func IsHashSolved(difficulty uint16, hash string) bool {
	if len(hash) != signature.HashLength || int(difficulty) > len(hash) {
		return false
	}

	for i := range int(difficulty) {
		if hash[i] != '0' {
			return false
		}
	}

	return true
}

// =============================================================================

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	Difficulty  uint16
	PrevBlock   Block
	Trans       []Tx
	Workers     int
	MaxAttempts uint64
	EvHandler   func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := func(v string, params ...any) {
		if args.EvHandler != nil {
			args.EvHandler(v, params...)
		}
	}

	// Construct the block to be mined.
	nb := NewBlock(args.Trans, args.PrevBlock.Hash)

	// Perform the proof of work mining operation.
	if err := nb.performPOW(ctx, args.Difficulty, args.Workers, args.MaxAttempts, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, difficulty uint16, workers int, maxAttempts uint64, ev func(v string, args ...any)) error {
	ev("database: PerformPOW: MINING: started: workers[%d]", max(workers, 1))
	defer ev("database: PerformPOW: MINING: completed")

	// Log the transactions that are a part of this potential block.
	for _, tx := range b.Trans {
		ev("database: PerformPOW: MINING: tx[%s]", tx)
	}

	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once     sync.Once
		solved   Block
		found    atomic.Bool
		attempts atomic.Uint64
	)

	// Each worker searches a disjoint set of nonces. With a single worker
	// the nonces are tried in order starting at zero.
	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			nb := *b

			for nonce := uint64(w); ; nonce += uint64(workers) {
				if gctx.Err() != nil {
					return gctx.Err()
				}

				n := attempts.Add(1)
				if maxAttempts > 0 && n > maxAttempts {
					return ErrMaxAttempts
				}

				if n%1_000_000 == 0 {
					ev("database: PerformPOW: MINING: attempts[%d]", n)
				}

				// Hash the block and check if we have solved the puzzle.
				hash := nb.ComputeHash(nonce)
				if !IsHashSolved(difficulty, hash) {
					continue
				}

				once.Do(func() {
					solved = nb
					found.Store(true)
				})

				// Stop the other workers.
				cancel()
				return nil
			}
		})
	}

	err := g.Wait()
	if found.Load() {
		*b = solved
		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: nonce[%d]", b.PrevBlockHash, b.Hash, b.NonceValue())
		ev("database: PerformPOW: MINING: attempts[%d]", attempts.Load())
		return nil
	}

	ev("database: PerformPOW: MINING: CANCELLED: attempts[%d]", attempts.Load())
	if err == nil {
		err = ctx.Err()
	}

	return err
}
