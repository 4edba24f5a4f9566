// Package database handles all the lower level support for the transactions
// and blocks that make up the blockchain, and defines the behavior required
// for storing the blocks.
package database

// Hashable interface represents the behavior of a value that owns a previous
// hash and a set of transactions and can derive its own hash from a nonce.
type Hashable interface {
	PrevHash() string
	Transactions() []Tx
	ComputeHash(nonce uint64) string
}

// Storage interface represents the behavior required to be implemented by any
// package providing support for holding the ordered sequence of blocks.
type Storage interface {
	Write(block Block) error
	GetBlock(num uint64) (Block, error)
	LatestBlock() (Block, error)
	Blocks() []Block
	Len() int
	Reset() error
}
