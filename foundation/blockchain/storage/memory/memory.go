// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// ErrEmpty is returned when a block is requested from an empty chain.
var ErrEmpty = errors.New("no blocks in storage")

// Memory represents the storage implementation for reading and storing
// blocks in memory using a slice. This implements the database.Storage
// interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []database.Block
}

// New constructs an Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Write takes the specified block and stores it in memory. The first block
// written must be a genesis block and every block after it must link to
// the latest block.
func (m *Memory) Write(block database.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := len(m.blocks)
	switch {
	case l == 0 && block.PrevBlockHash != "":
		return errors.New("first block must be a genesis block")

	case l > 0 && block.PrevBlockHash != m.blocks[l-1].Hash:
		return fmt.Errorf("block is out of order, prev %s, latest %s", block.PrevBlockHash, m.blocks[l-1].Hash)
	}

	m.blocks = append(m.blocks, block.Clone())

	return nil
}

// GetBlock searches the blockchain to locate and return the contents of
// the specified block by number.
func (m *Memory) GetBlock(num uint64) (database.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l := uint64(len(m.blocks))
	if l == 0 || num >= l {
		return database.Block{}, errors.New("block does not exist")
	}

	return m.blocks[num].Clone(), nil
}

// LatestBlock returns the last block written.
func (m *Memory) LatestBlock() (database.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l := len(m.blocks)
	if l == 0 {
		return database.Block{}, ErrEmpty
	}

	return m.blocks[l-1].Clone(), nil
}

// Blocks returns a copy of every block in chain order.
func (m *Memory) Blocks() []database.Block {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blocks := make([]database.Block, len(m.blocks))
	for i, block := range m.blocks {
		blocks[i] = block.Clone()
	}

	return blocks
}

// Len returns the number of blocks stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.blocks)
}

// Reset will clear out the blockchain in memory.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = nil
	return nil
}
