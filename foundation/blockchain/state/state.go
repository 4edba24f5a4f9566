// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/mempool"
	"github.com/ardanlabs/powchain/foundation/blockchain/metrics"
	"github.com/ardanlabs/powchain/foundation/blockchain/reward"
	"github.com/ardanlabs/powchain/foundation/blockchain/validation"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for background mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Genesis     genesis.Genesis
	Storage     database.Storage
	Workers     int
	MaxAttempts uint64
	Metrics     *metrics.Metrics
	EvHandler   EventHandler
}

// State manages the blockchain database.
type State struct {
	evHandler   EventHandler
	workers     int
	maxAttempts uint64
	mu          sync.Mutex

	genesis genesis.Genesis
	reward  reward.Func
	mempool *mempool.Mempool
	storage database.Storage
	metrics *metrics.Metrics

	Worker Worker
}

// New constructs a new blockchain for data management. An empty storage is
// seeded with the genesis block, otherwise the stored chain must pass
// validation.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	// Construct the reward schedule from the genesis settings.
	fn, err := cfg.Genesis.Reward()
	if err != nil {
		return nil, err
	}

	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	state := State{
		evHandler:   ev,
		workers:     cfg.Workers,
		maxAttempts: cfg.MaxAttempts,

		genesis: cfg.Genesis,
		reward:  fn,
		mempool: mempool.New(),
		storage: cfg.Storage,
		metrics: cfg.Metrics,
	}

	if cfg.Storage.Len() == 0 {
		block := database.NewGenesisBlock()
		ev("state: New: write genesis block[%s]", block.Hash)

		if err := cfg.Storage.Write(block); err != nil {
			return nil, fmt.Errorf("write genesis: %w", err)
		}

		return &state, nil
	}

	ev("state: New: validating stored chain: blocks[%d]", cfg.Storage.Len())

	if err := validation.ValidateMineableChain(&state); err != nil {
		return nil, fmt.Errorf("stored chain: %w", err)
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}
