// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/reward"
	"github.com/go-playground/validator/v10"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date            time.Time `json:"date"`
	Difficulty      uint16    `json:"difficulty" validate:"lte=128"`                    // How many leading hex zeros a block hash needs.
	MiningReward    float64   `json:"mining_reward" validate:"gte=0"`                   // Reward for mining a block before any halving.
	HalvingInterval uint64    `json:"halving_interval" validate:"gt=0"`                 // Number of blocks between reward halvings.
	RewardStrategy  string    `json:"reward_strategy" validate:"oneof=literal halving"` // Schedule used to compute the reward by height.
}

// Default returns the genesis settings the ledger uses when no file
// is provided.
func Default() Genesis {
	return Genesis{
		Date:            time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty:      2,
		MiningReward:    50,
		HalvingInterval: 210_000,
		RewardStrategy:  reward.StrategyLiteral,
	}
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the genesis settings are usable.
func (g Genesis) Validate() error {
	if err := validator.New().Struct(g); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}

	return nil
}

// Reward returns the reward schedule described by the genesis settings.
func (g Genesis) Reward() (reward.Func, error) {
	return reward.Retrieve(g.RewardStrategy, g.MiningReward, g.HalvingInterval)
}
