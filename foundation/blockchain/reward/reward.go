// Package reward provides the different mining reward schedules.
package reward

import (
	"errors"
	"fmt"
	"math"
)

// List of different reward strategies.
const (
	StrategyLiteral = "literal"
	StrategyHalving = "halving"
)

// Map of different reward strategies with functions.
var strategies = map[string]func(base float64, interval uint64) Func{
	StrategyLiteral: literal,
	StrategyHalving: halving,
}

// Func defines a function that returns the reward minted by the block at the
// specified height. Height is the index of the block in the chain, so the
// first block after genesis is at height 1.
type Func func(height uint64) float64

// Retrieve returns the specified reward strategy function configured with
// the base reward and the number of blocks between halvings.
func Retrieve(strategy string, base float64, interval uint64) (Func, error) {
	build, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}

	if interval == 0 {
		return nil, errors.New("halving interval must be greater than zero")
	}

	return build(base, interval), nil
}

// =============================================================================

// literal reproduces the schedule the ledger has always used: the base reward
// until the first halving, then base / halvings * 2. Despite the name this
// does not halve, the reward at the first halving is double the base.
func literal(base float64, interval uint64) Func {
	return func(height uint64) float64 {
		halvings := height / interval
		if halvings == 0 {
			return base
		}

		return base / float64(halvings) * 2
	}
}

// halving divides the base reward by two for every interval.
func halving(base float64, interval uint64) Func {
	return func(height uint64) float64 {
		halvings := height / interval
		if halvings > math.MaxInt16 {
			return 0
		}

		return math.Ldexp(base, -int(halvings))
	}
}
