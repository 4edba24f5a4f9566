package reward_test

import (
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/reward"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestSchedules(t *testing.T) {
	type table struct {
		name     string
		strategy string
		heights  []uint64
		rewards  []float64
	}

	tt := []table{
		{
			// The literal schedule pays more at the first halving than before
			// it. This is kept for compatibility with existing chains.
			name:     "literal",
			strategy: reward.StrategyLiteral,
			heights:  []uint64{0, 1, 209_999, 210_000, 420_000, 630_000, 840_000},
			rewards:  []float64{50, 50, 50, 100, 50, 50.0 / 3 * 2, 25},
		},
		{
			name:     "halving",
			strategy: reward.StrategyHalving,
			heights:  []uint64{0, 1, 209_999, 210_000, 420_000, 630_000},
			rewards:  []float64{50, 50, 50, 25, 12.5, 6.25},
		},
	}

	t.Log("Given the need to compute mining rewards by height.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen using the %s schedule.", testID, tst.name)
			{
				f := func(t *testing.T) {
					fn, err := reward.Retrieve(tst.strategy, 50, 210_000)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to retrieve the strategy: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to retrieve the strategy.", success, testID)

					for i, height := range tst.heights {
						if got := fn(height); got != tst.rewards[i] {
							t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
							t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.rewards[i])
							t.Fatalf("\t%s\tTest %d:\tShould get the right reward at height %d.", failed, testID, height)
						}
						t.Logf("\t%s\tTest %d:\tShould get the right reward at height %d.", success, testID, height)
					}
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestRetrieveErrors(t *testing.T) {
	if _, err := reward.Retrieve("bogus", 50, 210_000); err == nil {
		t.Fatalf("Should fail for an unknown strategy.")
	}

	if _, err := reward.Retrieve(reward.StrategyLiteral, 50, 0); err == nil {
		t.Fatalf("Should fail for a zero halving interval.")
	}
}
