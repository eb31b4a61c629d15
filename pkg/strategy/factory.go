package strategy

import "github.com/cuemby/loom/pkg/settings"

// defaultMaxSchedulingSteps is the PCT change-point upper bound used when
// the caller does not have a tighter estimate of how many scheduling
// points the program under test will hit. Change points are drawn from
// [1, defaultMaxSchedulingSteps), so a program with fewer scheduling points
// than that reaches only the change points that fall within its own length
// and may see no priority change at all; a program that runs longer stops
// seeing new changes once maxPrioritySwitches is exhausted.
const defaultMaxSchedulingSteps = 1000

// FromSettings builds the Strategy the scheduler should install for a new
// iteration, based on the strategy type and bound recorded in s.
func FromSettings(s *settings.Settings) Strategy {
	switch s.StrategyKind() {
	case settings.StrategyRandom:
		return NewRandom(s.Seed(), s.StrategyBound())
	case settings.StrategyPCT:
		return NewPCT(s.Seed(), s.StrategyBound(), defaultMaxSchedulingSteps)
	default:
		return NewNone()
	}
}
