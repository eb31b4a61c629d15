// Package settings holds the plain configuration record consumed by the
// scheduler and its strategies: which exploration strategy to run, its
// seed, and its strategy-specific bound. It has no behaviour of its own —
// the scheduler reads it once per Attach.
package settings

import "time"

// StrategyType selects which exploration strategy the scheduler installs
// at Attach.
type StrategyType string

const (
	// StrategyNone disables controlled scheduling: the scheduler still
	// serializes operations, but the strategy always returns the first
	// enabled operation rather than exploring.
	StrategyNone StrategyType = "none"

	// StrategyRandom installs the Random exploration strategy.
	StrategyRandom StrategyType = "random"

	// StrategyPCT installs the Probabilistic Concurrency Testing strategy.
	StrategyPCT StrategyType = "pct"
)

// Settings is a mutable configuration record. It is not safe for
// concurrent use; build it before calling Scheduler.Attach and do not
// mutate it while an iteration is in progress.
type Settings struct {
	strategyType  StrategyType
	strategyBound int
	seed          uint64
}

// New returns Settings defaulted to the Random strategy with a seed drawn
// from the current time, mirroring the reference implementation's
// high_resolution_clock default.
func New() *Settings {
	return &Settings{
		strategyType:  StrategyRandom,
		strategyBound: 100,
		seed:          uint64(time.Now().UnixNano()),
	}
}

// UseRandomStrategy installs the Random strategy with the given seed and
// the default switch probability of 100 (always switch away from the
// current operation when another is enabled).
func (s *Settings) UseRandomStrategy(seed uint64) {
	s.strategyType = StrategyRandom
	s.seed = seed
	s.strategyBound = 100
}

// UseRandomStrategyWithProbability installs the Random strategy with the
// given seed and an explicit switch probability in [0, 100]. It returns an
// error if probability exceeds 100.
func (s *Settings) UseRandomStrategyWithProbability(seed uint64, probability int) error {
	if probability > 100 {
		return ErrProbabilityOutOfRange
	}
	s.strategyType = StrategyRandom
	s.seed = seed
	s.strategyBound = probability
	return nil
}

// UsePCTStrategy installs the PCT strategy with the given seed and maximum
// number of priority switches per iteration.
func (s *Settings) UsePCTStrategy(seed uint64, maxPrioritySwitches int) {
	s.strategyType = StrategyPCT
	s.seed = seed
	s.strategyBound = maxPrioritySwitches
}

// DisableScheduling installs StrategyNone.
func (s *Settings) DisableScheduling() {
	s.strategyType = StrategyNone
}

// StrategyKind returns the installed strategy type.
func (s *Settings) StrategyKind() StrategyType {
	return s.strategyType
}

// StrategyBound returns the strategy-specific bound: the switch
// probability for Random, or max_priority_switches for PCT.
func (s *Settings) StrategyBound() int {
	return s.strategyBound
}

// Seed returns the seed used by randomized strategies.
func (s *Settings) Seed() uint64 {
	return s.seed
}
