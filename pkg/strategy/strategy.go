// Package strategy implements the pluggable exploration strategies that
// pick which enabled operation runs next at a scheduling point: Random and
// Probabilistic Concurrency Testing (PCT). Both strategies are driven by
// the same reproducible RNG so that a fixed seed always yields the same
// interleaving.
package strategy

// Strategy selects the next operation to run from the enabled set, and
// exposes the controlled non-determinism the scheduler forwards to
// Scheduler.NextInteger / Scheduler.NextBoolean.
//
// enabled is always sorted ascending by operation id so the choice is a
// pure function of (seed, call count), never of map iteration order.
type Strategy interface {
	// PrepareForIteration resets any per-iteration state (priorities,
	// change points, step counters) ahead of a new Attach/Detach cycle.
	PrepareForIteration(iteration int)

	// Next returns the operation id to run next. current is the
	// currently scheduled operation id, or -1 if there is none yet.
	Next(enabled []int, current int) int

	// NextInteger returns a value in [0, bound).
	NextInteger(bound int) int

	// NextBoolean returns a pseudo-random boolean.
	NextBoolean() bool

	// Name identifies the strategy for logging/metrics.
	Name() string
}

// indexOf returns the position of id in the ascending-sorted enabled
// slice, or -1 if absent.
func indexOf(enabled []int, id int) int {
	for i, v := range enabled {
		if v == id {
			return i
		}
	}
	return -1
}
