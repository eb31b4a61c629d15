package strategy

// Random is the uniform-random exploration strategy: at every scheduling
// point it either stays with the currently scheduled operation (sticky) or
// draws uniformly among the enabled set, with the balance controlled by
// probability.
type Random struct {
	seed        uint64
	probability int // 0-100: chance of switching away from current
	rng         *rng
}

// NewRandom constructs a Random strategy. probability is the percent
// chance, per call to Next, of switching away from the current operation
// when it is itself enabled; 100 means always switch (never sticky), 0
// means never switch away voluntarily.
func NewRandom(seed uint64, probability int) *Random {
	r := &Random{seed: seed, probability: probability}
	r.PrepareForIteration(0)
	return r
}

// PrepareForIteration re-seeds the RNG so each iteration with the same
// seed produces the identical sequence of choices.
func (s *Random) PrepareForIteration(int) {
	s.rng = newRNG(s.seed)
}

// Next implements Strategy.
func (s *Random) Next(enabled []int, current int) int {
	if len(enabled) == 0 {
		panic("strategy: Next called with empty enabled set")
	}

	if indexOf(enabled, current) >= 0 {
		if s.rng.nextInteger(100) >= s.probability {
			return current
		}
	}

	k := s.rng.nextInteger(len(enabled))
	return enabled[k]
}

// NextInteger implements Strategy.
func (s *Random) NextInteger(bound int) int {
	return s.rng.nextInteger(bound)
}

// NextBoolean implements Strategy.
func (s *Random) NextBoolean() bool {
	return s.rng.nextBoolean()
}

// Name implements Strategy.
func (s *Random) Name() string {
	return "random"
}
