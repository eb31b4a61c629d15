package strategy

// None is the degenerate strategy installed when controlled scheduling is
// disabled (settings.StrategyNone). It still serializes operations — the
// scheduler's mutual-exclusion guarantee is unconditional — but it never
// explores: it always advances the lowest-id enabled operation in order,
// and its "random" draws are a plain deterministic counter so a caller
// that disabled scheduling still gets a well-defined, if unexplored, run.
type None struct {
	counter int
}

// NewNone constructs the no-exploration strategy.
func NewNone() *None {
	return &None{}
}

// PrepareForIteration implements Strategy.
func (n *None) PrepareForIteration(int) {
	n.counter = 0
}

// Next implements Strategy.
func (n *None) Next(enabled []int, current int) int {
	if len(enabled) == 0 {
		panic("strategy: Next called with empty enabled set")
	}
	min := enabled[0]
	for _, id := range enabled[1:] {
		if id < min {
			min = id
		}
	}
	return min
}

// NextInteger implements Strategy.
func (n *None) NextInteger(bound int) int {
	if bound <= 0 {
		panic("strategy: NextInteger requires a positive bound")
	}
	v := n.counter % bound
	n.counter++
	return v
}

// NextBoolean implements Strategy.
func (n *None) NextBoolean() bool {
	v := n.counter%2 == 0
	n.counter++
	return v
}

// Name implements Strategy.
func (n *None) Name() string {
	return "none"
}
