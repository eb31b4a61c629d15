// Package scenarios bundles the small concurrent programs the loom CLI
// drives the scheduler through, one iteration at a time. Each scenario owns
// its shared state and the racy/guarded access patterns under test; it
// never touches settings.Settings or strategy selection directly, so the
// same scenario can be rerun under any seed and strategy the caller picks.
package scenarios

import (
	"fmt"
	"sync"

	"github.com/cuemby/loom/pkg/scheduler"
	"github.com/cuemby/loom/pkg/settings"
)

// Scenario is one bundled concurrent program, runnable repeatedly against a
// freshly created Scheduler.
type Scenario struct {
	// Name identifies the scenario on the command line.
	Name string
	// Description is a one-line summary shown by `loom list`.
	Description string
	// Run drives a single iteration: it must itself Attach(cfg)/Detach s
	// (via the operations it registers) and return the iteration's
	// terminal error, exactly like the scheduler's own Detach does.
	Run func(s *scheduler.Scheduler, cfg *settings.Settings) error
}

// All is the registry of bundled scenarios, in the order `loom list` and
// `loom run` resolve names against.
var All = []*Scenario{
	MutualExclusionRace,
	MutualExclusionGuarded,
	CountingSemaphore,
	MissedSignal,
}

// Find returns the scenario registered under name, or an error listing the
// valid names.
func Find(name string) (*Scenario, error) {
	for _, sc := range All {
		if sc.Name == name {
			return sc, nil
		}
	}
	names := make([]string, len(All))
	for i, sc := range All {
		names[i] = sc.Name
	}
	return nil, fmt.Errorf("unknown scenario %q (known: %v)", name, names)
}

// runWorker is the Create/Start/Complete bracket every worker goroutine in
// these scenarios follows, mirroring the start_operation/complete_operation
// bracket in the original coyote test sources.
func runWorker(s *scheduler.Scheduler, wg *sync.WaitGroup, id int, fn func()) error {
	if err := s.CreateOperation(id); err != nil {
		return err
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.StartOperation(id); err != nil {
			return
		}
		fn()
		_ = s.CompleteOperation(id)
	}()
	return nil
}
