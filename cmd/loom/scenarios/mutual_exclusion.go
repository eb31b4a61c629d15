package scenarios

import (
	"fmt"
	"sync"

	"github.com/cuemby/loom/pkg/scheduler"
	"github.com/cuemby/loom/pkg/settings"
)

const lockResourceID = 1

// MutualExclusionRace is grounded on mutual_exclusion.cc, minus its lock:
// two operations race to write a distinct value into a shared variable and
// then read it back. Without coordination the scheduler can interleave the
// two critical sections, so the read-back assertion can fail on some
// seeds — that failure is the point of the scenario, not a bug in loom.
var MutualExclusionRace = &Scenario{
	Name:        "mutex-race",
	Description: "two operations write a shared variable without a lock; some interleavings corrupt it",
	Run: func(s *scheduler.Scheduler, cfg *settings.Settings) error {
		return runMutualExclusion(s, cfg, false)
	},
}

// MutualExclusionGuarded is the same program with the critical section
// guarded by a resource standing in for a lock, exactly as
// mutual_exclusion.cc's mock_acquire/mock_release pair does. Every
// interleaving the strategy can produce must still leave the read-back
// assertion intact.
var MutualExclusionGuarded = &Scenario{
	Name:        "mutex-guarded",
	Description: "the same race, guarded by a resource acting as a lock",
	Run: func(s *scheduler.Scheduler, cfg *settings.Settings) error {
		return runMutualExclusion(s, cfg, true)
	},
}

func runMutualExclusion(s *scheduler.Scheduler, cfg *settings.Settings, guarded bool) error {
	if err := s.Attach(cfg); err != nil {
		return err
	}

	var (
		sharedVar  int
		lockHeld   bool
		mu         sync.Mutex
		assertErrs []error
	)
	recordAssertErr := func(err error) {
		mu.Lock()
		assertErrs = append(assertErrs, err)
		mu.Unlock()
	}

	acquire := func() {
		if !guarded {
			return
		}
		_ = s.ScheduleNextOperation()
		for {
			mu.Lock()
			if !lockHeld {
				lockHeld = true
				mu.Unlock()
				return
			}
			mu.Unlock()
			_ = s.WaitResource(lockResourceID)
		}
	}
	release := func() {
		if !guarded {
			return
		}
		_ = s.ScheduleNextOperation()
		mu.Lock()
		lockHeld = false
		mu.Unlock()
		_ = s.SignalResource(lockResourceID)
	}

	work := func(id, value int) func() {
		return func() {
			acquire()
			sharedVar = value
			_ = s.ScheduleNextOperation()
			if sharedVar != value {
				recordAssertErr(fmt.Errorf("operation %d: shared variable is %d, want %d", id, sharedVar, value))
			}
			release()
		}
	}

	var wg sync.WaitGroup
	if guarded {
		if err := s.CreateResource(lockResourceID); err != nil {
			return err
		}
	}
	if err := runWorker(s, &wg, 1, work(1, 1)); err != nil {
		return err
	}
	if err := runWorker(s, &wg, 2, work(2, 2)); err != nil {
		return err
	}

	err := s.Detach()
	wg.Wait()
	if err != nil {
		return err
	}
	if len(assertErrs) > 0 {
		return assertErrs[0]
	}
	return nil
}
