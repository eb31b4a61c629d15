package scenarios

import (
	"sync"

	"github.com/cuemby/loom/pkg/scheduler"
	"github.com/cuemby/loom/pkg/settings"
)

const missedSignalResourceID = 1

// MissedSignal is a single operation that creates a resource and waits on
// it, but no operation ever signals it. Every iteration must report the
// deadlock rather than hang, since nothing will ever wake the waiter.
var MissedSignal = &Scenario{
	Name:        "missed-signal",
	Description: "an operation waits on a resource nobody signals; every iteration deadlocks",
	Run:         runMissedSignal,
}

func runMissedSignal(s *scheduler.Scheduler, cfg *settings.Settings) error {
	if err := s.Attach(cfg); err != nil {
		return err
	}
	if err := s.CreateOperation(1); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.StartOperation(1); err != nil {
			return
		}
		if err := s.CreateResource(missedSignalResourceID); err != nil {
			return
		}
		_ = s.WaitResource(missedSignalResourceID) // nobody ever signals this resource
	}()

	err := s.Detach()
	wg.Wait()
	return err
}
