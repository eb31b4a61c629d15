package scenarios

import (
	"fmt"
	"sync"

	"github.com/cuemby/loom/pkg/scheduler"
	"github.com/cuemby/loom/pkg/settings"
)

const (
	semaphoreResourceID = 1
	semaphoreCapacity   = 2
	semaphoreWorkers    = 3
)

// CountingSemaphore is grounded on simple_semaphore.cc: a resource models a
// counting semaphore of fixed capacity, and the number of operations
// observed inside the critical section at once must never exceed it. It
// also exercises JoinOperations, exactly as the reference source's main
// thread joins each worker by operation id before detaching.
var CountingSemaphore = &Scenario{
	Name:        "semaphore",
	Description: "a counting semaphore caps how many operations run a critical section at once",
	Run:         runCountingSemaphore,
}

func runCountingSemaphore(s *scheduler.Scheduler, cfg *settings.Settings) error {
	if err := s.Attach(cfg); err != nil {
		return err
	}
	if err := s.CreateResource(semaphoreResourceID); err != nil {
		return err
	}

	var (
		mu          sync.Mutex
		acquired    int
		sharedVar   int
		maxObserved int
	)

	enter := func() {
		for {
			mu.Lock()
			if acquired < semaphoreCapacity {
				acquired++
				mu.Unlock()
				return
			}
			mu.Unlock()
			_ = s.WaitResource(semaphoreResourceID)
		}
	}
	exit := func() {
		mu.Lock()
		acquired--
		mu.Unlock()
		_ = s.SignalResource(semaphoreResourceID)
	}

	var wg sync.WaitGroup
	ids := make([]int, semaphoreWorkers)
	for i := 0; i < semaphoreWorkers; i++ {
		id := i + 1
		ids[i] = id
		err := runWorker(s, &wg, id, func() {
			enter()

			mu.Lock()
			sharedVar++
			if sharedVar > maxObserved {
				maxObserved = sharedVar
			}
			mu.Unlock()

			_ = s.ScheduleNextOperation()

			mu.Lock()
			sharedVar--
			mu.Unlock()

			exit()
		})
		if err != nil {
			return err
		}
	}

	if err := s.JoinOperations(ids...); err != nil {
		return err
	}

	err := s.Detach()
	wg.Wait()
	if err != nil {
		return err
	}
	if maxObserved > semaphoreCapacity {
		return fmt.Errorf("observed %d operations inside the critical section, want at most %d", maxObserved, semaphoreCapacity)
	}
	return nil
}
