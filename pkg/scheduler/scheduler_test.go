package scheduler

import (
	"sync"
	"testing"

	"github.com/cuemby/loom/pkg/settings"
	"github.com/cuemby/loom/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runOperations registers and starts one goroutine per worker function,
// each wrapped in the Create/Start/Complete bracket every bundled scenario
// uses, and waits for main to Detach.
func runOperations(t *testing.T, s *Scheduler, cfg *settings.Settings, workers []func(id int)) error {
	t.Helper()
	require.NoError(t, s.Attach(cfg))

	var wg sync.WaitGroup
	for i, fn := range workers {
		id := i + 1
		require.NoError(t, s.CreateOperation(id))
		wg.Add(1)
		go func(id int, fn func(int)) {
			defer wg.Done()
			require.NoError(t, s.StartOperation(id))
			fn(id)
			require.NoError(t, s.CompleteOperation(id))
		}(id, fn)
	}

	err := s.Detach()
	wg.Wait()
	return err
}

// TestMutualExclusionWithoutLockCanRace is grounded on the bundled
// mutual-exclusion scenario: two operations increment a shared counter
// without coordination. Under PCT's aggressive priority switching, a lost
// update is observed at least once across enough iterations.
func TestMutualExclusionWithoutLockCanRace(t *testing.T) {
	raceObserved := false

	for seed := uint64(1); seed <= 200 && !raceObserved; seed++ {
		counter := 0
		cfg := settings.New()
		cfg.UsePCTStrategy(seed, 3)

		s := New()
		workers := []func(id int){
			func(int) {
				local := counter
				_ = s.ScheduleNextOperation()
				counter = local + 1
			},
			func(int) {
				local := counter
				_ = s.ScheduleNextOperation()
				counter = local + 1
			},
		}
		err := runOperations(t, s, cfg, workers)
		require.NoError(t, err)
		if counter != 2 {
			raceObserved = true
		}
	}

	assert.True(t, raceObserved, "expected at least one interleaving to lose an update")
}

// TestMutualExclusionWithResourceLockIsSafe mirrors the same scenario
// guarded by a resource acting as a mutex: WaitResource/SignalResource
// around the critical section must prevent the lost update regardless of
// which interleaving the strategy explores.
func TestMutualExclusionWithResourceLockIsSafe(t *testing.T) {
	const lockResource = 1

	for seed := uint64(1); seed <= 50; seed++ {
		counter := 0
		cfg := settings.New()
		cfg.UsePCTStrategy(seed, 3)

		s := New()
		require.NoError(t, s.Attach(cfg))
		require.NoError(t, s.CreateResource(lockResource))

		var mu sync.Mutex
		held := false

		// WaitResource is a plain rendezvous, not a stateful primitive, so
		// the held flag (guarded by a plain mutex, mirroring the shared
		// state a resource stands in for) decides whether this caller must
		// actually wait or can proceed immediately.
		acquire := func() {
			for {
				mu.Lock()
				if !held {
					held = true
					mu.Unlock()
					return
				}
				mu.Unlock()
				require.NoError(t, s.WaitResource(lockResource))
			}
		}
		release := func() {
			mu.Lock()
			held = false
			mu.Unlock()
			require.NoError(t, s.SignalResource(lockResource))
		}

		var wg sync.WaitGroup
		for i := 1; i <= 2; i++ {
			id := i
			require.NoError(t, s.CreateOperation(id))
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				require.NoError(t, s.StartOperation(id))
				acquire()
				local := counter
				_ = s.ScheduleNextOperation()
				counter = local + 1
				release()
				require.NoError(t, s.CompleteOperation(id))
			}(id)
		}

		err := s.Detach()
		wg.Wait()
		require.NoError(t, err)
		assert.Equal(t, 2, counter)
	}
}

// TestCountingSemaphoreBoundsConcurrency is grounded on the bundled
// simple-semaphore scenario: a resource models a counting semaphore with
// capacity N, and the observed number of operations inside the critical
// section at once must never exceed that capacity.
func TestCountingSemaphoreBoundsConcurrency(t *testing.T) {
	const capacity = 2
	const semaphoreResource = 1

	cfg := settings.New()
	cfg.UsePCTStrategy(42, 3)

	s := New()
	require.NoError(t, s.Attach(cfg))
	require.NoError(t, s.CreateResource(semaphoreResource))

	var mu sync.Mutex
	inside := 0
	maxInside := 0
	tokens := capacity

	acquire := func() {
		for {
			mu.Lock()
			if tokens > 0 {
				tokens--
				mu.Unlock()
				return
			}
			mu.Unlock()
			require.NoError(t, s.WaitResource(semaphoreResource))
		}
	}
	release := func() {
		mu.Lock()
		tokens++
		mu.Unlock()
		require.NoError(t, s.SignalResource(semaphoreResource))
	}

	var wg sync.WaitGroup
	for i := 1; i <= 5; i++ {
		id := i
		require.NoError(t, s.CreateOperation(id))
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			require.NoError(t, s.StartOperation(id))
			acquire()

			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			_ = s.ScheduleNextOperation()

			mu.Lock()
			inside--
			mu.Unlock()

			release()
			require.NoError(t, s.CompleteOperation(id))
		}(id)
	}

	err := s.Detach()
	wg.Wait()
	require.NoError(t, err)
	assert.LessOrEqual(t, maxInside, capacity)
}

// TestMissedSignalDeadlocks verifies that an operation waiting on a
// resource no other operation will ever signal is correctly reported as a
// deadlock rather than hanging the test. It never completes, so it is
// driven without the runOperations happy-path harness.
func TestMissedSignalDeadlocks(t *testing.T) {
	cfg := settings.New()
	cfg.UseRandomStrategy(1)

	s := New()
	require.NoError(t, s.Attach(cfg))
	require.NoError(t, s.CreateOperation(1))

	go func() {
		require.NoError(t, s.StartOperation(1))
		require.NoError(t, s.CreateResource(1))
		_ = s.WaitResource(1) // nobody ever signals resource 1
	}()

	err := s.Detach()
	assert.ErrorIs(t, err, types.NewError(types.Failure))
	assert.Equal(t, types.Failure, s.ErrorCode())
}

// TestJoinOperationsWaitsForCompletion exercises the synthetic
// completion-resource machinery directly: an operation blocked in
// JoinOperations must not observe success until every joined-on operation
// has actually completed.
func TestJoinOperationsWaitsForCompletion(t *testing.T) {
	cfg := settings.New()
	cfg.UseRandomStrategy(2)

	s := New()
	var order []int
	var mu sync.Mutex
	record := func(id int) {
		mu.Lock()
		order = append(order, id)
		mu.Unlock()
	}

	workers := []func(id int){
		func(id int) {
			require.NoError(t, s.JoinOperations(2, 3))
			record(id)
		},
		func(id int) {
			_ = s.ScheduleNextOperation()
			record(id)
		},
		func(id int) {
			_ = s.ScheduleNextOperation()
			record(id)
		},
	}
	err := runOperations(t, s, cfg, workers)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 3)
	assert.Equal(t, 1, order[2], "joiner must record last")
}

// TestPCTStrategyIsDeterministicAcrossIterations reruns the same scenario
// twice with identical seeds and asserts the observed operation completion
// order is identical, the property that makes a reported failure
// reproducible.
func TestPCTStrategyIsDeterministicAcrossIterations(t *testing.T) {
	run := func(seed uint64) []int {
		cfg := settings.New()
		cfg.UsePCTStrategy(seed, 2)

		s := New()
		var order []int
		var mu sync.Mutex

		workers := make([]func(id int), 4)
		for i := range workers {
			workers[i] = func(id int) {
				for n := 0; n < 3; n++ {
					_ = s.ScheduleNextOperation()
				}
				mu.Lock()
				order = append(order, id)
				mu.Unlock()
			}
		}
		err := runOperations(t, s, cfg, workers)
		require.NoError(t, err)
		return order
	}

	first := run(999)
	second := run(999)
	assert.Equal(t, first, second)
}

// TestDuplicateOperationStartFails verifies the latched misuse code for a
// host thread that calls StartOperation twice for the same id, and that
// Detach still returns (rather than hanging) once that error has latched:
// fail latches the code and wakes main even though this path never
// reaches scheduleCore.
func TestDuplicateOperationStartFails(t *testing.T) {
	cfg := settings.New()
	cfg.UseRandomStrategy(3)

	s := New()
	require.NoError(t, s.Attach(cfg))
	require.NoError(t, s.CreateOperation(1))

	done := make(chan error, 1)
	go func() {
		require.NoError(t, s.StartOperation(1))
		done <- s.StartOperation(1)
	}()

	err := s.Detach()
	dupErr := <-done
	assert.ErrorIs(t, dupErr, types.NewError(types.DuplicateOperationStart))
	assert.ErrorIs(t, err, types.NewError(types.DuplicateOperationStart))
}
