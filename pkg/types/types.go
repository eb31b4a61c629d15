package types

import "sync"

// OperationStatus represents the lifecycle state of a registered operation.
type OperationStatus string

const (
	// OperationNone is the state NewOperation assigns. Scheduler.CreateOperation
	// moves a new operation to Enabled straight away, so an operation
	// registered through the scheduler is never observed in this state.
	OperationNone OperationStatus = "none"

	// OperationEnabled means the operation is eligible to be selected by
	// the exploration strategy at the next scheduling point.
	OperationEnabled OperationStatus = "enabled"

	// OperationWaiting means the operation is blocked on one or more
	// resources and is not eligible for selection.
	OperationWaiting OperationStatus = "waiting"

	// OperationCompleted means the operation has called CompleteOperation
	// and will never run again in this iteration.
	OperationCompleted OperationStatus = "completed"
)

// MainOperationID is the reserved id of the operation created implicitly by
// Scheduler.Attach. It represents the caller's own thread of control.
const MainOperationID = 0

// Operation is the per-participant state tracked by the scheduler. It is
// owned by the Scheduler; callers never construct one directly.
type Operation struct {
	ID     int
	Status OperationStatus

	// WaitedResources is the set of resource ids this operation is
	// currently blocked on. Non-empty iff Status == OperationWaiting.
	WaitedResources map[int]struct{}

	// Signal is the condition variable the scheduler parks this
	// operation's host thread on between scheduling points. One per
	// operation id gives O(1) targeted wake-up instead of a broadcast
	// wake storm on a single shared condition variable. It shares the
	// scheduler's global mutex as its locker, so Wait atomically
	// releases and re-acquires that same lock.
	Signal *sync.Cond

	// started and completed latch the one-shot transitions so repeated
	// misuse (e.g. a second StartOperation) is rejected.
	started   bool
	completed bool
}

// NewOperation creates an operation in the None state, parked on locker
// (the scheduler's global mutex). Only the scheduler package should call
// this; it lives here so Scheduler and test helpers in other packages can
// share the same struct definition.
func NewOperation(id int, locker sync.Locker) *Operation {
	return &Operation{
		ID:              id,
		Status:          OperationNone,
		WaitedResources: make(map[int]struct{}),
		Signal:          sync.NewCond(locker),
	}
}

// Started reports whether StartOperation has already transitioned this op.
func (o *Operation) Started() bool { return o.started }

// SetStarted latches the started flag.
func (o *Operation) SetStarted() { o.started = true }

// Completed reports whether the operation has already been completed.
func (o *Operation) Completed() bool { return o.completed }

// SetCompleted latches the completed flag and updates Status.
func (o *Operation) SetCompleted() {
	o.completed = true
	o.Status = OperationCompleted
}

// IsWaitingOn reports whether the operation is blocked on the given resource.
func (o *Operation) IsWaitingOn(resourceID int) bool {
	_, ok := o.WaitedResources[resourceID]
	return ok
}

// Resource is a named rendez-vous point: the set of operations parked
// waiting for it to be signalled. Owned by the Scheduler.
type Resource struct {
	ID      int
	Waiters map[int]struct{}
}

// NewResource creates an empty resource.
func NewResource(id int) *Resource {
	return &Resource{
		ID:      id,
		Waiters: make(map[int]struct{}),
	}
}
