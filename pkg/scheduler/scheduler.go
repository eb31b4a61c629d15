package scheduler

import (
	"sort"
	"sync"

	"github.com/cuemby/loom/pkg/events"
	"github.com/cuemby/loom/pkg/log"
	"github.com/cuemby/loom/pkg/metrics"
	"github.com/cuemby/loom/pkg/settings"
	"github.com/cuemby/loom/pkg/strategy"
	"github.com/cuemby/loom/pkg/types"
	"github.com/rs/zerolog"
)

// Scheduler is the controlled-concurrency interleaving engine. It
// registers operations and resources, serialises all participating host
// threads at their scheduling points, and asks the installed exploration
// strategy which enabled operation runs next. All state is protected by a
// single mutex; condition variables are per-operation for O(1) targeted
// wake-up.
type Scheduler struct {
	mu sync.Mutex

	operations map[int]*types.Operation
	resources  map[int]*types.Resource

	scheduledOpID int
	attached      bool
	lastError     types.ErrorCode

	settings  *settings.Settings
	strategy  strategy.Strategy
	iteration int

	lastPriorityChanges int

	logger zerolog.Logger
	broker *events.Broker
}

// New creates a scheduler. The returned value is not attached to any
// iteration; call Attach before registering operations or resources.
func New() *Scheduler {
	return &Scheduler{
		logger: log.WithComponent("scheduler"),
		broker: events.NewBroker(),
	}
}

// Events returns the broker other components can subscribe to for
// OperationScheduled / PriorityChanged / DeadlockDetected notifications.
// Callers that don't need a live feed can ignore it entirely.
func (s *Scheduler) Events() *events.Broker {
	return s.broker
}

// Attach begins a new exploration iteration: it resets all operation and
// resource state, installs the strategy described by cfg, and creates and
// enables the reserved main operation (id 0). Fails with ClientAttached if
// an iteration is already in progress.
func (s *Scheduler) Attach(cfg *settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return s.fail(types.ClientAttached)
	}

	s.operations = make(map[int]*types.Operation)
	s.resources = make(map[int]*types.Resource)
	s.lastError = types.Success
	s.settings = cfg
	s.strategy = strategy.FromSettings(cfg)
	s.iteration++
	s.lastPriorityChanges = 0
	s.strategy.PrepareForIteration(s.iteration)

	main := types.NewOperation(types.MainOperationID, &s.mu)
	main.SetStarted()
	main.Status = types.OperationEnabled
	s.operations[types.MainOperationID] = main
	s.scheduledOpID = types.MainOperationID
	s.attached = true

	metrics.IterationsStarted.Inc()
	s.publish(events.EventIterationAttached, s.strategy.Name())
	s.logger.Debug().Uint64("seed", cfg.Seed()).Str("strategy", s.strategy.Name()).Msg("iteration attached")
	return nil
}

// Detach blocks the caller (which must be the main operation) until every
// other registered operation has completed, then ends the iteration.
// Returns nil on CompletedAllOperations, an error wrapping Failure on
// deadlock, or a latched misuse error if one occurred earlier in the
// iteration.
func (s *Scheduler) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return s.fail(types.ClientNotAttached)
	}

	if s.lastError != types.Success &&
		s.lastError != types.CompletedAllOperations &&
		s.lastError != types.Failure {
		// A misuse error latched earlier this iteration; surface it as-is
		// rather than blocking on operations that may never report back.
		err := types.NewError(s.lastError)
		s.attached = false
		return err
	}

	main := s.operations[types.MainOperationID]

	var pending []int
	for id, op := range s.operations {
		if id == types.MainOperationID || op.Completed() {
			continue
		}
		pending = append(pending, id)
	}

	if len(pending) > 0 {
		main.Status = types.OperationWaiting
		for _, id := range pending {
			s.addWaitedCompletion(main, id)
		}
		// scheduleCore's return is not propagated directly here: it has
		// already latched into s.lastError, which the switch below reads
		// back (and, uniquely for Detach, translates
		// CompletedAllOperations into success).
		_ = s.scheduleCore(main.ID)
	}

	var result error
	switch s.lastError {
	case types.Success:
		s.lastError = types.CompletedAllOperations
		result = nil
	case types.CompletedAllOperations:
		result = nil
	default:
		result = types.NewError(s.lastError)
	}

	main.SetCompleted()
	s.attached = false
	metrics.IterationsByOutcome.WithLabelValues(s.lastError.String()).Inc()
	s.publish(events.EventIterationDetached, s.lastError.String())
	s.logger.Debug().Str("outcome", s.lastError.String()).Msg("iteration detached")
	return result
}

// CreateOperation registers a new operation and marks it Enabled at once;
// the operation is never left in the None state. Fails with
// ExplicitMainOperationStart for id 0, or DuplicateResource if id is
// already registered.
func (s *Scheduler) CreateOperation(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginCall(); err != nil {
		return err
	}
	if id == types.MainOperationID {
		return s.fail(types.ExplicitMainOperationStart)
	}
	if _, exists := s.operations[id]; exists {
		return s.fail(types.DuplicateResource)
	}
	op := types.NewOperation(id, &s.mu)
	// A created operation is guaranteed to eventually reach StartOperation,
	// so it counts as schedulable immediately: otherwise a scheduling point
	// reached between CreateOperation and the new operation's own
	// StartOperation call would see an empty enabled set and misreport a
	// deadlock.
	op.Status = types.OperationEnabled
	s.operations[id] = op
	return nil
}

// StartOperation must be called by the host thread that represents
// operation id. It marks the operation started (it is already Enabled
// since CreateOperation) and blocks the calling thread until the scheduler
// elects it to run.
func (s *Scheduler) StartOperation(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginCall(); err != nil {
		return err
	}
	if id == types.MainOperationID {
		return s.fail(types.ExplicitMainOperationStart)
	}
	op, ok := s.operations[id]
	if !ok {
		return s.fail(types.NotExistingResource)
	}
	if op.Started() {
		return s.fail(types.DuplicateOperationStart)
	}
	op.SetStarted()
	op.Status = types.OperationEnabled

	s.waitForTurn(op)
	if s.lastError != types.Success {
		return types.NewError(s.lastError)
	}
	return nil
}

// CompleteOperation must be called by operation id's own thread while it
// is the scheduled operation. It transitions the operation to Completed,
// wakes anyone joined on it, and yields to another enabled operation.
func (s *Scheduler) CompleteOperation(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginCall(); err != nil {
		return err
	}
	if id == types.MainOperationID {
		return s.fail(types.ExplicitMainOperationComplete)
	}
	op, ok := s.operations[id]
	if !ok {
		return s.fail(types.NotExistingResource)
	}

	op.SetCompleted()
	s.signalCompletion(id)
	return s.scheduleCore(id)
}

// ScheduleNextOperation is the scheduling point: the caller, which must be
// the currently scheduled operation, yields so the strategy can elect
// another enabled operation, then blocks until it is elected again.
func (s *Scheduler) ScheduleNextOperation() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginCall(); err != nil {
		return err
	}
	return s.scheduleCore(s.scheduledOpID)
}

// ScheduleNext is a deprecated alias for ScheduleNextOperation, kept for
// sources ported from implementations that used the shorter name.
func (s *Scheduler) ScheduleNext() error {
	return s.ScheduleNextOperation()
}

// CreateResource registers a new named resource with an empty waiter set.
func (s *Scheduler) CreateResource(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginCall(); err != nil {
		return err
	}
	if _, exists := s.resources[id]; exists {
		return s.fail(types.DuplicateResource)
	}
	s.resources[id] = types.NewResource(id)
	return nil
}

// DeleteResource removes a resource. The resource must exist and have no
// current waiters.
func (s *Scheduler) DeleteResource(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginCall(); err != nil {
		return err
	}
	res, ok := s.resources[id]
	if !ok {
		return s.fail(types.NotExistingResource)
	}
	if len(res.Waiters) != 0 {
		// The taxonomy has no dedicated "resource busy" code; Failure is
		// the catch-all for a misuse condition outside the named codes.
		return s.fail(types.Failure)
	}
	delete(s.resources, id)
	return nil
}

// WaitResource is called by the scheduled operation. It blocks (via a
// scheduling yield) until rid has been signalled.
func (s *Scheduler) WaitResource(rid int) error {
	return s.WaitResources(rid)
}

// WaitResources is called by the scheduled operation. It blocks until
// every listed resource has been signalled at least once since the wait
// began.
func (s *Scheduler) WaitResources(rids ...int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginCall(); err != nil {
		return err
	}
	op := s.operations[s.scheduledOpID]
	for _, rid := range rids {
		res, ok := s.resources[rid]
		if !ok {
			return s.fail(types.NotExistingResource)
		}
		op.WaitedResources[rid] = struct{}{}
		res.Waiters[op.ID] = struct{}{}
	}
	if len(rids) == 0 {
		return nil
	}
	op.Status = types.OperationWaiting
	return s.scheduleCore(op.ID)
}

// SignalResource wakes every operation currently waiting on rid
// (broadcast-clear): each waiter drops rid from its waited set and becomes
// Enabled once its waited set is empty. The resource's entire waiter set
// is cleared. Does not itself yield.
func (s *Scheduler) SignalResource(rid int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginCall(); err != nil {
		return err
	}
	res, ok := s.resources[rid]
	if !ok {
		return s.fail(types.NotExistingResource)
	}
	for waiterID := range res.Waiters {
		s.clearWait(waiterID, rid)
	}
	res.Waiters = make(map[int]struct{})
	return nil
}

// SignalResourceTo wakes only targetID (targeted signal): it is the only
// waiter removed from rid's waiter set. Other waiters on rid are
// unaffected. Does not itself yield.
func (s *Scheduler) SignalResourceTo(rid int, targetID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginCall(); err != nil {
		return err
	}
	res, ok := s.resources[rid]
	if !ok {
		return s.fail(types.NotExistingResource)
	}
	if _, waiting := res.Waiters[targetID]; !waiting {
		return nil
	}
	delete(res.Waiters, targetID)
	s.clearWait(targetID, rid)
	return nil
}

// JoinOperation is called by the scheduled operation; it blocks until id
// has completed.
func (s *Scheduler) JoinOperation(id int) error {
	return s.JoinOperations(id)
}

// JoinOperations is called by the scheduled operation; it blocks until
// every listed operation has completed.
func (s *Scheduler) JoinOperations(ids ...int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginCall(); err != nil {
		return err
	}
	op := s.operations[s.scheduledOpID]

	pending := 0
	for _, id := range ids {
		target, ok := s.operations[id]
		if !ok {
			return s.fail(types.NotExistingResource)
		}
		if target.Completed() {
			continue
		}
		s.addWaitedCompletion(op, id)
		pending++
	}
	if pending == 0 {
		return nil
	}
	op.Status = types.OperationWaiting
	return s.scheduleCore(op.ID)
}

// NextInteger returns a strategy-controlled value in [0, bound), so that
// test-driver non-determinism is as reproducible as the interleaving
// itself. Returns 0 if the scheduler is not in a healthy attached state.
func (s *Scheduler) NextInteger(bound int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastError != types.Success || !s.attached {
		return 0
	}
	return s.strategy.NextInteger(bound)
}

// NextBoolean returns a strategy-controlled boolean.
func (s *Scheduler) NextBoolean() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastError != types.Success || !s.attached {
		return false
	}
	return s.strategy.NextBoolean()
}

// Seed returns the seed of the settings installed by the most recent
// Attach (still available after Detach), or 0 if Attach has never been
// called.
func (s *Scheduler) Seed() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return 0
	}
	return s.settings.Seed()
}

// ErrorCode returns the latched error code for the current iteration.
func (s *Scheduler) ErrorCode() types.ErrorCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// GetLastErrorCode is a deprecated alias for ErrorCode.
func (s *Scheduler) GetLastErrorCode() types.ErrorCode {
	return s.ErrorCode()
}

// --- internals; all of the below run with s.mu held. ---

// beginCall implements the sticky-error discipline shared by every method
// except Attach: a latched non-Success error is returned immediately, and
// only then is the attached precondition checked.
func (s *Scheduler) beginCall() error {
	if s.lastError != types.Success {
		return types.NewError(s.lastError)
	}
	if !s.attached {
		return s.fail(types.ClientNotAttached)
	}
	return nil
}

// fail latches code as the sticky error and returns it wrapped. It also
// wakes main: a misuse error can be latched by a call that never reaches
// scheduleCore (and so would otherwise never signal a main operation
// already parked in Detach).
func (s *Scheduler) fail(code types.ErrorCode) error {
	s.lastError = code
	s.wakeMain()
	return types.NewError(code)
}

// scheduleCore is the shared body of every scheduling point: it elects
// the next operation to run, wakes it, and parks callerID until it is
// elected again (or discovers it has already completed). callerID's
// operation must exist and currently be the scheduled operation, per the
// contract of every method that calls this.
func (s *Scheduler) scheduleCore(callerID int) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.SchedulingLatency)

	enabled := s.enabledSorted()
	if len(enabled) == 0 {
		if s.allOthersCompleted() {
			s.lastError = types.CompletedAllOperations
		} else {
			s.lastError = types.Failure
			metrics.DeadlocksDetected.Inc()
			s.publish(events.EventDeadlockDetected, "no enabled operations remain")
		}
		s.wakeMain()
		return types.NewError(s.lastError)
	}

	next := s.strategy.Next(enabled, s.scheduledOpID)
	s.scheduledOpID = next
	s.operations[next].Signal.Signal()
	s.observePriorityChanges()
	s.publish(events.EventOperationScheduled, s.strategy.Name())

	callerOp, ok := s.operations[callerID]
	if ok {
		s.waitForTurn(callerOp)
	}
	if s.lastError != types.Success {
		return types.NewError(s.lastError)
	}
	return nil
}

// waitForTurn parks op's host thread until it is the scheduled operation,
// it has completed, or a terminal error has been latched. Every condition
// variable wait in this package goes through here so the predicate is
// applied uniformly.
func (s *Scheduler) waitForTurn(op *types.Operation) {
	for s.scheduledOpID != op.ID && !op.Completed() && s.lastError == types.Success {
		op.Signal.Wait()
	}
}

// wakeMain signals only the main operation's condition variable, per the
// scheduling-point procedure: it is the one blocked in Detach and needs
// to observe a freshly latched terminal error.
func (s *Scheduler) wakeMain() {
	if main, ok := s.operations[types.MainOperationID]; ok {
		main.Signal.Signal()
	}
}

// clearWait removes rid from waiterID's waited-resource set and, if that
// set becomes empty, re-enables the operation.
func (s *Scheduler) clearWait(waiterID, rid int) {
	w, ok := s.operations[waiterID]
	if !ok {
		return
	}
	delete(w.WaitedResources, rid)
	if len(w.WaitedResources) == 0 {
		w.Status = types.OperationEnabled
	}
}

// completionResourceID maps an operation id to the synthetic resource id
// used to model "wait until this operation completes". Negative ids are
// reserved for internal use and never collide with user-created resources
// (which use non-negative ids by convention, as in every bundled scenario).
func completionResourceID(opID int) int {
	return -(opID + 1)
}

// addWaitedCompletion registers op as a waiter on target's synthetic
// completion resource, creating that resource on first use.
func (s *Scheduler) addWaitedCompletion(op *types.Operation, target int) {
	crid := completionResourceID(target)
	res, ok := s.resources[crid]
	if !ok {
		res = types.NewResource(crid)
		s.resources[crid] = res
	}
	op.WaitedResources[crid] = struct{}{}
	res.Waiters[op.ID] = struct{}{}
}

// signalCompletion wakes every operation joined on id's completion.
func (s *Scheduler) signalCompletion(id int) {
	crid := completionResourceID(id)
	res, ok := s.resources[crid]
	if !ok {
		return
	}
	for waiterID := range res.Waiters {
		s.clearWait(waiterID, crid)
	}
	delete(s.resources, crid)
}

// enabledSorted returns the ids of every Enabled operation, ascending, so
// a strategy's choice is a pure function of RNG state, never of map
// iteration order.
func (s *Scheduler) enabledSorted() []int {
	var ids []int
	for id, op := range s.operations {
		if op.Status == types.OperationEnabled {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// allOthersCompleted reports whether every operation except main has
// reached Completed.
func (s *Scheduler) allOthersCompleted() bool {
	for id, op := range s.operations {
		if id == types.MainOperationID {
			continue
		}
		if !op.Completed() {
			return false
		}
	}
	return true
}

// observePriorityChanges increments the priority-switch metric once per
// newly injected PCT priority change.
func (s *Scheduler) observePriorityChanges() {
	pct, ok := s.strategy.(*strategy.PCT)
	if !ok {
		return
	}
	if n := pct.PriorityChanges(); n > s.lastPriorityChanges {
		metrics.PrioritySwitchesTotal.Add(float64(n - s.lastPriorityChanges))
		s.lastPriorityChanges = n
		s.publish(events.EventPriorityChanged, "")
	}
}

// publish emits a best-effort event; the broker drops it if no one is
// subscribed or a subscriber's buffer is full.
func (s *Scheduler) publish(t events.EventType, message string) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(&events.Event{Type: t, Message: message})
}
