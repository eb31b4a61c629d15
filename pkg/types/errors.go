package types

import "fmt"

// ErrorCode is a stable, flat enumeration of the scheduler's terminal and
// misuse conditions. It mirrors the category/message table a Coyote-style
// scheduler exposes through std::error_code: a fixed integer plus a human
// message, so callers can switch on the code without string matching.
type ErrorCode int

const (
	// Success means the call completed normally.
	Success ErrorCode = iota

	// Failure is the terminal condition for a deadlocked iteration: the
	// enabled set became empty while uncompleted operations remain.
	Failure

	// CompletedAllOperations is the terminal success condition: every
	// registered operation reached Completed.
	CompletedAllOperations

	// ExplicitMainOperationStart is returned when the caller tries to
	// StartOperation(0); the main operation is started only by Attach.
	ExplicitMainOperationStart

	// ExplicitMainOperationComplete is returned when the caller tries to
	// CompleteOperation(0); the main operation completes only by Detach.
	ExplicitMainOperationComplete

	// DuplicateOperationStart is returned when StartOperation is called
	// twice for the same operation id.
	DuplicateOperationStart

	// DuplicateResource is returned when CreateOperation or
	// CreateResource is called with an id that already exists.
	DuplicateResource

	// NotExistingResource is returned when an operation or resource id is
	// referenced before it has been created.
	NotExistingResource

	// ClientAttached is returned when Attach is called while already
	// attached to an iteration.
	ClientAttached

	// ClientNotAttached is returned when any method other than Attach is
	// called before a successful Attach.
	ClientNotAttached
)

// messages holds the code-to-text table. Keep in sync with ErrorCode; see
// original_source/src/scheduler/errors/error_code.cc for the reference
// wording this table is ported from.
var messages = map[ErrorCode]string{
	Success:                       "success",
	Failure:                       "failure",
	CompletedAllOperations:        "completed all operations",
	ExplicitMainOperationStart:    "not allowed to explicitly start main operation '0'",
	ExplicitMainOperationComplete: "not allowed to explicitly complete main operation '0'",
	DuplicateOperationStart:       "operation has already started",
	DuplicateResource:             "resource already exists",
	NotExistingResource:           "resource does not exist",
	ClientAttached:                "client is already attached to the scheduler",
	ClientNotAttached:             "client is not attached to the scheduler",
}

// String returns the human message for the code, or "(unknown error)" for
// an out-of-range value.
func (c ErrorCode) String() string {
	if msg, ok := messages[c]; ok {
		return msg
	}
	return "(unknown error)"
}

// Error is the concrete error type every Scheduler method returns. A nil
// *Error (returned as a plain nil error) means Success; any non-nil value
// wraps exactly one ErrorCode.
type Error struct {
	Code ErrorCode
}

// NewError wraps code in an *Error, or returns nil when code is Success so
// callers can write `if err := sched.Foo(); err != nil`.
func NewError(code ErrorCode) error {
	if code == Success {
		return nil
	}
	return &Error{Code: code}
}

func (e *Error) Error() string {
	return fmt.Sprintf("scheduler: %s", e.Code.String())
}

// Is lets errors.Is(err, SomeSentinelError) work against a bare ErrorCode
// wrapped via errors.Is(err, types.NewError(types.Failure)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeOf extracts the ErrorCode from err, returning Success if err is nil
// and Failure if err is some other error type not produced by this package.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	if se, ok := err.(*Error); ok {
		return se.Code
	}
	return Failure
}
