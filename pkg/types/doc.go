/*
Package types defines the data model shared by Loom's scheduler: the
Operation and Resource state machines and the ErrorCode taxonomy every
scheduler method latches into and returns.

# Architecture

	┌─────────────────────── DATA MODEL ────────────────────────┐
	│                                                             │
	│  Operation                      Resource                  │
	│  ┌───────────────────┐          ┌─────────────────┐       │
	│  │ ID                │          │ ID               │       │
	│  │ Status            │◄────────►│ Waiters{op_id}   │       │
	│  │ WaitedResources{}  │          └─────────────────┘       │
	│  │ Signal *sync.Cond  │                                    │
	│  └───────────────────┘                                    │
	│                                                             │
	│  Status: None -> Enabled -> Waiting -> Enabled -> Completed│
	│                                                             │
	└─────────────────────────────────────────────────────────────┘

Operation and Resource reference each other only through integer ids kept
in two maps owned by the scheduler (pkg/scheduler), never through pointers
into one another — removing a waiter is a set operation on both sides, not
a graph walk.

# Error taxonomy

ErrorCode is a flat, stable enumeration (Success, Failure,
CompletedAllOperations, and the misuse codes) with a message table, wrapped
in *Error so it satisfies the standard error interface and works with
errors.Is. Every Scheduler method that can fail returns one of these,
latched as the scheduler's last error until the next Attach.

# Thread Safety

Operation and Resource are plain value holders with no locking of their
own: all mutation is serialized by the scheduler's single global mutex
(see pkg/scheduler). Reading a *Operation.Signal is only ever safe from the
scheduler's own goroutines.
*/
package types
