/*
Package scheduler implements Loom's controlled-concurrency interleaving
engine: a single-process cooperative scheduler that serialises every
participating goroutine at well-defined scheduling points so a test
driver can explore different legal interleavings of the same program
across repeated runs.

# Architecture

Exactly one registered operation ever runs unblocked at a time. Every
other operation is parked on its own condition variable, waiting for the
scheduler to elect it:

	┌─────────────────────── SCHEDULING POINT ──────────────────────┐
	│                                                                 │
	│  caller yields (ScheduleNextOperation / WaitResource / ...)    │
	│            │                                                   │
	│            ▼                                                   │
	│   enabled := {op | op.Status == Enabled}                       │
	│            │                                                   │
	│     empty? ──yes──► all others Completed? ──yes──► success     │
	│            │                         │                         │
	│            no                        no──► deadlock (Failure)  │
	│            │                                                   │
	│            ▼                                                   │
	│   next := strategy.Next(enabled, current)                      │
	│   scheduledOpID = next; next.Signal.Signal()                    │
	│            │                                                   │
	│            ▼                                                   │
	│   caller waits on its own Signal until scheduledOpID==caller   │
	│   (or caller.Completed(), or a terminal error was latched)      │
	└─────────────────────────────────────────────────────────────────┘

A single *sync.Mutex owned by the Scheduler backs every operation's
condition variable, so the whole state machine — operation status,
resource waiter sets, scheduledOpID, the latched error — is updated and
observed atomically with no separate locking discipline to get wrong.

# Lifecycle

Attach begins an iteration: it resets all state, installs the
configured strategy (pkg/strategy, chosen via pkg/settings), and creates
the reserved main operation (id 0) already Enabled and scheduled.
CreateOperation registers a new operation as Enabled immediately, since
it is guaranteed to eventually call StartOperation; a worker goroutine
then calls StartOperation from its own goroutine, which blocks until
elected, exactly like any other scheduling point, and is a no-op wait if
the operation was already elected before that goroutine got around to
calling it. Detach, called from main, blocks until every other operation
has completed (modelled internally as a join on each pending operation's
synthetic completion resource) and returns the iteration's terminal
outcome.

# Errors are latched

The first non-Success error encountered during an iteration is recorded
and returned, unmodified, by every subsequent call — until the next
Attach. See pkg/types for the full code taxonomy. Detach is the one
exception: it translates a latched CompletedAllOperations into a nil
(successful) return, since that is the expected way for a clean
iteration to end.
*/
package scheduler
