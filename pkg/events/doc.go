/*
Package events is a small, non-blocking pub/sub broker for observing a
running exploration iteration from the outside: a CLI progress bar, a
test harness, or a report writer can subscribe without the scheduler
knowing or caring that anyone is listening.

Publish is called from inside the scheduler's own critical section
(pkg/scheduler), so it must never block: events are dropped, not queued
indefinitely, if the internal buffer or a subscriber's buffer is full.

# Usage

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for event := range sub {
			switch event.Type {
			case events.EventDeadlockDetected:
				fmt.Println("deadlock:", event.Message)
			case events.EventPriorityChanged:
				fmt.Println("priority change injected")
			}
		}
	}()
*/
package events
