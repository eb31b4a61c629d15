package events

import (
	"sync"
	"time"
)

// EventType identifies the kind of scheduler notification carried by an
// Event.
type EventType string

const (
	// EventOperationScheduled fires every time the scheduler elects an
	// operation to run next.
	EventOperationScheduled EventType = "operation.scheduled"

	// EventPriorityChanged fires when the PCT strategy injects a priority
	// change at a scheduling point.
	EventPriorityChanged EventType = "priority.changed"

	// EventDeadlockDetected fires once, when a scheduling point finds no
	// enabled operation while some operation is still waiting.
	EventDeadlockDetected EventType = "deadlock.detected"

	// EventIterationAttached fires when Scheduler.Attach begins a new
	// iteration.
	EventIterationAttached EventType = "iteration.attached"

	// EventIterationDetached fires when Scheduler.Detach concludes one.
	EventIterationDetached EventType = "iteration.detached"
)

// Event is a single scheduler notification.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Message   string
	Metadata  map[string]string
}

// Subscriber is a channel that receives events.
type Subscriber chan *Event

// Broker fans scheduler events out to any number of subscribers without
// ever blocking the scheduler's own goroutine: Publish enqueues onto a
// buffered internal channel, and a single broadcast loop delivers to each
// subscriber's own buffered channel, skipping any that are full.
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
	once        sync.Once
}

// NewBroker creates a broker and starts its broadcast loop.
func NewBroker() *Broker {
	b := &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *Event, 256),
		stopCh:      make(chan struct{}),
	}
	go b.run()
	return b
}

// Stop shuts the broadcast loop down. Safe to call more than once.
func (b *Broker) Stop() {
	b.once.Do(func() { close(b.stopCh) })
}

// Subscribe creates a new subscription.
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 64)
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes and closes a subscription.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[sub]; ok {
		delete(b.subscribers, sub)
		close(sub)
	}
}

// Publish enqueues event for delivery. Never blocks the caller beyond the
// internal buffer: if the broker has been stopped, the event is dropped.
func (b *Broker) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	default:
		// Internal buffer full; drop rather than block the scheduler.
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber buffer full, skip rather than stall the loop.
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
