package events

import (
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/narrator/constants"
)

// EventQueue is the session inbox: a lock-free MPSC ring with a locked backlog
// behind it
//
// Thread-Safety:
//   - Push: lock-free CAS while the ring has room, multiple producers OK
//   - Consume: single consumer (session update loop)
//   - Published flags prevent reading partial writes
//
// Overflow: a full ring is never overwritten. Pushes divert to the backlog and
// keep diverting until the consumer has drained both, so each producer's events
// stay in order. Past EventBacklogLimit only session mode changes are admitted,
// the rest are counted by Lost
type EventQueue struct {
	events    [constants.EventQueueSize]Event
	published [constants.EventQueueSize]atomic.Bool // True = slot fully written
	head      atomic.Uint64                         // Read index, consumer-owned
	tail      atomic.Uint64                         // Write index

	mu        sync.Mutex
	backlog   []Event
	diverting atomic.Bool // Set while the backlog holds events

	spilled atomic.Uint64
	lost    atomic.Uint64
}

func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push adds event to the ring, or to the backlog when the ring is full
// Safe for concurrent producers, never blocks on the consumer
func (eq *EventQueue) Push(event Event) {
	if event == nil {
		return
	}
	if eq.diverting.Load() {
		eq.divert(event)
		return
	}

	for {
		currentTail := eq.tail.Load()
		if currentTail-eq.head.Load() >= constants.EventQueueSize {
			eq.divert(event)
			return
		}

		if eq.tail.CompareAndSwap(currentTail, currentTail+1) {
			idx := currentTail & constants.EventBufferMask
			eq.events[idx] = event
			eq.published[idx].Store(true) // MUST be after write
			return
		}
	}
}

func (eq *EventQueue) divert(event Event) {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	if len(eq.backlog) >= constants.EventBacklogLimit && event.Kind() != KindSessionModeChanged {
		eq.lost.Add(1)
		return
	}
	eq.backlog = append(eq.backlog, event)
	eq.diverting.Store(true)
	eq.spilled.Add(1)
}

// Consume returns all pending events in FIFO order
// The backlog is handed over only once the ring is empty, so it never
// overtakes ring events pushed before it
func (eq *EventQueue) Consume() []Event {
	currentHead := eq.head.Load()
	available := eq.tail.Load() - currentHead

	var result []Event
	if available > 0 {
		result = make([]Event, 0, available)
		for i := uint64(0); i < available; i++ {
			idx := (currentHead + i) & constants.EventBufferMask
			if !eq.published[idx].Load() {
				break // Writer incomplete
			}
			result = append(result, eq.events[idx])
			eq.events[idx] = nil
			eq.published[idx].Store(false)
		}
		eq.head.Store(currentHead + uint64(len(result)))
	}

	if !eq.diverting.Load() {
		return result
	}

	eq.mu.Lock()
	defer eq.mu.Unlock()
	if eq.tail.Load() != eq.head.Load() {
		return result
	}
	result = append(result, eq.backlog...)
	eq.backlog = nil
	eq.diverting.Store(false)
	return result
}

// Len returns the number of unread events, ring and backlog
func (eq *EventQueue) Len() int {
	n := int(eq.tail.Load() - eq.head.Load())
	eq.mu.Lock()
	n += len(eq.backlog)
	eq.mu.Unlock()
	return n
}

// Spilled returns the running count of events diverted to the backlog
func (eq *EventQueue) Spilled() uint64 { return eq.spilled.Load() }

// Lost returns the running count of events refused by a full backlog
func (eq *EventQueue) Lost() uint64 { return eq.lost.Load() }
