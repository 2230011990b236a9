package events

import "sync"

// Handler receives domain events, one method per kind
// Implementations decide whether to act synchronously or enqueue
type Handler interface {
	OnStateTransition(e StateTransition)
	OnCombatEffect(e CombatEffect)
	OnHealthChanged(e HealthChanged)
	OnContentRevealed(e ContentRevealed)
	OnSessionModeChanged(e SessionModeChanged)
	OnUserActionCompleted(e UserActionCompleted)
}

// Dispatch routes e to the matching Handler method
// Returns false for nil or unrecognized events
func Dispatch(h Handler, e Event) bool {
	switch ev := e.(type) {
	case StateTransition:
		h.OnStateTransition(ev)
	case CombatEffect:
		h.OnCombatEffect(ev)
	case HealthChanged:
		h.OnHealthChanged(ev)
	case ContentRevealed:
		h.OnContentRevealed(ev)
	case SessionModeChanged:
		h.OnSessionModeChanged(ev)
	case UserActionCompleted:
		h.OnUserActionCompleted(ev)
	default:
		return false
	}
	return true
}

// Bus is the subscription surface a host exposes for its event feed
type Bus interface {
	// Subscribe registers h and returns a function that removes it
	Subscribe(h Handler) (unsubscribe func())
}

// Router is an in-process Bus
//
// Architecture:
//   - Publish may be called from any goroutine
//   - Handlers are invoked synchronously in registration order
//   - Handlers that need single-threaded processing push onto an EventQueue
type Router struct {
	mu       sync.RWMutex
	handlers map[uint64]Handler
	order    []uint64
	nextID   uint64
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{handlers: make(map[uint64]Handler)}
}

// Subscribe adds h; the returned function is idempotent
func (r *Router) Subscribe(h Handler) func() {
	if h == nil {
		return func() {}
	}

	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.handlers[id] = h
	r.order = append(r.order, id)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *Router) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.handlers, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Publish delivers e to every subscribed handler
// Returns the number of handlers reached
func (r *Router) Publish(e Event) int {
	r.mu.RLock()
	targets := make([]Handler, 0, len(r.order))
	for _, id := range r.order {
		targets = append(targets, r.handlers[id])
	}
	r.mu.RUnlock()

	n := 0
	for _, h := range targets {
		if Dispatch(h, e) {
			n++
		}
	}
	return n
}

// HandlerCount returns the number of subscribed handlers
func (r *Router) HandlerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Enqueuer is a Handler that pushes every event onto a queue
// Used to hand events from producer goroutines to the single consumer
type Enqueuer struct {
	Queue *EventQueue
}

func (q Enqueuer) OnStateTransition(e StateTransition)         { q.Queue.Push(e) }
func (q Enqueuer) OnCombatEffect(e CombatEffect)               { q.Queue.Push(e) }
func (q Enqueuer) OnHealthChanged(e HealthChanged)             { q.Queue.Push(e) }
func (q Enqueuer) OnContentRevealed(e ContentRevealed)         { q.Queue.Push(e) }
func (q Enqueuer) OnSessionModeChanged(e SessionModeChanged)   { q.Queue.Push(e) }
func (q Enqueuer) OnUserActionCompleted(e UserActionCompleted) { q.Queue.Push(e) }
