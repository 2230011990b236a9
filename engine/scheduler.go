package engine

import (
	"sort"
	"time"
)

// maxFirePasses bounds zero-delay re-arming inside a single Update
const maxFirePasses = 16

// Scheduler is a single-threaded timer wheel keyed by logical timer name
//
// Architecture:
//   - One live instance per key (single-flight)
//   - Deadlines are evaluated only inside Update, which the owner calls from its loop
//   - Callbacks run on the caller of Update and may start, replace or cancel timers
//   - Not safe for concurrent use; cross-goroutine input goes through events.EventQueue
type Scheduler struct {
	clock  Clock
	timers map[string]*timer
	nextID uint64
}

type timer struct {
	id       uint64
	key      string
	deadline time.Time
	fn       func()
}

// Handle identifies one armed instance of a logical timer
// A stale handle (instance already fired or replaced) cancels nothing
type Handle struct {
	s   *Scheduler
	key string
	id  uint64
}

// Step is one stage of a chained delay
// Run returns false to abort the remaining steps
type Step struct {
	Delay time.Duration
	Run   func() bool
}

// NewScheduler creates a scheduler reading deadlines from clock
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{
		clock:  clock,
		timers: make(map[string]*timer),
	}
}

// Now returns the scheduler clock reading
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Start arms key to fire fn after d, cancelling any prior instance of key
func (s *Scheduler) Start(key string, d time.Duration, fn func()) Handle {
	s.nextID++
	return s.arm(key, s.nextID, d, fn)
}

// StartIfIdle arms key only when no instance is pending
// Returns the pending handle and false when the existing timer wins
func (s *Scheduler) StartIfIdle(key string, d time.Duration, fn func()) (Handle, bool) {
	if t, ok := s.timers[key]; ok {
		return Handle{s: s, key: key, id: t.id}, false
	}
	return s.Start(key, d, fn), true
}

// Chain runs steps sequentially under one key, each after its own delay
// Starting a chain replaces any pending instance of key, including another chain
func (s *Scheduler) Chain(key string, steps ...Step) Handle {
	if len(steps) == 0 {
		s.Cancel(key)
		return Handle{}
	}

	s.nextID++
	id := s.nextID

	var run func(i int)
	run = func(i int) {
		if !steps[i].Run() || i+1 >= len(steps) {
			return
		}
		s.arm(key, id, steps[i+1].Delay, func() { run(i + 1) })
	}
	return s.arm(key, id, steps[0].Delay, func() { run(0) })
}

func (s *Scheduler) arm(key string, id uint64, d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	s.timers[key] = &timer{
		id:       id,
		key:      key,
		deadline: s.clock.Now().Add(d),
		fn:       fn,
	}
	return Handle{s: s, key: key, id: id}
}

// Cancel removes the pending instance of key, returns false if none
func (s *Scheduler) Cancel(key string) bool {
	if _, ok := s.timers[key]; !ok {
		return false
	}
	delete(s.timers, key)
	return true
}

// CancelAll drops every pending timer
func (s *Scheduler) CancelAll() {
	clear(s.timers)
}

// Pending reports whether key has an armed instance
func (s *Scheduler) Pending(key string) bool {
	_, ok := s.timers[key]
	return ok
}

// Remaining returns time left until key fires
func (s *Scheduler) Remaining(key string) (time.Duration, bool) {
	t, ok := s.timers[key]
	if !ok {
		return 0, false
	}
	left := t.deadline.Sub(s.clock.Now())
	if left < 0 {
		left = 0
	}
	return left, true
}

// Len returns the number of armed timers
func (s *Scheduler) Len() int {
	return len(s.timers)
}

// Update fires every timer whose deadline has passed, earliest deadline first
// Timers re-armed with zero delay by a callback fire in a following pass
// Returns the number of callbacks run
func (s *Scheduler) Update() int {
	now := s.clock.Now()
	fired := 0

	for pass := 0; pass < maxFirePasses; pass++ {
		due := s.collectDue(now)
		if len(due) == 0 {
			break
		}
		for _, t := range due {
			// An earlier callback in this pass may have cancelled or replaced it
			if cur, ok := s.timers[t.key]; !ok || cur != t {
				continue
			}
			delete(s.timers, t.key)
			t.fn()
			fired++
		}
	}
	return fired
}

func (s *Scheduler) collectDue(now time.Time) []*timer {
	var due []*timer
	for _, t := range s.timers {
		if !t.deadline.After(now) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].id < due[j].id
		}
		return due[i].deadline.Before(due[j].deadline)
	})
	return due
}

// Cancel stops this instance if it is still the live one for its key
func (h Handle) Cancel() bool {
	if !h.Active() {
		return false
	}
	delete(h.s.timers, h.key)
	return true
}

// Active reports whether this instance is still armed
func (h Handle) Active() bool {
	if h.s == nil {
		return false
	}
	t, ok := h.s.timers[h.key]
	return ok && t.id == h.id
}
