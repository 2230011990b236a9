package engine

import (
	"testing"
	"time"
)

func newTestScheduler() (*Scheduler, *MockClock) {
	clock := NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewScheduler(clock), clock
}

// TestSchedulerFiresAtDeadline verifies a timer fires only once its deadline passes
func TestSchedulerFiresAtDeadline(t *testing.T) {
	s, clock := newTestScheduler()
	fired := 0
	s.Start("a", 400*time.Millisecond, func() { fired++ })

	clock.Advance(399 * time.Millisecond)
	if n := s.Update(); n != 0 || fired != 0 {
		t.Fatalf("Expected no fire before deadline, got n=%d fired=%d", n, fired)
	}

	clock.Advance(1 * time.Millisecond)
	if n := s.Update(); n != 1 || fired != 1 {
		t.Fatalf("Expected exactly one fire at deadline, got n=%d fired=%d", n, fired)
	}

	if s.Pending("a") {
		t.Error("Expected timer to be removed after firing")
	}

	clock.Advance(time.Second)
	s.Update()
	if fired != 1 {
		t.Errorf("Expected timer to fire once, fired %d times", fired)
	}
}

// TestSchedulerStartReplaces verifies Start cancels the previous instance of the same key
func TestSchedulerStartReplaces(t *testing.T) {
	s, clock := newTestScheduler()
	var order []string

	first := s.Start("wave", time.Second, func() { order = append(order, "first") })
	clock.Advance(800 * time.Millisecond)
	s.Start("wave", time.Second, func() { order = append(order, "second") })

	if first.Active() {
		t.Error("Expected replaced handle to be inactive")
	}

	clock.Advance(300 * time.Millisecond)
	s.Update()
	if len(order) != 0 {
		t.Fatalf("Expected replaced timer not to fire, got %v", order)
	}

	clock.Advance(700 * time.Millisecond)
	s.Update()
	if len(order) != 1 || order[0] != "second" {
		t.Errorf("Expected only second timer to fire, got %v", order)
	}
}

// TestSchedulerStartIfIdle verifies the existing timer wins
func TestSchedulerStartIfIdle(t *testing.T) {
	s, clock := newTestScheduler()
	fired := ""

	_, armed := s.StartIfIdle("debounce", 400*time.Millisecond, func() { fired = "first" })
	if !armed {
		t.Fatal("Expected first StartIfIdle to arm")
	}

	clock.Advance(200 * time.Millisecond)
	h, armed := s.StartIfIdle("debounce", 400*time.Millisecond, func() { fired = "second" })
	if armed {
		t.Error("Expected second StartIfIdle to be absorbed")
	}
	if !h.Active() {
		t.Error("Expected returned handle to reference the pending timer")
	}

	clock.Advance(200 * time.Millisecond)
	s.Update()
	if fired != "first" {
		t.Errorf("Expected original deadline and callback to win, got %q", fired)
	}
}

// TestSchedulerStaleHandle verifies a stale handle cannot cancel a newer instance
func TestSchedulerStaleHandle(t *testing.T) {
	s, clock := newTestScheduler()
	fired := false

	old := s.Start("k", time.Second, func() {})
	s.Start("k", time.Second, func() { fired = true })

	if old.Cancel() {
		t.Error("Expected stale handle cancel to report false")
	}

	clock.Advance(time.Second)
	s.Update()
	if !fired {
		t.Error("Expected newer instance to survive stale cancel")
	}
}

// TestSchedulerOrder verifies timers fire in deadline order within one Update
func TestSchedulerOrder(t *testing.T) {
	s, clock := newTestScheduler()
	var order []string

	s.Start("late", 300*time.Millisecond, func() { order = append(order, "late") })
	s.Start("early", 100*time.Millisecond, func() { order = append(order, "early") })
	s.Start("mid", 200*time.Millisecond, func() { order = append(order, "mid") })

	clock.Advance(time.Second)
	if n := s.Update(); n != 3 {
		t.Fatalf("Expected 3 fires, got %d", n)
	}

	expected := []string{"early", "mid", "late"}
	for i := range expected {
		if order[i] != expected[i] {
			t.Errorf("Position %d: expected %s, got %s", i, expected[i], order[i])
		}
	}
}

// TestSchedulerCallbackCancelsSibling verifies a callback can cancel a timer due in the same pass
func TestSchedulerCallbackCancelsSibling(t *testing.T) {
	s, clock := newTestScheduler()
	siblingFired := false

	s.Start("first", 100*time.Millisecond, func() { s.Cancel("second") })
	s.Start("second", 200*time.Millisecond, func() { siblingFired = true })

	clock.Advance(time.Second)
	s.Update()
	if siblingFired {
		t.Error("Expected cancelled sibling not to fire")
	}
}

// TestSchedulerChain verifies chained steps run sequentially with their own delays
func TestSchedulerChain(t *testing.T) {
	s, clock := newTestScheduler()
	var ran []int

	h := s.Chain("settle",
		Step{Delay: 100 * time.Millisecond, Run: func() bool { ran = append(ran, 1); return true }},
		Step{Delay: 200 * time.Millisecond, Run: func() bool { ran = append(ran, 2); return true }},
		Step{Delay: 500 * time.Millisecond, Run: func() bool { ran = append(ran, 3); return true }},
	)

	clock.Advance(100 * time.Millisecond)
	s.Update()
	if len(ran) != 1 {
		t.Fatalf("Expected first step after 100ms, got %v", ran)
	}
	if !h.Active() {
		t.Error("Expected chain handle to stay active between steps")
	}

	clock.Advance(199 * time.Millisecond)
	s.Update()
	if len(ran) != 1 {
		t.Fatalf("Expected second step to wait its own delay, got %v", ran)
	}

	clock.Advance(1 * time.Millisecond)
	s.Update()
	clock.Advance(500 * time.Millisecond)
	s.Update()

	if len(ran) != 3 || ran[2] != 3 {
		t.Errorf("Expected all three steps in order, got %v", ran)
	}
	if s.Pending("settle") {
		t.Error("Expected chain to be done")
	}
}

// TestSchedulerChainAbort verifies a false step stops the chain
func TestSchedulerChainAbort(t *testing.T) {
	s, clock := newTestScheduler()
	count := 0

	s.Chain("settle",
		Step{Delay: 0, Run: func() bool { count++; return false }},
		Step{Delay: 0, Run: func() bool { count++; return true }},
	)

	clock.Advance(time.Second)
	s.Update()
	if count != 1 {
		t.Errorf("Expected chain to abort after first step, ran %d steps", count)
	}
}

// TestSchedulerChainHandleCancel verifies the chain handle cancels later steps
func TestSchedulerChainHandleCancel(t *testing.T) {
	s, clock := newTestScheduler()
	count := 0

	h := s.Chain("settle",
		Step{Delay: 100 * time.Millisecond, Run: func() bool { count++; return true }},
		Step{Delay: 100 * time.Millisecond, Run: func() bool { count++; return true }},
	)

	clock.Advance(100 * time.Millisecond)
	s.Update()
	if !h.Cancel() {
		t.Fatal("Expected chain handle to cancel pending step")
	}

	clock.Advance(time.Second)
	s.Update()
	if count != 1 {
		t.Errorf("Expected only first step, ran %d", count)
	}
}

// TestSchedulerZeroDelayRearm verifies zero-delay re-arm fires in the same Update
func TestSchedulerZeroDelayRearm(t *testing.T) {
	s, clock := newTestScheduler()
	count := 0

	s.Start("k", 10*time.Millisecond, func() {
		count++
		s.Start("k2", 0, func() { count++ })
	})

	clock.Advance(10 * time.Millisecond)
	if n := s.Update(); n != 2 {
		t.Errorf("Expected 2 fires, got %d", n)
	}
	if count != 2 {
		t.Errorf("Expected both callbacks, got %d", count)
	}
}

// TestSchedulerRemaining verifies remaining time reporting
func TestSchedulerRemaining(t *testing.T) {
	s, clock := newTestScheduler()
	s.Start("k", time.Second, func() {})
	clock.Advance(250 * time.Millisecond)

	left, ok := s.Remaining("k")
	if !ok || left != 750*time.Millisecond {
		t.Errorf("Expected 750ms remaining, got %v (ok=%v)", left, ok)
	}

	s.CancelAll()
	if _, ok := s.Remaining("k"); ok {
		t.Error("Expected no remaining after CancelAll")
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty scheduler, got %d", s.Len())
	}
}
