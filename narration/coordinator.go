package narration

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/narrator/config"
	"github.com/lixenwraith/narrator/constants"
	"github.com/lixenwraith/narrator/engine"
	"github.com/lixenwraith/narrator/status"
)

// Priority selects the coordinator policy for a request
type Priority uint8

const (
	// Normal requests are debounced and throttled
	Normal Priority = iota
	// Urgent requests interrupt, cancel the pending debounce and bypass the throttle
	Urgent
)

// Request is one explicit announcement
type Request struct {
	Text      string
	Interrupt bool
	Priority  Priority
}

// Outcome reports what the coordinator did with a request
type Outcome uint8

const (
	OutcomeSpoken     Outcome = iota // Handed to the sink now
	OutcomeScheduled                 // Debounce timer armed
	OutcomeAbsorbed                  // Folded into the already armed timer
	OutcomeThrottled                 // Inside the throttle window, dropped
	OutcomeSuppressed                // Modal focus active, dropped
	OutcomeEmpty                     // Nothing to say
	OutcomeDropped                   // Sink rejected the text (duplicate or backend fault)
)

var outcomeNames = [...]string{
	OutcomeSpoken:     "spoken",
	OutcomeScheduled:  "scheduled",
	OutcomeAbsorbed:   "absorbed",
	OutcomeThrottled:  "throttled",
	OutcomeSuppressed: "suppressed",
	OutcomeEmpty:      "empty",
	OutcomeDropped:    "dropped",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", o)
}

// Timing holds the coordinator windows
type Timing struct {
	Debounce time.Duration
	Throttle time.Duration
}

// DefaultTiming returns the stock debounce and throttle windows
func DefaultTiming() Timing {
	return Timing{Debounce: constants.DebounceDelay, Throttle: constants.ThrottleInterval}
}

// Hooks are the coordinator's view of the current state
// Refresh re-reads the snapshot, Compose returns the summary to speak
type Hooks struct {
	Refresh func()
	Compose func() string
}

// Coordinator decides when non-urgent state summaries are spoken
//
// State:
//   - at most one debounce timer, arming while armed is absorbed
//   - throttle clock stamped by every spoken announcement, urgent included
//   - optional carried text, latest Submit wins
//   - modal focus flag suppressing all requests
//
// All methods run on the session executor
type Coordinator struct {
	sched  *engine.Scheduler
	sink   *Sink
	timing Timing
	hooks  Hooks

	lastSpoken time.Time
	hasSpoken  bool

	carried    string
	hasCarried bool

	modal bool

	logger *slog.Logger

	throttled  *atomic.Int64
	absorbed   *atomic.Int64
	suppressed *atomic.Int64
	scheduled  *atomic.Int64
	urgent     *atomic.Int64
	modalFlag  *atomic.Bool
}

// NewCoordinator wires a coordinator to the shared scheduler and sink
func NewCoordinator(sched *engine.Scheduler, sink *Sink, timing Timing, hooks Hooks, opts Options) (*Coordinator, error) {
	if sched == nil || sink == nil {
		return nil, fmt.Errorf("coordinator: nil scheduler or sink: %w", config.ErrInvalid)
	}
	if timing.Debounce < 0 || timing.Throttle < 0 {
		return nil, fmt.Errorf("coordinator: negative timing %+v: %w", timing, config.ErrInvalid)
	}
	if hooks.Refresh == nil {
		hooks.Refresh = func() {}
	}
	if hooks.Compose == nil {
		hooks.Compose = func() string { return "" }
	}
	opts = opts.WithDefaults()

	return &Coordinator{
		sched:      sched,
		sink:       sink,
		timing:     timing,
		hooks:      hooks,
		logger:     opts.Logger,
		throttled:  opts.Metrics.Counter(status.Throttled),
		absorbed:   opts.Metrics.Counter(status.Absorbed),
		suppressed: opts.Metrics.Counter(status.Suppressed),
		scheduled:  opts.Metrics.Counter(status.Scheduled),
		urgent:     opts.Metrics.Counter(status.Urgent),
		modalFlag:  opts.Metrics.Flag(status.ModalFocus),
	}, nil
}

// RequestAnnouncement asks for the current-state summary to be spoken
// Urgent speaks now; normal goes through throttle and debounce
func (c *Coordinator) RequestAnnouncement(urgent bool) Outcome {
	if c.modal {
		c.suppressed.Add(1)
		return OutcomeSuppressed
	}

	if urgent {
		c.cancelPending()
		c.hooks.Refresh()
		return c.speakUrgent(c.hooks.Compose(), true)
	}

	return c.schedule()
}

// Submit handles an explicit request with the same policy as RequestAnnouncement
// Normal text rides the pending timer, the latest text wins
func (c *Coordinator) Submit(req Request) Outcome {
	if c.modal {
		c.suppressed.Add(1)
		return OutcomeSuppressed
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return OutcomeEmpty
	}

	if req.Priority == Urgent {
		c.cancelPending()
		return c.speakUrgent(text, true)
	}

	if c.inThrottle() {
		c.throttled.Add(1)
		return OutcomeThrottled
	}
	c.carried = text
	c.hasCarried = true
	return c.arm(req.Interrupt)
}

// Announce speaks text now, outside the debounce and throttle windows
// Combat output uses it; modal focus still suppresses, and nothing is deferred
func (c *Coordinator) Announce(text string, interrupt bool) Outcome {
	if c.modal {
		c.suppressed.Add(1)
		return OutcomeSuppressed
	}
	if strings.TrimSpace(text) == "" {
		return OutcomeEmpty
	}
	if !c.sink.Say(text, interrupt) {
		return OutcomeDropped
	}
	return OutcomeSpoken
}

// SetModalFocus enables or disables suppression while a host modal is focused
func (c *Coordinator) SetModalFocus(focused bool) {
	if c.modal == focused {
		return
	}
	c.modal = focused
	c.modalFlag.Store(focused)
	c.logger.Debug("modal focus changed", "focused", focused)
}

// ModalFocus reports whether requests are currently suppressed
func (c *Coordinator) ModalFocus() bool {
	return c.modal
}

// Pending reports whether a debounce timer is armed
func (c *Coordinator) Pending() bool {
	return c.sched.Pending(constants.TimerDebounce)
}

// LastSpoken returns the throttle clock stamp
func (c *Coordinator) LastSpoken() (time.Time, bool) {
	return c.lastSpoken, c.hasSpoken
}

// Stamp records an announcement spoken by another path as throttle-relevant
func (c *Coordinator) Stamp() {
	c.lastSpoken = c.sched.Now()
	c.hasSpoken = true
}

// Cancel drops any pending announcement
func (c *Coordinator) Cancel() {
	c.cancelPending()
}

func (c *Coordinator) schedule() Outcome {
	if c.inThrottle() {
		c.throttled.Add(1)
		c.logger.Debug("announcement throttled")
		return OutcomeThrottled
	}
	return c.arm(false)
}

func (c *Coordinator) arm(interrupt bool) Outcome {
	_, armed := c.sched.StartIfIdle(constants.TimerDebounce, c.timing.Debounce, func() {
		c.fire(interrupt)
	})
	if !armed {
		c.absorbed.Add(1)
		return OutcomeAbsorbed
	}
	c.scheduled.Add(1)
	return OutcomeScheduled
}

// fire runs when the debounce timer expires
func (c *Coordinator) fire(interrupt bool) {
	text, carried := c.carried, c.hasCarried
	c.carried, c.hasCarried = "", false

	if c.modal {
		c.suppressed.Add(1)
		return
	}
	// An urgent announcement may have stamped the clock since arming
	if c.inThrottle() {
		c.throttled.Add(1)
		return
	}

	c.hooks.Refresh()
	if !carried {
		text = c.hooks.Compose()
	}
	if c.sink.Say(text, interrupt) {
		c.Stamp()
	}
}

func (c *Coordinator) speakUrgent(text string, interrupt bool) Outcome {
	if strings.TrimSpace(text) == "" {
		return OutcomeEmpty
	}
	c.urgent.Add(1)
	if !c.sink.Say(text, interrupt) {
		return OutcomeDropped
	}
	c.Stamp()
	return OutcomeSpoken
}

func (c *Coordinator) cancelPending() {
	c.sched.Cancel(constants.TimerDebounce)
	c.carried, c.hasCarried = "", false
}

func (c *Coordinator) inThrottle() bool {
	return c.hasSpoken && c.sched.Now().Sub(c.lastSpoken) < c.timing.Throttle
}
