// Package health raises urgent alerts when an actor's health crosses the
// low or critical ratio, at most once per threshold per encounter
package health

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/lixenwraith/narrator/config"
	"github.com/lixenwraith/narrator/constants"
	"github.com/lixenwraith/narrator/events"
	"github.com/lixenwraith/narrator/narration"
	"github.com/lixenwraith/narrator/status"
)

// Alert texts
const (
	CriticalText = "Critical health!"
	LowText      = "Low health!"
	EnemyPrefix  = "Enemy "
)

// Announcer accepts urgent alerts, satisfied by *narration.Coordinator
type Announcer interface {
	Submit(req narration.Request) narration.Outcome
}

// Snapshot is the health reading of one actor
type Snapshot struct {
	Health    int
	MaxHealth int
	Shield    int
}

// Ratio returns Health/MaxHealth, ok is false when max health is unknown
func (s Snapshot) Ratio() (float64, bool) {
	if s.MaxHealth <= 0 {
		return 0, false
	}
	return float64(s.Health) / float64(s.MaxHealth), true
}

// Thresholds are inclusive ratios of max health
type Thresholds struct {
	Low      float64
	Critical float64
}

// DefaultThresholds returns 25% and 10%
func DefaultThresholds() Thresholds {
	return Thresholds{Low: constants.LowHealthRatio, Critical: constants.CriticalHealthRatio}
}

type sideState struct {
	last          Snapshot
	known         bool
	lowAnnounced  bool
	critAnnounced bool
}

// Watcher tracks both actors independently
// Flags are sticky: recovering above a threshold does not re-arm it
type Watcher struct {
	announcer  Announcer
	thresholds Thresholds
	sides      [2]sideState

	logger *slog.Logger
	alerts *atomic.Int64
}

// NewWatcher creates a watcher that speaks through announcer
func NewWatcher(announcer Announcer, th Thresholds, opts narration.Options) (*Watcher, error) {
	if announcer == nil {
		return nil, fmt.Errorf("health watcher: nil announcer: %w", config.ErrInvalid)
	}
	if th.Critical <= 0 || th.Low >= 1 || th.Critical > th.Low {
		return nil, fmt.Errorf("health watcher: thresholds %+v: %w", th, config.ErrInvalid)
	}
	opts = opts.WithDefaults()

	return &Watcher{
		announcer:  announcer,
		thresholds: th,
		logger:     opts.Logger,
		alerts:     opts.Metrics.Counter(status.HealthAlerts),
	}, nil
}

// Update records a reading and checks thresholds when health changed
// Returns the alert text spoken, or empty
func (w *Watcher) Update(side events.Side, snap Snapshot) string {
	st := w.state(side)
	if st == nil {
		return ""
	}
	ratio, ok := snap.Ratio()
	if !ok {
		return ""
	}
	if st.known && st.last == snap {
		return ""
	}
	st.last = snap
	st.known = true
	return w.Check(side, ratio)
}

// Check evaluates one ratio for side and speaks at most one alert
// Critical sets both flags so a later low reading stays silent
func (w *Watcher) Check(side events.Side, ratio float64) string {
	st := w.state(side)
	if st == nil || math.IsNaN(ratio) || ratio < 0 {
		return ""
	}

	var text string
	switch {
	case ratio <= w.thresholds.Critical:
		if st.critAnnounced {
			return ""
		}
		st.critAnnounced = true
		st.lowAnnounced = true
		text = CriticalText
	case ratio <= w.thresholds.Low:
		if st.lowAnnounced {
			return ""
		}
		st.lowAnnounced = true
		text = LowText
	default:
		return ""
	}

	text = alertText(side, text)
	w.alerts.Add(1)
	outcome := w.announcer.Submit(narration.Request{Text: text, Interrupt: true, Priority: narration.Urgent})
	w.logger.Info("health alert", "side", side.String(), "ratio", ratio, "text", text, "outcome", outcome.String())
	return text
}

// Reset clears readings and flags for both actors, called at encounter start
func (w *Watcher) Reset() {
	w.sides = [2]sideState{}
}

// Last returns the most recent reading for side
func (w *Watcher) Last(side events.Side) (Snapshot, bool) {
	st := w.state(side)
	if st == nil {
		return Snapshot{}, false
	}
	return st.last, st.known
}

// Announced reports the sticky flags for side
func (w *Watcher) Announced(side events.Side) (low, critical bool) {
	st := w.state(side)
	if st == nil {
		return false, false
	}
	return st.lowAnnounced, st.critAnnounced
}

func (w *Watcher) state(side events.Side) *sideState {
	if int(side) >= len(w.sides) {
		return nil
	}
	return &w.sides[side]
}

// alertText prefixes opponent alerts, lowering the first letter of the base text
func alertText(side events.Side, base string) string {
	if side != events.SideOpponent {
		return base
	}
	b := []byte(base)
	if len(b) > 0 && b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return EnemyPrefix + string(b)
}
