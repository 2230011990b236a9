// Package combat groups bursts of combat effects into per-side wave summaries
package combat

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lixenwraith/narrator/config"
	"github.com/lixenwraith/narrator/constants"
	"github.com/lixenwraith/narrator/engine"
	"github.com/lixenwraith/narrator/events"
	"github.com/lixenwraith/narrator/narration"
	"github.com/lixenwraith/narrator/status"
)

// FrozenText is the urgent alert for an opponent freeze
const FrozenText = "Frozen"

// Mode selects how accepted effects are narrated
type Mode uint8

const (
	ModeBatched Mode = iota
	ModeIndividual
)

func (m Mode) String() string {
	if m == ModeIndividual {
		return "individual"
	}
	return "batched"
}

// Result reports what HandleEffect did
type Result uint8

const (
	ResultIgnored     Result = iota // Kind outside the allow-list
	ResultAccumulated               // Added to the current wave
	ResultSpoken                    // Spoken individually
	ResultAlerted                   // Sent as an urgent alert
	ResultSilenced                  // Individual line suppressed or rejected by the speaker
)

// Speaker receives wave summaries and individual effects, satisfied by *narration.Coordinator
// Anything but OutcomeSpoken means the text was not heard
type Speaker interface {
	Announce(text string, interrupt bool) narration.Outcome
}

// Announcer receives urgent alerts, satisfied by *narration.Coordinator
type Announcer interface {
	Submit(req narration.Request) narration.Outcome
}

// Aggregator is Idle until the first accepted effect, Accumulating until the
// inactivity timer fires or Flush is called
type Aggregator struct {
	sched     *engine.Scheduler
	speaker   Speaker
	announcer Announcer
	timeout   time.Duration
	mode      Mode

	waves [2]WaveData

	span trace.Span

	logger *slog.Logger
	tracer trace.Tracer

	emitted *atomic.Int64
	ignored *atomic.Int64
}

// NewAggregator creates an idle aggregator in batched mode
func NewAggregator(sched *engine.Scheduler, speaker Speaker, announcer Announcer, timeout time.Duration, opts narration.Options) (*Aggregator, error) {
	if sched == nil || speaker == nil || announcer == nil {
		return nil, fmt.Errorf("combat aggregator: missing collaborator: %w", config.ErrInvalid)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("combat aggregator: timeout %v: %w", timeout, config.ErrInvalid)
	}
	opts = opts.WithDefaults()

	return &Aggregator{
		sched:     sched,
		speaker:   speaker,
		announcer: announcer,
		timeout:   timeout,
		logger:    opts.Logger,
		tracer:    opts.Tracer,
		emitted:   opts.Metrics.Counter(status.WavesEmitted),
		ignored:   opts.Metrics.Counter(status.EffectsIgnored),
	}, nil
}

// HandleEffect filters, then accumulates or speaks one effect
func (a *Aggregator) HandleEffect(e events.CombatEffect) Result {
	f, ok := Lookup(e.Effect)
	if !ok || int(e.Side) >= len(a.waves) {
		a.ignored.Add(1)
		return ResultIgnored
	}

	if e.Side == events.SideOpponent && e.Effect == events.EffectFreeze {
		a.announcer.Submit(narration.Request{Text: FrozenText, Interrupt: true, Priority: narration.Urgent})
		return ResultAlerted
	}

	if a.mode == ModeIndividual {
		if a.speaker.Announce(Individual(e), false) != narration.OutcomeSpoken {
			return ResultSilenced
		}
		return ResultSpoken
	}

	if a.span == nil {
		_, a.span = a.tracer.Start(context.Background(), "combat.wave")
	}

	w := &a.waves[e.Side]
	f.Accumulate(w, e)
	if e.Crit {
		w.HadCrit = true
	}
	w.Effects++

	a.sched.Start(constants.TimerWave, a.timeout, func() { a.Flush() })
	return ResultAccumulated
}

// Flush speaks one summary per side with activity and returns to Idle
// A summary the speaker refuses (modal focus) is discarded, not deferred
// Returns the number of summaries spoken
func (a *Aggregator) Flush() int {
	a.sched.Cancel(constants.TimerWave)

	n := 0
	for i := range a.waves {
		side := events.Side(i)
		w := &a.waves[i]
		if !w.Active() {
			continue
		}
		text := w.Summary(side)
		if out := a.speaker.Announce(text, false); out != narration.OutcomeSpoken {
			a.logger.Debug("wave summary discarded", "side", side.String(), "outcome", out.String())
			continue
		}
		a.emitted.Add(1)
		n++

		if a.span != nil {
			a.span.SetAttributes(
				attribute.Int(side.String()+".damage", w.TotalDamage),
				attribute.Int(side.String()+".effects", w.Effects),
			)
		}
		a.logger.Debug("wave summary", "side", side.String(), "text", text)
	}

	a.endSpan(n)
	a.clear()
	return n
}

// SetMode switches narration mode, flushing any in-flight wave first
func (a *Aggregator) SetMode(m Mode) {
	if m == a.mode {
		return
	}
	a.Flush()
	a.mode = m
	a.logger.Debug("combat narration mode", "mode", m.String())
}

// Mode returns the current narration mode
func (a *Aggregator) Mode() Mode {
	return a.mode
}

// Reset discards the current wave without speaking
func (a *Aggregator) Reset() {
	a.sched.Cancel(constants.TimerWave)
	a.endSpan(0)
	a.clear()
}

// Accumulating reports whether a wave is in flight
func (a *Aggregator) Accumulating() bool {
	return a.sched.Pending(constants.TimerWave)
}

// Wave returns a copy of the in-flight wave for side
func (a *Aggregator) Wave(side events.Side) WaveData {
	if int(side) >= len(a.waves) {
		return WaveData{}
	}
	return a.waves[side]
}

func (a *Aggregator) clear() {
	for i := range a.waves {
		a.waves[i].Reset()
	}
}

func (a *Aggregator) endSpan(summaries int) {
	if a.span == nil {
		return
	}
	a.span.SetAttributes(attribute.Int("combat.summaries", summaries))
	a.span.End()
	a.span = nil
}
