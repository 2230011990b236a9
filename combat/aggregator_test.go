package combat

import (
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/lixenwraith/narrator/constants"
	"github.com/lixenwraith/narrator/engine"
	"github.com/lixenwraith/narrator/events"
	"github.com/lixenwraith/narrator/narration"
	"github.com/lixenwraith/narrator/status"
)

type recordingSpeaker struct {
	said   []string
	refuse bool
}

func (r *recordingSpeaker) Announce(text string, _ bool) narration.Outcome {
	if r.refuse {
		return narration.OutcomeSuppressed
	}
	r.said = append(r.said, text)
	return narration.OutcomeSpoken
}

type recordingAnnouncer struct {
	reqs []narration.Request
}

func (r *recordingAnnouncer) Submit(req narration.Request) narration.Outcome {
	r.reqs = append(r.reqs, req)
	return narration.OutcomeSpoken
}

type fixture struct {
	clock     *engine.MockClock
	sched     *engine.Scheduler
	speaker   *recordingSpeaker
	announcer *recordingAnnouncer
	agg       *Aggregator
	metrics   *status.Registry
}

func newFixture(t *testing.T, opts narration.Options) *fixture {
	t.Helper()
	f := &fixture{
		clock:     engine.NewMockClock(time.Unix(0, 0)),
		speaker:   &recordingSpeaker{},
		announcer: &recordingAnnouncer{},
		metrics:   status.NewRegistry(),
	}
	f.sched = engine.NewScheduler(f.clock)
	opts.Metrics = f.metrics

	agg, err := NewAggregator(f.sched, f.speaker, f.announcer, constants.WaveTimeout, opts)
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	f.agg = agg
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock.Advance(d)
	f.sched.Update()
}

func damage(side events.Side, item string, amount int) events.CombatEffect {
	return events.CombatEffect{Side: side, Effect: events.EffectDamage, Item: item, Amount: amount}
}

// TestFiveHitsOneSummary tests five damage effects within one second produce one summary
func TestFiveHitsOneSummary(t *testing.T) {
	f := newFixture(t, narration.Options{})

	hits := []events.CombatEffect{
		damage(events.SideLocal, "Dagger", 5),
		damage(events.SideLocal, "Sword", 12),
		damage(events.SideLocal, "Dagger", 5),
		damage(events.SideLocal, "Sword", 12),
		damage(events.SideLocal, "Dagger", 5),
	}
	for _, h := range hits {
		if got := f.agg.HandleEffect(h); got != ResultAccumulated {
			t.Fatalf("Expected accumulated, got %v", got)
		}
		f.advance(200 * time.Millisecond)
	}

	if len(f.speaker.said) != 0 {
		t.Fatalf("Expected nothing before timeout, got %v", f.speaker.said)
	}

	f.advance(constants.WaveTimeout)

	if len(f.speaker.said) != 1 {
		t.Fatalf("Expected 1 summary, got %v", f.speaker.said)
	}
	if want := "You: 39 damage (Sword)"; f.speaker.said[0] != want {
		t.Errorf("Expected %q, got %q", want, f.speaker.said[0])
	}
	if f.agg.Accumulating() {
		t.Error("Expected aggregator idle after summary")
	}
}

// TestWaveTimerRestarts tests that each accepted effect pushes the inactivity deadline
func TestWaveTimerRestarts(t *testing.T) {
	f := newFixture(t, narration.Options{})

	f.agg.HandleEffect(damage(events.SideLocal, "Axe", 3))
	f.advance(1400 * time.Millisecond)
	f.agg.HandleEffect(damage(events.SideLocal, "Axe", 3))
	f.advance(1400 * time.Millisecond)

	if len(f.speaker.said) != 0 {
		t.Fatalf("Expected wave still open, got %v", f.speaker.said)
	}

	f.advance(100 * time.Millisecond)
	if len(f.speaker.said) != 1 || f.speaker.said[0] != "You: 6 damage (Axe)" {
		t.Errorf("Expected one merged summary, got %v", f.speaker.said)
	}
}

// TestEffectsAfterTimeoutStartNewWave tests wave separation
func TestEffectsAfterTimeoutStartNewWave(t *testing.T) {
	f := newFixture(t, narration.Options{})

	f.agg.HandleEffect(damage(events.SideLocal, "Axe", 3))
	f.advance(2 * time.Second)
	f.agg.HandleEffect(damage(events.SideLocal, "Axe", 4))
	f.advance(2 * time.Second)

	want := []string{"You: 3 damage (Axe)", "You: 4 damage (Axe)"}
	if len(f.speaker.said) != 2 || f.speaker.said[0] != want[0] || f.speaker.said[1] != want[1] {
		t.Errorf("Expected %v, got %v", want, f.speaker.said)
	}
	if got := f.metrics.Counter(status.WavesEmitted).Load(); got != 2 {
		t.Errorf("Expected 2 waves, got %d", got)
	}
}

// TestSummaryPerSide tests one summary per active side with all parts
func TestSummaryPerSide(t *testing.T) {
	f := newFixture(t, narration.Options{})

	f.agg.HandleEffect(damage(events.SideLocal, "Sword", 10))
	f.agg.HandleEffect(events.CombatEffect{Side: events.SideLocal, Effect: events.EffectHeal, Item: "Potion", Amount: 4})
	f.agg.HandleEffect(events.CombatEffect{Side: events.SideLocal, Effect: events.EffectBurn, Item: "Torch", Amount: 2})
	f.agg.HandleEffect(events.CombatEffect{Side: events.SideLocal, Effect: events.EffectShield, Amount: 6, Crit: true})
	f.agg.HandleEffect(events.CombatEffect{Side: events.SideOpponent, Effect: events.EffectPoison, Item: "Fang"})
	f.agg.HandleEffect(events.CombatEffect{Side: events.SideOpponent, Effect: events.EffectPoison, Item: "Fang"})

	if n := f.agg.Flush(); n != 2 {
		t.Fatalf("Expected 2 summaries, got %d", n)
	}

	want := []string{
		"You: 10 damage (Sword), 4 heal, 6 shield, burn, critical",
		"Enemy: poison",
	}
	for i := range want {
		if f.speaker.said[i] != want[i] {
			t.Errorf("Summary %d: expected %q, got %q", i, want[i], f.speaker.said[i])
		}
	}
}

// TestAllowListFilters tests that kinds outside the registry are ignored
func TestAllowListFilters(t *testing.T) {
	f := newFixture(t, narration.Options{})

	for _, k := range []events.EffectKind{events.EffectHaste, events.EffectCharge, events.EffectRegen, events.EffectUnknown} {
		if got := f.agg.HandleEffect(events.CombatEffect{Effect: k, Amount: 5}); got != ResultIgnored {
			t.Errorf("Expected %v ignored, got %v", k, got)
		}
	}
	if f.agg.Accumulating() {
		t.Error("Expected ignored effects not to open a wave")
	}
	if got := f.metrics.Counter(status.EffectsIgnored).Load(); got != 4 {
		t.Errorf("Expected 4 ignored, got %d", got)
	}
}

// TestNegativeAmountsClamped tests that totals never go negative
func TestNegativeAmountsClamped(t *testing.T) {
	f := newFixture(t, narration.Options{})

	f.agg.HandleEffect(damage(events.SideLocal, "Sword", -10))
	f.agg.HandleEffect(events.CombatEffect{Side: events.SideLocal, Effect: events.EffectHeal, Amount: -3})

	w := f.agg.Wave(events.SideLocal)
	if w.TotalDamage != 0 || w.TotalHeal != 0 {
		t.Errorf("Expected clamped totals, got %+v", w)
	}
	if n := f.agg.Flush(); n != 0 {
		t.Errorf("Expected no summary for an inactive wave, got %d", n)
	}
}

// TestOpponentFreezeUrgent tests that an opponent freeze bypasses the wave
func TestOpponentFreezeUrgent(t *testing.T) {
	f := newFixture(t, narration.Options{})

	got := f.agg.HandleEffect(events.CombatEffect{Side: events.SideOpponent, Effect: events.EffectFreeze, Item: "Ice Wand"})
	if got != ResultAlerted {
		t.Fatalf("Expected alerted, got %v", got)
	}
	if len(f.announcer.reqs) != 1 {
		t.Fatalf("Expected 1 urgent request, got %d", len(f.announcer.reqs))
	}
	req := f.announcer.reqs[0]
	if req.Text != FrozenText || req.Priority != narration.Urgent {
		t.Errorf("Expected urgent %q, got %+v", FrozenText, req)
	}
	if f.agg.Accumulating() {
		t.Error("Expected freeze not to open a wave")
	}

	// Local freeze is a normal status entry
	f.agg.HandleEffect(events.CombatEffect{Side: events.SideLocal, Effect: events.EffectFreeze})
	f.agg.Flush()
	if len(f.speaker.said) != 1 || f.speaker.said[0] != "You: freeze" {
		t.Errorf("Expected local freeze batched, got %v", f.speaker.said)
	}
}

// TestModeSwitchFlushesWave tests that the in-flight wave is spoken before the first individual effect
func TestModeSwitchFlushesWave(t *testing.T) {
	f := newFixture(t, narration.Options{})

	f.agg.HandleEffect(damage(events.SideOpponent, "Club", 7))
	f.agg.HandleEffect(damage(events.SideOpponent, "Club", 8))
	f.agg.SetMode(ModeIndividual)
	f.agg.HandleEffect(events.CombatEffect{Side: events.SideOpponent, Effect: events.EffectDamage, Item: "Club", Amount: 9, Crit: true})

	want := []string{"Enemy: 15 damage (Club)", "Enemy Club: 9 damage, crit"}
	if len(f.speaker.said) != len(want) {
		t.Fatalf("Expected %v, got %v", want, f.speaker.said)
	}
	for i := range want {
		if f.speaker.said[i] != want[i] {
			t.Errorf("Utterance %d: expected %q, got %q", i, want[i], f.speaker.said[i])
		}
	}

	f.advance(2 * time.Second)
	if len(f.speaker.said) != len(want) {
		t.Errorf("Expected no late wave after switch, got %v", f.speaker.said)
	}
}

// TestIndividualFormat tests individual mode rendering
func TestIndividualFormat(t *testing.T) {
	tests := []struct {
		name string
		e    events.CombatEffect
		want string
	}{
		{"local", events.CombatEffect{Side: events.SideLocal, Effect: events.EffectHeal, Item: "Potion", Amount: 5}, "Potion: 5 heal"},
		{"enemy crit", events.CombatEffect{Side: events.SideOpponent, Effect: events.EffectDamage, Item: "Axe", Amount: 9, Crit: true}, "Enemy Axe: 9 damage, crit"},
		{"status", events.CombatEffect{Side: events.SideLocal, Effect: events.EffectSlow, Item: "Net"}, "Net: slow"},
		{"no item", events.CombatEffect{Side: events.SideOpponent, Effect: events.EffectBurn, Amount: 2}, "Enemy: 2 burn"},
		{"disallowed", events.CombatEffect{Effect: events.EffectHaste}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Individual(tt.e); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestTopItemTieBreak tests that the first item to reach the top total wins ties
func TestTopItemTieBreak(t *testing.T) {
	var w WaveData
	w.AddDamage("Bow", 5)
	w.AddDamage("Axe", 5)
	if got := w.TopItem(); got != "Bow" {
		t.Errorf("Expected Bow, got %s", got)
	}
}

// TestResetDiscards tests encounter reset drops the wave silently
func TestResetDiscards(t *testing.T) {
	f := newFixture(t, narration.Options{})

	f.agg.HandleEffect(damage(events.SideLocal, "Axe", 3))
	f.agg.Reset()
	f.advance(2 * time.Second)

	if len(f.speaker.said) != 0 {
		t.Errorf("Expected reset wave to stay silent, got %v", f.speaker.said)
	}
}

// TestWaveSpan tests that a wave is recorded as one span
func TestWaveSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	f := newFixture(t, narration.Options{Tracer: tp.Tracer("test")})

	f.agg.HandleEffect(damage(events.SideLocal, "Axe", 3))
	f.agg.HandleEffect(damage(events.SideOpponent, "Club", 2))
	f.advance(2 * time.Second)

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("Expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "combat.wave" {
		t.Errorf("Expected combat.wave, got %s", spans[0].Name())
	}
}

// TestRefusedOutputDiscarded tests that suppressed summaries and lines are dropped, not replayed later
func TestRefusedOutputDiscarded(t *testing.T) {
	f := newFixture(t, narration.Options{})
	f.speaker.refuse = true

	f.agg.HandleEffect(damage(events.SideLocal, "Dagger", 5))
	f.advance(2 * time.Second)

	if f.agg.Accumulating() {
		t.Error("Expected idle after the refused flush")
	}
	if got := f.metrics.Counter(status.WavesEmitted).Load(); got != 0 {
		t.Errorf("Expected 0 waves emitted, got %d", got)
	}

	f.agg.SetMode(ModeIndividual)
	if got := f.agg.HandleEffect(damage(events.SideLocal, "Dagger", 5)); got != ResultSilenced {
		t.Errorf("Expected silenced, got %v", got)
	}

	f.speaker.refuse = false
	f.agg.SetMode(ModeBatched)
	f.agg.HandleEffect(damage(events.SideLocal, "Axe", 2))
	f.advance(2 * time.Second)

	if len(f.speaker.said) != 1 || f.speaker.said[0] != "You: 2 damage (Axe)" {
		t.Errorf("Expected only the later wave, got %v", f.speaker.said)
	}
}
