// Package session owns one narration pipeline for the lifetime of a host screen
package session

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/lixenwraith/narrator/combat"
	"github.com/lixenwraith/narrator/config"
	"github.com/lixenwraith/narrator/constants"
	"github.com/lixenwraith/narrator/engine"
	"github.com/lixenwraith/narrator/events"
	"github.com/lixenwraith/narrator/health"
	"github.com/lixenwraith/narrator/input"
	"github.com/lixenwraith/narrator/narration"
	"github.com/lixenwraith/narrator/navigation"
	"github.com/lixenwraith/narrator/snapshot"
	"github.com/lixenwraith/narrator/status"
)

// Deps are the host collaborators
type Deps struct {
	Source  snapshot.Source   // Required
	Speaker narration.Speaker // Required
	Clock   engine.Clock      // Defaults to the monotonic clock
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *status.Registry
}

// Session is the narration root: it ingests domain events, routes them to the
// coordinator, wave aggregator, health watcher and navigation context, and
// drives their timers from the host loop
//
// Concurrency:
//   - Event handler methods (OnStateTransition, ...) are safe from any goroutine, they enqueue
//   - Everything else runs on the host loop goroutine that calls Update
type Session struct {
	events.Enqueuer

	id     string
	logger *slog.Logger

	sched  *engine.Scheduler
	source snapshot.Source
	sink   *narration.Sink
	coord  *narration.Coordinator
	waves  *combat.Aggregator
	health *health.Watcher
	nav    *navigation.Context

	settleDelays []time.Duration
	metrics      *status.Registry
	unsubscribe  func()
	closed       bool

	ingested      *atomic.Int64
	dropped       *atomic.Int64
	spilled       *atomic.Int64
	overflow      *atomic.Int64
	refreshFailed *atomic.Int64
	navMode       *status.AtomicString

	// Queue totals already mirrored into the counters
	spilledSeen uint64
	lostSeen    uint64
}

// New builds a session and performs the first refresh
func New(cfg *config.Config, deps Deps) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	if deps.Source == nil || deps.Speaker == nil {
		return nil, fmt.Errorf("session: source and speaker are required: %w", config.ErrInvalid)
	}
	if deps.Clock == nil {
		deps.Clock = engine.NewMonotonicTimeProvider()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Metrics == nil {
		deps.Metrics = status.NewRegistry()
	}

	id := uuid.NewString()
	s := &Session{
		Enqueuer:      events.Enqueuer{Queue: events.NewEventQueue()},
		id:            id,
		logger:        deps.Logger.With("session", id),
		sched:         engine.NewScheduler(deps.Clock),
		source:        deps.Source,
		nav:           navigation.NewContext(),
		settleDelays:  cfg.SettleDelays(),
		metrics:       deps.Metrics,
		ingested:      deps.Metrics.Counter(status.Ingested),
		dropped:       deps.Metrics.Counter(status.IngestDropped),
		spilled:       deps.Metrics.Counter(status.IngestSpilled),
		overflow:      deps.Metrics.Counter(status.IngestOverflow),
		refreshFailed: deps.Metrics.Counter(status.RefreshFailed),
		navMode:       deps.Metrics.Label(status.NavMode),
	}

	opts := narration.Options{Logger: s.logger, Tracer: deps.Tracer, Metrics: deps.Metrics}

	var err error
	if s.sink, err = narration.NewSink(deps.Speaker, deps.Clock, cfg.Narration.DedupWindow.Duration, opts); err != nil {
		return nil, err
	}

	timing := narration.Timing{Debounce: cfg.Narration.Debounce.Duration, Throttle: cfg.Narration.Throttle.Duration}
	hooks := narration.Hooks{Refresh: func() { s.refresh() }, Compose: s.nav.Summary}
	if s.coord, err = narration.NewCoordinator(s.sched, s.sink, timing, hooks, opts); err != nil {
		return nil, err
	}

	if s.waves, err = combat.NewAggregator(s.sched, s.coord, s.coord, cfg.Combat.WaveTimeout.Duration, opts); err != nil {
		return nil, err
	}
	if cfg.Combat.Individual {
		s.waves.SetMode(combat.ModeIndividual)
	}

	th := health.Thresholds{Low: cfg.Health.Low, Critical: cfg.Health.Critical}
	if s.health, err = health.NewWatcher(s.coord, th, opts); err != nil {
		return nil, err
	}

	s.refresh()
	s.navMode.Store(s.nav.Mode().String())
	s.logger.Info("narration session started", "combat_mode", s.waves.Mode().String())
	return s, nil
}

// Attach subscribes the session's queue to bus, replacing a previous subscription
func (s *Session) Attach(bus events.Bus) {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.unsubscribe = bus.Subscribe(s.Enqueuer)
}

// ID returns the session uuid used in logs
func (s *Session) ID() string { return s.id }

// Navigation exposes the navigation context for rendering
func (s *Session) Navigation() *navigation.Context { return s.nav }

// Metrics returns the session's metric registry
func (s *Session) Metrics() *status.Registry { return s.metrics }

// Update drains queued events then fires due timers
// Returns the number of events and timers processed
func (s *Session) Update() int {
	if s.closed {
		return 0
	}
	queued := s.Queue.Consume()
	s.checkBacklog()
	for _, e := range queued {
		s.Ingest(e)
	}
	return len(queued) + s.sched.Update()
}

// checkBacklog mirrors queue overflow into the metrics and logs it
func (s *Session) checkBacklog() {
	if n := s.Queue.Spilled(); n > s.spilledSeen {
		s.spilled.Add(int64(n - s.spilledSeen))
		s.logger.Debug("event ring full, backlog used", "events", n-s.spilledSeen)
		s.spilledSeen = n
	}
	if n := s.Queue.Lost(); n > s.lostSeen {
		s.overflow.Add(int64(n - s.lostSeen))
		s.logger.Warn("event backlog full, events lost", "events", n-s.lostSeen)
		s.lostSeen = n
	}
}

// Ingest classifies and routes one event synchronously
// Unknown kinds are dropped without error
func (s *Session) Ingest(e events.Event) {
	if s.closed {
		return
	}

	switch ev := e.(type) {
	case events.StateTransition:
		s.accept(e)
		s.refresh()
		s.coord.RequestAnnouncement(false)

	case events.ContentRevealed:
		s.accept(e)
		s.refresh()
		s.coord.RequestAnnouncement(false)

	case events.UserActionCompleted:
		if ev.Action == events.ActionUnknown {
			s.drop(e)
			return
		}
		s.accept(e)
		s.refresh()
		s.coord.RequestAnnouncement(false)

	case events.CombatEffect:
		s.accept(e)
		s.refresh()
		s.waves.HandleEffect(ev)

	case events.HealthChanged:
		s.accept(e)
		s.refresh()
		s.health.Update(ev.Side, health.Snapshot{Health: ev.Health, MaxHealth: ev.MaxHealth, Shield: ev.Shield})

	case events.SessionModeChanged:
		s.accept(e)
		s.refresh()
		s.OnModeChanged(ev.Mode)

	default:
		s.drop(e)
	}
}

// OnModeChanged applies a session mode change from the hosting screen
func (s *Session) OnModeChanged(m events.SessionMode) {
	if s.closed {
		return
	}

	// A newer mode change supersedes a replay exit still settling
	s.sched.Cancel(constants.TimerSettle)

	if m == events.ModeExitReplay && s.nav.BaseMode() == navigation.ModeReplay && len(s.settleDelays) > 0 {
		s.settle()
		s.logger.Debug("mode change deferred until settled", "event", m.String())
		return
	}

	applied := s.nav.OnSessionMode(m)

	switch m {
	case events.ModeEnterCombat:
		s.coord.Cancel()
		s.waves.Reset()
		s.health.Reset()
	case events.ModeExitCombat:
		s.waves.Flush()
	case events.ModeEnterReplay:
		s.waves.Flush()
		s.coord.RequestAnnouncement(false)
	case events.ModeExitReplay:
		s.OnRefreshRequested()
	}

	s.navMode.Store(s.nav.Mode().String())
	s.logger.Debug("mode changed", "event", m.String(), "applied", applied, "mode", s.nav.Mode().String())
}

// OnRefreshRequested re-reads the snapshot and schedules a summary
func (s *Session) OnRefreshRequested() {
	if s.closed {
		return
	}
	s.refresh()
	s.coord.RequestAnnouncement(false)
}

// HandleInput runs a user command and speaks its result
// Host-level commands are answered here, quit is left to the host
func (s *Session) HandleInput(cmd input.Command) navigation.Result {
	if s.closed {
		return navigation.Result{Ignored: true}
	}

	var res navigation.Result
	switch cmd {
	case input.CmdToggleCombatNarration:
		individual := s.waves.Mode() != combat.ModeIndividual
		s.SetCombatNarration(individual)
		res = navigation.Result{Text: "Combat narration " + s.waves.Mode().String(), Interrupt: true}
	case input.CmdStatus:
		res = navigation.Result{Text: s.statusText(), Interrupt: true}
	default:
		res = s.nav.HandleInput(cmd)
	}

	if res.Text != "" {
		s.sink.Say(res.Text, res.Interrupt)
	}
	return res
}

// SetModalFocus suppresses narration while a host modal has focus
func (s *Session) SetModalFocus(focused bool) {
	s.coord.SetModalFocus(focused)
}

// SetCombatNarration switches between wave summaries and per-effect narration
// An in-flight wave is flushed before the switch
func (s *Session) SetCombatNarration(individual bool) {
	m := combat.ModeBatched
	if individual {
		m = combat.ModeIndividual
	}
	s.waves.SetMode(m)
}

// Close flushes the current wave, cancels timers and detaches from the bus
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.waves.Flush()
	s.closed = true
	s.sched.CancelAll()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.logger.Info("narration session closed")
}

// Closed reports whether Close has run
func (s *Session) Closed() bool { return s.closed }

// settle re-reads the snapshot over a chain of short delays after a replay
// closes. Navigation stays in Replay until the last pass, which resumes Free
// and announces
func (s *Session) settle() {
	steps := make([]engine.Step, 0, len(s.settleDelays))
	for i, d := range s.settleDelays {
		last := i == len(s.settleDelays)-1
		steps = append(steps, engine.Step{
			Delay: d,
			Run: func() bool {
				if s.closed {
					return false
				}
				s.refresh()
				if last {
					s.nav.OnSessionMode(events.ModeExitReplay)
					s.navMode.Store(s.nav.Mode().String())
					s.coord.RequestAnnouncement(false)
				}
				return true
			},
		})
	}
	s.sched.Chain(constants.TimerSettle, steps...)
}

// Settling reports whether a replay exit is still waiting on its settle passes
func (s *Session) Settling() bool {
	return s.sched.Pending(constants.TimerSettle)
}

// refresh pulls a fresh snapshot into the navigation cache, failures keep the old one
func (s *Session) refresh() bool {
	snap, err := snapshot.Query(s.source)
	if err != nil {
		s.refreshFailed.Add(1)
		s.logger.Debug("refresh skipped", "error", err)
		return false
	}
	return s.nav.Refresh(snap)
}

func (s *Session) accept(e events.Event) {
	s.ingested.Add(1)
	s.logger.Debug("event", "kind", e.Kind().String())
}

func (s *Session) drop(e events.Event) {
	s.dropped.Add(1)
	if e != nil {
		s.logger.Debug("event dropped", "kind", e.Kind().String())
	}
}

func (s *Session) statusText() string {
	return fmt.Sprintf("Spoken %d, throttled %d, waves %d",
		s.metrics.Counter(status.Spoken).Load(),
		s.metrics.Counter(status.Throttled).Load(),
		s.metrics.Counter(status.WavesEmitted).Load())
}
