// Package narration turns narration requests into spoken output
//
// Sink is the last stop before the speech backend: it drops repeated text and
// isolates backend faults. Coordinator decides when a non-urgent summary is
// spoken using a single-flight debounce timer and a throttle floor.
package narration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lixenwraith/narrator/engine"
	"github.com/lixenwraith/narrator/status"
)

// Speaker is the speech backend
// Speak is fire-and-forget: it must not block on synthesis
type Speaker interface {
	Speak(text string, interrupt bool) error
}

// SpeakerFunc adapts a function to Speaker
type SpeakerFunc func(text string, interrupt bool) error

func (f SpeakerFunc) Speak(text string, interrupt bool) error { return f(text, interrupt) }

// Sink forwards utterances to a Speaker with a short identical-text dedup window
// Not safe for concurrent use, owned by the session executor
type Sink struct {
	speaker Speaker
	clock   engine.Clock
	window  time.Duration

	lastText string
	lastAt   time.Time

	logger *slog.Logger
	tracer trace.Tracer

	spoken  *atomic.Int64
	deduped *atomic.Int64
	failed  *atomic.Int64
	last    *status.AtomicString
}

// NewSink creates a sink; window <= 0 disables deduplication
func NewSink(speaker Speaker, clock engine.Clock, window time.Duration, opts Options) (*Sink, error) {
	if speaker == nil {
		return nil, fmt.Errorf("sink: nil speaker")
	}
	if clock == nil {
		return nil, fmt.Errorf("sink: nil clock")
	}
	opts = opts.WithDefaults()

	return &Sink{
		speaker: speaker,
		clock:   clock,
		window:  window,
		logger:  opts.Logger,
		tracer:  opts.Tracer,
		spoken:  opts.Metrics.Counter(status.Spoken),
		deduped: opts.Metrics.Counter(status.Deduplicated),
		failed:  opts.Metrics.Counter(status.Failed),
		last:    opts.Metrics.Label(status.LastUtterance),
	}, nil
}

// Say forwards text to the backend and reports whether it was handed off
// Blank text, repeats within the window and backend faults return false
func (s *Sink) Say(text string, interrupt bool) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	now := s.clock.Now()
	if s.window > 0 && text == s.lastText && now.Sub(s.lastAt) < s.window {
		s.deduped.Add(1)
		s.logger.Debug("utterance deduplicated", "text", text)
		return false
	}

	_, span := s.tracer.Start(context.Background(), "narration.speak",
		trace.WithAttributes(
			attribute.Int("narration.length", len(text)),
			attribute.Bool("narration.interrupt", interrupt),
		),
	)
	defer span.End()

	if err := s.forward(text, interrupt); err != nil {
		s.failed.Add(1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "speak failed")
		s.logger.Warn("speech backend failed", "error", err, "text", text)
		return false
	}

	s.lastText = text
	s.lastAt = now
	s.spoken.Add(1)
	s.last.Store(text)
	s.logger.Debug("spoken", "text", text, "interrupt", interrupt)
	return true
}

// Reset forgets the last utterance so the next identical text is spoken
func (s *Sink) Reset() {
	s.lastText = ""
	s.lastAt = time.Time{}
}

// forward converts a backend panic into an error
func (s *Sink) forward(text string, interrupt bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("speaker panic: %v", r)
		}
	}()
	return s.speaker.Speak(text, interrupt)
}
