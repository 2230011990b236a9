package speech

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/narrator/constants"
	"github.com/lixenwraith/narrator/narration"
)

const sampleRate = beep.SampleRate(constants.CueSampleRate)

// Cue identifies an earcon
type Cue uint8

const (
	CueNone Cue = iota
	CueAlert
	CueInfo
)

func (c Cue) String() string {
	switch c {
	case CueAlert:
		return "alert"
	case CueInfo:
		return "info"
	}
	return "none"
}

// CueStreamer builds a fresh finite streamer for c, nil for CueNone
func CueStreamer(sr beep.SampleRate, c Cue) beep.Streamer {
	switch c {
	case CueAlert:
		return beep.Seq(
			NewToneGenerator(sr, constants.AlertToneLow, constants.CueVolume,
				constants.AlertToneDuration, constants.AlertAttack, constants.AlertRelease),
			beep.Silence(sr.N(constants.AlertToneGap)),
			NewToneGenerator(sr, constants.AlertToneHigh, constants.CueVolume,
				constants.AlertToneDuration, constants.AlertAttack, constants.AlertRelease),
		)
	case CueInfo:
		return NewToneGenerator(sr, constants.InfoTone, constants.CueVolume,
			constants.InfoToneDuration, constants.AlertAttack, constants.AlertRelease)
	}
	return nil
}

// CuePlayer plays earcons through the default audio device
// Play is a no-op until Initialize succeeds
type CuePlayer struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	played      atomic.Int64
}

// NewCuePlayer creates an uninitialized player
func NewCuePlayer() *CuePlayer {
	return &CuePlayer{
		mixer: &beep.Mixer{},
	}
}

// Initialize opens the audio device and starts the mixer
func (p *CuePlayer) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(constants.CueBufferDuration)); err != nil {
		return fmt.Errorf("audio init: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Initialized reports whether cues reach the device
func (p *CuePlayer) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// Play queues c on the mixer, returns false when nothing was queued
func (p *CuePlayer) Play(c Cue) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return false
	}
	s := CueStreamer(sampleRate, c)
	if s == nil {
		return false
	}

	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()

	p.played.Add(1)
	return true
}

// Played is the number of cues queued since creation
func (p *CuePlayer) Played() int64 {
	return p.played.Load()
}

// Cleanup stops pending cues and closes the device
func (p *CuePlayer) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}

	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()

	speaker.Close()
	p.initialized = false
}

// Cuer plays an earcon
type Cuer interface {
	Play(c Cue) bool
}

// CueSpeaker plays the alert earcon before every interrupting utterance
type CueSpeaker struct {
	next    narration.Speaker
	cues    Cuer
	enabled atomic.Bool
}

// NewCueSpeaker wraps next; cues may be nil
func NewCueSpeaker(next narration.Speaker, cues Cuer) *CueSpeaker {
	s := &CueSpeaker{next: next, cues: cues}
	s.enabled.Store(cues != nil)
	return s
}

// SetEnabled toggles earcons without touching speech
func (s *CueSpeaker) SetEnabled(enabled bool) {
	s.enabled.Store(enabled && s.cues != nil)
}

// Enabled reports whether earcons are played
func (s *CueSpeaker) Enabled() bool {
	return s.enabled.Load()
}

func (s *CueSpeaker) Speak(text string, interrupt bool) error {
	if interrupt && s.enabled.Load() {
		s.cues.Play(CueAlert)
	}
	return s.next.Speak(text, interrupt)
}

// CueService owns the CuePlayer lifecycle
// A missing audio device disables cues without failing startup
type CueService struct {
	player  *CuePlayer
	enabled bool
	logger  *slog.Logger
	stopped bool
}

// NewCueService creates the service around a fresh player
func NewCueService() *CueService {
	return &CueService{
		player:  NewCuePlayer(),
		enabled: true,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (s *CueService) Name() string { return "cues" }

func (s *CueService) Dependencies() []string { return nil }

// Init accepts an enabled flag and a logger
func (s *CueService) Init(args ...any) error {
	for _, arg := range args {
		switch v := arg.(type) {
		case bool:
			s.enabled = v
		case *slog.Logger:
			if v != nil {
				s.logger = v
			}
		default:
			return fmt.Errorf("cues: unexpected init arg %T", arg)
		}
	}
	return nil
}

func (s *CueService) Start() error {
	if !s.enabled {
		return nil
	}
	if err := s.player.Initialize(); err != nil {
		s.logger.Warn("earcons disabled", "error", err)
	}
	return nil
}

func (s *CueService) Stop() error {
	if s.stopped {
		return nil
	}
	s.stopped = true
	s.player.Cleanup()
	return nil
}

// Player returns the cue player, nil when cues are disabled or the device is missing
func (s *CueService) Player() Cuer {
	if !s.enabled || !s.player.Initialized() {
		return nil
	}
	return s.player
}
