package constants

import "time"

// Announcement Coordinator
const (
	// DebounceDelay coalesces a burst of state-changed signals into one announcement
	DebounceDelay = 400 * time.Millisecond

	// ThrottleInterval is the minimum gap between two non-urgent announcements
	ThrottleInterval = 1 * time.Second

	// SinkDedupWindow drops an identical utterance repeated within this window
	SinkDedupWindow = 300 * time.Millisecond
)

// Combat Waves
const (
	// WaveTimeout is the inactivity window that closes a combat wave
	WaveTimeout = 1500 * time.Millisecond
)

// Health Thresholds
const (
	// LowHealthRatio triggers the low health alert (inclusive)
	LowHealthRatio = 0.25

	// CriticalHealthRatio triggers the critical health alert (inclusive)
	CriticalHealthRatio = 0.10
)

// Replay Exit Settle Delays
// External state keeps changing for a short while after the replay closes,
// each pass re-reads the snapshot before the next one
var ReplaySettleDelays = []time.Duration{
	100 * time.Millisecond,
	200 * time.Millisecond,
	500 * time.Millisecond,
}

// Timer Keys
const (
	TimerDebounce = "narration.debounce"
	TimerWave     = "combat.wave"
	TimerSettle   = "session.settle"
)
