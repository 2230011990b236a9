package constants

import "time"

// Host Loop Timing Constants
const (
	// FrameUpdateInterval is the demo host redraw interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// SessionUpdateInterval is how often the host drains events and fires timers
	SessionUpdateInterval = 50 * time.Millisecond

	// EventQueueSize is the ring buffer capacity for cross-goroutine events, must be a power of 2
	EventQueueSize = 256

	// EventBufferMask is used for ring buffer index wrapping
	EventBufferMask = EventQueueSize - 1

	// EventBacklogLimit caps the overflow backlog behind a full ring
	// Session mode changes are admitted past the cap
	EventBacklogLimit = 4096
)
