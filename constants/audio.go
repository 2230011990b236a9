package constants

import "time"

// Earcon Output
const (
	// CueSampleRate is the output rate handed to the audio device
	CueSampleRate = 48000

	// CueBufferDuration is the device buffer length
	CueBufferDuration = 100 * time.Millisecond

	// CueVolume is the peak amplitude of every cue
	CueVolume = 0.2
)

// Alert Cue Timing
// Two rising tones played before an interrupting utterance
const (
	AlertToneDuration = 70 * time.Millisecond
	AlertToneGap      = 30 * time.Millisecond
	AlertToneLow      = 660.0
	AlertToneHigh     = 880.0
	AlertAttack       = 5 * time.Millisecond
	AlertRelease      = 20 * time.Millisecond
)

// Info Cue Timing
const (
	InfoToneDuration = 50 * time.Millisecond
	InfoTone         = 520.0
)

// Transcript
const (
	// TranscriptHistory is how many recent utterances the host keeps for display
	TranscriptHistory = 8
)
