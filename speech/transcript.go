// Package speech provides speech backends for the narration sink
//
// Transcript writes each utterance as one line, CueSpeaker prefixes
// interrupting utterances with a short earcon played through beep.
package speech

import (
	"fmt"
	"io"
	"sync"

	"github.com/lixenwraith/narrator/constants"
)

// InterruptMark prefixes interrupting lines in the transcript
const InterruptMark = "! "

// Transcript is a speech backend that writes utterances to a writer
// and keeps the most recent ones for on-screen display
// Safe for concurrent use
type Transcript struct {
	mu     sync.Mutex
	w      io.Writer
	recent []string
	size   int
	total  int
}

// NewTranscript creates a transcript; w may be nil to keep lines in memory only
func NewTranscript(w io.Writer, history int) *Transcript {
	if history <= 0 {
		history = constants.TranscriptHistory
	}
	return &Transcript{
		w:      w,
		recent: make([]string, 0, history),
		size:   history,
	}
}

// Speak records one utterance
func (t *Transcript) Speak(text string, interrupt bool) error {
	line := text
	if interrupt {
		line = InterruptMark + text
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.recent) == t.size {
		copy(t.recent, t.recent[1:])
		t.recent = t.recent[:t.size-1]
	}
	t.recent = append(t.recent, line)
	t.total++

	if t.w == nil {
		return nil
	}
	if _, err := fmt.Fprintln(t.w, line); err != nil {
		return fmt.Errorf("transcript write: %w", err)
	}
	return nil
}

// Recent returns the retained lines, oldest first
func (t *Transcript) Recent() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.recent))
	copy(out, t.recent)
	return out
}

// Total is the number of utterances written since creation
func (t *Transcript) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}
