package status

import "sync/atomic"

// MaxLabelLen caps label values so a long utterance does not bloat the overlay
const MaxLabelLen = 64

// AtomicString is a lock-free string cell
// Zero value is ready to use (represents empty string)
type AtomicString struct {
	ptr atomic.Pointer[string]
}

// Store sets the value, truncated to MaxLabelLen bytes on a rune boundary
func (s *AtomicString) Store(val string) {
	if len(val) > MaxLabelLen {
		cut := MaxLabelLen
		for cut > 0 && !isRuneStart(val[cut]) {
			cut--
		}
		val = val[:cut]
	}
	s.ptr.Store(&val)
}

// Load returns the current value
func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
