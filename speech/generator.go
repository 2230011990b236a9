package speech

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// ToneGenerator streams a sine tone with a linear attack and release envelope
// It ends after its duration, so it can be added to a mixer without Take
type ToneGenerator struct {
	sr      beep.SampleRate
	freq    float64
	volume  float64
	pos     int
	samples int
	attack  int
	release int
}

// NewToneGenerator creates a finite tone
func NewToneGenerator(sr beep.SampleRate, freq, volume float64, d, attack, release time.Duration) *ToneGenerator {
	return &ToneGenerator{
		sr:      sr,
		freq:    freq,
		volume:  volume,
		samples: sr.N(d),
		attack:  sr.N(attack),
		release: sr.N(release),
	}
}

func (g *ToneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	if g.pos >= g.samples {
		return 0, false
	}
	for i := range samples {
		if g.pos >= g.samples {
			return i, true
		}
		t := float64(g.pos) / float64(g.sr)
		sample := g.volume * g.envelope() * math.Sin(2*math.Pi*g.freq*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ToneGenerator) Err() error {
	return nil
}

// envelope is 0..1 at the current position
func (g *ToneGenerator) envelope() float64 {
	env := 1.0
	if g.attack > 0 && g.pos < g.attack {
		env = float64(g.pos) / float64(g.attack)
	}
	if tail := g.samples - g.pos; g.release > 0 && tail < g.release {
		env = math.Min(env, float64(tail)/float64(g.release))
	}
	return env
}

// Len is the tone length in samples
func (g *ToneGenerator) Len() int {
	return g.samples
}
