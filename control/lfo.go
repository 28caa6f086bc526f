package control

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Waveform is an LFO shape
type Waveform string

const (
	Sine     Waveform = "sine"
	Triangle Waveform = "triangle"
	Square   Waveform = "square"
	Saw      Waveform = "saw"
	Random   Waveform = "random"
)

// ParseWaveform accepts the names above
func ParseWaveform(s string) (Waveform, error) {
	switch w := Waveform(s); w {
	case Sine, Triangle, Square, Saw, Random:
		return w, nil
	}
	return "", fmt.Errorf("unknown waveform %q", s)
}

// LFO is a beat-synced oscillator. Output is wave*Amplitude + Offset, with
// wave in [-1, 1].
type LFO struct {
	Wave      Waveform
	Frequency float64 // cycles per beat
	Amplitude float64
	Phase     float64
	Offset    float64
	Active    bool
	Target    string

	rng        *rand.Rand
	seed       uint64
	lastPhase  float64
	lastRandom float64
}

// NewLFO creates an active LFO at one cycle per beat
func NewLFO(wave Waveform, target string, seed uint64) *LFO {
	l := &LFO{
		Wave:      wave,
		Frequency: 1,
		Amplitude: 1,
		Active:    true,
		Target:    target,
		seed:      seed,
	}
	l.Reset()
	return l
}

// Reset restarts the random sequence
func (l *LFO) Reset() {
	l.rng = rand.New(rand.NewPCG(l.seed, 0x5851f42d4c957f2d))
	l.lastPhase = 0
	l.lastRandom = 0
}

// Value evaluates the LFO at a beat position
func (l *LFO) Value(beat float64) float64 {
	if !l.Active {
		return 0
	}
	phase := frac(beat*l.Frequency + l.Phase)

	var w float64
	switch l.Wave {
	case Triangle:
		switch {
		case phase < 0.25:
			w = 4 * phase
		case phase < 0.75:
			w = 2 - 4*phase
		default:
			w = -4 + 4*phase
		}
	case Square:
		w = 1
		if phase >= 0.5 {
			w = -1
		}
	case Saw:
		w = 2*phase - 1
	case Random:
		// new value each time the phase wraps
		if phase < l.lastPhase {
			l.lastRandom = l.rng.Float64()*2 - 1
		}
		l.lastPhase = phase
		w = l.lastRandom
	default:
		w = math.Sin(2 * math.Pi * phase)
	}
	return w*l.Amplitude + l.Offset
}

func frac(x float64) float64 {
	f := x - math.Floor(x)
	if f >= 1 {
		return 0
	}
	return f
}

// LFOBank holds the LFOs assigned to parameters
type LFOBank struct {
	lfos []*LFO
}

// NewLFOBank creates a bank
func NewLFOBank(lfos ...*LFO) *LFOBank {
	return &LFOBank{lfos: lfos}
}

// Add appends an LFO
func (b *LFOBank) Add(l *LFO) {
	b.lfos = append(b.lfos, l)
}

// LFOs returns the bank contents
func (b *LFOBank) LFOs() []*LFO {
	return b.lfos
}

// Apply overrides each targeted parameter with center + lfo*range/2,
// clamped to the parameter range. Unknown targets are skipped.
func (b *LFOBank) Apply(beat float64, m *Mapping, values Values) {
	for _, l := range b.lfos {
		if !l.Active {
			continue
		}
		p, ok := m.Param(l.Target)
		if !ok {
			continue
		}
		span := p.Max - p.Min
		center := p.Min + span/2
		values[p.Name] = p.Clamp(center + l.Value(beat)*span/2)
	}
}

// Reset restarts every LFO
func (b *LFOBank) Reset() {
	for _, l := range b.lfos {
		l.Reset()
	}
}
