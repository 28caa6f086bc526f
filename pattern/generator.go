package pattern

import (
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/lucasb-eyer/go-colorful"

	"video-instrument/control"
	"video-instrument/midi"
	"video-instrument/shape"
)

// Input is everything a generator may read for one tick
type Input struct {
	Snapshot control.Snapshot
	Params   control.Values
	Width    int
	Height   int
	Beat     float64
	Palette  []color.RGBA // optional; generators fall back to HSV hues
}

// Generator produces the shapes for one frame. Advance is deterministic given
// the generator state, dt and the input; Reset restores the baseline state,
// including the random source.
type Generator interface {
	Name() string
	Reset()
	Advance(dt time.Duration, in Input) []shape.Shape
}

// Names lists the catalog in selection order
var Names = []string{"swarm", "grid", "particles", "network"}

// New creates a generator by name
func New(name string, seed uint64) (Generator, error) {
	switch name {
	case "swarm":
		return NewSwarm(seed), nil
	case "grid":
		return NewGrid(seed), nil
	case "particles":
		return NewParticles(seed), nil
	case "network":
		return NewNetwork(seed), nil
	}
	return nil, fmt.Errorf("unknown pattern %q", name)
}

// Catalog creates every generator in Names order
func Catalog(seed uint64) []Generator {
	gens := make([]Generator, 0, len(Names))
	for i, name := range Names {
		g, _ := New(name, seed+uint64(i))
		gens = append(gens, g)
	}
	return gens
}

// seeded is the random source shared by every generator's state
type seeded struct {
	seed uint64
	rng  *rand.Rand
}

func (s *seeded) reseed() {
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed*0x9e3779b97f4a7c15+1))
}

func (s *seeded) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// smoother eases a parameter toward its target with a critically damped
// spring so CC jumps don't snap
type smoother struct {
	freq, damp float64

	dt     time.Duration
	spring harmonica.Spring
	pos    float64
	vel    float64
	primed bool
}

func newSmoother() smoother {
	return smoother{freq: 8, damp: 1}
}

func (s *smoother) step(dt time.Duration, target float64) float64 {
	if !s.primed || dt <= 0 {
		s.pos, s.vel, s.primed = target, 0, true
		return s.pos
	}
	if dt != s.dt {
		s.spring = harmonica.NewSpring(dt.Seconds(), s.freq, s.damp)
		s.dt = dt
	}
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, target)
	return s.pos
}

func (s *smoother) reset() {
	s.pos, s.vel, s.primed = 0, 0, false
}

// triggers finds note-ons written since the previous tick. The first tick
// after a reset only records the baseline so old notes don't replay.
type triggers struct {
	last   uint64
	primed bool
}

func (t *triggers) next(s control.Snapshot) []control.Note {
	if !t.primed {
		t.primed = true
		t.last = s.Seq
		return nil
	}
	var notes []control.Note
	for id, v := range s.Values {
		if id.Kind == midi.NoteOn && v.Seq > t.last && v.Raw > 0 {
			notes = append(notes, control.Note{Channel: id.Channel, Number: id.Number, Velocity: v.Raw, Seq: v.Seq})
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Seq < notes[j].Seq })
	t.last = s.Seq
	return notes
}

func (t *triggers) reset() {
	t.last, t.primed = 0, false
}

// frames converts dt to a count of 60 Hz frames, the unit the per-frame rates
// (decay, speeds) are expressed in
func frames(dt time.Duration) float64 {
	return dt.Seconds() * 60
}

// hsv returns an opaque color; hue in degrees, s and v in [0, 1]
func hsv(h, s, v float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsv(h, s, v).Clamped().RGB255()
	return color.RGBA{r, g, b, 255}
}

// pick returns palette entry i, or a hue spread when there is no palette
func pick(in Input, i, n int, hue float64) color.RGBA {
	if len(in.Palette) > 0 {
		return in.Palette[((i%len(in.Palette))+len(in.Palette))%len(in.Palette)]
	}
	if n < 1 {
		n = 1
	}
	return hsv(hue+float64(i)*360/float64(n), 0.85, 1)
}

// noteHue maps the C2..C7 range onto the color wheel
func noteHue(note uint8) float64 {
	return math.Mod(float64(int(note)-36)/48*360+360, 360)
}

func clampf(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
