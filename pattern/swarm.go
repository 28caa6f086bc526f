package pattern

import (
	"math"
	"time"

	"video-instrument/control"
	"video-instrument/shape"
)

const maxSwarm = 128

// Swarm places shapes on a ring whose radius breathes. Speed drives the
// breathing and rotation, count the number of shapes, spread the breathing
// depth; notes kick the ring outward.
type Swarm struct {
	seeded
	trig triggers

	phase    float64
	rotation float64
	kick     float64
	hue      float64
	jitter   [maxSwarm]float64

	speed smoother
	count smoother
}

// NewSwarm creates a swarm generator
func NewSwarm(seed uint64) *Swarm {
	s := &Swarm{seeded: seeded{seed: seed}}
	s.Reset()
	return s
}

func (s *Swarm) Name() string { return "swarm" }

func (s *Swarm) Reset() {
	s.reseed()
	s.trig.reset()
	s.phase, s.rotation, s.kick, s.hue = 0, 0, 0, 0
	for i := range s.jitter {
		s.jitter[i] = s.uniform(0, 2*math.Pi)
	}
	s.speed = newSmoother()
	s.count = newSmoother()
}

func (s *Swarm) Advance(dt time.Duration, in Input) []shape.Shape {
	w, h := float64(max(in.Width, 1)), float64(max(in.Height, 1))
	p := in.Params

	speed := s.speed.step(dt, p.Get(control.ParamSpeed))
	n := int(math.Round(clampf(s.count.step(dt, p.Get(control.ParamCount)), 1, maxSwarm)))
	spread := clampf(p.Get(control.ParamSpread), 0, 1)
	size := clampf(p.Get(control.ParamSize), 0.05, 1)
	mode := shape.ModeFor(p.Int(control.ParamShapeMode))
	decay := clampf(p.Get(control.ParamDecayRate), 0, 0.999)

	for _, note := range s.trig.next(in.Snapshot) {
		s.kick = math.Min(1, s.kick+float64(note.Velocity)/127)
		s.hue = noteHue(note.Number)
	}

	sec := dt.Seconds()
	s.phase += speed * sec
	s.rotation += speed * 40 * sec
	s.kick *= math.Pow(decay, frames(dt))

	base := math.Min(w, h) * 0.3
	radius := base * (1 + 0.5*spread*math.Sin(2*math.Pi*s.phase)) * (1 + 0.4*s.kick)
	cx, cy := w/2, h/2
	hue := s.hue + p.Get(control.ParamHue) + in.Beat*15
	warp := p.Get(control.ParamWarp)

	shapes := make([]shape.Shape, 0, n)
	for i := 0; i < n; i++ {
		a := 2*math.Pi*float64(i)/float64(n) + s.rotation*math.Pi/180 + warp*math.Sin(s.phase+float64(i))
		r := radius * (1 + 0.25*spread*math.Sin(3*2*math.Pi*s.phase+s.jitter[i]))
		sz := base * 0.15 * size * (1 + 0.5*s.kick)
		c := pick(in, i, n, hue)
		sh := shape.Styled(mode.Resolve(i), cx+r*math.Cos(a), cy+r*math.Sin(a), sz, s.rotation+float64(i)*10, c)
		sh.Opacity = 0.6 + 0.4*math.Abs(math.Sin(s.phase*math.Pi+s.jitter[i]))
		shapes = append(shapes, sh)
	}
	return shapes
}
