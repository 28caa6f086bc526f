package pattern

import (
	"math"
	"time"

	"video-instrument/control"
	"video-instrument/shape"
)

// MaxParticles bounds the particle pool
const MaxParticles = 512

// Emitter placement modes
const (
	EmitRandom = iota
	EmitSpiral
	EmitFountain
	emitModes
)

type particle struct {
	x, y  float64
	speed float64
	angle float64
	size  float64
	hue   float64
	life  float64
}

// Particles emits particles at count per second. Note 0 cycles the emitter
// mode (random, spiral, fountain); other notes burst velocity/20 particles
// with speed from velocity.
type Particles struct {
	seeded
	trig triggers

	pool    []particle
	mode    int
	acc     float64
	spawned int
	burst   float64
}

// NewParticles creates a particle generator
func NewParticles(seed uint64) *Particles {
	p := &Particles{seeded: seeded{seed: seed}, pool: make([]particle, 0, MaxParticles)}
	p.Reset()
	return p
}

func (p *Particles) Name() string { return "particles" }

// Mode returns the emitter mode
func (p *Particles) Mode() int { return p.mode }

// Live returns the number of live particles
func (p *Particles) Live() int { return len(p.pool) }

func (p *Particles) Reset() {
	p.reseed()
	p.trig.reset()
	p.pool = p.pool[:0]
	p.mode = EmitRandom
	p.acc = 0
	p.spawned = 0
	p.burst = 3
}

func (p *Particles) spawn(w, h, speed, hue float64) {
	if len(p.pool) >= MaxParticles {
		// recycle the oldest
		copy(p.pool, p.pool[1:])
		p.pool = p.pool[:len(p.pool)-1]
	}
	var x, y, angle float64
	switch p.mode {
	case EmitSpiral:
		angle = float64(p.spawned) * 0.1
		radius := 100 + float64(p.spawned%100)
		x = w/2 + math.Cos(angle)*radius
		y = h/2 + math.Sin(angle)*radius
		angle += math.Pi / 2
	case EmitFountain:
		x, y = w/2, h
		angle = p.uniform(-math.Pi*0.6, -math.Pi*0.4)
	default:
		x, y = p.uniform(0, w), p.uniform(0, h)
		angle = p.uniform(0, 2*math.Pi)
	}
	p.spawned++
	p.pool = append(p.pool, particle{
		x: x, y: y,
		speed: speed,
		angle: angle,
		size:  p.uniform(2, 8),
		hue:   hue + p.uniform(-30, 30),
		life:  1,
	})
}

func (p *Particles) Advance(dt time.Duration, in Input) []shape.Shape {
	w, h := float64(max(in.Width, 1)), float64(max(in.Height, 1))
	params := in.Params
	hue := params.Get(control.ParamHue)

	for _, note := range p.trig.next(in.Snapshot) {
		if note.Number == 0 {
			p.mode = (p.mode + 1) % emitModes
			continue
		}
		p.burst = 2 + float64(note.Velocity)/127*4
		for i := 0; i < max(1, note.Velocity/20); i++ {
			p.spawn(w, h, p.burst, noteHue(note.Number))
		}
	}

	f := frames(dt)
	decay := math.Pow(clampf(params.Get(control.ParamDecayRate), 0, 0.999), f)
	speedScale := params.Get(control.ParamSpeed) / 0.5
	live := p.pool[:0]
	for _, pt := range p.pool {
		pt.x = math.Mod(pt.x+math.Cos(pt.angle)*pt.speed*speedScale*f+w, w)
		pt.y = math.Mod(pt.y+math.Sin(pt.angle)*pt.speed*speedScale*f+h, h)
		pt.life *= decay
		if pt.life > 0.01 {
			live = append(live, pt)
		}
	}
	p.pool = live

	p.acc += clampf(params.Get(control.ParamCount), 0, 240) * dt.Seconds()
	for p.acc >= 1 {
		p.acc--
		p.spawn(w, h, p.burst, hue+in.Beat*20)
	}

	size := clampf(params.Get(control.ParamSize), 0.05, 1) * 2
	mode := shape.ModeFor(params.Int(control.ParamShapeMode))
	shapes := make([]shape.Shape, 0, len(p.pool))
	for i, pt := range p.pool {
		m := mode
		if m == shape.ModeMixed {
			m = shape.ModeCircle
		}
		sh := shape.Styled(m.Resolve(i), pt.x, pt.y, math.Max(1, pt.size*pt.life*size), pt.angle*180/math.Pi, hsv(pt.hue, 0.9, 1))
		sh.Opacity = pt.life
		shapes = append(shapes, sh)
	}
	return shapes
}
