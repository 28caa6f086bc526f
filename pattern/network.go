package pattern

import (
	"math"
	"time"

	"video-instrument/control"
	"video-instrument/shape"
)

const (
	minNodes = 10
	maxNodes = 96
)

type node struct {
	x, y       float64
	vx, vy     float64
	activation float64
	hue        float64
	size       float64
	style      int
}

// Network is a field of wandering nodes joined by lines when closer than
// the connection distance. A note activates the node nearest its pitch
// height, spreads to that node's neighbours and scatters every node.
type Network struct {
	seeded
	trig triggers

	nodes  []node
	width  float64
	height float64
}

// NewNetwork creates a network generator
func NewNetwork(seed uint64) *Network {
	n := &Network{seeded: seeded{seed: seed}}
	n.Reset()
	return n
}

func (n *Network) Name() string { return "network" }

func (n *Network) Reset() {
	n.reseed()
	n.trig.reset()
	n.nodes = n.nodes[:0]
	n.width, n.height = 0, 0
}

func (n *Network) newNode(w, h float64) node {
	return node{
		x:     n.uniform(0, w),
		y:     n.uniform(0, h),
		vx:    n.uniform(-0.5, 0.5),
		vy:    n.uniform(-0.5, 0.5),
		hue:   n.uniform(0, 360),
		size:  n.uniform(3, 15),
		style: n.rng.IntN(3),
	}
}

// Nodes returns the current node count
func (n *Network) Nodes() int { return len(n.nodes) }

func (n *Network) resize(count int, w, h float64) {
	if n.width > 0 && (n.width != w || n.height != h) {
		for i := range n.nodes {
			n.nodes[i].x = n.nodes[i].x / n.width * w
			n.nodes[i].y = n.nodes[i].y / n.height * h
		}
	}
	n.width, n.height = w, h
	for len(n.nodes) < count {
		n.nodes = append(n.nodes, n.newNode(w, h))
	}
	n.nodes = n.nodes[:count]
}

func (n *Network) scatter(factor float64) {
	for i := range n.nodes {
		nd := &n.nodes[i]
		speed := math.Hypot(nd.vx, nd.vy) * factor
		a := n.uniform(0, 2*math.Pi)
		nd.vx, nd.vy = speed*math.Cos(a), speed*math.Sin(a)
	}
}

func (n *Network) Advance(dt time.Duration, in Input) []shape.Shape {
	w, h := float64(max(in.Width, 1)), float64(max(in.Height, 1))
	p := in.Params
	n.resize(int(clampf(math.Round(p.Get(control.ParamCount)*2), minNodes, maxNodes)), w, h)

	dist := p.Get(control.ParamConnectionDistance)
	spread := clampf(p.Get(control.ParamActivationSpread), 0, 1)

	for _, note := range n.trig.next(in.Snapshot) {
		vel := float64(note.Velocity) / 127
		y := h - float64(int(note.Number)-36)/48*h
		best := 0
		for i := range n.nodes {
			if math.Abs(n.nodes[i].y-y) < math.Abs(n.nodes[best].y-y) {
				best = i
			}
		}
		hot := &n.nodes[best]
		hot.activation = vel
		hot.hue = noteHue(note.Number)
		for i := range n.nodes {
			if i == best {
				continue
			}
			nd := &n.nodes[i]
			if math.Hypot(nd.x-hot.x, nd.y-hot.y) < dist {
				nd.activation = math.Min(nd.activation+vel*spread, 1)
				nd.hue = math.Mod(hot.hue+n.uniform(-30, 30)+360, 360)
			}
		}
		n.scatter(1 + vel)
	}

	f := frames(dt)
	speed := p.Get(control.ParamSpeed) / 0.5
	decay := math.Pow(clampf(p.Get(control.ParamDecayRate), 0, 0.999), f)
	for i := range n.nodes {
		nd := &n.nodes[i]
		// keep scattered nodes from running away
		if v := math.Hypot(nd.vx, nd.vy); v > 4 {
			nd.vx, nd.vy = nd.vx/v*4, nd.vy/v*4
		}
		nd.x = math.Mod(nd.x+nd.vx*speed*f+w, w)
		nd.y = math.Mod(nd.y+nd.vy*speed*f+h, h)
		nd.activation *= decay
	}

	hueShift := p.Get(control.ParamHue)
	size := clampf(p.Get(control.ParamSize), 0.05, 1) * 2
	mode := shape.ModeFor(p.Int(control.ParamShapeMode))

	shapes := make([]shape.Shape, 0, len(n.nodes)*2)
	for i := range n.nodes {
		a := &n.nodes[i]
		for j := i + 1; j < len(n.nodes); j++ {
			b := &n.nodes[j]
			d := math.Hypot(a.x-b.x, a.y-b.y)
			if d >= dist {
				continue
			}
			shapes = append(shapes, shape.Shape{
				Kind:    shape.Line,
				X:       a.x,
				Y:       a.y,
				X2:      b.x,
				Y2:      b.y,
				Width:   1 + 2*math.Max(a.activation, b.activation),
				Color:   hsv(a.hue+hueShift, 0.8, 1),
				Opacity: 0.2 + 0.8*(1-d/dist),
			})
		}
	}
	for i, nd := range n.nodes {
		m := mode
		if m == shape.ModeMixed {
			m = shape.ModeCircle + shape.Mode(nd.style)
		}
		r := math.Max(1, (nd.size+nd.activation*10)*size*0.5)
		shapes = append(shapes, shape.Styled(m.Resolve(i), nd.x, nd.y, r, 0, hsv(nd.hue+hueShift, 1, 1)))
	}
	return shapes
}
