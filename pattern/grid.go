package pattern

import (
	"math"
	"time"

	"video-instrument/control"
	"video-instrument/shape"
)

const maxCells = 24 * 24

// Grid tessellates the canvas with rotating polygons. Count sets the number
// of cells, speed the rotation rate, spread the per-cell phase offset. Each
// note lights the cell at note mod cells; held notes stay lit.
type Grid struct {
	seeded
	trig triggers

	rotation float64
	light    [maxCells]float64
	offset   [maxCells]float64

	count smoother
}

// NewGrid creates a grid generator
func NewGrid(seed uint64) *Grid {
	g := &Grid{seeded: seeded{seed: seed}}
	g.Reset()
	return g
}

func (g *Grid) Name() string { return "grid" }

func (g *Grid) Reset() {
	g.reseed()
	g.trig.reset()
	g.rotation = 0
	g.light = [maxCells]float64{}
	for i := range g.offset {
		g.offset[i] = g.uniform(-1, 1)
	}
	g.count = newSmoother()
}

func (g *Grid) Advance(dt time.Duration, in Input) []shape.Shape {
	w, h := float64(max(in.Width, 1)), float64(max(in.Height, 1))
	p := in.Params

	cols := int(math.Round(math.Sqrt(clampf(g.count.step(dt, p.Get(control.ParamCount)), 1, maxCells) * w / h)))
	cols = max(1, min(cols, 24))
	cell := w / float64(cols)
	rows := max(1, min(int(math.Ceil(h/cell)), 24))
	cells := cols * rows

	g.rotation += p.Get(control.ParamSpeed) * 90 * dt.Seconds()
	fade := math.Pow(clampf(p.Get(control.ParamDecayRate), 0, 0.999), 4*frames(dt))
	for i := range g.light[:cells] {
		g.light[i] *= fade
	}
	for _, note := range g.trig.next(in.Snapshot) {
		g.light[int(note.Number)%cells] = float64(note.Velocity) / 127
	}
	for _, note := range in.Snapshot.HeldNotes() {
		i := int(note.Number) % cells
		g.light[i] = math.Max(g.light[i], float64(note.Velocity)/127)
	}

	spread := clampf(p.Get(control.ParamSpread), 0, 1)
	size := clampf(p.Get(control.ParamSize), 0.05, 1)
	mode := shape.ModeFor(p.Int(control.ParamShapeMode))
	hue := p.Get(control.ParamHue) + in.Beat*10
	pulse := 0.5 + 0.5*math.Cos(2*math.Pi*in.Beat)

	shapes := make([]shape.Shape, 0, cells)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			x := (float64(c) + 0.5) * cell
			y := (float64(r) + 0.5) * cell
			rot := g.rotation + float64(r+c)*spread*45 + g.offset[i]*spread*30
			radius := cell * 0.5 * size * (0.8 + 0.2*pulse + 0.4*g.light[i])

			m := mode
			if m == shape.ModeMixed {
				// polygons only, varying sides across the grid
				m = shape.ModeTriangle + shape.Mode((r+c)%2)
			}
			sh := shape.Styled(m.Resolve(i), x, y, radius, rot, pick(in, r+c, cols+rows, hue))
			sh.Opacity = 0.35 + 0.65*g.light[i]
			shapes = append(shapes, sh)
		}
	}
	return shapes
}
