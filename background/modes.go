package background

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"video-instrument/control"
	"video-instrument/frame"
)

// Solid fills with one color
type Solid struct {
	name  string
	Color color.RGBA
}

// NewSolid creates a solid layer from an SVG color name
func NewSolid(name string) (*Solid, error) {
	c, ok := colornames.Map[name]
	if !ok {
		return nil, fmt.Errorf("unknown color %q", name)
	}
	return &Solid{name: "solid", Color: c}, nil
}

func (s *Solid) Name() string { return s.name }

func (s *Solid) Render(dst *frame.Buffer, in Input) {
	dst.Fill(s.Color)
}

// cycleBeats is the color cycle length in beats: 3600/bpm scaled by the
// cycle ratio parameter, never less than one
func cycleBeats(in Input) float64 {
	bpm := in.BPM
	if bpm <= 0 {
		bpm = 120
	}
	ratio := 1.0
	if v, ok := in.Params[control.ParamCycleRatio]; ok {
		ratio = v
	}
	return math.Max(1, math.Floor(math.Floor(3600/bpm)*ratio))
}

// progress is the position in the current cycle, [0, 1)
func progress(in Input) float64 {
	n := cycleBeats(in)
	p := math.Mod(in.Beat, n) / n
	if p < 0 {
		p += 1
	}
	return p
}

// ColorCycle is a dark fill whose hue turns once per cycle
type ColorCycle struct {
	BaseHue float64
}

// NewColorCycle creates a color cycle starting at baseHue degrees
func NewColorCycle(baseHue float64) *ColorCycle {
	c := &ColorCycle{}
	c.SetBaseHue(baseHue)
	return c
}

func (c *ColorCycle) Name() string { return "color_cycle" }

// SetBaseHue sets the starting hue, wrapped to [0, 360)
func (c *ColorCycle) SetBaseHue(h float64) {
	c.BaseHue = math.Mod(math.Mod(h, 360)+360, 360)
}

// Color returns the fill for in
func (c *ColorCycle) Color(in Input) color.RGBA {
	h := math.Mod(c.BaseHue+progress(in)*360+in.Params.Get(control.ParamHue), 360)
	r, g, b := colorful.Hsv(h, 0.5, 0.2).Clamped().RGB255()
	return color.RGBA{r, g, b, 255}
}

func (c *ColorCycle) Render(dst *frame.Buffer, in Input) {
	dst.Fill(c.Color(in))
}

// Gradient is a vertical two-stop gradient blended in HCL. The hue
// parameter turns both stops; the stops drift apart with the beat.
type Gradient struct{}

func NewGradient() *Gradient { return &Gradient{} }

func (g *Gradient) Name() string { return "gradient" }

func (g *Gradient) Render(dst *frame.Buffer, in Input) {
	hue := in.Params.Get(control.ParamHue) + progress(in)*360
	top := colorful.Hsv(math.Mod(hue, 360), 0.7, 0.35)
	bottom := colorful.Hsv(math.Mod(hue+120+30*math.Sin(2*math.Pi*in.Beat/4), 360), 0.6, 0.08)

	img := dst.Image()
	w, h := dst.Width(), dst.Height()
	for y := 0; y < h; y++ {
		t := 0.0
		if h > 1 {
			t = float64(y) / float64(h-1)
		}
		r, gg, b := top.BlendHcl(bottom, t).Clamped().RGB255()
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			row[i], row[i+1], row[i+2], row[i+3] = r, gg, b, 255
		}
	}
}

// MonoMode is a black-and-white variant
type MonoMode int

const (
	MonoBlack MonoMode = iota
	MonoWhite
	MonoAlternate
)

// Mono fills black, white, or a gray that pulses once per cycle
type Mono struct {
	Mode MonoMode
}

func NewMono(mode MonoMode) *Mono { return &Mono{Mode: mode} }

func (m *Mono) Name() string { return "mono" }

// Level returns the gray level for in
func (m *Mono) Level(in Input) uint8 {
	switch m.Mode {
	case MonoWhite:
		return 255
	case MonoAlternate:
		return uint8(math.Abs(math.Sin(progress(in)*math.Pi)) * 255)
	}
	return 0
}

func (m *Mono) Render(dst *frame.Buffer, in Input) {
	v := m.Level(in)
	dst.Fill(color.RGBA{v, v, v, 255})
}
