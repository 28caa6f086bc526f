package background

import (
	"fmt"

	"video-instrument/control"
	"video-instrument/frame"
)

// Input is what a background may read for one frame
type Input struct {
	Params control.Values
	Beat   float64
	BPM    float64
	Width  int
	Height int
}

// Layer fills a whole frame. Render must write every pixel of dst.
type Layer interface {
	Name() string
	Render(dst *frame.Buffer, in Input)
}

// Render draws l into a newly allocated buffer sized from in
func Render(l Layer, in Input) *frame.Buffer {
	dst := frame.New(in.Width, in.Height)
	l.Render(dst, in)
	return dst
}

// Names lists the stock layers in Set order
var Names = []string{"color_cycle", "gradient", "solid", "mono"}

// New creates a stock layer by name
func New(name string) (Layer, error) {
	switch name {
	case "color_cycle":
		return NewColorCycle(0), nil
	case "gradient":
		return NewGradient(), nil
	case "solid":
		return NewSolid("black")
	case "mono":
		return NewMono(MonoBlack), nil
	}
	return nil, fmt.Errorf("unknown background %q", name)
}

// Set is the ordered list of backgrounds with one active
type Set struct {
	layers []Layer
	active int

	// index to return to when leaving mono
	colorIdx int
}

// NewSet creates a set with the first layer active
func NewSet(layers ...Layer) *Set {
	return &Set{layers: layers}
}

// DefaultSet creates every stock layer
func DefaultSet() *Set {
	layers := make([]Layer, 0, len(Names))
	for _, name := range Names {
		l, err := New(name)
		if err != nil {
			continue
		}
		layers = append(layers, l)
	}
	return NewSet(layers...)
}

func (s *Set) Len() int   { return len(s.layers) }
func (s *Set) Index() int { return s.active }

// Active returns the active layer, or nil for an empty set
func (s *Set) Active() Layer {
	if len(s.layers) == 0 {
		return nil
	}
	return s.layers[s.active]
}

// Next cycles to the following layer
func (s *Set) Next() {
	if len(s.layers) == 0 {
		return
	}
	s.active = (s.active + 1) % len(s.layers)
}

// Select activates the layer called name
func (s *Set) Select(name string) bool {
	for i, l := range s.layers {
		if l.Name() == name {
			s.active = i
			return true
		}
	}
	return false
}

// CycleMono steps color → black → white → alternating → color, switching
// to the mono layer and back as needed
func (s *Set) CycleMono() {
	mi := -1
	for i, l := range s.layers {
		if _, ok := l.(*Mono); ok {
			mi = i
			break
		}
	}
	if mi < 0 {
		return
	}
	mono := s.layers[mi].(*Mono)

	if s.active != mi {
		s.colorIdx = s.active
		mono.Mode = MonoBlack
		s.active = mi
		return
	}
	if mono.Mode == MonoAlternate {
		s.active = s.colorIdx
		return
	}
	mono.Mode++
}

// ChangeBaseHue moves the color cycle base hue, if the set has one
func (s *Set) ChangeBaseHue(hue float64) {
	for _, l := range s.layers {
		if cc, ok := l.(*ColorCycle); ok {
			cc.SetBaseHue(hue)
		}
	}
}
