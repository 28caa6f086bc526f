package shape

import (
	"fmt"
	"image/color"
)

// Kind is a drawable primitive
type Kind int

const (
	Circle Kind = iota
	Polygon
	Star
	ChaosStar
	Line
)

func (k Kind) String() string {
	switch k {
	case Circle:
		return "circle"
	case Polygon:
		return "polygon"
	case Star:
		return "star"
	case ChaosStar:
		return "chaos-star"
	case Line:
		return "line"
	}
	return fmt.Sprintf("shape(%d)", int(k))
}

// Shape is one primitive for one frame. Position and size are in pixels,
// Rotation in degrees. Lines use X2/Y2 and Width; the rest use Size as the
// outer radius.
type Shape struct {
	Kind     Kind
	X, Y     float64
	Size     float64
	Rotation float64
	Sides    int     // polygon sides or star points
	Inner    float64 // star inner radius ratio, 0 means 0.5
	Color    color.RGBA
	Opacity  float64 // 0-1, multiplied into Color.A
	X2, Y2   float64
	Width    float64
	Outline  bool
}

// Mode is a shape style selectable by the shape_mode parameter. ModeMixed
// picks a style per item.
type Mode int

// Modes in shape_mode order
const (
	ModeMixed Mode = iota
	ModeCircle
	ModeTriangle
	ModeSquare
	ModePentagram
	ModeInvertedPentagram
	ModeChaosStar
	ModeStar
	modeCount
)

// ModeFor clamps an arbitrary integer into the mode range
func ModeFor(n int) Mode {
	if n < 0 {
		return ModeMixed
	}
	if n >= int(modeCount) {
		return modeCount - 1
	}
	return Mode(n)
}

// Resolve returns the concrete style for item index under mode m
func (m Mode) Resolve(index int) Mode {
	if m != ModeMixed {
		return m
	}
	if index < 0 {
		index = -index
	}
	return Mode(index%int(modeCount-1)) + ModeCircle
}

// Styled returns a shape of mode m centered at x, y with radius r. Mixed
// resolves to a circle; call Resolve first to vary styles.
func Styled(m Mode, x, y, r, rotation float64, c color.RGBA) Shape {
	s := Shape{X: x, Y: y, Size: r, Rotation: rotation, Color: c, Opacity: 1}
	switch m {
	case ModeTriangle:
		s.Kind, s.Sides = Polygon, 3
	case ModeSquare:
		s.Kind, s.Sides = Polygon, 4
	case ModePentagram:
		s.Kind, s.Sides, s.Inner = Star, 5, 0.38
	case ModeInvertedPentagram:
		s.Kind, s.Sides, s.Inner = Star, 5, 0.38
		s.Rotation += 180
	case ModeChaosStar:
		s.Kind = ChaosStar
	case ModeStar:
		s.Kind, s.Sides = Star, 8
	default:
		s.Kind = Circle
	}
	return s
}
