package shape

import (
	"math"

	"github.com/fogleman/gg"

	"video-instrument/frame"
)

// Draw rasterizes shapes onto dst in order, later shapes on top
func Draw(dst *frame.Buffer, shapes []Shape) {
	if len(shapes) == 0 {
		return
	}
	dc := gg.NewContextForRGBA(dst.Image())
	for _, s := range shapes {
		drawShape(dc, s)
	}
}

func drawShape(dc *gg.Context, s Shape) {
	op := s.Opacity
	if op <= 0 {
		return
	}
	if op > 1 {
		op = 1
	}
	dc.SetRGBA255(int(s.Color.R), int(s.Color.G), int(s.Color.B), int(float64(s.Color.A)*op))

	switch s.Kind {
	case Line:
		dc.SetLineWidth(math.Max(s.Width, 0.5))
		dc.DrawLine(s.X, s.Y, s.X2, s.Y2)
		dc.Stroke()
		return
	case Polygon:
		sides := s.Sides
		if sides < 3 {
			sides = 3
		}
		dc.DrawRegularPolygon(sides, s.X, s.Y, s.Size, gg.Radians(s.Rotation))
	case Star:
		starPath(dc, s)
	case ChaosStar:
		chaosPath(dc, s)
	default:
		dc.DrawCircle(s.X, s.Y, s.Size)
	}

	if s.Outline {
		dc.SetLineWidth(math.Max(s.Width, 1))
		dc.Stroke()
	} else {
		dc.Fill()
	}
}

// starPath alternates outer and inner vertices, first point straight up
func starPath(dc *gg.Context, s Shape) {
	points := s.Sides
	if points < 2 {
		points = 5
	}
	inner := s.Inner
	if inner <= 0 {
		inner = 0.5
	}
	rot := gg.Radians(s.Rotation) - math.Pi/2
	for i := 0; i < points*2; i++ {
		r := s.Size
		if i%2 == 1 {
			r *= inner
		}
		a := rot + float64(i)*math.Pi/float64(points)
		dc.LineTo(s.X+r*math.Cos(a), s.Y+r*math.Sin(a))
	}
	dc.ClosePath()
}

// chaosPath draws eight arrow heads pointing outward
func chaosPath(dc *gg.Context, s Shape) {
	base := s.Size * 0.7
	spread := gg.Radians(10)
	for i := 0; i < 8; i++ {
		a := gg.Radians(45*float64(i) + s.Rotation)
		dc.MoveTo(s.X+s.Size*math.Cos(a), s.Y+s.Size*math.Sin(a))
		dc.LineTo(s.X+base*math.Cos(a+spread), s.Y+base*math.Sin(a+spread))
		dc.LineTo(s.X+base*math.Cos(a-spread), s.Y+base*math.Sin(a-spread))
		dc.ClosePath()
	}
	dc.DrawCircle(s.X, s.Y, s.Size*0.15)
}
