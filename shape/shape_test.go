package shape

import (
	"image/color"
	"testing"

	"video-instrument/frame"
)

var red = color.RGBA{255, 0, 0, 255}

func TestDrawKinds(t *testing.T) {
	shapes := []Shape{
		{Kind: Circle, X: 32, Y: 32, Size: 10, Color: red, Opacity: 1},
		{Kind: Polygon, Sides: 4, X: 32, Y: 32, Size: 10, Color: red, Opacity: 1},
		{Kind: Star, Sides: 5, X: 32, Y: 32, Size: 10, Color: red, Opacity: 1},
		{Kind: ChaosStar, X: 32, Y: 32, Size: 10, Color: red, Opacity: 1},
		{Kind: Line, X: 0, Y: 32, X2: 64, Y2: 32, Width: 4, Color: red, Opacity: 1},
	}
	for _, s := range shapes {
		t.Run(s.Kind.String(), func(t *testing.T) {
			buf := frame.New(64, 64)
			Draw(buf, []Shape{s})
			if c := buf.At(32, 32); c.R < 200 || c.A < 200 {
				t.Fatalf("center pixel = %v, want red", c)
			}
			if c := buf.At(1, 1); c.A != 0 {
				t.Fatalf("corner pixel = %v, want transparent", c)
			}
		})
	}
}

func TestDrawOpacity(t *testing.T) {
	buf := frame.New(16, 16)
	Draw(buf, []Shape{{Kind: Circle, X: 8, Y: 8, Size: 6, Color: red, Opacity: 0}})
	if !buf.Equal(frame.New(16, 16)) {
		t.Fatal("zero opacity shape drew pixels")
	}

	Draw(buf, []Shape{{Kind: Circle, X: 8, Y: 8, Size: 6, Color: red, Opacity: 0.5}})
	if c := buf.At(8, 8); c.A < 120 || c.A > 135 {
		t.Fatalf("half opacity alpha = %d", c.A)
	}
}

func TestModeFor(t *testing.T) {
	if ModeFor(-3) != ModeMixed || ModeFor(99) != ModeStar || ModeFor(3) != ModeSquare {
		t.Fatal("ModeFor did not clamp")
	}
	if ModeMixed.Resolve(0) != ModeCircle || ModeMixed.Resolve(7) != ModeCircle || ModeMixed.Resolve(6) != ModeStar {
		t.Fatal("mixed mode did not cycle styles")
	}
	if ModeSquare.Resolve(5) != ModeSquare {
		t.Fatal("fixed mode changed with index")
	}
	s := Styled(ModeInvertedPentagram, 0, 0, 5, 10, red)
	if s.Kind != Star || s.Sides != 5 || s.Rotation != 190 {
		t.Fatalf("inverted pentagram = %+v", s)
	}
}
