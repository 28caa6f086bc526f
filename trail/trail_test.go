package trail

import (
	"image/color"
	"testing"

	"video-instrument/frame"
	"video-instrument/shape"
)

func solid(v uint8) *frame.Buffer {
	b := frame.New(8, 8)
	b.Fill(color.RGBA{v, v, v, 255})
	return b
}

func TestHistoryCapacityAndEviction(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Push(solid(uint8(i * 10)))
		if h.Len() > h.Capacity() {
			t.Fatalf("len %d exceeds capacity %d", h.Len(), h.Capacity())
		}
	}
	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3", h.Len())
	}
	// newest first: 50, 40, 30
	for age, want := range []uint8{50, 40, 30} {
		if got := h.Frame(age + 1).At(0, 0).R; got != want {
			t.Fatalf("frame age %d = %d, want %d", age+1, got, want)
		}
	}
	if h.Frame(4) != nil || h.Frame(0) != nil {
		t.Fatal("out of range age returned a frame")
	}
}

func TestHistoryReusesEvictedBuffers(t *testing.T) {
	h := NewHistory(2)
	h.Push(solid(1))
	h.Push(solid(2))
	oldest := h.Frame(2)
	h.Push(solid(3))
	if h.Frame(1) != oldest {
		t.Fatal("evicted buffer was not reused for the newest frame")
	}
}

func TestHistoryZeroCapacity(t *testing.T) {
	h := NewHistory(0)
	h.Push(solid(1))
	if h.Len() != 0 {
		t.Fatalf("len = %d, want 0", h.Len())
	}
	if NewHistory(1000).Capacity() != MaxCapacity {
		t.Fatal("capacity not bounded")
	}
}

func TestHistoryResize(t *testing.T) {
	h := NewHistory(4)
	for i := 1; i <= 4; i++ {
		h.Push(solid(uint8(i)))
	}
	h.Resize(2)
	if h.Len() != 2 || h.Frame(1).At(0, 0).R != 4 || h.Frame(2).At(0, 0).R != 3 {
		t.Fatalf("resize kept wrong frames")
	}
	h.Push(solid(5))
	if h.Frame(1).At(0, 0).R != 5 || h.Frame(2).At(0, 0).R != 4 {
		t.Fatal("push after resize misordered")
	}
}

var dot = []shape.Shape{{Kind: shape.Circle, X: 4, Y: 4, Size: 2, Color: color.RGBA{255, 0, 0, 255}, Opacity: 1}}

func TestCompositeEmptyHistoryIsBackgroundPlusShapes(t *testing.T) {
	bg := solid(40)
	c := NewCompositor(0.9, 0.9)
	out := c.Composite(bg, dot, NewHistory(4))

	want := bg.Clone()
	layer := frame.New(8, 8)
	shape.Draw(layer, dot)
	want.Over(layer)

	if !out.Equal(want) {
		t.Fatal("composite with empty history differs from bg + shapes")
	}
}

func TestCompositePushesUnblendedFrame(t *testing.T) {
	h := NewHistory(4)
	c := NewCompositor(1, 0.9)
	c.Composite(solid(200), nil, h)
	c.Composite(solid(10), nil, h)

	if got := h.Frame(1).At(0, 0).R; got != 10 {
		t.Fatalf("pushed frame = %d, want raw background 10", got)
	}
}

func TestCompositeStaysBounded(t *testing.T) {
	h := NewHistory(8)
	c := NewCompositor(1, MaxDecay)
	bg := solid(100)
	for i := 0; i < 8; i++ {
		h.Push(solid(255))
	}
	out := c.Composite(bg, nil, h)
	for _, v := range out.Image().Pix {
		if v < 100 {
			t.Fatalf("channel %d below the blended inputs", v)
		}
	}
	if a := out.At(3, 3).A; a != 255 {
		t.Fatalf("alpha = %d, want 255", a)
	}
}

func TestCompositeOldestGoneAfterCapacityPlusOne(t *testing.T) {
	const capacity = 3
	c := NewCompositor(0.8, 0.9)
	bg := solid(0)

	// history that saw an extra, very bright first frame
	h1 := NewHistory(capacity)
	h1.Push(solid(255))
	for i := 1; i <= capacity; i++ {
		h1.Push(solid(uint8(i * 20)))
	}
	// history that never saw it
	h2 := NewHistory(capacity)
	for i := 1; i <= capacity; i++ {
		h2.Push(solid(uint8(i * 20)))
	}

	a := c.Composite(bg, dot, h1).Clone()
	b := c.Composite(bg, dot, h2)
	if !a.Equal(b) {
		t.Fatal("evicted frame still contributes to the output")
	}
}

func TestCompositorClamps(t *testing.T) {
	c := NewCompositor(3, 1.5)
	if c.Opacity() != 1 || c.Decay() != MaxDecay {
		t.Fatalf("opacity %f decay %f not clamped", c.Opacity(), c.Decay())
	}
	c.SetDecay(-1)
	c.SetOpacity(-1)
	if c.Opacity() != 0 || c.Decay() != 0 {
		t.Fatal("negative values not clamped")
	}
	if w := NewCompositor(1, 0.5).Weight(2); w != 0.25 {
		t.Fatalf("weight(2) = %f, want 0.25", w)
	}
}

func TestCompositeOffIgnoresHistory(t *testing.T) {
	bg := solid(40)
	want := NewCompositor(0.9, 0.9).Composite(bg, dot, NewHistory(4)).Clone()

	h := NewHistory(4)
	for i := 0; i < 4; i++ {
		h.Push(solid(250))
	}
	c := NewCompositor(0.9, 0.9)
	c.SetMode(Off)
	for i := 0; i < 3; i++ {
		if out := c.Composite(bg, dot, h); !out.Equal(want) {
			t.Fatalf("frame %d: off differs from empty-history output", i)
		}
	}
	if h.Len() != 0 {
		t.Fatalf("history len = %d, want 0 in off", h.Len())
	}
}

func TestCompositeFadeStaysBounded(t *testing.T) {
	c := NewCompositor(1, MaxDecay)
	c.SetMode(Fade)
	h := NewHistory(8)
	for i := 0; i < 200; i++ {
		v := uint8(60)
		if i%2 == 0 {
			v = 200
		}
		out := c.Composite(solid(v), nil, h)
		for _, p := range out.Image().Pix {
			if p < 60 && p != 255 || p > 200 && p != 255 {
				t.Fatalf("frame %d: channel %d outside the inputs", i, p)
			}
		}
		if a := out.At(3, 3).A; a != 255 {
			t.Fatalf("frame %d: alpha = %d, want 255", i, a)
		}
	}
	if h.Len() != 0 {
		t.Fatalf("history len = %d, want 0 in fade", h.Len())
	}
}

func TestCompositeFadeDecaysTowardCurrent(t *testing.T) {
	c := NewCompositor(1, 0.5)
	c.SetMode(Fade)
	h := NewHistory(4)
	c.Composite(solid(200), nil, h)
	first := c.Composite(solid(0), nil, h).At(0, 0).R
	var last uint8
	for i := 0; i < 20; i++ {
		last = c.Composite(solid(0), nil, h).At(0, 0).R
	}
	if first != 200 || last > 1 {
		t.Fatalf("fade %d -> %d, want 200 falling to ~0", first, last)
	}
}

func TestModeCycleAndParse(t *testing.T) {
	tests := []struct {
		in   Mode
		next Mode
		name string
	}{
		{Echo, Fade, "echo"},
		{Fade, Off, "fade"},
		{Off, Echo, "off"},
	}
	for _, tt := range tests {
		if got := tt.in.Next(); got != tt.next {
			t.Errorf("%v.Next() = %v, want %v", tt.in, got, tt.next)
		}
		if tt.in.String() != tt.name {
			t.Errorf("String() = %q, want %q", tt.in.String(), tt.name)
		}
		if m, err := ParseMode(tt.name); err != nil || m != tt.in {
			t.Errorf("ParseMode(%q) = %v, %v", tt.name, m, err)
		}
	}
	if _, err := ParseMode("smear"); err == nil {
		t.Error("unknown mode parsed")
	}
	if NewCompositor(1, 1).Mode() != Echo || Mode(0) != Echo {
		t.Error("default mode is not echo")
	}
	if Mode(9).Next() != Echo {
		t.Error("out of range mode did not reset to echo")
	}
}
