package trail

import (
	"math"

	"video-instrument/frame"
	"video-instrument/shape"
)

// MaxDecay keeps the per-frame decay strictly below one so old frames always
// fade
const MaxDecay = 0.99

// Compositor blends past frames behind the current shapes. It owns its
// scratch buffers; the buffer returned by Composite stays valid until the
// next call.
type Compositor struct {
	mode    Mode
	opacity float64
	decay   float64

	layer   *frame.Buffer // shapes on transparent
	current *frame.Buffer // bg + shapes, pushed to history
	out     *frame.Buffer
	acc     *frame.Buffer // Fade only; nil until the first frame
}

// NewCompositor creates a compositor; opacity is clamped to [0, 1] and decay
// to [0, MaxDecay]
func NewCompositor(opacity, decay float64) *Compositor {
	c := &Compositor{}
	c.SetOpacity(opacity)
	c.SetDecay(decay)
	return c
}

func (c *Compositor) Opacity() float64 { return c.opacity }
func (c *Compositor) Decay() float64   { return c.decay }
func (c *Compositor) Mode() Mode       { return c.mode }

// SetMode switches the trail mode. The fade accumulator restarts from the
// next frame.
func (c *Compositor) SetMode(m Mode) {
	if m != c.mode {
		c.acc = nil
	}
	c.mode = m
}

// SetOpacity sets the weight of the newest history frame, before decay
func (c *Compositor) SetOpacity(v float64) {
	c.opacity = clamp(v, 0, 1)
}

// SetDecay sets the per-age falloff
func (c *Compositor) SetDecay(v float64) {
	c.decay = clamp(v, 0, MaxDecay)
}

// Weight is the blend weight of the history frame at age (1 = newest)
func (c *Compositor) Weight(age int) float64 {
	return c.opacity * math.Pow(c.decay, float64(age))
}

// Composite produces the output frame for this tick.
//
// Echo pushes the unblended current frame into h:
//
//	out = bg, lerped toward each history frame oldest to newest by Weight(age),
//	then the shapes drawn on top
//
// Fade keeps acc = lerp(acc, current, 1-decay), a convex mix of past frames,
// and draws out = lerp(bg, acc, opacity) with the shapes on top. Off draws
// bg and shapes only. Outside Echo the history is kept empty.
//
// With an empty history, or in Off, the output is exactly bg with the shapes
// drawn over.
func (c *Compositor) Composite(bg *frame.Buffer, shapes []shape.Shape, h *History) *frame.Buffer {
	c.ensure(bg)

	c.layer.Clear()
	shape.Draw(c.layer, shapes)

	c.current.CopyFrom(bg)
	c.current.Over(c.layer)

	c.out.CopyFrom(bg)
	switch c.mode {
	case Echo:
		for age := h.Len(); age >= 1; age-- {
			past := h.Frame(age)
			if past == nil || !past.SameSize(bg) {
				continue
			}
			c.out.Lerp(past, c.Weight(age))
		}
	case Fade:
		h.Clear()
		if c.acc == nil || !c.acc.SameSize(bg) {
			c.acc = c.current.Clone()
		} else {
			c.out.Lerp(c.acc, c.opacity)
			c.acc.Lerp(c.current, 1-c.decay)
		}
	default:
		h.Clear()
	}
	c.out.Over(c.layer)

	if c.mode == Echo {
		h.Push(c.current)
	}
	return c.out
}

func (c *Compositor) ensure(bg *frame.Buffer) {
	if c.out != nil && c.out.SameSize(bg) {
		return
	}
	w, hgt := bg.Width(), bg.Height()
	c.layer = frame.New(w, hgt)
	c.current = frame.New(w, hgt)
	c.out = frame.New(w, hgt)
}

// Release drops the scratch buffers
func (c *Compositor) Release() {
	c.layer, c.current, c.out, c.acc = nil, nil, nil, nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
