package display

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"video-instrument/frame"
	"video-instrument/scheduler"
)

// HUD draws status text over each frame before passing it to next
type HUD struct {
	next  scheduler.Presenter
	lines func() []string
	face  font.Face
	size  float64

	enabled atomic.Bool
}

// NewHUD parses the Go Regular font. lines is called once per frame.
func NewHUD(next scheduler.Presenter, size float64, lines func() []string) (*HUD, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse hud font: %w", err)
	}
	if size <= 0 {
		size = 12
	}
	return &HUD{
		next:  next,
		lines: lines,
		face:  truetype.NewFace(f, &truetype.Options{Size: size}),
		size:  size,
	}, nil
}

func (h *HUD) Enabled() bool     { return h.enabled.Load() }
func (h *HUD) SetEnabled(v bool) { h.enabled.Store(v) }

// Toggle flips the overlay and returns the new setting
func (h *HUD) Toggle() bool {
	for {
		v := h.enabled.Load()
		if h.enabled.CompareAndSwap(v, !v) {
			return !v
		}
	}
}

func (h *HUD) Present(ctx context.Context, f *frame.Buffer) error {
	if h.enabled.Load() && h.lines != nil {
		h.draw(f, h.lines())
	}
	if h.next != nil {
		return h.next.Present(ctx, f)
	}
	return nil
}

func (h *HUD) draw(f *frame.Buffer, lines []string) {
	if len(lines) == 0 {
		return
	}
	dc := gg.NewContextForRGBA(f.Image())
	dc.SetFontFace(h.face)

	lh := h.size * 1.4
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawRectangle(4, 4, float64(f.Width())*0.5, lh*float64(len(lines))+6)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	for i, line := range lines {
		dc.DrawString(line, 8, 6+lh*float64(i+1)-lh*0.3)
	}
}
