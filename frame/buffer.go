// Package frame holds the RGBA pixel buffers passed between render stages.
package frame

import (
	"bytes"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Buffer is a W×H premultiplied RGBA image
type Buffer struct {
	img *image.RGBA
}

// New allocates a transparent buffer
func New(w, h int) *Buffer {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Buffer{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (b *Buffer) Width() int  { return b.img.Rect.Dx() }
func (b *Buffer) Height() int { return b.img.Rect.Dy() }

// Image exposes the backing image for drawing libraries
func (b *Buffer) Image() *image.RGBA {
	return b.img
}

// SameSize reports whether o has the same dimensions
func (b *Buffer) SameSize(o *Buffer) bool {
	return b.img.Rect.Eq(o.img.Rect)
}

// At returns the pixel at x, y
func (b *Buffer) At(x, y int) color.RGBA {
	return b.img.RGBAAt(x, y)
}

// Fill writes c to every pixel
func (b *Buffer) Fill(c color.RGBA) {
	pix := b.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// Clear makes every pixel transparent
func (b *Buffer) Clear() {
	clear(b.img.Pix)
}

// CopyFrom overwrites b with src. Both must be the same size.
func (b *Buffer) CopyFrom(src *Buffer) {
	copy(b.img.Pix, src.img.Pix)
}

// Clone returns an independent copy
func (b *Buffer) Clone() *Buffer {
	c := New(b.Width(), b.Height())
	c.CopyFrom(b)
	return c
}

// Over composites layer on top of b (Porter-Duff over)
func (b *Buffer) Over(layer *Buffer) {
	draw.Draw(b.img, b.img.Rect, layer.img, image.Point{}, draw.Over)
}

// Lerp moves every channel of b toward src by weight w in [0, 1]:
// b = b·(1-w) + src·w. The result is a convex combination of the two inputs
// so it never leaves their range.
func (b *Buffer) Lerp(src *Buffer, w float64) {
	if math.IsNaN(w) || w <= 0 {
		return
	}
	if w >= 1 {
		b.CopyFrom(src)
		return
	}
	wi := uint32(math.Round(w * 256))
	inv := 256 - wi
	dst, s := b.img.Pix, src.img.Pix
	n := min(len(dst), len(s))
	for i := 0; i < n; i++ {
		dst[i] = uint8((uint32(dst[i])*inv + uint32(s[i])*wi + 128) >> 8)
	}
}

// Equal reports whether both buffers hold identical pixels
func (b *Buffer) Equal(o *Buffer) bool {
	return b.SameSize(o) && bytes.Equal(b.img.Pix, o.img.Pix)
}
