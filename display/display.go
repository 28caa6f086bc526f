package display

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"video-instrument/frame"
)

// ErrSurfaceLost means the output can no longer show frames (window closed)
var ErrSurfaceLost = errors.New("surface lost")

// SurfaceError gives context for a failed surface operation
type SurfaceError struct {
	Op  string
	Err error
}

func (e *SurfaceError) Error() string {
	return fmt.Sprintf("display %s: %v", e.Op, e.Err)
}

func (e *SurfaceError) Unwrap() error { return e.Err }

// Headless accepts frames without showing them. It keeps a copy of the
// latest frame for inspection.
type Headless struct {
	frames atomic.Uint64

	mu   sync.Mutex
	last *frame.Buffer
}

func NewHeadless() *Headless { return &Headless{} }

func (h *Headless) Present(ctx context.Context, f *frame.Buffer) error {
	h.mu.Lock()
	if h.last == nil || !h.last.SameSize(f) {
		h.last = frame.New(f.Width(), f.Height())
	}
	h.last.CopyFrom(f)
	h.mu.Unlock()
	h.frames.Add(1)
	return nil
}

// Frames returns the number of frames presented
func (h *Headless) Frames() uint64 { return h.frames.Load() }

// Last returns a copy of the latest frame, or nil
func (h *Headless) Last() *frame.Buffer {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return nil
	}
	return h.last.Clone()
}
