//go:build headless

package display

import (
	"context"
	"errors"

	"video-instrument/frame"
)

var errNoWindow = errors.New("built without window support")

// Window is unavailable in headless builds; every call fails
type Window struct {
	done chan struct{}
}

func NewWindow(w, h, scale int, title string) *Window {
	done := make(chan struct{})
	close(done)
	return &Window{done: done}
}

func (w *Window) SetKeyHandler(fn func(string)) {}
func (w *Window) Run() error                    { return &SurfaceError{Op: "run", Err: errNoWindow} }
func (w *Window) Close()                        {}
func (w *Window) Done() <-chan struct{}         { return w.done }
func (w *Window) Frames() uint64                { return 0 }
func (w *Window) UserClosed() bool              { return false }

func (w *Window) Present(ctx context.Context, f *frame.Buffer) error {
	return &SurfaceError{Op: "present", Err: ErrSurfaceLost}
}
