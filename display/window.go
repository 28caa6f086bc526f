//go:build !headless

package display

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"video-instrument/frame"
)

// Window shows frames in an ebiten window. Run must be called from the main
// goroutine; Present may be called from any other.
type Window struct {
	width  int
	height int
	scale  int
	title  string

	mu     sync.RWMutex
	pixels []byte
	image  *ebiten.Image
	onKey  func(string)

	fullscreen bool
	vsync      chan struct{}
	done       chan struct{}
	closed     atomic.Bool
	userClosed atomic.Bool
	frames     atomic.Uint64
}

// NewWindow creates a window for w×h frames shown at scale
func NewWindow(w, h, scale int, title string) *Window {
	return &Window{
		width:  max(w, 1),
		height: max(h, 1),
		scale:  max(scale, 1),
		title:  title,
		pixels: make([]byte, max(w, 1)*max(h, 1)*4),
		vsync:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// SetKeyHandler receives key presses as lower-case names ("space", "p",
// "1", "[") matching the terminal key names
func (w *Window) SetKeyHandler(fn func(string)) {
	w.mu.Lock()
	w.onKey = fn
	w.mu.Unlock()
}

// Run opens the window and blocks until it is closed
func (w *Window) Run() error {
	ebiten.SetWindowSize(w.width*w.scale, w.height*w.scale)
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	defer close(w.done)
	err := ebiten.RunGame(w)
	if !w.closed.Swap(true) {
		w.userClosed.Store(true)
	}
	if err != nil {
		return &SurfaceError{Op: "run", Err: err}
	}
	return nil
}

// UserClosed reports whether the window went away without Close being called
func (w *Window) UserClosed() bool { return w.userClosed.Load() }

// Close asks the window to close on its next update
func (w *Window) Close() {
	w.closed.Store(true)
}

// Done is closed once the window is gone
func (w *Window) Done() <-chan struct{} { return w.done }

// Frames returns the number of frames drawn to the screen
func (w *Window) Frames() uint64 { return w.frames.Load() }

// Present copies f for the next Draw and waits for it, at most until ctx
// expires. A missed draw is not an error; a closed window is.
func (w *Window) Present(ctx context.Context, f *frame.Buffer) error {
	if w.closed.Load() {
		return &SurfaceError{Op: "present", Err: ErrSurfaceLost}
	}
	// a token left by a Draw nobody waited for is stale
	select {
	case <-w.vsync:
	default:
	}

	w.mu.Lock()
	if f.Width() == w.width && f.Height() == w.height {
		copy(w.pixels, f.Image().Pix)
	}
	w.mu.Unlock()

	select {
	case <-w.vsync:
	case <-ctx.Done():
	case <-w.done:
		return &SurfaceError{Op: "present", Err: ErrSurfaceLost}
	}
	return nil
}

func (w *Window) Update() error {
	if ebiten.IsWindowBeingClosed() || w.closed.Load() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		w.fullscreen = !w.fullscreen
		ebiten.SetFullscreen(w.fullscreen)
	}

	w.mu.RLock()
	handler := w.onKey
	w.mu.RUnlock()
	if handler == nil {
		return nil
	}
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		if name, ok := keyName(k); ok {
			handler(name)
		}
	}
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	if w.image == nil {
		w.image = ebiten.NewImage(w.width, w.height)
	}
	w.mu.RLock()
	w.image.WritePixels(w.pixels)
	w.mu.RUnlock()
	screen.DrawImage(w.image, nil)

	w.frames.Add(1)
	select {
	case w.vsync <- struct{}{}:
	default:
	}
}

func (w *Window) Layout(_, _ int) (int, int) {
	return w.width, w.height
}

func keyName(k ebiten.Key) (string, bool) {
	switch k {
	case ebiten.KeySpace:
		return "space", true
	case ebiten.KeyBracketLeft:
		return "[", true
	case ebiten.KeyBracketRight:
		return "]", true
	case ebiten.KeyEscape:
		return "esc", true
	}
	name := strings.ToLower(k.String())
	if d, ok := strings.CutPrefix(name, "digit"); ok {
		return d, true
	}
	if len(name) == 1 && name[0] >= 'a' && name[0] <= 'z' {
		return name, true
	}
	return "", false
}
