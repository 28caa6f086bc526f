package display

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"video-instrument/frame"
)

func TestHeadlessKeepsLastFrame(t *testing.T) {
	h := NewHeadless()
	f := frame.New(4, 3)
	f.Fill(color.RGBA{10, 20, 30, 255})
	for range 3 {
		if err := h.Present(context.Background(), f); err != nil {
			t.Fatal(err)
		}
	}
	if h.Frames() != 3 {
		t.Fatalf("frames = %d, want 3", h.Frames())
	}

	// later changes to the source do not leak into the copy
	f.Fill(color.RGBA{})
	if got := h.Last().At(1, 1); got != (color.RGBA{10, 20, 30, 255}) {
		t.Fatalf("last frame pixel = %v", got)
	}
}

func TestRecorderWritesEveryNth(t *testing.T) {
	dir := t.TempDir()
	next := NewHeadless()
	r, err := NewRecorder(next, filepath.Join(dir, "frames"), 2)
	if err != nil {
		t.Fatal(err)
	}
	f := frame.New(8, 8)
	f.Fill(color.RGBA{255, 0, 0, 255})
	for range 5 {
		if err := r.Present(context.Background(), f); err != nil {
			t.Fatal(err)
		}
	}
	if next.Frames() != 5 {
		t.Fatalf("passed on %d frames, want 5", next.Frames())
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if r.Written() != 3 {
		t.Fatalf("wrote %d files, want 3", r.Written())
	}
	for _, n := range []int{1, 3, 5} {
		if _, err := os.Stat(filepath.Join(dir, "frames", fmt.Sprintf("fr%05d.png", n))); err != nil {
			t.Errorf("frame %d: %v", n, err)
		}
	}
}

func TestRecorderBadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	_, err := NewRecorder(nil, filepath.Join(file, "sub"), 1)
	var se *SurfaceError
	if !errors.As(err, &se) || se.Op != "record" {
		t.Fatalf("err = %v, want record SurfaceError", err)
	}
}

func TestRecorderPresentWithinInterval(t *testing.T) {
	r, err := NewRecorder(nil, t.TempDir(), 1)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	f := frame.New(640, 360)
	f.Fill(color.RGBA{0, 128, 255, 255})
	for range RecordQueue {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second/60)
		if err := r.Present(ctx, f); err != nil {
			t.Fatal(err)
		}
		if ctx.Err() != nil {
			t.Fatal("Present outlived the frame interval")
		}
		cancel()
	}
}

func TestRecorderReportsWriteError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	r, err := NewRecorder(nil, dir, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := r.Present(context.Background(), frame.New(4, 4)); err != nil {
		t.Fatalf("first Present = %v, want nil", err)
	}
	if err := r.Close(); err == nil {
		t.Fatal("Close did not report the failed write")
	}
	var se *SurfaceError
	if err := r.Present(context.Background(), frame.New(4, 4)); !errors.As(err, &se) || se.Op != "record" {
		t.Fatalf("Present after failed write = %v", err)
	}
}

func TestSurfaceErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("frame 3: %w", &SurfaceError{Op: "present", Err: ErrSurfaceLost})
	if !errors.Is(err, ErrSurfaceLost) {
		t.Fatal("ErrSurfaceLost not found through SurfaceError")
	}
}

func TestHUDDrawsOnlyWhenEnabled(t *testing.T) {
	next := NewHeadless()
	h, err := NewHUD(next, 12, func() []string { return []string{"fps 60", "swarm"} })
	if err != nil {
		t.Fatal(err)
	}
	black := color.RGBA{0, 0, 0, 255}
	f := frame.New(120, 60)

	f.Fill(black)
	h.Present(context.Background(), f)
	if !next.Last().Equal(f) || f.At(20, 10) != black {
		t.Fatal("disabled HUD changed the frame")
	}

	if !h.Toggle() || !h.Enabled() {
		t.Fatal("Toggle did not enable")
	}
	h.Present(context.Background(), f)
	lit := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 60; x++ {
			if c := f.At(x, y); c.R > 100 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatal("enabled HUD drew no text")
	}
}
