package display

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fogleman/gg"

	"video-instrument/frame"
	"video-instrument/scheduler"
)

// RecordQueue is how many frames may wait for the writer before new ones
// are dropped
const RecordQueue = 8

type pending struct {
	n   int
	buf *frame.Buffer
}

// Recorder writes every Nth frame as a numbered PNG and passes every frame
// on to next (which may be nil). Encoding happens on a writer goroutine;
// Present only copies the frame.
type Recorder struct {
	next  scheduler.Presenter
	dir   string
	every int
	n     int

	queue chan pending
	pool  sync.Pool
	done  chan struct{}
	close sync.Once

	written atomic.Int64
	dropped atomic.Uint64

	mu  sync.Mutex
	err error
}

// NewRecorder creates dir if needed and starts the writer
func NewRecorder(next scheduler.Presenter, dir string, every int) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &SurfaceError{Op: "record", Err: err}
	}
	r := &Recorder{
		next:  next,
		dir:   dir,
		every: max(every, 1),
		queue: make(chan pending, RecordQueue),
		done:  make(chan struct{}),
	}
	go r.write()
	return r, nil
}

// Written returns the number of PNG files saved
func (r *Recorder) Written() int { return int(r.written.Load()) }

// Dropped returns the number of frames skipped because the writer was behind
func (r *Recorder) Dropped() uint64 { return r.dropped.Load() }

// Close waits for queued frames to be written and stops the writer
func (r *Recorder) Close() error {
	r.close.Do(func() { close(r.queue) })
	<-r.done
	return r.writeErr()
}

func (r *Recorder) Present(ctx context.Context, f *frame.Buffer) error {
	if err := r.writeErr(); err != nil {
		return &SurfaceError{Op: "record", Err: err}
	}
	r.n++
	if (r.n-1)%r.every == 0 {
		buf := r.get(f)
		buf.CopyFrom(f)
		select {
		case r.queue <- pending{n: r.n, buf: buf}:
		default:
			r.pool.Put(buf)
			r.dropped.Add(1)
		}
	}
	if r.next != nil {
		return r.next.Present(ctx, f)
	}
	return nil
}

func (r *Recorder) get(f *frame.Buffer) *frame.Buffer {
	if b, ok := r.pool.Get().(*frame.Buffer); ok && b.SameSize(f) {
		return b
	}
	return frame.New(f.Width(), f.Height())
}

func (r *Recorder) write() {
	defer close(r.done)
	for p := range r.queue {
		if r.writeErr() == nil {
			dc := gg.NewContextForRGBA(p.buf.Image())
			path := filepath.Join(r.dir, fmt.Sprintf("fr%05d.png", p.n))
			if err := dc.SavePNG(path); err != nil {
				r.mu.Lock()
				r.err = err
				r.mu.Unlock()
			} else {
				r.written.Add(1)
			}
		}
		r.pool.Put(p.buf)
	}
}

func (r *Recorder) writeErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
