package scheduler

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"video-instrument/background"
	"video-instrument/control"
	"video-instrument/debug"
	"video-instrument/frame"
	"video-instrument/midi"
	"video-instrument/pattern"
	"video-instrument/trail"
)

var (
	ErrNotIdle = errors.New("scheduler: not idle")
	ErrStopped = errors.New("scheduler: stopped")
)

// State is the scheduler lifecycle state
type State int32

const (
	Idle State = iota
	Running
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Presenter shows a composed frame. The buffer is only valid until Present
// returns. Any error is fatal to the scheduler.
type Presenter interface {
	Present(ctx context.Context, f *frame.Buffer) error
}

// Config is the render loop setup
type Config struct {
	FrameRate float64
	Width     int
	Height    int
	BPM       float64 // used while no external clock is present
	Seed      uint64

	TrailMode     trail.Mode
	TrailCapacity int
	TrailOpacity  float64
	TrailDecay    float64
}

// Scheduler drives the render side: one tick per frame interval, reading the
// control store and handing composed frames to the presenter
type Scheduler struct {
	cfg       Config
	interval  time.Duration
	clock     Clock
	store     *control.Store
	presenter Presenter
	input     *midi.Input

	mapping     *control.Mapping
	lfos        *control.LFOBank
	deck        *pattern.Deck
	backgrounds *background.Set
	palette     []color.RGBA
	onPattern   func(active, count int)

	commands chan Command
	updates  chan struct{}

	mu     sync.Mutex
	state  State
	wake   chan struct{}
	stop   chan struct{}
	done   chan struct{}
	err    error
	cause  error // set by Fail
	closer sync.Once

	metrics Metrics
	info    atomic.Pointer[info]

	// render-owned
	compositor  *trail.Compositor
	history     *trail.History
	bg          *frame.Buffer
	rng         *rand.Rand
	origin      time.Time
	lastTick    time.Time
	lastProgram uint64
}

// New creates an idle scheduler with the default mapping, pattern catalog
// and background set
func New(cfg Config, store *control.Store, p Presenter) *Scheduler {
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 60
	}
	if cfg.BPM <= 0 {
		cfg.BPM = 120
	}
	cfg.Width, cfg.Height = max(cfg.Width, 1), max(cfg.Height, 1)

	s := &Scheduler{
		cfg:         cfg,
		interval:    time.Duration(float64(time.Second) / cfg.FrameRate),
		clock:       RealClock,
		store:       store,
		presenter:   p,
		mapping:     control.DefaultMapping(),
		lfos:        control.NewLFOBank(),
		deck:        pattern.NewDeck(pattern.Catalog(cfg.Seed)...),
		backgrounds: background.DefaultSet(),
		commands:    make(chan Command, 16),
		updates:     make(chan struct{}, 1),
		wake:        make(chan struct{}, 1),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		compositor:  trail.NewCompositor(cfg.TrailOpacity, cfg.TrailDecay),
		history:     trail.NewHistory(cfg.TrailCapacity),
		rng:         rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5bd1e995)),
	}
	s.compositor.SetMode(cfg.TrailMode)
	s.publish(cfg.BPM, 0)
	return s
}

// The setters below must be called before Start.

func (s *Scheduler) SetClock(c Clock)                      { s.clock = c }
func (s *Scheduler) SetMapping(m *control.Mapping)         { s.mapping = m }
func (s *Scheduler) SetLFOs(b *control.LFOBank)            { s.lfos = b }
func (s *Scheduler) SetDeck(d *pattern.Deck)               { s.deck = d }
func (s *Scheduler) SetBackgrounds(b *background.Set)      { s.backgrounds = b }
func (s *Scheduler) SetPalette(p []color.RGBA)             { s.palette = p }
func (s *Scheduler) SetInput(in *midi.Input)               { s.input = in }
func (s *Scheduler) OnPatternChange(f func(active, n int)) { s.onPattern = f }

// Interval is the frame period
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Metrics returns the live counters
func (s *Scheduler) Metrics() *Metrics { return &s.metrics }

// Updates signals after each presented frame; signals coalesce
func (s *Scheduler) Updates() <-chan struct{} { return s.updates }

// State returns the current lifecycle state
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats collects metrics and the latest render info
func (s *Scheduler) Stats() Stats {
	st := Stats{
		State:       s.State(),
		Frames:      s.metrics.Frames(),
		Skipped:     s.metrics.Skipped(),
		LastLatency: s.metrics.LastLatency(),
		MaxLatency:  s.metrics.MaxLatency(),
	}
	if s.input != nil {
		st.Anomalies = s.input.Anomalies()
		st.Dropped = s.input.Dropped()
	}
	if in := s.info.Load(); in != nil {
		st.Pattern, st.Background, st.BPM, st.Beat = in.pattern, in.background, in.bpm, in.beat
		st.Trail = in.trail
	}
	return st
}

// Start moves Idle to Running and launches the render goroutine
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Idle:
	case Stopped:
		return ErrStopped
	default:
		return ErrNotIdle
	}
	s.state = Running
	go func() {
		err := s.loop(ctx)
		s.mu.Lock()
		s.state = Stopped
		if err == nil {
			err = s.cause
		}
		s.err = err
		s.mu.Unlock()
		s.closer.Do(func() { close(s.stop) })
		close(s.done)
	}()
	return nil
}

// Wait blocks until the render goroutine exits and returns its error
func (s *Scheduler) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Run is Start followed by Wait
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	return s.Wait()
}

// Pause stops advancing and presenting; the store keeps receiving input
func (s *Scheduler) Pause() bool {
	return s.transition(Running, Paused)
}

// Resume continues from where Pause left off
func (s *Scheduler) Resume() bool {
	return s.transition(Paused, Running)
}

// TogglePause flips between Running and Paused
func (s *Scheduler) TogglePause() State {
	if !s.Pause() {
		s.Resume()
	}
	return s.State()
}

func (s *Scheduler) transition(from, to State) bool {
	s.mu.Lock()
	if s.state != from {
		s.mu.Unlock()
		return false
	}
	s.state = to
	s.mu.Unlock()
	s.signal()
	return true
}

// Stop ends the render loop. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.halt(nil)
}

// Fail stops the scheduler because of a fatal condition outside the render
// loop, such as a lost MIDI transport. Wait returns err unless the loop has
// already ended with an error of its own.
func (s *Scheduler) Fail(err error) {
	s.halt(err)
}

func (s *Scheduler) halt(cause error) {
	s.mu.Lock()
	prev := s.state
	if prev != Stopped && s.cause == nil {
		s.cause = cause
	}
	s.state = Stopped
	if prev == Idle {
		// no loop will ever run to close done
		s.err = s.cause
	}
	s.mu.Unlock()

	s.closer.Do(func() { close(s.stop) })
	if prev == Idle {
		close(s.done)
	}
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop(ctx context.Context) error {
	defer s.release()

	now := s.clock.Now()
	s.origin = now
	next := now
	s.patternChanged()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		default:
		}

		if s.State() == Paused {
			select {
			case <-ctx.Done():
				return nil
			case <-s.stop:
				return nil
			case cmd := <-s.commands:
				s.apply(cmd)
			case <-s.wake:
				// realign on resume; paused time is not skipped frames
				next = s.clock.Now()
				s.lastTick = time.Time{}
			}
			continue
		}

		if d := next.Sub(s.clock.Now()); d > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-s.stop:
				return nil
			case <-s.wake:
				continue
			case <-s.clock.After(d):
			}
		}

		if err := s.tick(ctx); err != nil {
			debug.Error("scheduler", "present failed: %v", err)
			return err
		}

		n := boundaries(s.clock.Now().Sub(next), s.interval)
		if n > 1 {
			s.metrics.skipped.Add(uint64(n - 1))
			debug.LogEvery(30, "scheduler", "skipped %d frames (total %d)", n-1, s.metrics.Skipped())
		}
		next = next.Add(time.Duration(n) * s.interval)
	}
}

// tick renders and presents one frame
func (s *Scheduler) tick(ctx context.Context) error {
	start := s.clock.Now()
	dt := s.interval
	if !s.lastTick.IsZero() {
		dt = start.Sub(s.lastTick)
	}
	s.lastTick = start

	s.drain()

	snap := s.store.Snapshot()
	if _, v, ok := snap.Latest(midi.ProgramChange); ok && v.Seq > s.lastProgram {
		s.lastProgram = v.Seq
		s.deck.Select(v.Raw)
		s.patternChanged()
	}

	bpm := control.EffectiveBPM(snap.Tempo, start, s.cfg.BPM)
	beat := control.Beat(snap.Tempo, s.origin, start, s.cfg.BPM)

	params := s.mapping.Resolve(snap)
	s.lfos.Apply(beat, s.mapping, params)

	w, h := s.cfg.Width, s.cfg.Height
	shapes := s.deck.Active().Advance(dt, pattern.Input{
		Snapshot: snap,
		Params:   params,
		Width:    w,
		Height:   h,
		Beat:     beat,
		Palette:  s.palette,
	})

	if s.bg == nil {
		s.bg = frame.New(w, h)
	}
	s.backgrounds.Active().Render(s.bg, background.Input{Params: params, Beat: beat, BPM: bpm, Width: w, Height: h})

	if v, ok := params[control.ParamTrailOpacity]; ok {
		s.compositor.SetOpacity(v)
	}
	if v, ok := params[control.ParamTrailDecay]; ok {
		s.compositor.SetDecay(v)
	}
	out := s.compositor.Composite(s.bg, shapes, s.history)

	pctx, cancel := context.WithTimeout(ctx, s.interval)
	err := s.presenter.Present(pctx, out)
	cancel()
	if err != nil {
		return fmt.Errorf("present frame %d: %w", s.metrics.Frames()+1, err)
	}

	s.metrics.frames.Add(1)
	s.metrics.observe(s.clock.Now().Sub(start))
	s.publish(bpm, beat)
	s.notify()
	debug.LogEvery(300, "scheduler", "frame %d pattern=%s shapes=%d bpm=%.1f", s.metrics.Frames(), s.deck.Active().Name(), len(shapes), bpm)
	return nil
}

// drain applies every queued command
func (s *Scheduler) drain() {
	for {
		select {
		case cmd := <-s.commands:
			s.apply(cmd)
		default:
			return
		}
	}
}

func (s *Scheduler) patternChanged() {
	if s.onPattern != nil {
		s.onPattern(s.deck.Index(), s.deck.Len())
	}
}

func (s *Scheduler) publish(bpm, beat float64) {
	s.info.Store(&info{
		pattern:    s.deck.Active().Name(),
		background: s.backgrounds.Active().Name(),
		bpm:        bpm,
		beat:       beat,
		trail:      s.compositor.Mode().String(),
	})
}

func (s *Scheduler) release() {
	s.history.Release()
	s.compositor.Release()
	s.bg = nil
}
