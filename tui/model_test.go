package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"video-instrument/background"
	"video-instrument/control"
	"video-instrument/frame"
	"video-instrument/midi"
	"video-instrument/pattern"
	"video-instrument/scheduler"
	"video-instrument/theme"
)

// stopAfter cancels the run once it has presented n frames
type stopAfter struct {
	n      int
	cancel context.CancelFunc
}

func (p *stopAfter) Present(ctx context.Context, f *frame.Buffer) error {
	p.n--
	if p.n <= 0 {
		p.cancel()
	}
	return nil
}

func newSched(t *testing.T) (*scheduler.Scheduler, *control.Store, *stopAfter) {
	t.Helper()
	store := control.NewStore()
	p := &stopAfter{n: 1}
	s := scheduler.New(scheduler.Config{FrameRate: 240, Width: 32, Height: 18, Seed: 3, TrailCapacity: 2}, store, p)
	return s, store, p
}

func TestControlsSendCommands(t *testing.T) {
	s, _, p := newSched(t)
	toggled := 0
	c := &Controls{Keys: DefaultKeyMap(), Sched: s, HUD: togglerFunc(func() { toggled++ })}

	for _, k := range []string{"2", "]", "b", "t", "t", "d", "space"} {
		if !c.HandleKey(k) {
			t.Errorf("key %q not handled", k)
		}
	}
	if c.HandleKey("z") {
		t.Error("unbound key handled")
	}
	if toggled != 1 {
		t.Errorf("hud toggled %d times", toggled)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	if err := s.Run(ctx); err != nil {
		t.Fatal(err)
	}
	st := s.Stats()
	if st.Pattern != pattern.Names[2] || st.Background != background.Names[1] {
		t.Fatalf("pattern/background = %s/%s", st.Pattern, st.Background)
	}
	if st.Trail != "off" {
		t.Fatalf("trail = %s after two cycles, want off", st.Trail)
	}
}

func TestQuitKey(t *testing.T) {
	s, store, _ := newSched(t)
	quit := false
	c := &Controls{Keys: DefaultKeyMap(), Sched: s, Quit: func() { quit = true }}
	m := NewModel(s, store, control.DefaultMapping(), nil, theme.New(mustPalette(t)), c)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !quit || cmd == nil {
		t.Fatal("q did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not return tea.Quit")
	}
	if next.(Model).View() != "" {
		t.Fatal("view after quit is not empty")
	}
}

func TestViewShowsState(t *testing.T) {
	s, store, _ := newSched(t)
	c := &Controls{Keys: DefaultKeyMap(), Sched: s}
	m := NewModel(s, store, control.DefaultMapping(), nil, theme.New(mustPalette(t)), c)
	m.Patterns = pattern.Names
	m.Backgrounds = background.Names

	store.Update(noteOn(60))
	v := m.View()
	for _, want := range []string{"video-instrument", "IDLE", "swarm", "color_cycle", control.ParamSpeed, control.ParamWarp, "C4", "plasma", "pattern", "trail:echo"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}

	next, _ := m.Update(StoppedMsg{Err: context.Canceled})
	if next.(Model).Err() != context.Canceled {
		t.Fatal("StoppedMsg error not kept")
	}
}

type togglerFunc func()

func (f togglerFunc) Toggle() bool { f(); return true }

func mustPalette(t *testing.T) *theme.Palette {
	t.Helper()
	p, err := theme.Builtin("plasma")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func noteOn(n uint8) midi.Event {
	return midi.Event{Kind: midi.NoteOn, Number: n, Value: 100}
}
