package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"video-instrument/debug"
	"video-instrument/midi"
	"video-instrument/scheduler"
)

type KeyMap struct {
	Pattern    key.Binding
	Prev       key.Binding
	Next       key.Binding
	Background key.Binding
	Mono       key.Binding
	Hue        key.Binding
	Trail      key.Binding
	Pause      key.Binding
	Note       key.Binding
	HUD        key.Binding
	Save       key.Binding
	Quit       key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Pattern:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "pattern")),
		Prev:       key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev")),
		Next:       key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next")),
		Background: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "background")),
		Mono:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mono")),
		Hue:        key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hue")),
		Trail:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "trail")),
		Pause:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Note:       key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "note")),
		HUD:        key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "hud")),
		Save:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pattern, k.Prev, k.Next, k.Background, k.Mono, k.Hue, k.Trail, k.Pause, k.Note, k.HUD, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pattern, k.Prev, k.Next},
		{k.Background, k.Mono, k.Hue, k.Trail},
		{k.Pause, k.Note, k.HUD, k.Save, k.Quit},
	}
}

// Toggler is an overlay that can be switched on and off
type Toggler interface {
	Toggle() bool
}

// Controls turns key names into scheduler commands. The terminal and the
// display window share one Controls so both accept the same keys.
type Controls struct {
	Keys     KeyMap
	Sched    *scheduler.Scheduler
	Emulator *midi.Emulator // nil without -emulate
	HUD      Toggler        // nil without a window
	Save     func() error
	Quit     func()
}

type keyName string

func (k keyName) String() string { return string(k) }

// HandleKey runs the action bound to name and reports whether one matched
func (c *Controls) HandleKey(name string) bool {
	k := keyName(name)
	switch {
	case key.Matches(k, c.Keys.Quit):
		if c.Quit != nil {
			c.Quit()
		}
	case key.Matches(k, c.Keys.Pattern):
		c.send(scheduler.SelectPattern(int(name[0] - '1')))
	case key.Matches(k, c.Keys.Prev):
		c.send(scheduler.PrevPattern())
	case key.Matches(k, c.Keys.Next):
		c.send(scheduler.NextPattern())
	case key.Matches(k, c.Keys.Background):
		c.send(scheduler.NextBackground())
	case key.Matches(k, c.Keys.Mono):
		c.send(scheduler.CycleMono())
	case key.Matches(k, c.Keys.Hue):
		c.send(scheduler.RandomBaseHue())
	case key.Matches(k, c.Keys.Trail):
		c.send(scheduler.CycleTrail())
	case key.Matches(k, c.Keys.Pause):
		debug.Log("tui", "scheduler %s", c.Sched.TogglePause())
	case key.Matches(k, c.Keys.Note):
		if c.Emulator != nil {
			c.Emulator.TriggerRandomNote()
		}
	case key.Matches(k, c.Keys.HUD):
		if c.HUD != nil {
			c.HUD.Toggle()
		}
	case key.Matches(k, c.Keys.Save):
		if c.Save != nil {
			if err := c.Save(); err != nil {
				debug.Error("tui", "save config: %v", err)
			}
		}
	default:
		return false
	}
	return true
}

func (c *Controls) send(cmd scheduler.Command) {
	if !c.Sched.Send(cmd) {
		debug.Log("tui", "command %d dropped", cmd.Op)
	}
}
