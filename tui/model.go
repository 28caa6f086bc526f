package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"video-instrument/control"
	"video-instrument/midi"
	"video-instrument/scheduler"
	"video-instrument/theme"
	"video-instrument/widgets"
)

const meterWidth = 16

type Model struct {
	Sched     *scheduler.Scheduler
	Store     *control.Store
	Mapping   *control.Mapping
	DeviceMgr *midi.DeviceManager // nil when hardware input is off
	Theme     *theme.Theme
	Controls  *Controls

	Patterns    []string
	Backgrounds []string

	help        help.Model
	quitting    bool
	err         error
	controllers map[string]midi.ControllerType
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

// StoppedMsg reports that the render loop has ended
type StoppedMsg struct{ Err error }

func NewModel(sched *scheduler.Scheduler, store *control.Store, mapping *control.Mapping, deviceMgr *midi.DeviceManager, th *theme.Theme, controls *Controls) Model {
	return Model{
		Sched:       sched,
		Store:       store,
		Mapping:     mapping,
		DeviceMgr:   deviceMgr,
		Theme:       th,
		Controls:    controls,
		help:        help.New(),
		controllers: make(map[string]midi.ControllerType),
	}
}

// Err is the render loop error that ended the program, if any
func (m Model) Err() error { return m.err }

func ListenForUpdates(sched *scheduler.Scheduler) tea.Cmd {
	return func() tea.Msg {
		<-sched.Updates()
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Sched)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(m.Controls, msg) {
			m.quitting = true
			if m.Controls != nil && m.Controls.Quit != nil {
				m.Controls.Quit()
			}
			return m, tea.Quit
		}
		if m.Controls != nil {
			m.Controls.HandleKey(msg.String())
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case UpdateMsg:
		return m, ListenForUpdates(m.Sched)

	case StoppedMsg:
		m.err = msg.Err
		m.quitting = true
		return m, tea.Quit

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.controllers[event.ID] = event.Controller.Type()
			if i := slices.Index(m.Patterns, m.Sched.Stats().Pattern); i >= 0 {
				event.Controller.ShowPattern(i, len(m.Patterns))
			}
		case midi.DeviceDisconnected:
			delete(m.controllers, event.ID)
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func isQuit(c *Controls, msg tea.KeyMsg) bool {
	keys := DefaultKeyMap()
	if c != nil {
		keys = c.Keys
	}
	return slices.Contains(keys.Quit.Keys(), msg.String())
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.Sched.Stats()
	sym := m.Theme.Symbols

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	activeStyle := lipgloss.NewStyle().Foreground(m.Theme.Active()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	deviceStatus := ""
	for _, t := range m.controllers {
		if t == midi.ControllerLaunchpad {
			deviceStatus = " LP:X"
		}
	}
	if deviceStatus == "" && len(m.controllers) > 0 {
		deviceStatus = fmt.Sprintf(" midi:%d", len(m.controllers))
	}

	header := headerStyle.Render(fmt.Sprintf("video-instrument  %s  %3.0fbpm  %c %6.2f  trail:%s%s",
		strings.ToUpper(st.State.String()), st.BPM, sym.Beat, st.Beat, st.Trail, deviceStatus))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	out.WriteString(widgets.RenderSelector(m.Patterns, slices.Index(m.Patterns, st.Pattern), sym.Solid, sym.Empty, activeStyle))
	out.WriteString("\n")
	out.WriteString(widgets.RenderSelector(m.Backgrounds, slices.Index(m.Backgrounds, st.Background), sym.Solid, sym.Empty, activeStyle))
	out.WriteString("\n\n")

	snap := m.Store.Snapshot()
	values := m.Mapping.Resolve(snap)
	for _, p := range m.Mapping.Params() {
		out.WriteString(widgets.RenderMeter(p.Name, values.Get(p.Name), p.Min, p.Max, meterWidth, sym.MeterFull, sym.MeterEmpty))
		out.WriteString("\n")
	}
	out.WriteString("\n")

	held := snap.HeldNotes()
	notes := make([]uint8, len(held))
	for i, n := range held {
		notes[i] = n.Number
	}
	out.WriteString(widgets.RenderNotes(notes, sym.NoteHeld, sym.NoteIdle))
	out.WriteString("\n\n")

	stats := fmt.Sprintf("frames %d  skipped %d  latency %s (max %s)", st.Frames, st.Skipped, st.LastLatency, st.MaxLatency)
	out.WriteString(dimStyle.Render(stats))
	if st.Anomalies > 0 || st.Dropped > 0 {
		out.WriteString("  ")
		out.WriteString(warnStyle.Render(fmt.Sprintf("anomalies %d  dropped %d", st.Anomalies, st.Dropped)))
	}
	out.WriteString("\n")

	swatch := make([][3]uint8, 0, 8)
	for i := range 8 {
		swatch = append(swatch, m.Theme.RGB(float64(i)/7))
	}
	out.WriteString(widgets.RenderPadRow(swatch))
	out.WriteString("  ")
	out.WriteString(dimStyle.Render(m.Theme.Palette.Name))
	out.WriteString("\n\n")

	if m.Controls != nil {
		out.WriteString(m.help.View(m.Controls.Keys))
	}

	return out.String()
}
