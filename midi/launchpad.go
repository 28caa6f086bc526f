package midi

import (
	"fmt"
	"sync/atomic"

	"video-instrument/debug"

	"github.com/lucasb-eyer/go-colorful"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var ledSendCount uint64

// Pattern selector colors on the top row
var (
	patternIdle   = [3]uint8{40, 60, 120}
	patternActive = [3]uint8{255, 150, 50}
)

// LaunchpadController handles a Novation Launchpad X. In programmer mode the
// grid sends notes 11-88 and the top row CC 91-98; both reach the Input
// unchanged, and the top row LEDs show the active pattern.
type LaunchpadController struct {
	id       string
	outPort  drivers.Out
	inPort   drivers.In
	send     func(msg gomidi.Message) error
	stopFunc func()
}

// NewLaunchpadController creates and configures a Launchpad
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out, in *Input) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:      id,
		inPort:  inPort,
		outPort: outPort,
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output %s: %w", id, err)
		}
		lp.send = send

		// Programmer mode: F0 00 20 29 02 0C 00 7F F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}))
		// Brightness max: F0 00 20 29 02 0C 08 <brightness> F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}))
	}

	if inPort != nil {
		stop, err := listen(inPort, in)
		if err != nil {
			return nil, fmt.Errorf("open input %s: %w", id, err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

// ShowPattern lights one top row button per pattern (up to 8), the active
// one brighter
func (lp *LaunchpadController) ShowPattern(active, count int) error {
	if count > 8 {
		count = 8
	}
	updates := make([]LEDUpdate, 0, 8)
	for col := 0; col < 8; col++ {
		u := LEDUpdate{Row: 8, Col: col}
		switch {
		case col == active:
			u.Color = patternActive
		case col < count:
			u.Color = patternIdle
		}
		updates = append(updates, u)
	}
	return lp.SetLEDBatch(updates)
}

// SetLEDBatch sends multiple LED updates as individual NoteOn messages
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	for _, u := range updates {
		note := rowColToNote(u.Row, u.Col)
		color := mapRGBToLaunchpad(u.Color)
		if err := lp.send(gomidi.NoteOn(u.Channel, note, color)); err != nil {
			return fmt.Errorf("set led %d,%d: %w", u.Row, u.Col, err)
		}
	}

	count := atomic.AddUint64(&ledSendCount, uint64(len(updates)))
	if count%100 < uint64(len(updates)) {
		debug.Log("lp-send", "batch count=%d (this batch=%d)", count, len(updates))
	}

	return nil
}

// Launchpad X palette entries, {velocity, R, G, B}
var launchpadPalette = [][4]uint8{
	{0, 0, 0, 0},         // off
	{5, 255, 0, 0},       // red
	{6, 255, 80, 80},     // bright red
	{7, 180, 60, 60},     // dim red
	{9, 255, 100, 0},     // orange
	{11, 180, 80, 40},    // dim orange
	{13, 255, 200, 0},    // yellow
	{17, 0, 180, 0},      // green
	{19, 0, 100, 0},      // dim green
	{21, 0, 255, 0},      // bright green
	{37, 0, 200, 200},    // cyan
	{43, 40, 60, 120},    // dim blue
	{45, 0, 100, 255},    // blue
	{47, 80, 150, 255},   // bright blue
	{49, 150, 0, 200},    // purple
	{53, 255, 80, 180},   // pink
	{78, 100, 100, 255},  // light blue
	{84, 255, 150, 50},   // bright orange
	{87, 150, 255, 100},  // lime
	{97, 180, 180, 60},   // dim yellow
	{119, 255, 255, 255}, // white
}

// mapRGBToLaunchpad finds the perceptually nearest palette velocity
func mapRGBToLaunchpad(rgb [3]uint8) uint8 {
	if rgb == [3]uint8{} {
		return 0
	}
	want := colorful.Color{R: float64(rgb[0]) / 255, G: float64(rgb[1]) / 255, B: float64(rgb[2]) / 255}

	best := uint8(0)
	bestDist := -1.0
	for _, p := range launchpadPalette[1:] {
		c := colorful.Color{R: float64(p[1]) / 255, G: float64(p[2]) / 255, B: float64(p[3]) / 255}
		d := want.DistanceLab(c)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = p[0]
		}
	}
	return best
}

func (lp *LaunchpadController) Close() error {
	if lp.send != nil {
		lp.ShowPattern(-1, 0)
	}
	if lp.stopFunc != nil {
		lp.stopFunc()
		lp.stopFunc = nil
	}
	return nil
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 = notes 19, 29, ... 89
// Top row:   Row 8 = notes/CC 91-98

func rowColToNote(row, col int) uint8 {
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}
