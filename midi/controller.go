package midi

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerLaunchpad
	ControllerKeyboard
)

func (t ControllerType) String() string {
	switch t {
	case ControllerLaunchpad:
		return "launchpad"
	case ControllerKeyboard:
		return "keyboard"
	}
	return "unknown"
}

// Controller is a connected MIDI input device. Incoming messages go straight
// to the Input it was created with; the controller only owns the port.
type Controller interface {
	ID() string
	Type() ControllerType

	// ShowPattern reflects the active pattern on the device, if it has
	// any lights. count is the catalog size.
	ShowPattern(active, count int) error

	Close() error
}

// LEDUpdate is one pad color change
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8
	Channel  uint8
}

// Launchpad X LED channel modes
const (
	ChannelStatic uint8 = 0 // solid color
	ChannelFlash  uint8 = 1 // flashing A/B alternating
	ChannelPulse  uint8 = 2 // pulsing (fades)
)
