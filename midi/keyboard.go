package midi

import (
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// KeyboardController is any MIDI input without LED feedback: keyboards,
// fader boxes, DAW clock outputs
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()
}

// NewKeyboardController opens inPort and forwards every message to in
func NewKeyboardController(id string, inPort drivers.In, in *Input) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:     id,
		inPort: inPort,
	}

	if inPort != nil {
		stop, err := listen(inPort, in)
		if err != nil {
			return nil, fmt.Errorf("open input %s: %w", id, err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Type() ControllerType {
	return ControllerKeyboard
}

// ShowPattern is a no-op for keyboards (no visual feedback)
func (kb *KeyboardController) ShowPattern(active, count int) error {
	return nil
}

func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
		kb.stopFunc = nil
	}
	return nil
}

// listen attaches a gomidi listener that hands raw bytes to in. Clock
// messages are delivered by default; sysex and active sensing are not
// requested since they carry no control meaning.
func listen(port drivers.In, in *Input) (func(), error) {
	return gomidi.ListenTo(port, func(msg gomidi.Message, timestampms int32) {
		in.Deliver(msg.Bytes(), time.Now())
	}, gomidi.HandleError(func(err error) {
		in.norm.anomalies.Add(1)
	}))
}
