package midi

import (
	"fmt"
	"time"
)

// Kind is the normalized message kind
type Kind uint8

const (
	NoteOn Kind = iota + 1
	NoteOff
	ControlChange
	PitchBend
	ProgramChange

	// realtime clock messages, no control number
	ClockTick
	ClockStart
	ClockContinue
	ClockStop
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	case ControlChange:
		return "cc"
	case PitchBend:
		return "bend"
	case ProgramChange:
		return "program"
	case ClockTick:
		return "clock"
	case ClockStart:
		return "start"
	case ClockContinue:
		return "continue"
	case ClockStop:
		return "stop"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Pitch bend range after normalization (signed 14 bit)
const (
	BendMin = -8192
	BendMax = 8191
)

// Event is a normalized MIDI message. Value is 0-127 for everything except
// PitchBend, which carries the signed bend amount.
type Event struct {
	Channel uint8 // 0-15
	Kind    Kind
	Number  uint8 // note or controller number, 0 for bend/program
	Value   int
	Time    time.Time
}

// IsClock reports whether the event is a realtime clock message
func (k Kind) IsClock() bool {
	return k >= ClockTick && k <= ClockStop
}

func (e Event) String() string {
	return fmt.Sprintf("ch%d %s %d=%d", e.Channel, e.Kind, e.Number, e.Value)
}

// Raw is a transport message as delivered by a driver or emulator
type Raw struct {
	Data []byte
	Time time.Time
}

// ParseKind is the inverse of Kind.String for channel kinds; "note" is
// accepted for note-on
func ParseKind(s string) (Kind, error) {
	switch s {
	case "note", "note-on":
		return NoteOn, nil
	case "note-off":
		return NoteOff, nil
	case "cc":
		return ControlChange, nil
	case "bend":
		return PitchBend, nil
	case "program":
		return ProgramChange, nil
	}
	return 0, fmt.Errorf("unknown message kind %q", s)
}
