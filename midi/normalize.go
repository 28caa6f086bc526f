package midi

import (
	"sync/atomic"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Normalizer turns raw transport bytes into Events. It holds no per-message
// state, so one Normalizer can be shared by every listener goroutine.
type Normalizer struct {
	anomalies atomic.Uint64
	ignored   atomic.Uint64
}

// NewNormalizer creates a normalizer with zeroed counters
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Anomalies returns the number of malformed messages discarded so far
func (n *Normalizer) Anomalies() uint64 {
	return n.anomalies.Load()
}

// Ignored returns the number of well-formed messages that carry no control
// meaning (sysex, active sensing, aftertouch, ...)
func (n *Normalizer) Ignored() uint64 {
	return n.ignored.Load()
}

// Normalize converts one raw message. ok is false when the message produced
// no event, either because it was malformed (counted as an anomaly) or
// because it is ignored.
func (n *Normalizer) Normalize(raw []byte, at time.Time) (ev Event, ok bool) {
	if len(raw) == 0 || raw[0] < 0x80 {
		return n.reject()
	}
	status := raw[0]
	if status >= 0xF0 {
		return n.system(raw, at)
	}

	if len(raw) != 1+channelDataLen(status) {
		return n.reject()
	}
	for _, b := range raw[1:] {
		if b >= 0x80 {
			return n.reject()
		}
	}

	msg := gomidi.Message(raw)
	var ch, key, vel uint8
	ev.Time = at

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		ev.Channel, ev.Kind, ev.Number, ev.Value = ch, NoteOn, key, int(vel)
	case msg.GetNoteEnd(&ch, &key):
		// NoteOn with velocity 0 lands here too
		ev.Channel, ev.Kind, ev.Number, ev.Value = ch, NoteOff, key, 0
		if status&0xF0 == 0x80 {
			ev.Value = int(raw[2])
		}
	case msg.GetControlChange(&ch, &key, &vel):
		ev.Channel, ev.Kind, ev.Number, ev.Value = ch, ControlChange, key, int(vel)
	case msg.GetProgramChange(&ch, &key):
		ev.Channel, ev.Kind, ev.Value = ch, ProgramChange, int(key)
	default:
		var rel int16
		var abs uint16
		if msg.GetPitchBend(&ch, &rel, &abs) {
			ev.Channel, ev.Kind, ev.Value = ch, PitchBend, int(rel)
			return ev, true
		}
		// aftertouch
		n.ignored.Add(1)
		return Event{}, false
	}
	return ev, true
}

func (n *Normalizer) system(raw []byte, at time.Time) (Event, bool) {
	status := raw[0]

	// realtime messages are a single byte
	if status >= 0xF8 {
		if len(raw) != 1 {
			return n.reject()
		}
		var kind Kind
		switch status {
		case 0xF8:
			kind = ClockTick
		case 0xFA:
			kind = ClockStart
		case 0xFB:
			kind = ClockContinue
		case 0xFC:
			kind = ClockStop
		case 0xFE, 0xFF:
			n.ignored.Add(1)
			return Event{}, false
		default:
			// 0xF9, 0xFD undefined
			return n.reject()
		}
		return Event{Kind: kind, Time: at}, true
	}

	switch status {
	case 0xF0:
		if len(raw) < 2 || raw[len(raw)-1] != 0xF7 {
			return n.reject()
		}
		for _, b := range raw[1 : len(raw)-1] {
			if b >= 0x80 {
				return n.reject()
			}
		}
	case 0xF1, 0xF3:
		if len(raw) != 2 || raw[1] >= 0x80 {
			return n.reject()
		}
	case 0xF2:
		if len(raw) != 3 || raw[1] >= 0x80 || raw[2] >= 0x80 {
			return n.reject()
		}
	case 0xF6:
		if len(raw) != 1 {
			return n.reject()
		}
	default:
		// 0xF4, 0xF5 undefined, 0xF7 without a sysex start
		return n.reject()
	}
	n.ignored.Add(1)
	return Event{}, false
}

func (n *Normalizer) reject() (Event, bool) {
	n.anomalies.Add(1)
	return Event{}, false
}

// channelDataLen is the number of data bytes following a channel status
func channelDataLen(status uint8) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 1
	}
	return 2
}
