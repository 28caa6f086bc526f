package midi

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInputBuffer is the event channel capacity used by NewInput(0)
const DefaultInputBuffer = 1024

// Input merges raw messages from every source (ports, emulator, file
// playback) into one normalized event stream. Deliver never blocks. When the
// consumer falls behind, control events are coalesced per control until it
// calls Drain, so the latest value of every control survives; clock pulses
// are dropped and counted.
type Input struct {
	norm   *Normalizer
	events chan Event

	mu       sync.Mutex
	overflow map[overflowKey]int // index into pending
	pending  []Event
	kick     chan struct{}

	dropped   atomic.Uint64
	coalesced atomic.Uint64
}

// overflowKey is the coalescing key: note on and off of one note share a key
type overflowKey struct {
	Channel uint8
	Kind    Kind
	Number  uint8
}

func overflowID(ev Event) overflowKey {
	id := overflowKey{Channel: ev.Channel, Kind: ev.Kind, Number: ev.Number}
	if id.Kind == NoteOff {
		id.Kind = NoteOn
	}
	return id
}

// NewInput creates an input with the given channel capacity
func NewInput(buffer int) *Input {
	if buffer <= 0 {
		buffer = DefaultInputBuffer
	}
	return &Input{
		norm:     NewNormalizer(),
		events:   make(chan Event, buffer),
		overflow: make(map[overflowKey]int),
		kick:     make(chan struct{}, 1),
	}
}

// Deliver normalizes data and queues the resulting event, if any
func (in *Input) Deliver(data []byte, at time.Time) {
	ev, ok := in.norm.Normalize(data, at)
	if !ok {
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	// once anything has overflowed, later events queue behind it
	if len(in.pending) == 0 {
		select {
		case in.events <- ev:
			return
		default:
		}
	}
	if ev.Kind.IsClock() {
		in.dropped.Add(1)
		return
	}
	id := overflowID(ev)
	if i, ok := in.overflow[id]; ok {
		in.pending[i] = ev
		in.coalesced.Add(1)
	} else {
		in.overflow[id] = len(in.pending)
		in.pending = append(in.pending, ev)
	}
	select {
	case in.kick <- struct{}{}:
	default:
	}
}

// DeliverRaw is Deliver for a Raw value
func (in *Input) DeliverRaw(r Raw) {
	in.Deliver(r.Data, r.Time)
}

// Events returns the normalized event stream
func (in *Input) Events() <-chan Event {
	return in.events
}

// Overflow signals that Drain has events waiting. The consumer should empty
// Events before calling Drain so the overflow is applied after older events.
func (in *Input) Overflow() <-chan struct{} {
	return in.kick
}

// Drain returns the coalesced overflow, oldest control first, and resumes
// normal queueing
func (in *Input) Drain() []Event {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := in.pending
	in.pending = nil
	clear(in.overflow)
	return out
}

// Anomalies returns the normalizer's malformed message count
func (in *Input) Anomalies() uint64 {
	return in.norm.Anomalies()
}

// Ignored returns the count of well-formed messages with no control meaning
func (in *Input) Ignored() uint64 {
	return in.norm.Ignored()
}

// Dropped returns the number of clock pulses lost to a full channel
func (in *Input) Dropped() uint64 {
	return in.dropped.Load()
}

// Coalesced returns the number of overflowed events replaced by a newer
// value for the same control
func (in *Input) Coalesced() uint64 {
	return in.coalesced.Load()
}
