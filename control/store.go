package control

import (
	"sort"
	"sync"
	"time"

	"video-instrument/midi"
)

// ID identifies one control: a CC number, a note, the bend wheel or the
// program selector on one channel
type ID struct {
	Channel uint8
	Kind    midi.Kind
	Number  uint8
}

// IDOf returns the control an event writes to
func IDOf(ev midi.Event) ID {
	id := ID{Channel: ev.Channel, Kind: ev.Kind, Number: ev.Number}
	switch ev.Kind {
	case midi.PitchBend, midi.ProgramChange:
		id.Number = 0
	}
	return id
}

// Value is the latest value written to a control. Seq orders writes across
// controls; it increases by one per Update.
type Value struct {
	Raw  int
	Time time.Time
	Seq  uint64
}

// Snapshot is an independent copy of the store taken between two writes
type Snapshot struct {
	Values map[ID]Value
	Tempo  Tempo
	Seq    uint64
}

// Get returns the value for id
func (s Snapshot) Get(id ID) (Value, bool) {
	v, ok := s.Values[id]
	return v, ok
}

// Note is a key currently held down
type Note struct {
	Channel  uint8
	Number   uint8
	Velocity int
	Seq      uint64
}

// NoteHeld reports whether the last write for this note was a note on
func (s Snapshot) NoteHeld(ch, note uint8) (velocity int, held bool) {
	on, ok := s.Values[ID{Channel: ch, Kind: midi.NoteOn, Number: note}]
	if !ok {
		return 0, false
	}
	if off, ok := s.Values[ID{Channel: ch, Kind: midi.NoteOff, Number: note}]; ok && off.Seq > on.Seq {
		return 0, false
	}
	return on.Raw, true
}

// HeldNotes returns every held note, oldest first
func (s Snapshot) HeldNotes() []Note {
	var notes []Note
	for id, v := range s.Values {
		if id.Kind != midi.NoteOn {
			continue
		}
		if vel, held := s.NoteHeld(id.Channel, id.Number); held {
			notes = append(notes, Note{Channel: id.Channel, Number: id.Number, Velocity: vel, Seq: v.Seq})
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Seq < notes[j].Seq })
	return notes
}

// Latest returns the most recent write of kind on any channel
func (s Snapshot) Latest(kind midi.Kind) (ID, Value, bool) {
	var (
		bestID ID
		best   Value
		found  bool
	)
	for id, v := range s.Values {
		if id.Kind == kind && (!found || v.Seq > best.Seq) {
			bestID, best, found = id, v, true
		}
	}
	return bestID, best, found
}

// Store holds the latest value of every control. It is written by the input
// side and read by the render side; Snapshot never observes a partial write.
type Store struct {
	mu     sync.RWMutex
	values map[ID]Value
	tempo  Tempo
	seq    uint64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		values: make(map[ID]Value),
	}
}

// Update records ev, overwriting the previous value of its control. Clock
// events advance the tempo tracker instead.
func (s *Store) Update(ev midi.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Kind.IsClock() {
		s.tempo.apply(ev)
		return
	}
	s.seq++
	s.values[IDOf(ev)] = Value{Raw: ev.Value, Time: ev.Time, Seq: s.seq}
}

// Snapshot copies the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make(map[ID]Value, len(s.values))
	for id, v := range s.values {
		values[id] = v
	}
	return Snapshot{Values: values, Tempo: s.tempo, Seq: s.seq}
}

// Len returns the number of distinct controls seen
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
