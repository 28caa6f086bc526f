package midi

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// PulsesPerQuarter is the MIDI clock resolution
const PulsesPerQuarter = 24

// Emulator stands in for hardware: it runs a MIDI clock at a fixed tempo and
// lets the TUI inject notes, CCs and program changes.
type Emulator struct {
	in   *Input
	bpm  float64
	gate time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEmulator creates an emulator clocking at bpm into in
func NewEmulator(in *Input, bpm float64, seed uint64) *Emulator {
	if bpm <= 0 {
		bpm = 120
	}
	return &Emulator{
		in:   in,
		bpm:  bpm,
		gate: 150 * time.Millisecond,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// PulseInterval is the time between clock pulses at the emulator tempo
func (e *Emulator) PulseInterval() time.Duration {
	return time.Duration(float64(time.Minute) / (e.bpm * PulsesPerQuarter))
}

// Run sends start, then a clock pulse every PulseInterval until ctx is done,
// then stop (blocking - run in goroutine)
func (e *Emulator) Run(ctx context.Context) {
	ticker := time.NewTicker(e.PulseInterval())
	defer ticker.Stop()

	e.in.Deliver([]byte{0xFA}, time.Now())
	for {
		select {
		case <-ctx.Done():
			e.in.Deliver([]byte{0xFC}, time.Now())
			return
		case now := <-ticker.C:
			e.in.Deliver([]byte{0xF8}, now)
		}
	}
}

// TriggerRandomNote plays a note between C2 and C7 with medium to high
// velocity and releases it after the gate time. Returns the note.
func (e *Emulator) TriggerRandomNote() uint8 {
	e.mu.Lock()
	note := uint8(36 + e.rng.IntN(61))
	vel := uint8(64 + e.rng.IntN(64))
	e.mu.Unlock()

	e.NoteOn(0, note, vel)
	time.AfterFunc(e.gate, func() {
		e.in.Deliver(gomidi.NoteOff(0, note), time.Now())
	})
	return note
}

// NoteOn sends a note on channel ch
func (e *Emulator) NoteOn(ch, note, vel uint8) {
	e.in.Deliver(gomidi.NoteOn(ch, note, vel), time.Now())
}

// SendCC sends a control change on channel 0
func (e *Emulator) SendCC(cc, value uint8) {
	e.in.Deliver(gomidi.ControlChange(0, cc, value), time.Now())
}

// ChangeProgram sends a program change on channel 0
func (e *Emulator) ChangeProgram(program uint8) {
	e.in.Deliver(gomidi.ProgramChange(0, program), time.Now())
}

// Bend sends a pitch bend on channel 0
func (e *Emulator) Bend(value int16) {
	e.in.Deliver(gomidi.Pitchbend(0, value), time.Now())
}
