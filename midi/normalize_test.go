package midi

import (
	"testing"
	"time"
)

func TestNormalizeChannelMessages(t *testing.T) {
	at := time.Unix(100, 0)
	tests := []struct {
		name string
		raw  []byte
		want Event
	}{
		{"note on", []byte{0x91, 60, 100}, Event{Channel: 1, Kind: NoteOn, Number: 60, Value: 100, Time: at}},
		{"note off", []byte{0x82, 61, 40}, Event{Channel: 2, Kind: NoteOff, Number: 61, Value: 40, Time: at}},
		{"note on zero velocity", []byte{0x90, 62, 0}, Event{Channel: 0, Kind: NoteOff, Number: 62, Value: 0, Time: at}},
		{"control change", []byte{0xB1, 10, 64}, Event{Channel: 1, Kind: ControlChange, Number: 10, Value: 64, Time: at}},
		{"program change", []byte{0xCF, 3}, Event{Channel: 15, Kind: ProgramChange, Value: 3, Time: at}},
		{"bend center", []byte{0xE0, 0x00, 0x40}, Event{Kind: PitchBend, Value: 0, Time: at}},
		{"bend min", []byte{0xE0, 0x00, 0x00}, Event{Kind: PitchBend, Value: BendMin, Time: at}},
		{"bend max", []byte{0xE0, 0x7F, 0x7F}, Event{Kind: PitchBend, Value: BendMax, Time: at}},
		{"clock", []byte{0xF8}, Event{Kind: ClockTick, Time: at}},
		{"start", []byte{0xFA}, Event{Kind: ClockStart, Time: at}},
		{"continue", []byte{0xFB}, Event{Kind: ClockContinue, Time: at}},
		{"stop", []byte{0xFC}, Event{Kind: ClockStop, Time: at}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer()
			got, ok := n.Normalize(tt.raw, at)
			if !ok {
				t.Fatalf("Normalize(% X) produced no event", tt.raw)
			}
			if got != tt.want {
				t.Fatalf("Normalize(% X) = %+v, want %+v", tt.raw, got, tt.want)
			}
			if n.Anomalies() != 0 {
				t.Fatalf("anomalies = %d, want 0", n.Anomalies())
			}
		})
	}
}

func TestNormalizeMalformed(t *testing.T) {
	malformed := [][]byte{
		nil,
		{},
		{0x40, 0x10},             // data byte without status
		{0x90, 60},               // truncated note on
		{0x90, 60, 100, 1},       // extra data byte
		{0xB0, 0x80, 1},          // data byte with high bit set
		{0xC0},                   // program change without program
		{0xC0, 1, 2},             // program change with two data bytes
		{0xE0, 0x00},             // truncated bend
		{0xF4},                   // undefined system common
		{0xF5, 1},                // undefined system common
		{0xF7},                   // end of exclusive on its own
		{0xF9},                   // undefined realtime
		{0xFD},                   // undefined realtime
		{0xF8, 0x00},             // clock with a data byte
		{0xF0, 0x7E, 0x01},       // unterminated sysex
		{0xF0, 0x7E, 0x90, 0xF7}, // status inside sysex
		{0xF2, 0x01},             // truncated song position
	}

	n := NewNormalizer()
	for i, raw := range malformed {
		if ev, ok := n.Normalize(raw, time.Now()); ok {
			t.Fatalf("Normalize(% X) = %+v, want no event", raw, ev)
		}
		if got := n.Anomalies(); got != uint64(i+1) {
			t.Fatalf("after % X anomalies = %d, want %d", raw, got, i+1)
		}
	}
	if n.Ignored() != 0 {
		t.Fatalf("ignored = %d, want 0", n.Ignored())
	}
}

func TestNormalizeIgnored(t *testing.T) {
	ignored := [][]byte{
		{0xFE},                   // active sensing
		{0xFF},                   // reset
		{0xF0, 0x7E, 0x01, 0xF7}, // sysex
		{0xF1, 0x10},             // MTC quarter frame
		{0xF2, 0x00, 0x10},       // song position
		{0xF3, 0x02},             // song select
		{0xF6},                   // tune request
		{0xA0, 60, 10},           // poly aftertouch
		{0xD0, 10},               // channel aftertouch
	}

	n := NewNormalizer()
	for _, raw := range ignored {
		if ev, ok := n.Normalize(raw, time.Now()); ok {
			t.Fatalf("Normalize(% X) = %+v, want no event", raw, ev)
		}
	}
	if n.Anomalies() != 0 {
		t.Fatalf("anomalies = %d, want 0", n.Anomalies())
	}
	if n.Ignored() != uint64(len(ignored)) {
		t.Fatalf("ignored = %d, want %d", n.Ignored(), len(ignored))
	}
}

func TestInputCoalescesWhenFull(t *testing.T) {
	in := NewInput(2)
	for i := 0; i < 5; i++ {
		in.Deliver([]byte{0xB0, 1, byte(i)}, time.Now())
	}
	in.Deliver([]byte{0x90}, time.Now())
	in.Deliver([]byte{0xF8}, time.Now())

	if got := len(in.Events()); got != 2 {
		t.Fatalf("queued %d events, want 2", got)
	}
	if in.Coalesced() != 2 || in.Dropped() != 1 {
		t.Fatalf("coalesced %d dropped %d, want 2 and 1", in.Coalesced(), in.Dropped())
	}
	if in.Anomalies() != 1 {
		t.Fatalf("anomalies = %d, want 1", in.Anomalies())
	}
	select {
	case <-in.Overflow():
	default:
		t.Fatal("overflow not signalled")
	}

	first := <-in.Events()
	if first.Value != 0 {
		t.Fatalf("first queued value = %d, want 0", first.Value)
	}
	// still behind the overflow, so this one is coalesced too
	in.Deliver([]byte{0xB0, 2, 9}, time.Now())
	if got := len(in.Events()); got != 1 {
		t.Fatalf("queued %d events after overflow, want 1", got)
	}

	late := in.Drain()
	if len(late) != 2 || late[0].Value != 4 || late[1].Number != 2 {
		t.Fatalf("drained %v", late)
	}
	in.Deliver([]byte{0xB0, 3, 1}, time.Now())
	if got := len(in.Events()); got != 2 {
		t.Fatalf("queued %d events after drain, want 2", got)
	}
}

func TestEmulatorMessages(t *testing.T) {
	in := NewInput(16)
	emu := NewEmulator(in, 120, 1)

	emu.SendCC(10, 64)
	emu.ChangeProgram(2)
	emu.NoteOn(1, 60, 100)
	emu.Bend(-8192)

	want := []Event{
		{Channel: 0, Kind: ControlChange, Number: 10, Value: 64},
		{Channel: 0, Kind: ProgramChange, Value: 2},
		{Channel: 1, Kind: NoteOn, Number: 60, Value: 100},
		{Channel: 0, Kind: PitchBend, Value: BendMin},
	}
	for _, w := range want {
		got := <-in.Events()
		got.Time = time.Time{}
		if got != w {
			t.Fatalf("got %+v, want %+v", got, w)
		}
	}
}

func TestEmulatorPulseInterval(t *testing.T) {
	emu := NewEmulator(NewInput(1), 120, 1)
	// 120 bpm, 24 ppq: 500ms / 24
	want := 500 * time.Millisecond / 24
	if got := emu.PulseInterval(); got < want-time.Microsecond || got > want+time.Microsecond {
		t.Fatalf("PulseInterval = %v, want %v", got, want)
	}
}

func TestEmulatorRandomNoteInRange(t *testing.T) {
	in := NewInput(64)
	emu := NewEmulator(in, 120, 7)
	for i := 0; i < 20; i++ {
		note := emu.TriggerRandomNote()
		if note < 36 || note > 96 {
			t.Fatalf("note %d outside C2..C7", note)
		}
		ev := <-in.Events()
		if ev.Kind != NoteOn || ev.Number != note || ev.Value < 64 {
			t.Fatalf("unexpected event %+v for note %d", ev, note)
		}
	}
}

func TestMapRGBToLaunchpad(t *testing.T) {
	tests := []struct {
		rgb  [3]uint8
		want uint8
	}{
		{[3]uint8{0, 0, 0}, 0},
		{[3]uint8{255, 0, 0}, 5},
		{[3]uint8{255, 255, 255}, 119},
		{[3]uint8{0, 255, 0}, 21},
	}
	for _, tt := range tests {
		if got := mapRGBToLaunchpad(tt.rgb); got != tt.want {
			t.Errorf("mapRGBToLaunchpad(%v) = %d, want %d", tt.rgb, got, tt.want)
		}
	}
}
