package control

import (
	"math"
	"testing"

	"video-instrument/midi"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMappingDefaultsAndScaling(t *testing.T) {
	m := NewMapping(
		Param{Name: "speed", Source: cc(1), Default: 0.5, Min: 0, Max: 2},
		Param{Name: "warp", Source: ID{Kind: midi.PitchBend}, Default: 0, Min: -1, Max: 1},
		Param{Name: "inverted", Source: cc(2), Default: 1, Min: 10, Max: 0},
	)
	s := NewStore()

	if got := m.Value(s.Snapshot(), "speed"); !near(got, 0.5) {
		t.Fatalf("unset speed = %f, want default 0.5", got)
	}
	if got := m.Value(s.Snapshot(), "missing"); got != 0 {
		t.Fatalf("unknown parameter = %f, want 0", got)
	}

	tests := []struct {
		ev    midi.Event
		param string
		want  float64
	}{
		{midi.Event{Kind: midi.ControlChange, Number: 1, Value: 0}, "speed", 0},
		{midi.Event{Kind: midi.ControlChange, Number: 1, Value: 127}, "speed", 2},
		{midi.Event{Kind: midi.ControlChange, Number: 1, Value: 500}, "speed", 2},
		{midi.Event{Kind: midi.ControlChange, Number: 1, Value: -3}, "speed", 0},
		{midi.Event{Kind: midi.PitchBend, Value: midi.BendMin}, "warp", -1},
		{midi.Event{Kind: midi.PitchBend, Value: midi.BendMax}, "warp", 1},
		{midi.Event{Kind: midi.ControlChange, Number: 2, Value: 127}, "inverted", 0},
	}
	for _, tt := range tests {
		s.Update(tt.ev)
		if got := m.Value(s.Snapshot(), tt.param); !near(got, tt.want) {
			t.Errorf("%s after %v = %f, want %f", tt.param, tt.ev, got, tt.want)
		}
	}
}

func TestMappingChannelSelection(t *testing.T) {
	m := NewMapping(
		Param{Name: "exact", Source: ID{Channel: 2, Kind: midi.ControlChange, Number: 1}, Default: 0, Min: 0, Max: 127},
		Param{Name: "omni", Source: cc(1), Omni: true, Default: 0, Min: 0, Max: 127},
	)
	s := NewStore()
	s.Update(midi.Event{Channel: 2, Kind: midi.ControlChange, Number: 1, Value: 20})
	s.Update(midi.Event{Channel: 9, Kind: midi.ControlChange, Number: 1, Value: 90})

	v := m.Resolve(s.Snapshot())
	if !near(v.Get("exact"), 20) {
		t.Fatalf("exact = %f, want 20", v.Get("exact"))
	}
	if !near(v.Get("omni"), 90) {
		t.Fatalf("omni = %f, want 90 (latest channel)", v.Get("omni"))
	}
}

func TestDefaultMappingWithinRanges(t *testing.T) {
	m := DefaultMapping()
	v := m.Resolve(NewStore().Snapshot())
	for _, p := range m.Params() {
		got := v.Get(p.Name)
		if got != p.Clamp(got) {
			t.Errorf("%s default %f outside [%f, %f]", p.Name, got, p.Min, p.Max)
		}
	}
	if v.Int(ParamCount) != 24 {
		t.Fatalf("count = %d, want 24", v.Int(ParamCount))
	}
}

func TestLFOWaveforms(t *testing.T) {
	tests := []struct {
		wave Waveform
		beat float64
		want float64
	}{
		{Sine, 0.25, 1},
		{Sine, 0.75, -1},
		{Triangle, 0.25, 1},
		{Triangle, 0.5, 0},
		{Triangle, 0.75, -1},
		{Square, 0.1, 1},
		{Square, 0.6, -1},
		{Saw, 0, -1},
		{Saw, 0.5, 0},
		{Saw, 3.5, 0},
	}
	for _, tt := range tests {
		l := NewLFO(tt.wave, "", 1)
		if got := l.Value(tt.beat); !near(got, tt.want) {
			t.Errorf("%s(%f) = %f, want %f", tt.wave, tt.beat, got, tt.want)
		}
	}

	off := NewLFO(Sine, "", 1)
	off.Active = false
	if off.Value(0.25) != 0 {
		t.Fatal("inactive LFO produced output")
	}
}

func TestLFORandomDeterministic(t *testing.T) {
	a := NewLFO(Random, "", 42)
	b := NewLFO(Random, "", 42)
	for beat := 0.0; beat < 8; beat += 0.1 {
		va, vb := a.Value(beat), b.Value(beat)
		if va != vb {
			t.Fatalf("random LFOs diverged at beat %f: %f vs %f", beat, va, vb)
		}
		if va < -1 || va > 1 {
			t.Fatalf("random value %f out of range", va)
		}
	}
}

func TestLFOBankApply(t *testing.T) {
	m := NewMapping(Param{Name: "size", Source: cc(4), Default: 0.5, Min: 0, Max: 10})
	l := NewLFO(Sine, "size", 1)
	l.Amplitude = 3 // overdriven, clamped to range
	bank := NewLFOBank(l, NewLFO(Sine, "nothing", 2))

	v := m.Resolve(NewStore().Snapshot())
	bank.Apply(0, m, v)
	if !near(v.Get("size"), 5) {
		t.Fatalf("size at beat 0 = %f, want center 5", v.Get("size"))
	}
	bank.Apply(0.25, m, v)
	if !near(v.Get("size"), 10) {
		t.Fatalf("size at beat 0.25 = %f, want clamped max 10", v.Get("size"))
	}
	if _, ok := v["nothing"]; ok {
		t.Fatal("LFO with unknown target wrote a value")
	}
}

func TestParseWaveform(t *testing.T) {
	if w, err := ParseWaveform("saw"); err != nil || w != Saw {
		t.Fatalf("ParseWaveform(saw) = %q, %v", w, err)
	}
	if _, err := ParseWaveform("noise"); err == nil {
		t.Fatal("ParseWaveform(noise) succeeded")
	}
}
