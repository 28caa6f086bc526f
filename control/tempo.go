package control

import (
	"time"

	"video-instrument/midi"
)

// clockTimeout is how long after the last pulse an external clock still
// counts as present
const clockTimeout = 250 * time.Millisecond

// Tempo tracks an external MIDI clock
type Tempo struct {
	Running   bool
	Pulses    int64   // since the last start
	BPM       float64 // 0 until one full beat has been timed
	LastPulse time.Time

	beatAt time.Time
}

func (t *Tempo) apply(ev midi.Event) {
	switch ev.Kind {
	case midi.ClockStart:
		t.Running = true
		t.Pulses = 0
		t.beatAt = time.Time{}
	case midi.ClockContinue:
		t.Running = true
	case midi.ClockStop:
		t.Running = false
	case midi.ClockTick:
		if t.Pulses%midi.PulsesPerQuarter == 0 {
			if !t.beatAt.IsZero() {
				if d := ev.Time.Sub(t.beatAt); d > 0 {
					t.BPM = float64(time.Minute) / float64(d)
				}
			}
			t.beatAt = ev.Time
		}
		t.Pulses++
		t.LastPulse = ev.Time
	}
}

// Present reports whether pulses are still arriving at now
func (t Tempo) Present(now time.Time) bool {
	return !t.LastPulse.IsZero() && now.Sub(t.LastPulse) < clockTimeout
}

// Beat is the clock position in quarter notes
func (t Tempo) Beat() float64 {
	return float64(t.Pulses) / midi.PulsesPerQuarter
}

// Beat returns the beat position at now: the external clock when present,
// otherwise elapsed time since origin at the fallback bpm
func Beat(t Tempo, origin, now time.Time, bpm float64) float64 {
	if t.Present(now) {
		return t.Beat()
	}
	if bpm <= 0 || now.Before(origin) {
		return 0
	}
	return now.Sub(origin).Minutes() * bpm
}

// EffectiveBPM is the clock estimate when present, otherwise the fallback
func EffectiveBPM(t Tempo, now time.Time, bpm float64) float64 {
	if t.Present(now) && t.BPM > 0 {
		return t.BPM
	}
	return bpm
}
