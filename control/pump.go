package control

import (
	"context"

	"video-instrument/debug"
	"video-instrument/midi"
)

// Source is a normalized event stream with a coalesced overflow, as
// provided by midi.Input
type Source interface {
	Events() <-chan midi.Event
	Overflow() <-chan struct{}
	Drain() []midi.Event
}

// Pump drains src into s until ctx is done or the event channel is closed
// (blocking - run in goroutine). It is the only writer on the input side.
func Pump(ctx context.Context, src Source, s *Store) {
	events := src.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			apply(s, ev)
		case <-src.Overflow():
			// queued events are older than the overflow
			for drained := false; !drained; {
				select {
				case ev, ok := <-events:
					if !ok {
						return
					}
					apply(s, ev)
				default:
					drained = true
				}
			}
			late := src.Drain()
			for _, ev := range late {
				apply(s, ev)
			}
			debug.Log("control", "applied %d coalesced events", len(late))
		}
	}
}

func apply(s *Store, ev midi.Event) {
	s.Update(ev)
	if !ev.Kind.IsClock() {
		debug.LogEvery(64, "control", "last %s", ev)
	}
}
