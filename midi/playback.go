package midi

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gitlab.com/gomidi/midi/v2/smf"

	"video-instrument/debug"
)

// Cue is one channel message of a loaded file at its offset from the start
type Cue struct {
	Offset time.Duration
	Data   []byte
}

// Playback replays a Standard MIDI File into an Input, for rehearsing a set
// without a controller attached
type Playback struct {
	in   *Input
	cues []Cue
	loop bool
}

// LoadPlayback reads an SMF from path
func LoadPlayback(path string, in *Input, loop bool) (*Playback, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cues, err := ReadCues(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	debug.Log("midi", "loaded %s: %d cues", path, len(cues))
	return &Playback{in: in, cues: cues, loop: loop}, nil
}

// ReadCues reads every channel message of every track, merged in time order.
// Meta and sysex events are skipped.
func ReadCues(r io.Reader) ([]Cue, error) {
	var cues []Cue
	rd := smf.ReadTracksFrom(r).Do(func(ev smf.TrackEvent) {
		b := []byte(ev.Message)
		if len(b) == 0 || b[0] < 0x80 || b[0] >= 0xF0 {
			return
		}
		cues = append(cues, Cue{
			Offset: time.Duration(ev.AbsMicroSeconds) * time.Microsecond,
			Data:   append([]byte(nil), b...),
		})
	})
	if err := rd.Error(); err != nil {
		return nil, err
	}
	sort.SliceStable(cues, func(i, j int) bool { return cues[i].Offset < cues[j].Offset })
	return cues, nil
}

// Cues returns the loaded messages
func (p *Playback) Cues() []Cue {
	return p.cues
}

// Run delivers cues at their offsets until the file ends (or forever when
// looping) or ctx is done (blocking - run in goroutine)
func (p *Playback) Run(ctx context.Context) {
	if len(p.cues) == 0 {
		return
	}
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		start := time.Now()
		for _, c := range p.cues {
			wait := time.Until(start.Add(c.Offset))
			if wait > 0 {
				timer.Reset(wait)
				select {
				case <-ctx.Done():
					return
				case <-timer.C:
				}
			} else if ctx.Err() != nil {
				return
			}
			p.in.Deliver(c.Data, time.Now())
		}
		if !p.loop {
			return
		}
		debug.Log("midi", "playback loop")
	}
}
