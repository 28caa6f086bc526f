package scheduler

import (
	"sync/atomic"
	"time"
)

// Metrics are written by the render goroutine and read from anywhere
type Metrics struct {
	frames      atomic.Uint64
	skipped     atomic.Uint64
	lastLatency atomic.Int64
	maxLatency  atomic.Int64
}

func (m *Metrics) observe(latency time.Duration) {
	m.lastLatency.Store(int64(latency))
	for {
		cur := m.maxLatency.Load()
		if int64(latency) <= cur || m.maxLatency.CompareAndSwap(cur, int64(latency)) {
			return
		}
	}
}

func (m *Metrics) Frames() uint64             { return m.frames.Load() }
func (m *Metrics) Skipped() uint64            { return m.skipped.Load() }
func (m *Metrics) LastLatency() time.Duration { return time.Duration(m.lastLatency.Load()) }
func (m *Metrics) MaxLatency() time.Duration  { return time.Duration(m.maxLatency.Load()) }

// Stats is a point-in-time view for the monitor and the HUD
type Stats struct {
	State       State
	Frames      uint64
	Skipped     uint64
	LastLatency time.Duration
	MaxLatency  time.Duration
	Anomalies   uint64
	Dropped     uint64

	Pattern    string
	Background string
	BPM        float64
	Beat       float64
	Trail      string
}

// info is what the render goroutine publishes after each tick
type info struct {
	pattern    string
	background string
	bpm        float64
	beat       float64
	trail      string
}
