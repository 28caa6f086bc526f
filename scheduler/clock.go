package scheduler

import "time"

// Clock is the time source of the render loop
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock is the wall clock
var RealClock Clock = realClock{}

// boundaries returns how many interval boundaries a tick that started on a
// boundary and ran for elapsed has consumed: the tick's own plus every one
// passed while it ran. The next tick runs on the following boundary.
func boundaries(elapsed, interval time.Duration) int64 {
	if elapsed <= 0 || interval <= 0 {
		return 1
	}
	n := int64((elapsed + interval - 1) / interval)
	return max(n, 1)
}
