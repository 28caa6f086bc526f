package scheduler

import "video-instrument/debug"

// Op is a render-side action requested from another goroutine
type Op int

const (
	OpSelectPattern Op = iota + 1
	OpNextPattern
	OpPrevPattern
	OpNextBackground
	OpCycleMono
	OpBaseHue
	OpCycleTrail
)

// Command is applied by the render goroutine before the next tick
type Command struct {
	Op    Op
	Index int     // OpSelectPattern
	Hue   float64 // OpBaseHue; negative picks a random hue
}

func SelectPattern(i int) Command { return Command{Op: OpSelectPattern, Index: i} }
func NextPattern() Command        { return Command{Op: OpNextPattern} }
func PrevPattern() Command        { return Command{Op: OpPrevPattern} }
func NextBackground() Command     { return Command{Op: OpNextBackground} }
func CycleMono() Command          { return Command{Op: OpCycleMono} }
func RandomBaseHue() Command      { return Command{Op: OpBaseHue, Hue: -1} }
func CycleTrail() Command         { return Command{Op: OpCycleTrail} }

// Send queues cmd without blocking; false means the queue is full
func (s *Scheduler) Send(cmd Command) bool {
	select {
	case s.commands <- cmd:
		return true
	default:
		return false
	}
}

func (s *Scheduler) apply(cmd Command) {
	switch cmd.Op {
	case OpSelectPattern:
		s.deck.Select(cmd.Index)
		s.patternChanged()
	case OpNextPattern:
		s.deck.Next()
		s.patternChanged()
	case OpPrevPattern:
		s.deck.Prev()
		s.patternChanged()
	case OpNextBackground:
		s.backgrounds.Next()
	case OpCycleMono:
		s.backgrounds.CycleMono()
	case OpBaseHue:
		hue := cmd.Hue
		if hue < 0 {
			hue = s.rng.Float64() * 360
		}
		s.backgrounds.ChangeBaseHue(hue)
	case OpCycleTrail:
		s.compositor.SetMode(s.compositor.Mode().Next())
	default:
		debug.Log("scheduler", "unknown command %d", cmd.Op)
		return
	}
	last := s.info.Load()
	s.publish(last.bpm, last.beat)
	debug.Log("scheduler", "command %d: pattern=%s background=%s trail=%s", cmd.Op, s.deck.Active().Name(), s.backgrounds.Active().Name(), s.compositor.Mode())
}
