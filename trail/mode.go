package trail

import "fmt"

// Mode selects how past frames persist behind the current one
type Mode int

// The zero Mode is Echo
const (
	// Echo blends the history ring, each frame weighted by its age
	Echo Mode = iota
	// Fade keeps one accumulator that decays toward every new frame
	Fade
	// Off shows background and shapes only
	Off
)

// Modes lists every mode in cycling order
var Modes = []Mode{Echo, Fade, Off}

func (m Mode) String() string {
	switch m {
	case Off:
		return "off"
	case Echo:
		return "echo"
	case Fade:
		return "fade"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode is the inverse of String
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if m.String() == s {
			return m, nil
		}
	}
	return Echo, fmt.Errorf("unknown trail mode %q", s)
}

// Next returns the mode after m, wrapping
func (m Mode) Next() Mode {
	if m < 0 || int(m) >= len(Modes) {
		return Echo
	}
	return Modes[(int(m)+1)%len(Modes)]
}
