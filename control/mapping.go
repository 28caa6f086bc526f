package control

import (
	"math"
	"sort"

	"video-instrument/midi"
)

// Param is a named, ranged parameter driven by one control
type Param struct {
	Name    string
	Source  ID
	Omni    bool // listen on every channel, latest write wins
	Default float64
	Min     float64
	Max     float64
}

// Clamp limits v to the parameter range
func (p Param) Clamp(v float64) float64 {
	lo, hi := p.Min, p.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	if math.IsNaN(v) {
		return p.Default
	}
	return math.Max(lo, math.Min(hi, v))
}

// Scale maps a raw control value into the parameter range
func (p Param) Scale(kind midi.Kind, raw int) float64 {
	var n float64
	if kind == midi.PitchBend {
		n = float64(raw-midi.BendMin) / float64(midi.BendMax-midi.BendMin)
	} else {
		n = float64(raw) / 127
	}
	n = math.Max(0, math.Min(1, n))
	return p.Clamp(p.Min + n*(p.Max-p.Min))
}

// Values are resolved parameter values for one frame
type Values map[string]float64

// Get returns the value of name, or 0 when unknown
func (v Values) Get(name string) float64 {
	return v[name]
}

// Int returns the value of name rounded to the nearest integer
func (v Values) Int(name string) int {
	return int(math.Round(v[name]))
}

// Mapping is the set of parameters and their sources
type Mapping struct {
	params map[string]Param
}

// NewMapping creates a mapping from params; later duplicates replace earlier
func NewMapping(params ...Param) *Mapping {
	m := &Mapping{params: make(map[string]Param, len(params))}
	for _, p := range params {
		m.Set(p)
	}
	return m
}

// Set adds or replaces a parameter
func (m *Mapping) Set(p Param) {
	m.params[p.Name] = p
}

// Param returns the parameter called name
func (m *Mapping) Param(name string) (Param, bool) {
	p, ok := m.params[name]
	return p, ok
}

// Params returns every parameter sorted by name
func (m *Mapping) Params() []Param {
	out := make([]Param, 0, len(m.params))
	for _, p := range m.params {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Value resolves one parameter against a snapshot. A control that was never
// written yields the default; out-of-range input is clamped.
func (m *Mapping) Value(s Snapshot, name string) float64 {
	p, ok := m.params[name]
	if !ok {
		return 0
	}
	v, ok := m.lookup(s, p)
	if !ok {
		return p.Clamp(p.Default)
	}
	return p.Scale(p.Source.Kind, v.Raw)
}

// Resolve evaluates every parameter
func (m *Mapping) Resolve(s Snapshot) Values {
	out := make(Values, len(m.params))
	for name := range m.params {
		out[name] = m.Value(s, name)
	}
	return out
}

func (m *Mapping) lookup(s Snapshot, p Param) (Value, bool) {
	if !p.Omni {
		return s.Get(p.Source)
	}
	var (
		best  Value
		found bool
	)
	for ch := uint8(0); ch < 16; ch++ {
		id := p.Source
		id.Channel = ch
		if v, ok := s.Values[id]; ok && (!found || v.Seq > best.Seq) {
			best, found = v, true
		}
	}
	return best, found
}

// Parameter names shared by patterns, backgrounds and the trail
const (
	ParamSpeed              = "speed"
	ParamCount              = "count"
	ParamSpread             = "spread"
	ParamSize               = "size"
	ParamHue                = "hue"
	ParamCycleRatio         = "bg_color_cycle_ratio"
	ParamTrailOpacity       = "trail_opacity"
	ParamTrailDecay         = "trail_decay"
	ParamConnectionDistance = "connection_distance"
	ParamShapeMode          = "shape_mode"
	ParamActivationSpread   = "activation_spread"
	ParamDecayRate          = "decay_rate"
	ParamWarp               = "warp"
)

func cc(n uint8) ID {
	return ID{Kind: midi.ControlChange, Number: n}
}

// DefaultMapping returns the stock parameter set: CC 1-12 on any channel plus
// the bend wheel
func DefaultMapping() *Mapping {
	return NewMapping(
		Param{Name: ParamSpeed, Source: cc(1), Omni: true, Default: 0.5, Min: 0.1, Max: 4},
		Param{Name: ParamCount, Source: cc(2), Omni: true, Default: 24, Min: 3, Max: 96},
		Param{Name: ParamSpread, Source: cc(3), Omni: true, Default: 0.5, Min: 0, Max: 1},
		Param{Name: ParamSize, Source: cc(4), Omni: true, Default: 0.5, Min: 0.1, Max: 1},
		Param{Name: ParamHue, Source: cc(5), Omni: true, Default: 0, Min: 0, Max: 360},
		Param{Name: ParamCycleRatio, Source: cc(6), Omni: true, Default: 1, Min: 0, Max: 16},
		Param{Name: ParamTrailOpacity, Source: cc(7), Omni: true, Default: 0.6, Min: 0, Max: 1},
		Param{Name: ParamTrailDecay, Source: cc(8), Omni: true, Default: 0.8, Min: 0, Max: 0.99},
		Param{Name: ParamConnectionDistance, Source: cc(9), Omni: true, Default: 100, Min: 50, Max: 300},
		Param{Name: ParamShapeMode, Source: cc(10), Omni: true, Default: 0, Min: 0, Max: 7},
		Param{Name: ParamActivationSpread, Source: cc(11), Omni: true, Default: 0.5, Min: 0, Max: 1},
		Param{Name: ParamDecayRate, Source: cc(12), Omni: true, Default: 0.99, Min: 0.9, Max: 0.999},
		Param{Name: ParamWarp, Source: ID{Kind: midi.PitchBend}, Omni: true, Default: 0, Min: -1, Max: 1},
	)
}
