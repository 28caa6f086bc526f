package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"video-instrument/control"
	"video-instrument/midi"
	"video-instrument/trail"
)

// ControllerType identifies the kind of controller
type ControllerType string

const (
	ControllerLaunchpadX ControllerType = "launchpad-x"
	ControllerKeyboard   ControllerType = "keyboard"
)

// ControllerConfig defines a saved controller configuration
type ControllerConfig struct {
	PortName    string         `json:"portName"`
	Type        ControllerType `json:"type"`
	AutoConnect bool           `json:"autoConnect"`
}

// TrailConfig sets the trail history and blend
type TrailConfig struct {
	Mode     string  `json:"mode"` // echo, fade or off
	Capacity int     `json:"capacity"`
	Decay    float64 `json:"decay"`
	Opacity  float64 `json:"opacity"`
}

// MappingConfig binds a parameter to a control. Omni listens on every
// channel; otherwise Channel is 0-15.
type MappingConfig struct {
	Channel int      `json:"channel"`
	Omni    bool     `json:"omni,omitempty"`
	Kind    string   `json:"kind"`
	Number  int      `json:"number"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
}

// LFOConfig is one saved LFO
type LFOConfig struct {
	Waveform  string  `json:"waveform"`
	Frequency float64 `json:"frequency"`
	Amplitude float64 `json:"amplitude,omitempty"`
	Phase     float64 `json:"phase,omitempty"`
	Target    string  `json:"target"`
	Active    bool    `json:"active"`
}

// RecordConfig enables the PNG frame recorder when Dir is set
type RecordConfig struct {
	Dir   string `json:"dir,omitempty"`
	Every int    `json:"every,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	FrameRate  float64                  `json:"frameRate"`
	Width      int                      `json:"width"`
	Height     int                      `json:"height"`
	Scale      int                      `json:"scale,omitempty"`
	Trail      TrailConfig              `json:"trail"`
	Pattern    string                   `json:"pattern"`
	Background string                   `json:"background"`
	Palette    string                   `json:"palette,omitempty"`
	BPM        float64                  `json:"bpm"`
	Seed       uint64                   `json:"seed,omitempty"`
	Mappings   map[string]MappingConfig `json:"mappings,omitempty"`
	LFOs       []LFOConfig              `json:"lfos,omitempty"`

	Controllers []ControllerConfig `json:"controllers,omitempty"`
	Record      RecordConfig       `json:"record,omitempty"`
	Headless    bool               `json:"headless,omitempty"`
	HUD         bool               `json:"hud,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		FrameRate:  60,
		Width:      640,
		Height:     360,
		Scale:      2,
		Trail:      TrailConfig{Mode: "echo", Capacity: 8, Decay: 0.8, Opacity: 0.6},
		Pattern:    "swarm",
		Background: "color_cycle",
		Palette:    "plasma",
		BPM:        120,
		Seed:       1,
		Controllers: []ControllerConfig{
			{
				PortName:    "Launchpad X LPX MIDI",
				Type:        ControllerLaunchpadX,
				AutoConnect: true,
			},
		},
		Record: RecordConfig{Every: 1},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "video-instrument"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config at path (the default path when empty), or returns
// defaults if the file does not exist. Fields missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Validate()
	return cfg, nil
}

// Save writes the config to path (the default path when empty)
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate clamps out-of-range values in place
func (c *Config) Validate() {
	c.FrameRate = clamp(c.FrameRate, 1, 240, 60)
	if c.Width <= 0 {
		c.Width = 640
	}
	if c.Height <= 0 {
		c.Height = 360
	}
	c.Scale = max(c.Scale, 1)
	c.Trail.Capacity = max(0, min(c.Trail.Capacity, trail.MaxCapacity))
	c.Trail.Decay = clamp(c.Trail.Decay, 0, trail.MaxDecay, 0.8)
	c.Trail.Opacity = clamp(c.Trail.Opacity, 0, 1, 0.6)
	if _, err := trail.ParseMode(c.Trail.Mode); err != nil {
		c.Trail.Mode = trail.Echo.String()
	}
	if c.BPM <= 0 {
		c.BPM = 120
	}
	c.Record.Every = max(c.Record.Every, 1)
}

func clamp(v, lo, hi, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return math.Max(lo, math.Min(hi, v))
}

// TrailMode is the validated trail mode
func (c *Config) TrailMode() trail.Mode {
	m, _ := trail.ParseMode(c.Trail.Mode)
	return m
}

// Mapping builds the parameter mapping: the default mapping with the trail
// defaults from this config and the saved bindings applied on top
func (c *Config) Mapping() (*control.Mapping, error) {
	m := control.DefaultMapping()
	for name, def := range map[string]float64{
		control.ParamTrailOpacity: c.Trail.Opacity,
		control.ParamTrailDecay:   c.Trail.Decay,
	} {
		if p, ok := m.Param(name); ok {
			p.Default = def
			m.Set(p)
		}
	}

	names := make([]string, 0, len(c.Mappings))
	for name := range c.Mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mc := c.Mappings[name]
		p, ok := m.Param(name)
		if !ok {
			return nil, fmt.Errorf("mapping %q: unknown parameter", name)
		}
		kind, err := midi.ParseKind(mc.Kind)
		if err != nil {
			return nil, fmt.Errorf("mapping %q: %w", name, err)
		}
		if mc.Channel < 0 || mc.Channel > 15 || mc.Number < 0 || mc.Number > 127 {
			return nil, fmt.Errorf("mapping %q: channel %d number %d out of range", name, mc.Channel, mc.Number)
		}
		p.Source = control.IDOf(midi.Event{Channel: uint8(mc.Channel), Kind: kind, Number: uint8(mc.Number)})
		p.Omni = mc.Omni
		if mc.Min != nil {
			p.Min = *mc.Min
		}
		if mc.Max != nil {
			p.Max = *mc.Max
		}
		m.Set(p)
	}
	return m, nil
}

// SetMappings stores every parameter binding of m
func (c *Config) SetMappings(m *control.Mapping) {
	c.Mappings = make(map[string]MappingConfig)
	for _, p := range m.Params() {
		lo, hi := p.Min, p.Max
		c.Mappings[p.Name] = MappingConfig{
			Channel: int(p.Source.Channel),
			Omni:    p.Omni,
			Kind:    p.Source.Kind.String(),
			Number:  int(p.Source.Number),
			Min:     &lo,
			Max:     &hi,
		}
	}
}

// LFOBank builds the configured LFOs, seeding each from seed
func (c *Config) LFOBank() (*control.LFOBank, error) {
	bank := control.NewLFOBank()
	for i, lc := range c.LFOs {
		wave, err := control.ParseWaveform(lc.Waveform)
		if err != nil {
			return nil, fmt.Errorf("lfo %d: %w", i, err)
		}
		l := control.NewLFO(wave, lc.Target, c.Seed+uint64(i))
		if lc.Frequency > 0 {
			l.Frequency = lc.Frequency
		}
		if lc.Amplitude != 0 {
			l.Amplitude = lc.Amplitude
		}
		l.Phase = lc.Phase
		l.Active = lc.Active
		bank.Add(l)
	}
	return bank, nil
}

// SetLFOs stores the bank contents
func (c *Config) SetLFOs(b *control.LFOBank) {
	c.LFOs = c.LFOs[:0]
	for _, l := range b.LFOs() {
		c.LFOs = append(c.LFOs, LFOConfig{
			Waveform:  string(l.Wave),
			Frequency: l.Frequency,
			Amplitude: l.Amplitude,
			Phase:     l.Phase,
			Target:    l.Target,
			Active:    l.Active,
		})
	}
}

// FindController finds a controller config by port name
func (c *Config) FindController(portName string) *ControllerConfig {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == portName {
			return &c.Controllers[i]
		}
	}
	return nil
}

// AddController adds or updates a controller config
func (c *Config) AddController(ctrl ControllerConfig) {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == ctrl.PortName {
			c.Controllers[i] = ctrl
			return
		}
	}
	c.Controllers = append(c.Controllers, ctrl)
}

// AcceptPort reports whether the device manager should open portName:
// unknown ports are accepted, known ports only with autoConnect
func (c *Config) AcceptPort(portName string) bool {
	ctrl := c.FindController(portName)
	return ctrl == nil || ctrl.AutoConnect
}
