package midi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"video-instrument/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// MaxScanTimeouts is how many consecutive hung port scans make the
// transport count as lost
const MaxScanTimeouts = 5

var (
	ErrNoDriver      = errors.New("midi: no driver registered")
	ErrTransportHung = errors.New("midi: port scan keeps timing out")
)

// DeviceManager handles hot-plug detection of MIDI inputs. Every connected
// port forwards to the same Input.
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
	input       *Input
	accept      func(portName string) bool
	pattern     chan [2]int

	// port listing, replaceable in tests
	ports       func() ([]drivers.In, []drivers.Out)
	hasDriver   func() bool
	scanTimeout time.Duration
	timeouts    int
}

// NewDeviceManager creates a device manager feeding in. accept filters port
// names; nil accepts every port except loopback ones.
func NewDeviceManager(in *Input, accept func(portName string) bool) *DeviceManager {
	if accept == nil {
		accept = func(string) bool { return true }
	}
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		input:       in,
		accept:      accept,
		pattern:     make(chan [2]int, 1),
		ports: func() ([]drivers.In, []drivers.Out) {
			return gomidi.GetInPorts(), gomidi.GetOutPorts()
		},
		hasDriver:   func() bool { return drivers.Get() != nil },
		scanTimeout: 3 * time.Second,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// ShowPattern queues the active pattern for every controller with lights.
// It never blocks; the LED writes happen on the Run goroutine and only the
// latest request is kept.
func (dm *DeviceManager) ShowPattern(active, count int) {
	req := [2]int{active, count}
	for {
		select {
		case dm.pattern <- req:
			return
		default:
		}
		select {
		case <-dm.pattern:
		default:
		}
	}
}

func (dm *DeviceManager) showPattern(active, count int) {
	for id, c := range dm.Controllers() {
		if err := c.ShowPattern(active, count); err != nil {
			debug.Log("midi", "show pattern on %s: %v", id, err)
		}
	}
}

// Run starts the polling loop (blocking - run in goroutine). It returns nil
// when ctx is done, or ErrNoDriver / ErrTransportHung once the transport is
// gone for good. Either way every port is closed and Events is closed.
func (dm *DeviceManager) Run(ctx context.Context) error {
	defer func() {
		dm.closeAll()
		close(dm.events)
	}()
	if !dm.hasDriver() {
		return ErrNoDriver
	}

	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	if err := dm.scan(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := dm.scan(); err != nil {
				return err
			}
		case req := <-dm.pattern:
			dm.showPattern(req[0], req[1])
		}
	}
}

func (dm *DeviceManager) scan() error {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		inPorts, outPorts := dm.ports()
		ch <- portsResult{inPorts: inPorts, outPorts: outPorts}
	}()

	// Wait for result or timeout
	var inPorts []drivers.In
	var outPorts []drivers.Out

	select {
	case result := <-ch:
		inPorts = result.inPorts
		outPorts = result.outPorts
	case <-time.After(dm.scanTimeout):
		// CoreMIDI is hung - skip this scan
		// User needs to run: sudo killall coreaudiod midiserver
		dm.timeouts++
		debug.Log("midi", "port scan timed out (%d in a row)", dm.timeouts)
		if dm.timeouts >= MaxScanTimeouts {
			return ErrTransportHung
		}
		return nil
	}
	dm.timeouts = 0

	seenIDs := make(map[string]bool)

	for i, inPort := range inPorts {
		id := inPort.String()
		name := strings.ToLower(id)
		if isLoopback(name) || !dm.accept(id) {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var (
			c   Controller
			err error
		)
		if isLaunchpad(name) {
			var outPort drivers.Out
			for j, op := range outPorts {
				if strings.ToLower(op.String()) == name {
					outPort = outPorts[j]
					break
				}
			}
			c, err = NewLaunchpadController(id, inPorts[i], outPort, dm.input)
		} else {
			c, err = NewKeyboardController(id, inPorts[i], dm.input)
		}
		if err != nil {
			debug.Log("midi", "connect %s: %v", id, err)
			delete(seenIDs, id)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()

		debug.Log("midi", "connected %s (%s)", id, c.Type())
		dm.emit(DeviceEvent{Type: DeviceConnected, Controller: c, ID: id})
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	removed := make(map[string]Controller, len(toRemove))
	for _, id := range toRemove {
		removed[id] = dm.controllers[id]
		delete(dm.controllers, id)
	}
	dm.mu.Unlock()

	for id, c := range removed {
		c.Close()
		debug.Log("midi", "disconnected %s", id)
		dm.emit(DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
	return nil
}

// emit never blocks the scan; a TUI that stopped reading just misses events
func (dm *DeviceManager) emit(ev DeviceEvent) {
	select {
	case dm.events <- ev:
	default:
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	open := dm.controllers
	dm.controllers = make(map[string]Controller)
	dm.mu.Unlock()

	for _, c := range open {
		c.Close()
	}
}

func isLoopback(name string) bool {
	return strings.Contains(name, "midi through")
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
