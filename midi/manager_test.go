package midi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// slowController takes closeDelay to close and records pattern requests
type slowController struct {
	closeDelay time.Duration

	mu    sync.Mutex
	shown [][2]int
}

func (c *slowController) ID() string           { return "slow" }
func (c *slowController) Type() ControllerType { return ControllerLaunchpad }
func (c *slowController) Close() error {
	time.Sleep(c.closeDelay)
	return nil
}

func (c *slowController) ShowPattern(active, count int) error {
	c.mu.Lock()
	c.shown = append(c.shown, [2]int{active, count})
	c.mu.Unlock()
	return nil
}

func TestShowPatternNeverBlocks(t *testing.T) {
	dm := NewDeviceManager(NewInput(0), nil)
	dm.controllers["slow"] = &slowController{closeDelay: 100 * time.Millisecond}

	closed := make(chan struct{})
	go func() {
		dm.closeAll()
		close(closed)
	}()
	time.Sleep(5 * time.Millisecond)

	start := time.Now()
	for i := range 10 {
		dm.ShowPattern(i, 4)
	}
	if d := time.Since(start); d > 10*time.Millisecond {
		t.Fatalf("ShowPattern blocked %v while a port was closing", d)
	}
	<-closed
}

func TestShowPatternKeepsLatest(t *testing.T) {
	dm := NewDeviceManager(NewInput(0), nil)
	c := &slowController{}
	dm.controllers["slow"] = c

	dm.ShowPattern(1, 4)
	dm.ShowPattern(3, 4)
	req := <-dm.pattern
	if req != [2]int{3, 4} {
		t.Fatalf("queued %v, want [3 4]", req)
	}
	dm.showPattern(req[0], req[1])
	if len(c.shown) != 1 || c.shown[0] != [2]int{3, 4} {
		t.Fatalf("shown %v", c.shown)
	}
}

func TestRunReportsLostTransport(t *testing.T) {
	tests := []struct {
		name  string
		setup func(dm *DeviceManager)
		want  error
	}{
		{"no driver", func(dm *DeviceManager) {
			dm.hasDriver = func() bool { return false }
		}, ErrNoDriver},
		{"hung scans", func(dm *DeviceManager) {
			dm.hasDriver = func() bool { return true }
			dm.ports = func() ([]drivers.In, []drivers.Out) {
				select {}
			}
		}, ErrTransportHung},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dm := NewDeviceManager(NewInput(0), nil)
			dm.pollRate = time.Millisecond
			dm.scanTimeout = time.Millisecond
			tt.setup(dm)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := dm.Run(ctx); !errors.Is(err, tt.want) {
				t.Fatalf("Run = %v, want %v", err, tt.want)
			}
			if _, ok := <-dm.Events(); ok {
				t.Fatal("events channel left open")
			}
		})
	}
}

func TestRunStopsCleanly(t *testing.T) {
	dm := NewDeviceManager(NewInput(0), nil)
	dm.pollRate = time.Millisecond
	dm.hasDriver = func() bool { return true }
	dm.ports = func() ([]drivers.In, []drivers.Out) { return nil, nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := dm.Run(ctx); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
}
