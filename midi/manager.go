package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-drawpad/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
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

// Options select which ports the DeviceManager opens
type Options struct {
	Match     string // case-insensitive substring of the input port name; empty = any
	Channel   int    // 1-16, 0 = any
	Launchpad bool   // open Launchpads with LED output
}

// DeviceManager handles hot-plug detection of MIDI controllers
type DeviceManager struct {
	opts        Options
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
}

func NewDeviceManager(opts Options) *DeviceManager {
	return &DeviceManager{
		opts:        opts,
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

// ListPorts returns the current ports, or ok=false if the driver did not
// answer within timeout (CoreMIDI can hang)
func ListPorts(timeout time.Duration) (ins []drivers.In, outs []drivers.Out, ok bool) {
	type portsResult struct {
		ins  []drivers.In
		outs []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, true
	case <-time.After(timeout):
		return nil, nil, false
	}
}

func (dm *DeviceManager) scan() {
	inPorts, outPorts, ok := ListPorts(3 * time.Second)
	if !ok {
		// User needs to run: sudo killall coreaudiod midiserver
		debug.Log("midi", "port scan timed out")
		return
	}

	seenIDs := make(map[string]bool)

	for _, inPort := range inPorts {
		id := inPort.String()
		lp := dm.opts.Launchpad && IsLaunchpad(id)
		if !matchPort(id, dm.opts.Match) && !lp {
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
			ctrl Controller
			err  error
		)
		if lp {
			ctrl, err = NewLaunchpadController(id, inPort, findOut(outPorts, id), dm.opts.Channel)
		} else {
			ctrl, err = NewPadController(id, inPort, dm.opts.Channel)
		}
		if err != nil {
			debug.Log("midi", "open %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = ctrl
		dm.mu.Unlock()

		debug.Log("midi", "connected %s (%s)", id, ctrl.Type())
		dm.events <- DeviceEvent{Type: DeviceConnected, Controller: ctrl, ID: id}
	}

	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.controllers[id].Close()
		delete(dm.controllers, id)
		debug.Log("midi", "disconnected %s", id)
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// findOut returns the output port with the same name as the input, if any
func findOut(outs []drivers.Out, name string) drivers.Out {
	for _, op := range outs {
		if strings.EqualFold(op.String(), name) {
			return op
		}
	}
	return nil
}

// matchPort reports whether a port name matches the configured substring.
// An empty match accepts every port except software loopbacks.
func matchPort(name, match string) bool {
	name = strings.ToLower(name)
	if match == "" {
		return !strings.Contains(name, "through")
	}
	return strings.Contains(name, strings.ToLower(match))
}

// IsLaunchpad matches the Launchpad X "MIDI" port (not the DAW port)
func IsLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
