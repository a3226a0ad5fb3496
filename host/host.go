// Package host drives the current drawing mode: it resolves incoming notes
// through the pad bank, calls the mode each frame and mirrors the canvas to
// a grid controller's LEDs.
//
// A Host is not safe for concurrent use. MIDI callbacks must be funnelled to
// the goroutine that owns it (the TUI does this through tea.Msg).
package host

import (
	"errors"
	"fmt"

	"go-drawpad/canvas"
	"go-drawpad/debug"
	"go-drawpad/midi"
	"go-drawpad/mode"
	"go-drawpad/pad"
)

// ErrNoMode is returned when a mode index or name does not exist
var ErrNoMode = errors.New("no such mode")

type Host struct {
	bank   *pad.Bank
	canvas *canvas.Canvas

	modes   []mode.Mode
	ready   []bool // Setup has run
	current int

	frame   int
	lastHit map[int]int // pad index -> frame of last hit

	// LED mirror
	controller midi.Controller
	prevLEDs   map[[2]int]midi.LEDUpdate
}

// New creates a host and activates the first mode
func New(bank *pad.Bank, c *canvas.Canvas, modes ...mode.Mode) (*Host, error) {
	if len(modes) == 0 {
		return nil, fmt.Errorf("host needs at least one mode: %w", ErrNoMode)
	}
	h := &Host{
		bank:     bank,
		canvas:   c,
		modes:    modes,
		ready:    make([]bool, len(modes)),
		lastHit:  make(map[int]int),
		prevLEDs: make(map[[2]int]midi.LEDUpdate),
	}
	h.activate(0)
	return h, nil
}

func (h *Host) Bank() *pad.Bank             { return h.bank }
func (h *Host) Canvas() *canvas.Canvas      { return h.canvas }
func (h *Host) Modes() []mode.Mode          { return h.modes }
func (h *Host) Current() mode.Mode          { return h.modes[h.current] }
func (h *Host) CurrentIndex() int           { return h.current }
func (h *Host) Controller() midi.Controller { return h.controller }

// activate runs Setup the first time a mode becomes current
func (h *Host) activate(i int) {
	if !h.ready[i] {
		h.modes[i].Setup()
		h.ready[i] = true
		debug.Log("host", "setup %s", h.modes[i].Name())
	}
	h.current = i
}

// SetMode switches to mode i and clears the canvas
func (h *Host) SetMode(i int) error {
	if i < 0 || i >= len(h.modes) {
		return fmt.Errorf("mode %d: %w", i, ErrNoMode)
	}
	if i == h.current {
		return nil
	}
	h.canvas.Clear()
	h.activate(i)
	debug.Log("host", "mode -> %s", h.modes[i].Name())
	return nil
}

// SetModeByName switches to the first mode with the given name
func (h *Host) SetModeByName(name string) error {
	for i, m := range h.modes {
		if m.Name() == name {
			return h.SetMode(i)
		}
	}
	return fmt.Errorf("mode %q: %w", name, ErrNoMode)
}

// NextMode cycles to the following mode
func (h *Host) NextMode() {
	h.SetMode((h.current + 1) % len(h.modes))
}

// Frame renders the current mode onto the canvas
func (h *Host) Frame() {
	h.modes[h.current].Draw(h.canvas)
	h.frame++
	debug.LogEvery(300, "frame", "frame %d mode=%s lit=%d", h.frame, h.Current().Name(), h.canvas.Lit())
}

// HandleNote resolves the note to a pad and forwards it to the current mode.
// Notes with no pad are dropped and HandleNote returns false.
func (h *Host) HandleNote(ev midi.NoteEvent) bool {
	idx := h.bank.NoteToPad(ev.Note)
	if idx == pad.NoPad {
		debug.Log("host", "note %d has no pad, dropped", ev.Note)
		return false
	}
	h.lastHit[idx] = h.frame
	h.modes[h.current].HandleMidi(idx, ev.Note, ev.Velocity)
	return true
}

// PressPad simulates a hit on pad index, as if its note arrived
func (h *Host) PressPad(index int, velocity uint8) bool {
	p := h.bank.Pad(index)
	if p == nil {
		return false
	}
	return h.HandleNote(midi.NoteEvent{Note: p.Note, Velocity: velocity})
}

// RecentlyHit reports whether pad index was hit within the last n frames
func (h *Host) RecentlyHit(index, n int) bool {
	f, ok := h.lastHit[index]
	return ok && h.frame-f <= n
}

// Clear wipes the canvas without touching mode state
func (h *Host) Clear() {
	h.canvas.Clear()
}

// SetController sets the controller used for LED feedback (nil to detach)
func (h *Host) SetController(c midi.Controller) {
	debug.Log("ctrl", "SetController, resetting diff state")
	h.controller = c
	h.prevLEDs = make(map[[2]int]midi.LEDUpdate)
}

// FlushLEDs sends the changed cells of the downsampled canvas to the
// controller. The canvas has row 0 at the top, the grid at the bottom.
// A failed send leaves the diff state alone so the cells go out again on
// the next flush.
func (h *Host) FlushLEDs() error {
	if h.controller == nil || h.controller.Type() != midi.ControllerLaunchpad {
		return nil
	}

	grid := h.canvas.Downsample(midi.GridSize, midi.GridSize)

	var updates []midi.LEDUpdate
	for row := range grid {
		for col, rgb := range grid[row] {
			led := midi.LEDUpdate{
				Row:     midi.GridSize - 1 - row,
				Col:     col,
				Color:   rgb,
				Channel: midi.ChannelStatic,
			}
			key := [2]int{led.Row, led.Col}
			if prev, ok := h.prevLEDs[key]; !ok || prev != led {
				updates = append(updates, led)
			}
		}
	}

	if len(updates) == 0 {
		return nil
	}
	debug.Log("led", "flushLEDs: batch=%d", len(updates))
	if err := h.controller.SetLEDBatch(updates); err != nil {
		return err
	}
	for _, led := range updates {
		h.prevLEDs[[2]int{led.Row, led.Col}] = led
	}
	return nil
}
