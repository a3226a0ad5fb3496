// Package mode defines the drawing behaviours a host can switch between.
package mode

import (
	"errors"
	"fmt"
	"slices"

	"go-drawpad/canvas"
	"go-drawpad/pad"
	"go-drawpad/theme"
)

// Mode is a drawing behaviour driven by pad presses.
//
// The host calls Setup once before the first Draw or HandleMidi, then Draw
// once per frame and HandleMidi once per note-on, in arrival order, all from
// the same goroutine. Draw must not block.
type Mode interface {
	Name() string
	Setup()
	Draw(c *canvas.Canvas)

	// HandleMidi receives the pad index resolved from the bank, the raw
	// note and its velocity (1-127).
	HandleMidi(pad int, note, velocity uint8)
}

// ErrUnknownMode is returned by New for names not in Names()
var ErrUnknownMode = errors.New("unknown mode")

// Factory builds a mode bound to a pad bank and palette
type Factory func(bank *pad.Bank, pal *theme.Palette) Mode

var factories = map[string]Factory{
	"splash": func(b *pad.Bank, p *theme.Palette) Mode { return NewSplash(b, p) },
	"walker": func(b *pad.Bank, p *theme.Palette) Mode { return NewWalker(b, p) },
	"echo":   func(b *pad.Bank, p *theme.Palette) Mode { return NewEcho(b, p) },
	"blank":  func(*pad.Bank, *theme.Palette) Mode { return NewBlank() },
}

// order is the mode cycle order in the UI
var order = []string{"splash", "walker", "echo", "blank"}

// Names returns the registered mode names in cycle order
func Names() []string {
	return slices.Clone(order)
}

func New(name string, bank *pad.Bank, pal *theme.Palette) (Mode, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	return f(bank, pal), nil
}

// All builds one instance of every mode in cycle order
func All(bank *pad.Bank, pal *theme.Palette) []Mode {
	modes := make([]Mode, 0, len(order))
	for _, name := range order {
		modes = append(modes, factories[name](bank, pal))
	}
	return modes
}
