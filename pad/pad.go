// Package pad holds the physical pads of a controller and resolves incoming
// MIDI notes to pad indices.
package pad

import (
	"sync"

	"go-drawpad/config"
	"go-drawpad/debug"
)

// NoPad is returned by NoteToPad when no pad was ever registered for a note
const NoPad = -1

// Pad is one physical pad. Fields are fixed at construction.
type Pad struct {
	Name  string
	Index int
	Note  uint8
	IsAux bool
}

// Bank owns a set of pads and the note -> index map. Indices are assigned in
// construction order starting at 0 and are never reused.
type Bank struct {
	mu        sync.RWMutex
	pads      []*Pad
	noteToPad map[uint8]int
	lastIndex int
}

func NewBank() *Bank {
	return &Bank{noteToPad: make(map[uint8]int)}
}

// NewBankFromConfig builds a bank with one pad per config entry, in order
func NewBankFromConfig(pads []config.PadConfig) *Bank {
	b := NewBank()
	for _, pc := range pads {
		b.NewPad(pc.Name, pc.Note, pc.Aux)
	}
	return b
}

// NewPad registers a pad. A later pad on the same note takes over the note.
func (b *Bank) NewPad(name string, note uint8, isAux bool) *Pad {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := &Pad{
		Name:  name,
		Index: b.lastIndex,
		Note:  note,
		IsAux: isAux,
	}
	b.lastIndex++

	if prev, ok := b.noteToPad[note]; ok {
		debug.Log("pad", "note %d moved from pad %d (%s) to pad %d (%s)",
			note, prev, b.pads[prev].Name, p.Index, name)
	}
	b.noteToPad[note] = p.Index
	b.pads = append(b.pads, p)

	return p
}

// NoteToPad returns the index of the pad last registered for note, or NoPad
func (b *Bank) NoteToPad(note uint8) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if idx, ok := b.noteToPad[note]; ok {
		return idx
	}
	return NoPad
}

// Pad returns the pad at index, or nil
func (b *Bank) Pad(index int) *Pad {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if index < 0 || index >= len(b.pads) {
		return nil
	}
	return b.pads[index]
}

// Pads returns the pads in construction order
func (b *Bank) Pads() []*Pad {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*Pad, len(b.pads))
	copy(out, b.pads)
	return out
}

func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.pads)
}
