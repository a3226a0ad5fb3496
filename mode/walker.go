package mode

import (
	"go-drawpad/canvas"
	"go-drawpad/pad"
	"go-drawpad/theme"
)

// Walker moves a pen toward the pressed pad, drawing a trail. Velocity sets
// how far along the way it goes. Aux pads lift or lower the pen.
type Walker struct {
	bank *pad.Bank
	pal  *theme.Palette

	x, y    int
	placed  bool
	penDown bool
	moves   []hit
}

func NewWalker(bank *pad.Bank, pal *theme.Palette) *Walker {
	return &Walker{bank: bank, pal: pal}
}

func (w *Walker) Name() string { return "walker" }

func (w *Walker) Setup() {
	w.placed = false
	w.penDown = true
	w.moves = nil
}

func (w *Walker) HandleMidi(padIdx int, note, velocity uint8) {
	p := w.bank.Pad(padIdx)
	if p == nil {
		return
	}
	if p.IsAux {
		w.penDown = !w.penDown
		return
	}
	w.moves = append(w.moves, hit{pad: padIdx, velocity: velocity})
}

func (w *Walker) Draw(c *canvas.Canvas) {
	if !w.placed {
		w.x, w.y = c.Width()/2, c.Height()/2
		w.placed = true
	}

	for _, m := range w.moves {
		tx, ty := PadPoint(m.pad, w.bank.Len(), c.Width(), c.Height())
		frac := float64(m.velocity) / 127
		nx := w.x + int(float64(tx-w.x)*frac)
		ny := w.y + int(float64(ty-w.y)*frac)
		if w.penDown {
			c.Line(w.x, w.y, nx, ny, w.pal.Velocity(m.velocity))
		}
		w.x, w.y = nx, ny
	}
	w.moves = w.moves[:0]
}

// Position returns the pen position in canvas cells
func (w *Walker) Position() (x, y int) {
	return w.x, w.y
}

// PenDown reports whether moves leave a trail
func (w *Walker) PenDown() bool {
	return w.penDown
}
