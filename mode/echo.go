package mode

import (
	"go-drawpad/canvas"
	"go-drawpad/pad"
	"go-drawpad/theme"
)

// echoHistory is how many events Echo keeps
const echoHistory = 128

// Echo shows recent hits as a scrolling bar chart, newest on the right. Bar
// height is velocity, colour identifies the pad.
type Echo struct {
	bank *pad.Bank
	pal  *theme.Palette

	history []hit
}

func NewEcho(bank *pad.Bank, pal *theme.Palette) *Echo {
	return &Echo{bank: bank, pal: pal}
}

func (e *Echo) Name() string { return "echo" }

func (e *Echo) Setup() {
	e.history = make([]hit, 0, echoHistory)
}

func (e *Echo) HandleMidi(padIdx int, note, velocity uint8) {
	if len(e.history) == echoHistory {
		copy(e.history, e.history[1:])
		e.history = e.history[:echoHistory-1]
	}
	e.history = append(e.history, hit{pad: padIdx, velocity: velocity})
}

func (e *Echo) Draw(c *canvas.Canvas) {
	c.Clear()
	n := e.bank.Len()
	for i := len(e.history) - 1; i >= 0; i-- {
		x := c.Width() - (len(e.history) - i)
		if x < 0 {
			break
		}
		h := e.history[i]
		height := max(1, int(h.velocity)*c.Height()/127)
		color := e.pal.Lookup(float64(h.pad+1) / float64(n+1))
		c.Line(x, c.Height()-1, x, c.Height()-height, color)
	}
}

// Len returns how many events are held
func (e *Echo) Len() int {
	return len(e.history)
}
