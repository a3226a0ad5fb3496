package mode

import (
	"go-drawpad/canvas"
	"go-drawpad/pad"
	"go-drawpad/theme"
)

// Splash drops a disc near the pressed pad. Harder hits make bigger, hotter
// discs; everything fades a little each frame. Aux pads wipe the canvas.
type Splash struct {
	bank *pad.Bank
	pal  *theme.Palette

	fade    float64
	pending []hit
	wipe    bool
}

type hit struct {
	pad      int
	velocity uint8
}

func NewSplash(bank *pad.Bank, pal *theme.Palette) *Splash {
	return &Splash{bank: bank, pal: pal, fade: 0.9}
}

func (s *Splash) Name() string { return "splash" }

func (s *Splash) Setup() {
	s.pending = nil
	s.wipe = true
}

func (s *Splash) HandleMidi(padIdx int, note, velocity uint8) {
	p := s.bank.Pad(padIdx)
	if p == nil {
		return
	}
	if p.IsAux {
		s.pending = s.pending[:0]
		s.wipe = true
		return
	}
	s.pending = append(s.pending, hit{pad: padIdx, velocity: velocity})
}

func (s *Splash) Draw(c *canvas.Canvas) {
	if s.wipe {
		c.Clear()
		s.wipe = false
	} else {
		c.Fade(s.fade)
	}

	maxR := min(c.Width(), c.Height()*2) / 4
	for _, h := range s.pending {
		x, y := PadPoint(h.pad, s.bank.Len(), c.Width(), c.Height())
		r := 1 + int(h.velocity)*maxR/127
		c.FillCircle(x, y, r, s.pal.Velocity(h.velocity))
	}
	s.pending = s.pending[:0]
}
