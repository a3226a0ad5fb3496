package mode

import "go-drawpad/canvas"

// Blank draws nothing and ignores input
type Blank struct{}

func NewBlank() *Blank { return &Blank{} }

func (b *Blank) Name() string                             { return "blank" }
func (b *Blank) Setup()                                   {}
func (b *Blank) Draw(c *canvas.Canvas)                    {}
func (b *Blank) HandleMidi(pad int, note, velocity uint8) {}
