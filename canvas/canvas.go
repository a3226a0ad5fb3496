// Package canvas is the drawing surface handed to modes every frame.
package canvas

import "go-drawpad/theme"

// Canvas is a W x H grid of RGB cells. Row 0 is the top.
type Canvas struct {
	w, h  int
	cells []theme.RGB
}

func New(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Canvas{w: w, h: h, cells: make([]theme.RGB, w*h)}
}

func (c *Canvas) Width() int  { return c.w }
func (c *Canvas) Height() int { return c.h }

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && x < c.w && y >= 0 && y < c.h
}

// Set paints one cell; out-of-range writes are ignored
func (c *Canvas) Set(x, y int, rgb theme.RGB) {
	if c.inside(x, y) {
		c.cells[y*c.w+x] = rgb
	}
}

// At returns the cell colour, black outside the canvas
func (c *Canvas) At(x, y int) theme.RGB {
	if !c.inside(x, y) {
		return theme.RGB{}
	}
	return c.cells[y*c.w+x]
}

func (c *Canvas) Clear() {
	clear(c.cells)
}

// Fade scales every cell by factor (0 = black, 1 = unchanged)
func (c *Canvas) Fade(factor float64) {
	if factor >= 1 {
		return
	}
	if factor <= 0 {
		c.Clear()
		return
	}
	for i, px := range c.cells {
		c.cells[i] = theme.RGB{
			uint8(float64(px[0]) * factor),
			uint8(float64(px[1]) * factor),
			uint8(float64(px[2]) * factor),
		}
	}
}

// FillCircle paints a filled disc. Cells are twice as tall as wide in a
// terminal, so the vertical radius is halved.
func (c *Canvas) FillCircle(cx, cy, r int, rgb theme.RGB) {
	if r < 0 {
		return
	}
	ry := r / 2
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx := float64(x - cx)
			dy := float64(y-cy) * 2
			if dx*dx+dy*dy <= float64(r*r) {
				c.Set(x, y, rgb)
			}
		}
	}
}

// Line paints a Bresenham line including both endpoints
func (c *Canvas) Line(x0, y0, x1, y1 int, rgb theme.RGB) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.Set(x0, y0, rgb)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// Downsample reduces the canvas to w x h blocks, keeping the brightest
// cell of each block. Result is indexed [row][col] with row 0 at the top.
func (c *Canvas) Downsample(w, h int) [][]theme.RGB {
	out := make([][]theme.RGB, h)
	for row := 0; row < h; row++ {
		out[row] = make([]theme.RGB, w)
		y0, y1 := row*c.h/h, (row+1)*c.h/h
		for col := 0; col < w; col++ {
			x0, x1 := col*c.w/w, (col+1)*c.w/w
			best, bestLum := theme.RGB{}, -1
			for y := y0; y < max(y1, y0+1); y++ {
				for x := x0; x < max(x1, x0+1); x++ {
					px := c.At(x, y)
					if lum := int(px[0]) + int(px[1]) + int(px[2]); lum > bestLum {
						best, bestLum = px, lum
					}
				}
			}
			out[row][col] = best
		}
	}
	return out
}

// Lit counts non-black cells
func (c *Canvas) Lit() int {
	n := 0
	for _, px := range c.cells {
		if px != (theme.RGB{}) {
			n++
		}
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
