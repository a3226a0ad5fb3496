package mode

import "math"

// PadPoint places pad index of n on an ellipse inside a w x h canvas, going
// clockwise from the bottom-left. Four pads land on the corners in the order
// bottom-left, top-left, top-right, bottom-right.
func PadPoint(index, n, w, h int) (x, y int) {
	if n <= 0 {
		return w / 2, h / 2
	}
	angle := (225 - float64(index)*360/float64(n)) * math.Pi / 180
	cx, cy := float64(w-1)/2, float64(h-1)/2
	rx, ry := cx*0.7, cy*0.7
	return int(math.Round(cx + rx*math.Cos(angle))), int(math.Round(cy - ry*math.Sin(angle)))
}
