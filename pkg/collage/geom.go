package collage

// Rect is an axis-aligned rectangle. X and Y locate the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Ratio returns the height/width ratio, or 0 for a zero-width rect.
func (r Rect) Ratio() float64 {
	if r.W == 0 {
		return 0
	}
	return r.H / r.W
}

// Scale multiplies every coordinate by f.
func (r Rect) Scale(f float64) Rect {
	return Rect{X: r.X * f, Y: r.Y * f, W: r.W * f, H: r.H * f}
}

