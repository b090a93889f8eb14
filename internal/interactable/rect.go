package interactable

// Rect is an axis-aligned bounding rectangle on the town map.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the point (x, y) falls strictly inside the
// rectangle. Points on the boundary are outside, matching the map
// geometry contract: adjacent areas may share an edge without sharing
// any point.
func (r Rect) Contains(x, y float64) bool {
	return x > r.X && x < r.X+r.Width && y > r.Y && y < r.Y+r.Height
}

// Overlaps reports whether two rectangles share any interior area.
func (r Rect) Overlaps(o Rect) bool {
	noOverlap := r.X >= o.X+o.Width ||
		o.X >= r.X+r.Width ||
		r.Y >= o.Y+o.Height ||
		o.Y >= r.Y+r.Height
	return !noOverlap
}
