package geom

import "math"

// Vec is a 2D point or offset. Depending on where it is used it is either in
// screen pixels (relative to the surface's top-left) or in drawing space.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func V(x, y float64) Vec { return Vec{X: x, Y: y} }

func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Mid returns the midpoint between v and o.
func (v Vec) Mid(o Vec) Vec { return Vec{(v.X + o.X) / 2, (v.Y + o.Y) / 2} }

// Dist returns the euclidean distance between v and o.
func (v Vec) Dist(o Vec) float64 { return math.Hypot(o.X-v.X, o.Y-v.Y) }

// Finite reports whether both components are finite numbers.
func (v Vec) Finite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
