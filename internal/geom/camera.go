package geom

import (
	"math"

	"github.com/gogpu/gg"
)

// Default zoom bounds.
const (
	DefaultMinScale = 0.3
	DefaultMaxScale = 6.0
)

// Limits bounds the camera scale. Values outside are clamped, never rejected.
type Limits struct {
	Min float64 `toml:"min_scale"`
	Max float64 `toml:"max_scale"`
}

func DefaultLimits() Limits {
	return Limits{Min: DefaultMinScale, Max: DefaultMaxScale}
}

// Clamp returns s bounded to [Min, Max]. NaN clamps to Min.
func (l Limits) Clamp(s float64) float64 {
	if math.IsNaN(s) || s < l.Min {
		return l.Min
	}
	if s > l.Max {
		return l.Max
	}
	return s
}

// Camera is the pan (Offset, screen pixels) and zoom (Scale) applied to
// drawing space. It is only ever changed by pinch gestures.
type Camera struct {
	Scale  float64
	Offset Vec
	Limits Limits
}

func NewCamera(l Limits) *Camera {
	return &Camera{Scale: l.Clamp(1), Limits: l}
}

// SetLimits replaces the zoom bounds and re-clamps the current scale.
func (c *Camera) SetLimits(l Limits) {
	c.Limits = l
	c.Scale = l.Clamp(c.Scale)
}

// ToDrawing converts a screen-space point to drawing space.
func (c *Camera) ToDrawing(screen Vec) Vec {
	return Vec{
		X: (screen.X - c.Offset.X) / c.Scale,
		Y: (screen.Y - c.Offset.Y) / c.Scale,
	}
}

// ToScreen converts a drawing-space point to screen space.
func (c *Camera) ToScreen(d Vec) Vec {
	return Vec{
		X: d.X*c.Scale + c.Offset.X,
		Y: d.Y*c.Scale + c.Offset.Y,
	}
}

// RenderTransform composes device pixel ratio with the camera so that one
// drawing unit maps to dpr*scale backing-store pixels.
func (c *Camera) RenderTransform(dpr float64) gg.Matrix {
	s := dpr * c.Scale
	return gg.Matrix{
		A: s, B: 0, C: c.Offset.X * dpr,
		D: 0, E: s, F: c.Offset.Y * dpr,
	}
}
