package geom

// PinchContext holds the rolling references of a two-contact gesture. A new
// value replaces the old one on every update step.
type PinchContext struct {
	InitialDistance float64
	InitialScale    float64
	InitialCenter   Vec
}

// BeginPinch captures the references for contacts a and b.
func BeginPinch(c *Camera, a, b Vec) PinchContext {
	return PinchContext{
		InitialDistance: a.Dist(b),
		InitialScale:    c.Scale,
		InitialCenter:   a.Mid(b),
	}
}

// ApplyPinch zooms about the gesture center and pans with it. The drawing
// point under the previous center ends up under the new center. The returned
// context is the reference for the next step.
func (c *Camera) ApplyPinch(pc PinchContext, a, b Vec) PinchContext {
	dist := a.Dist(b)
	center := a.Mid(b)

	scale := pc.InitialScale
	if pc.InitialDistance > 0 && dist > 0 {
		scale = c.Limits.Clamp(pc.InitialScale * dist / pc.InitialDistance)
	}

	anchor := c.ToDrawing(pc.InitialCenter)
	offset := center.Sub(anchor.Scale(scale))
	if !offset.Finite() {
		return pc
	}
	c.Scale = scale
	c.Offset = offset

	return PinchContext{
		InitialDistance: dist,
		InitialScale:    scale,
		InitialCenter:   center,
	}
}
