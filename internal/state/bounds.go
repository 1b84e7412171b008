package state

// Rect is an axis-aligned rectangle in drawing space.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (r Rect) Empty() bool { return r.MaxX <= r.MinX || r.MaxY <= r.MinY }

// boundsOf calculates the bounding box of points with padding on every side.
func boundsOf(points []Point, padding float64) Rect {
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := points[0].X, points[0].Y

	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	return Rect{
		MinX: minX - padding,
		MinY: minY - padding,
		MaxX: maxX + padding,
		MaxY: maxY + padding,
	}
}
