package state

import (
	"image/color"
	"math"
)

// DefaultLineWidth is used when a caller supplies an unusable base width.
const DefaultLineWidth = 4.0

// Recorder accumulates the points of the stroke currently being drawn.
type Recorder struct {
	active  bool
	current Stroke
}

// Begin starts a stroke with its first point. It is a no-op while a stroke is
// already being recorded.
func (r *Recorder) Begin(p Point, tool Tool, c color.NRGBA, width float64) {
	if r.active {
		return
	}
	if math.IsNaN(width) || math.IsInf(width, 0) || width <= 0 {
		width = DefaultLineWidth
	}
	p.Pressure = NormalizePressure(p.Pressure)
	r.current = Stroke{
		Tool:      tool,
		Color:     c,
		BaseWidth: width,
		Points:    []Point{p},
	}
	r.active = true
}

// Extend appends a point to the active stroke. It reports whether the point
// was taken.
func (r *Recorder) Extend(p Point) bool {
	if !r.active {
		return false
	}
	p.Pressure = NormalizePressure(p.Pressure)
	r.current.Points = append(r.current.Points, p)
	return true
}

// Commit freezes the active stroke and resets the recorder. ok is false if no
// stroke was being recorded.
func (r *Recorder) Commit() (s Stroke, ok bool) {
	if !r.active {
		return Stroke{}, false
	}
	s = r.current.clone()
	s.ID, s.Seq = nextStrokeID()
	r.reset()
	return s, true
}

// Abandon drops the active stroke without committing it.
func (r *Recorder) Abandon() bool {
	was := r.active
	r.reset()
	return was
}

func (r *Recorder) Active() bool { return r.active }

// Current returns the in-progress stroke. The result shares storage with the
// recorder and must not be retained past the next Extend.
func (r *Recorder) Current() *Stroke {
	if !r.active {
		return nil
	}
	return &r.current
}

func (r *Recorder) reset() {
	r.active = false
	r.current = Stroke{}
}
