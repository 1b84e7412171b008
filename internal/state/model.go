package state

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// Tool selects how a stroke is composited onto the raster.
type Tool int

const (
	ToolBrush Tool = iota
	ToolEraser
)

func (t Tool) String() string {
	switch t {
	case ToolBrush:
		return "brush"
	case ToolEraser:
		return "eraser"
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "brush", "pen", "":
		return ToolBrush, nil
	case "eraser":
		return ToolEraser, nil
	}
	return ToolBrush, fmt.Errorf("unknown tool %q", s)
}

func (t Tool) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tool) UnmarshalText(b []byte) error {
	v, err := ParseTool(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Point is a stroke sample in drawing space.
type Point struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"pressure"`
}

// NormalizePressure maps missing, zero or bogus pressure to 1 and caps it at 1.
func NormalizePressure(p float64) float64 {
	if math.IsNaN(p) || p <= 0 || p > 1 {
		return 1
	}
	return p
}

// Stroke is one committed pen or eraser gesture. It is never modified after
// it reaches the history.
type Stroke struct {
	ID        string      `json:"id"`
	Seq       uint64      `json:"seq"`
	Tool      Tool        `json:"tool"`
	Color     color.NRGBA `json:"color"`
	BaseWidth float64     `json:"base_width"`
	Points    []Point     `json:"points"`
}

// SegmentWidth is the effective width at point i: the segment ending at i is
// drawn this wide.
func (s *Stroke) SegmentWidth(i int) float64 {
	return s.BaseWidth * s.Points[i].Pressure
}

// MaxWidth returns the widest effective width of any point.
func (s *Stroke) MaxWidth() float64 {
	w := 0.0
	for i := range s.Points {
		w = math.Max(w, s.SegmentWidth(i))
	}
	return w
}

// Bounds returns the drawing-space area the stroke can touch.
func (s *Stroke) Bounds() Rect {
	if len(s.Points) == 0 {
		return Rect{}
	}
	return boundsOf(s.Points, s.MaxWidth()/2)
}

func (s Stroke) clone() Stroke {
	s.Points = append([]Point(nil), s.Points...)
	return s
}
