package geom

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidMetrics = errors.New("invalid surface metrics")

// Metrics describes the host viewport: its size in CSS pixels and the device
// pixel ratio of the display it is shown on.
type Metrics struct {
	DPR    float64 `json:"dpr"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalize forces DPR into [1, inf); unknown or bogus ratios become 1.
func (m Metrics) Normalize() Metrics {
	if math.IsNaN(m.DPR) || math.IsInf(m.DPR, 0) || m.DPR < 1 {
		m.DPR = 1
	}
	return m
}

func (m Metrics) Validate() error {
	for _, v := range []float64{m.Width, m.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: viewport %vx%v", ErrInvalidMetrics, m.Width, m.Height)
		}
	}
	return nil
}

// BackingSize returns the backing store dimensions in device pixels.
func (m Metrics) BackingSize() (int, int) {
	m = m.Normalize()
	return int(math.Round(m.Width * m.DPR)), int(math.Round(m.Height * m.DPR))
}
