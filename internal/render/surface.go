package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"Freehand/internal/geom"
)

// DefaultMaxPixels caps a backing store at roughly a 8K display.
const DefaultMaxPixels = 7680 * 4320

var (
	ErrSurfaceTooLarge = errors.New("backing store too large")
	ErrSurfaceAlloc    = errors.New("backing store allocation failed")
)

// Surface owns the device-pixel backing store. Raster is what the host
// shows; the committed snapshot holds the same image without any stroke in
// progress so live painting can be undone cheaply.
type Surface struct {
	maxPixels int
	metrics   geom.Metrics

	raster    *image.RGBA
	committed *image.RGBA
}

func NewSurface(maxPixels int) *Surface {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Surface{
		maxPixels: maxPixels,
		metrics:   geom.Metrics{DPR: 1},
		raster:    image.NewRGBA(image.Rect(0, 0, 0, 0)),
		committed: image.NewRGBA(image.Rect(0, 0, 0, 0)),
	}
}

// Resize reallocates the backing store for m. Existing content is lost; the
// caller must redraw afterwards.
func (s *Surface) Resize(m geom.Metrics) (err error) {
	if err := m.Validate(); err != nil {
		return err
	}
	m = m.Normalize()
	// compared in float64 so huge viewports cannot wrap the product
	fw, fh := math.Round(m.Width*m.DPR), math.Round(m.Height*m.DPR)
	if fw*fh > float64(s.maxPixels) {
		return fmt.Errorf("%w: %.0fx%.0f exceeds %d pixels", ErrSurfaceTooLarge, fw, fh, s.maxPixels)
	}
	w, h := m.BackingSize()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %dx%d: %v", ErrSurfaceAlloc, w, h, r)
		}
	}()
	r := image.Rect(0, 0, w, h)
	s.raster = image.NewRGBA(r)
	s.committed = image.NewRGBA(r)
	s.metrics = m
	return nil
}

func (s *Surface) Metrics() geom.Metrics { return s.metrics }

// Raster returns the live backing store. The image is owned by the surface
// and replaced on Resize.
func (s *Surface) Raster() *image.RGBA { return s.raster }

func (s *Surface) Bounds() image.Rectangle { return s.raster.Rect }

// Empty reports whether the backing store has no pixels.
func (s *Surface) Empty() bool { return s.raster.Rect.Empty() }

// Clear blanks the raster and the committed snapshot.
func (s *Surface) Clear() {
	clear(s.raster.Pix)
	clear(s.committed.Pix)
}

// restore copies r from the committed snapshot back onto the raster.
func (s *Surface) restore(r image.Rectangle) {
	draw.Draw(s.raster, r, s.committed, r.Min, draw.Src)
}

// settle copies r from the raster into the committed snapshot.
func (s *Surface) settle(r image.Rectangle) {
	draw.Draw(s.committed, r, s.raster, r.Min, draw.Src)
}
