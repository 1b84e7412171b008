// Package render repaints the backing store from stroke history.
package render

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"Freehand/internal/state"
)

// Renderer rasterises stroke coverage with gg and composites it onto a
// Surface.
//
// A stroke's coverage is accumulated one piece at a time (a dot for a
// single point, otherwise one capsule per segment) into a surface-sized
// alpha mask. Each piece is traced in a scratch context placed at the
// piece's own device rectangle, so tracing a piece costs its area, and the
// live and replay paths produce the same bytes.
type Renderer struct {
	log *slog.Logger

	scratch *gg.Context
	alpha   *image.Alpha

	// live stroke bookkeeping
	live    image.Rectangle
	liveM   gg.Matrix
	pieces  int
	dot     bool
	dotRect image.Rectangle
	painted bool
}

func NewRenderer(log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{log: log}
}

// ensure sizes the coverage mask to b. It reports whether the mask was
// replaced.
func (r *Renderer) ensure(b image.Rectangle) bool {
	if r.alpha != nil && r.alpha.Rect == b {
		return false
	}
	r.alpha = image.NewAlpha(b)
	r.resetLive()
	return true
}

func (r *Renderer) resetLive() {
	r.live = image.Rectangle{}
	r.pieces = 0
	r.dot = false
	r.dotRect = image.Rectangle{}
	r.painted = false
}

// Redraw clears the whole surface and replays strokes oldest first under m.
func (r *Renderer) Redraw(s *Surface, strokes []state.Stroke, m gg.Matrix) error {
	r.resetLive()
	s.Clear()
	if s.Empty() {
		return nil
	}
	r.ensure(s.Bounds())

	var firstErr error
	for i := range strokes {
		st := &strokes[i]
		var dirty image.Rectangle
		for k := 0; k < pieceCount(st); k++ {
			rect, err := r.trace(st, k, m, s.Bounds())
			if err != nil && firstErr == nil {
				firstErr = err
			}
			dirty = dirty.Union(rect)
		}
		r.composite(s.raster, st, dirty)
		r.clearMask(dirty)
	}
	s.settle(s.Bounds())
	r.log.Debug("redraw", "strokes", len(strokes), "size", s.Bounds().Size())
	return firstErr
}

// PaintLive brings the in-progress stroke st up to date on the raster. Only
// pieces added since the previous call are traced, and only their area is
// restored from the committed snapshot and recomposited.
func (r *Renderer) PaintLive(s *Surface, st *state.Stroke, m gg.Matrix) error {
	if s.Empty() || st == nil || len(st.Points) == 0 {
		return nil
	}
	r.ensure(s.Bounds())
	if r.painted && (m != r.liveM || pieceCount(st) < r.pieces) {
		r.DiscardLive(s)
	}
	r.painted = true
	r.liveM = m

	var dirty image.Rectangle
	// the dot of a one-point stroke is replaced by the first segment
	if len(st.Points) > 1 && r.dot {
		r.clearMask(r.dotRect)
		dirty = r.dotRect
		r.dot, r.dotRect = false, image.Rectangle{}
		r.pieces = 0
	}

	var firstErr error
	n := pieceCount(st)
	for ; r.pieces < n; r.pieces++ {
		rect, err := r.trace(st, r.pieces, m, s.Bounds())
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if len(st.Points) == 1 {
			r.dot, r.dotRect = true, rect
		}
		dirty = dirty.Union(rect)
	}
	if dirty.Empty() {
		return firstErr
	}
	s.restore(dirty)
	r.composite(s.raster, st, dirty)
	r.live = r.live.Union(dirty)
	return firstErr
}

// CommitLive makes the live stroke part of the committed snapshot.
func (r *Renderer) CommitLive(s *Surface) {
	if !r.live.Empty() {
		s.settle(r.live)
		r.clearMask(r.live)
	}
	r.resetLive()
}

// DiscardLive removes the live stroke from the raster.
func (r *Renderer) DiscardLive(s *Surface) {
	if !r.live.Empty() {
		s.restore(r.live)
		r.clearMask(r.live)
	}
	r.resetLive()
}

// Clear blanks the surface without a render pass.
func (r *Renderer) Clear(s *Surface) {
	if r.alpha != nil {
		clear(r.alpha.Pix)
	}
	r.resetLive()
	s.Clear()
}

// composite applies the accumulated coverage of st over rect of dst.
func (r *Renderer) composite(dst *image.RGBA, st *state.Stroke, rect image.Rectangle) {
	if rect.Empty() {
		return
	}
	if st.Tool != state.ToolEraser {
		xdraw.DrawMask(dst, rect, image.NewUniform(st.Color), image.Point{}, r.alpha, rect.Min, xdraw.Over)
		return
	}
	// destination-out: every premultiplied channel scales by 1-coverage
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		mask := r.alpha.Pix[r.alpha.PixOffset(rect.Min.X, y):]
		px := dst.Pix[dst.PixOffset(rect.Min.X, y):]
		for x := 0; x < rect.Dx(); x++ {
			a := uint32(mask[x])
			if a == 0 {
				continue
			}
			k := 255 - a
			for c := x * 4; c < x*4+4; c++ {
				px[c] = uint8((uint32(px[c])*k + 127) / 255)
			}
		}
	}
}

func (r *Renderer) clearMask(rect image.Rectangle) {
	rect = rect.Intersect(r.alpha.Rect)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		clear(r.alpha.Pix[r.alpha.PixOffset(rect.Min.X, y):][:rect.Dx()])
	}
}

// pieceCount is the number of coverage pieces of st.
func pieceCount(st *state.Stroke) int {
	if len(st.Points) <= 1 {
		return len(st.Points)
	}
	return len(st.Points) - 1
}

// trace rasterises piece k of st and merges it into the coverage mask. It
// returns the device rectangle the piece can touch, clipped to bounds.
func (r *Renderer) trace(st *state.Stroke, k int, m gg.Matrix, bounds image.Rectangle) (image.Rectangle, error) {
	pts := st.Points
	var p0, p1 state.Point
	var half float64
	if len(pts) == 1 {
		p0, p1 = pts[0], pts[0]
		half = st.SegmentWidth(0) / 2
	} else {
		p0, p1 = pts[k], pts[k+1]
		half = st.SegmentWidth(k+1) / 2
	}
	rect := deviceRect(state.Rect{
		MinX: math.Min(p0.X, p1.X) - half, MinY: math.Min(p0.Y, p1.Y) - half,
		MaxX: math.Max(p0.X, p1.X) + half, MaxY: math.Max(p0.Y, p1.Y) + half,
	}, m).Intersect(bounds)
	if rect.Empty() {
		return image.Rectangle{}, nil
	}

	dc := r.scratchFor(rect.Size())
	dc.Identity()
	dc.Clear()
	dc.SetTransform(gg.Translate(-float64(rect.Min.X), -float64(rect.Min.Y)).Multiply(m))
	dc.SetColor(color.White)

	var err error
	fill := func() {
		if e := dc.Fill(); e != nil && err == nil {
			err = e
		}
	}
	dc.DrawCircle(p0.X, p0.Y, half)
	fill()
	if dx, dy := p1.X-p0.X, p1.Y-p0.Y; dx != 0 || dy != 0 {
		l := math.Hypot(dx, dy)
		nx, ny := -dy/l*half, dx/l*half
		dc.MoveTo(p0.X+nx, p0.Y+ny)
		dc.LineTo(p1.X+nx, p1.Y+ny)
		dc.LineTo(p1.X-nx, p1.Y-ny)
		dc.LineTo(p0.X-nx, p0.Y-ny)
		dc.ClosePath()
		fill()
		dc.DrawCircle(p1.X, p1.Y, half)
		fill()
	}
	dc.Identity()

	// merge with source-over so overlapping pieces never double up
	pix := dc.ResizeTarget().Data()
	w := dc.Width()
	for y := 0; y < rect.Dy(); y++ {
		src := pix[y*w*4:]
		dst := r.alpha.Pix[r.alpha.PixOffset(rect.Min.X, rect.Min.Y+y):]
		for x := 0; x < rect.Dx(); x++ {
			s := uint32(src[x*4+3])
			if s == 0 {
				continue
			}
			a := uint32(dst[x])
			dst[x] = uint8(a + (s*(255-a)+127)/255)
		}
	}
	if err != nil {
		return rect, fmt.Errorf("stroke %s: %w", st.ID, err)
	}
	return rect, nil
}

// scratchFor returns a scratch context at least size large.
func (r *Renderer) scratchFor(size image.Point) *gg.Context {
	if r.scratch != nil && r.scratch.Width() >= size.X && r.scratch.Height() >= size.Y {
		return r.scratch
	}
	w, h := size.X, size.Y
	if r.scratch != nil {
		w = max(w, r.scratch.Width())
		h = max(h, r.scratch.Height())
		_ = r.scratch.Close()
	}
	r.scratch = gg.NewContext(w, h)
	return r.scratch
}

// deviceRect maps a drawing-space rectangle through m to the backing-store
// pixels it can touch, with room for anti-aliasing.
func deviceRect(b state.Rect, m gg.Matrix) image.Rectangle {
	if b.Empty() {
		return image.Rectangle{}
	}
	p0 := m.TransformPoint(gg.Pt(b.MinX, b.MinY))
	p1 := m.TransformPoint(gg.Pt(b.MaxX, b.MaxY))
	const pad = 2
	return image.Rect(
		int(math.Floor(math.Min(p0.X, p1.X)))-pad,
		int(math.Floor(math.Min(p0.Y, p1.Y)))-pad,
		int(math.Ceil(math.Max(p0.X, p1.X)))+pad,
		int(math.Ceil(math.Max(p0.Y, p1.Y)))+pad,
	)
}
