package render

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Freehand/internal/geom"
	"Freehand/internal/state"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func stroke(tool state.Tool, c color.NRGBA, width float64, pts ...state.Point) state.Stroke {
	var r state.Recorder
	r.Begin(pts[0], tool, c, width)
	for _, p := range pts[1:] {
		r.Extend(p)
	}
	s, _ := r.Commit()
	return s
}

func pt(x, y float64) state.Point { return state.Point{X: x, Y: y, Pressure: 1} }

func newSurface(t *testing.T, m geom.Metrics) *Surface {
	t.Helper()
	s := NewSurface(0)
	require.NoError(t, s.Resize(m))
	return s
}

func unit() gg.Matrix { return geom.NewCamera(geom.DefaultLimits()).RenderTransform(1) }

func rgba(img *image.RGBA, x, y int) color.RGBA { return img.RGBAAt(x, y) }

func TestRedrawIsIdempotent(t *testing.T) {
	s := newSurface(t, geom.Metrics{DPR: 1, Width: 64, Height: 64})
	r := NewRenderer(nil)
	strokes := []state.Stroke{
		stroke(state.ToolBrush, red, 6, pt(5, 5), pt(50, 40), pt(20, 60)),
		stroke(state.ToolEraser, red, 8, pt(0, 30), pt(64, 30)),
	}

	require.NoError(t, r.Redraw(s, strokes, unit()))
	first := bytes.Clone(s.Raster().Pix)
	require.NoError(t, r.Redraw(s, strokes, unit()))
	assert.Equal(t, first, s.Raster().Pix)
}

func TestEraserOnlyErasesEarlierStrokes(t *testing.T) {
	s := newSurface(t, geom.Metrics{DPR: 1, Width: 100, Height: 100})
	r := NewRenderer(nil)
	strokes := []state.Stroke{
		stroke(state.ToolBrush, red, 20, pt(10, 50), pt(90, 50)),
		stroke(state.ToolEraser, red, 30, pt(10, 50), pt(90, 50)),
		stroke(state.ToolBrush, blue, 6, pt(50, 10), pt(50, 90)),
	}
	require.NoError(t, r.Redraw(s, strokes, unit()))

	img := s.Raster()
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba(img, 50, 50), "B painted after the eraser")
	assert.Equal(t, color.RGBA{}, rgba(img, 30, 50), "A erased")
	assert.Equal(t, color.RGBA{}, rgba(img, 70, 45), "A erased")
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba(img, 50, 20))
}

func TestEraserLeavesUncoveredInk(t *testing.T) {
	s := newSurface(t, geom.Metrics{DPR: 1, Width: 100, Height: 100})
	r := NewRenderer(nil)
	strokes := []state.Stroke{
		stroke(state.ToolBrush, red, 6, pt(10, 10), pt(30, 10)),
		stroke(state.ToolBrush, blue, 40, pt(50, 50), pt(90, 50)),
		stroke(state.ToolEraser, red, 8, pt(60, 80), pt(90, 80)),
		stroke(state.ToolEraser, red, 10, pt(70, 30), pt(70, 70)),
	}
	require.NoError(t, r.Redraw(s, strokes, unit()))

	img := s.Raster()
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba(img, 20, 10))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba(img, 55, 50))
	assert.Equal(t, color.RGBA{}, rgba(img, 70, 50))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba(img, 80, 50))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba(img, 60, 50))
}

func TestTapRendersDot(t *testing.T) {
	s := newSurface(t, geom.Metrics{DPR: 1, Width: 40, Height: 40})
	r := NewRenderer(nil)
	require.NoError(t, r.Redraw(s, []state.Stroke{stroke(state.ToolBrush, red, 10, pt(20, 20))}, unit()))

	img := s.Raster()
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba(img, 20, 20))
	assert.Equal(t, color.RGBA{}, rgba(img, 2, 2))
}

func TestPressureScalesSegmentWidth(t *testing.T) {
	s := newSurface(t, geom.Metrics{DPR: 1, Width: 100, Height: 40})
	r := NewRenderer(nil)
	st := stroke(state.ToolBrush, red, 10,
		state.Point{X: 10, Y: 20.5, Pressure: 1},
		state.Point{X: 90, Y: 20.5, Pressure: 0.5},
	)
	require.Equal(t, 5.0, st.SegmentWidth(1))
	require.NoError(t, r.Redraw(s, []state.Stroke{st}, unit()))

	rows := 0
	for y := 0; y < 40; y++ {
		if s.Raster().RGBAAt(50, y).A >= 128 {
			rows++
		}
	}
	assert.InDelta(t, 5, rows, 1)
}

func TestZeroPressureRendersFullWidth(t *testing.T) {
	s := newSurface(t, geom.Metrics{DPR: 1, Width: 100, Height: 40})
	r := NewRenderer(nil)
	st := stroke(state.ToolBrush, red, 10,
		state.Point{X: 10, Y: 20.5, Pressure: 0},
		state.Point{X: 90, Y: 20.5, Pressure: 0},
	)
	require.NoError(t, r.Redraw(s, []state.Stroke{st}, unit()))

	rows := 0
	for y := 0; y < 40; y++ {
		if s.Raster().RGBAAt(50, y).A >= 128 {
			rows++
		}
	}
	assert.InDelta(t, 10, rows, 1)
}

func TestLivePaintMatchesReplay(t *testing.T) {
	m := geom.Metrics{DPR: 1.5, Width: 80, Height: 60}
	cam := geom.NewCamera(geom.DefaultLimits())
	cam.Scale = 1.7
	cam.Offset = geom.V(-8, 4)
	tr := cam.RenderTransform(m.DPR)

	base := []state.Stroke{
		stroke(state.ToolBrush, red, 6, pt(5, 5), pt(40, 30)),
		stroke(state.ToolBrush, color.NRGBA{G: 200, A: 128}, 9, pt(0, 20), pt(50, 22)),
	}
	next := stroke(state.ToolEraser, red, 7, pt(10, 25), pt(25, 10), pt(40, 25))

	live := newSurface(t, m)
	r := NewRenderer(nil)
	require.NoError(t, r.Redraw(live, base, tr))

	// grow the stroke point by point like a recorder would
	var partial state.Stroke = next
	for n := 1; n <= len(next.Points); n++ {
		partial.Points = next.Points[:n]
		require.NoError(t, r.PaintLive(live, &partial, tr))
	}
	r.CommitLive(live)

	replay := newSurface(t, m)
	require.NoError(t, NewRenderer(nil).Redraw(replay, append(base, next), tr))
	assert.Equal(t, replay.Raster().Pix, live.Raster().Pix)
	assert.Equal(t, replay.committed.Pix, live.committed.Pix)
}

func TestPaintLiveTouchesOnlyNewSegment(t *testing.T) {
	s := newSurface(t, geom.Metrics{DPR: 2, Width: 200, Height: 100})
	r := NewRenderer(nil)
	tr := geom.NewCamera(geom.DefaultLimits()).RenderTransform(2)

	st := stroke(state.ToolBrush, red, 4, pt(10, 50))
	st.Points = nil
	for x := 10.0; x <= 190; x += 10 {
		st.Points = append(st.Points, pt(x, 50))
		require.NoError(t, r.PaintLive(s, &st, tr))
	}
	require.Equal(t, color.RGBA{R: 255, A: 255}, rgba(s.Raster(), 30, 100))

	// a marker on an old segment is left alone by the next extension
	marker := color.RGBA{G: 9, A: 255}
	s.Raster().SetRGBA(30, 100, marker)
	st.Points = append(st.Points, pt(195, 50))
	require.NoError(t, r.PaintLive(s, &st, tr))
	assert.Equal(t, marker, rgba(s.Raster(), 30, 100))

	// scratch is sized to one segment, not the surface
	assert.Less(t, r.scratch.Width(), 40)
	assert.Less(t, r.scratch.Height(), 40)
}

func TestDiscardLiveLeavesNoTrail(t *testing.T) {
	s := newSurface(t, geom.Metrics{DPR: 1, Width: 50, Height: 50})
	r := NewRenderer(nil)
	base := []state.Stroke{stroke(state.ToolBrush, blue, 4, pt(0, 0), pt(50, 50))}
	require.NoError(t, r.Redraw(s, base, unit()))
	want := bytes.Clone(s.Raster().Pix)

	st := stroke(state.ToolBrush, red, 8, pt(10, 40), pt(40, 10))
	require.NoError(t, r.PaintLive(s, &st, unit()))
	require.NotEqual(t, want, s.Raster().Pix)

	r.DiscardLive(s)
	assert.Equal(t, want, s.Raster().Pix)
}

func TestResizeChangesDensityNotContent(t *testing.T) {
	strokes := []state.Stroke{
		stroke(state.ToolBrush, red, 10, pt(10, 25), pt(40, 25)),
		stroke(state.ToolBrush, blue, 10, pt(25, 35), pt(25, 45)),
	}
	cam := geom.NewCamera(geom.DefaultLimits())

	lo := newSurface(t, geom.Metrics{DPR: 1, Width: 50, Height: 50})
	require.NoError(t, NewRenderer(nil).Redraw(lo, strokes, cam.RenderTransform(1)))
	hi := newSurface(t, geom.Metrics{DPR: 2, Width: 50, Height: 50})
	require.NoError(t, NewRenderer(nil).Redraw(hi, strokes, cam.RenderTransform(2)))

	assert.Equal(t, image.Rect(0, 0, 100, 100), hi.Bounds())
	for _, p := range []image.Point{{20, 25}, {25, 40}, {5, 5}, {45, 45}} {
		assert.Equal(t, rgba(lo.Raster(), p.X, p.Y), rgba(hi.Raster(), p.X*2, p.Y*2), "at %v", p)
	}
}

func TestRendererFollowsSurfaceResize(t *testing.T) {
	s := newSurface(t, geom.Metrics{DPR: 1, Width: 20, Height: 20})
	r := NewRenderer(nil)
	st := []state.Stroke{stroke(state.ToolBrush, red, 4, pt(5, 5), pt(15, 15))}
	require.NoError(t, r.Redraw(s, st, unit()))

	require.NoError(t, s.Resize(geom.Metrics{DPR: 3, Width: 20, Height: 20}))
	require.NoError(t, r.Redraw(s, st, geom.NewCamera(geom.DefaultLimits()).RenderTransform(3)))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba(s.Raster(), 30, 30))
}

func TestClear(t *testing.T) {
	s := newSurface(t, geom.Metrics{DPR: 1, Width: 20, Height: 20})
	r := NewRenderer(nil)
	require.NoError(t, r.Redraw(s, []state.Stroke{stroke(state.ToolBrush, red, 8, pt(10, 10))}, unit()))
	r.Clear(s)
	assert.Equal(t, make([]byte, len(s.Raster().Pix)), s.Raster().Pix)
}

func TestEmptySurface(t *testing.T) {
	s := newSurface(t, geom.Metrics{DPR: 2, Width: 0, Height: 10})
	r := NewRenderer(nil)
	st := stroke(state.ToolBrush, red, 8, pt(10, 10))
	assert.NoError(t, r.Redraw(s, []state.Stroke{st}, unit()))
	assert.NoError(t, r.PaintLive(s, &st, unit()))
}

func TestSurfaceResizeErrors(t *testing.T) {
	s := NewSurface(100 * 100)
	err := s.Resize(geom.Metrics{DPR: 2, Width: 100, Height: 100})
	assert.ErrorIs(t, err, ErrSurfaceTooLarge)

	err = s.Resize(geom.Metrics{DPR: 1, Width: -5, Height: 10})
	assert.ErrorIs(t, err, geom.ErrInvalidMetrics)

	require.NoError(t, s.Resize(geom.Metrics{DPR: 0, Width: 100, Height: 100}))
	assert.Equal(t, 1.0, s.Metrics().DPR)
}

func TestSurfaceResizeHugeViewport(t *testing.T) {
	s := NewSurface(0)
	err := s.Resize(geom.Metrics{DPR: 1, Width: 1 << 32, Height: 1 << 32})
	assert.ErrorIs(t, err, ErrSurfaceTooLarge)
	err = s.Resize(geom.Metrics{DPR: 2, Width: 1e300, Height: 1})
	assert.ErrorIs(t, err, ErrSurfaceTooLarge)
	assert.True(t, s.Empty(), "rejected sizes leave the surface untouched")
}
