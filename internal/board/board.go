// Package board ties gesture routing, stroke recording, history and
// rendering into one engine driven by a host.
//
// A Board is not safe for concurrent use. Hosts that receive input on
// several goroutines must funnel every call through one.
package board

import (
	"image"
	"log/slog"
	"time"

	"github.com/gogpu/gg"

	"Freehand/internal/config"
	"Freehand/internal/geom"
	"Freehand/internal/gesture"
	"Freehand/internal/render"
	"Freehand/internal/state"
)

type Option func(*Board)

func WithLogger(l *slog.Logger) Option {
	return func(b *Board) { b.log = l }
}

// WithInputs replaces the board's own Controls as the source of brush
// settings.
func WithInputs(in Inputs) Option {
	return func(b *Board) { b.inputs = in }
}

func WithObserver(o Observer) Option {
	return func(b *Board) { b.obs = o }
}

// Board is the drawing engine. It owns the camera, the surface and the
// stroke history.
type Board struct {
	log    *slog.Logger
	obs    Observer
	inputs Inputs

	controls *Controls
	cam      *geom.Camera
	surface  *render.Surface
	renderer *render.Renderer
	history  *state.History
	rec      state.Recorder
	router   *gesture.Router

	err error
}

func New(cfg config.Engine, opts ...Option) *Board {
	b := &Board{
		log:      slog.Default(),
		obs:      NopObserver{},
		controls: NewControls(cfg),
		cam:      geom.NewCamera(cfg.Limits),
		surface:  render.NewSurface(cfg.MaxSurfacePixels),
		history:  state.NewHistory(cfg.MaxHistory),
	}
	b.inputs = b.controls
	for _, o := range opts {
		o(b)
	}
	b.log = b.log.With("component", "board")
	b.renderer = render.NewRenderer(b.log)
	b.router = gesture.NewRouter(b.cam, (*handler)(b))
	return b
}

// Resize reallocates the backing store and redraws it from history. A
// stroke in progress survives and is repainted on top.
//
// Invalid metrics are rejected and change nothing. An allocation failure is
// fatal for the surface: Err reports it and input is ignored until a later
// Resize succeeds.
func (b *Board) Resize(m geom.Metrics) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := b.surface.Resize(m); err != nil {
		b.err = err
		b.log.Error("resize failed, surface unusable", "err", err)
		return err
	}
	b.err = nil
	m = b.surface.Metrics()
	w, h := m.BackingSize()
	b.log.Info("resize", "dpr", m.DPR, "width", m.Width, "height", m.Height, "backing", image.Pt(w, h))
	return b.Redraw()
}

func (b *Board) Pointer(ev gesture.PointerEvent) {
	if b.err != nil {
		return
	}
	b.router.Pointer(ev)
}

func (b *Board) Touch(ev gesture.TouchEvent) {
	if b.err != nil {
		return
	}
	b.router.Touch(ev)
}

// Undo removes the newest stroke from the rendered image. It reports
// whether there was one.
func (b *Board) Undo() bool {
	if !b.history.Undo() {
		return false
	}
	b.historyChanged()
	b.redraw()
	return true
}

// Redo restores the most recently undone stroke.
func (b *Board) Redo() bool {
	if !b.history.Redo() {
		return false
	}
	b.historyChanged()
	b.redraw()
	return true
}

// Clear drops all history, abandons any gesture in flight and blanks the
// surface.
func (b *Board) Clear() {
	b.router.Reset()
	b.history.Clear()
	if b.err == nil {
		b.renderer.Clear(b.surface)
	}
	b.log.Info("clear")
	b.historyChanged()
}

// Redraw repaints the whole surface from history, then the stroke in
// progress if there is one.
func (b *Board) Redraw() error {
	if b.err != nil {
		return b.err
	}
	start := time.Now()
	m := b.transform()
	err := b.renderer.Redraw(b.surface, b.history.Done(), m)
	if cur := b.rec.Current(); cur != nil {
		if lerr := b.renderer.PaintLive(b.surface, cur, m); lerr != nil && err == nil {
			err = lerr
		}
	}
	b.obs.Redrawn(time.Since(start))
	return err
}

func (b *Board) redraw() {
	if err := b.Redraw(); err != nil && err != b.err {
		b.log.Warn("redraw", "err", err)
	}
}

// SetLimits replaces the zoom range. The view is redrawn if the current
// scale had to be clamped.
func (b *Board) SetLimits(l geom.Limits) {
	before := b.cam.Scale
	b.cam.SetLimits(l)
	if b.cam.Scale != before {
		b.redraw()
	}
}

// Reconfigure applies the parts of cfg that can change while running.
func (b *Board) Reconfigure(cfg config.Engine) {
	b.history.MaxUndo = cfg.MaxHistory
	b.SetLimits(cfg.Limits)
}

func (b *Board) Controls() *Controls { return b.controls }

func (b *Board) State() gesture.State { return b.router.State() }

// Camera returns a copy of the current camera.
func (b *Board) Camera() geom.Camera { return *b.cam }

func (b *Board) ToDrawing(screen geom.Vec) geom.Vec { return b.cam.ToDrawing(screen) }

func (b *Board) Done() []state.Stroke   { return b.history.Done() }
func (b *Board) Undone() []state.Stroke { return b.history.Undone() }
func (b *Board) CanUndo() bool          { return b.history.CanUndo() }
func (b *Board) CanRedo() bool          { return b.history.CanRedo() }

// Raster is the live backing store. It is replaced on every Resize.
func (b *Board) Raster() *image.RGBA { return b.surface.Raster() }

func (b *Board) Metrics() geom.Metrics { return b.surface.Metrics() }

// Err returns the fatal surface error, if any.
func (b *Board) Err() error { return b.err }

func (b *Board) transform() gg.Matrix { return b.cam.RenderTransform(b.surface.Metrics().DPR) }

func (b *Board) historyChanged() {
	b.obs.HistoryChanged(b.history.Len(), len(b.history.Undone()))
}
