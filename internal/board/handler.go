package board

import (
	"Freehand/internal/geom"
	"Freehand/internal/state"
)

// handler is the Board as seen by its gesture router.
type handler Board

func (h *handler) board() *Board { return (*Board)(h) }

func (h *handler) BeginStroke(pos geom.Vec, pressure float64) {
	b := h.board()
	in := b.inputs
	d := b.cam.ToDrawing(pos)
	b.rec.Begin(state.Point{X: d.X, Y: d.Y, Pressure: pressure}, in.Tool(), in.Color(), in.LineWidth())
	b.paintLive()
}

func (h *handler) ExtendStroke(pos geom.Vec, pressure float64) {
	b := h.board()
	d := b.cam.ToDrawing(pos)
	if b.rec.Extend(state.Point{X: d.X, Y: d.Y, Pressure: pressure}) {
		b.paintLive()
	}
}

func (h *handler) CommitStroke() {
	b := h.board()
	s, ok := b.rec.Commit()
	if !ok {
		return
	}
	if b.err == nil {
		b.renderer.CommitLive(b.surface)
	}
	b.history.Commit(s)
	b.log.Debug("stroke committed", "id", s.ID, "tool", s.Tool, "points", len(s.Points))
	b.obs.StrokeCommitted(s)
	b.historyChanged()
}

func (h *handler) AbandonStroke() {
	b := h.board()
	if !b.rec.Abandon() {
		return
	}
	if b.err == nil {
		b.renderer.DiscardLive(b.surface)
	}
	b.log.Debug("stroke abandoned")
	b.obs.StrokeAbandoned()
}

func (h *handler) CameraChanged() { h.board().redraw() }

func (b *Board) paintLive() {
	if b.err != nil {
		return
	}
	if err := b.renderer.PaintLive(b.surface, b.rec.Current(), b.transform()); err != nil {
		b.log.Warn("live paint", "err", err)
	}
}
