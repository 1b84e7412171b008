package ui

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"path"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"Freehand/internal/board"
	"Freehand/internal/config"
	"Freehand/internal/export"
	"Freehand/internal/geom"
	"Freehand/internal/gesture"
	"Freehand/internal/state"
)

const mouseID = 1

// BoardWidget shows a Board and feeds it mouse input. All methods must be
// called on the fyne goroutine.
type BoardWidget struct {
	widget.BaseWidget

	log    *slog.Logger
	board  *board.Board
	raster *canvas.Raster

	metrics geom.Metrics
	down    bool

	// OnChanged is called after history changes.
	OnChanged func()
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

func NewBoardWidget(cfg config.Engine, log *slog.Logger) *BoardWidget {
	b := &BoardWidget{log: log}
	b.board = board.New(cfg, board.WithLogger(log), board.WithObserver(historyHook{w: b}))
	b.raster = canvas.NewRaster(b.draw)
	b.raster.ScaleMode = canvas.ImageScalePixels
	b.ExtendBaseWidget(b)
	return b
}

// historyHook forwards history changes to OnChanged.
type historyHook struct {
	board.NopObserver
	w *BoardWidget
}

func (h historyHook) HistoryChanged(int, int) {
	if h.w.OnChanged != nil {
		h.w.OnChanged()
	}
}

func (b *BoardWidget) Board() *board.Board { return b.board }

// draw is the raster generator. w and h are device pixels; the ratio to the
// widget's size gives the device pixel ratio.
func (b *BoardWidget) draw(w, h int) image.Image {
	size := b.Size()
	if size.Width <= 0 || size.Height <= 0 || w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	m := geom.Metrics{
		DPR:    float64(w) / float64(size.Width),
		Width:  float64(size.Width),
		Height: float64(size.Height),
	}
	if m != b.metrics || b.board.Err() != nil {
		b.metrics = m
		if err := b.board.Resize(m); err != nil {
			b.log.Error("resize board", "err", err)
			return image.NewRGBA(image.Rect(0, 0, 1, 1))
		}
	}
	return b.board.Raster()
}

func (b *BoardWidget) pointer(kind gesture.PointerKind, pos fyne.Position) {
	b.board.Pointer(gesture.PointerEvent{
		Kind:    kind,
		ID:      mouseID,
		Pos:     geom.V(float64(pos.X), float64(pos.Y)),
		Primary: true,
	})
	b.raster.Refresh()
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.down = true
	b.pointer(gesture.PointerDown, e.Position)
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || !b.down {
		return
	}
	b.down = false
	b.pointer(gesture.PointerUp, e.Position)
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.down {
		b.pointer(gesture.PointerMove, e.Position)
	}
}

// MouseOut ends the stroke like a pointer leaving the surface.
func (b *BoardWidget) MouseOut() {
	if b.down {
		b.down = false
		b.pointer(gesture.PointerLeave, fyne.Position{})
	}
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}
func (b *BoardWidget) DragEnd()                       {}

func (b *BoardWidget) SetColor(c color.Color) {
	b.board.Controls().SetColor(color.NRGBAModel.Convert(c).(color.NRGBA))
}

func (b *BoardWidget) SetLineWidth(w float64) { b.board.Controls().SetLineWidth(w) }

func (b *BoardWidget) SetTool(t state.Tool) { b.board.Controls().SetTool(t) }

func (b *BoardWidget) Undo() {
	if b.board.Undo() {
		b.raster.Refresh()
	}
}

func (b *BoardWidget) Redo() {
	if b.board.Redo() {
		b.raster.Refresh()
	}
}

func (b *BoardWidget) Clear() {
	b.board.Clear()
	b.raster.Refresh()
}

// Reconfigure applies a reloaded engine configuration.
func (b *BoardWidget) Reconfigure(cfg config.Engine) {
	b.board.Reconfigure(cfg)
	b.raster.Refresh()
}

// Export writes the current image to w as PDF if name ends in .pdf and as
// PNG otherwise.
func (b *BoardWidget) Export(w io.Writer, name string) error {
	img := b.board.Raster()
	var err error
	if strings.EqualFold(path.Ext(name), ".pdf") {
		err = export.PDF(w, img, export.PDFOptions{Title: name, DPR: b.board.Metrics().DPR})
	} else {
		err = export.PNG(w, img)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	b.log.Info("exported", "name", name)
	return nil
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.background = canvas.NewRectangle(color.White)
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.board.raster}
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.board.raster.Resize(size)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size { return fyne.NewSize(300, 300) }

func (r *boardWidgetRenderer) Refresh() {
	r.background.Refresh()
	r.board.raster.Refresh()
}

func (r *boardWidgetRenderer) Destroy() {}
