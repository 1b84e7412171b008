package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"Freehand/internal/state"
)

var palette = []color.NRGBA{
	{A: 255},
	{R: 255, A: 255},
	{G: 160, A: 255},
	{B: 255, A: 255},
	{R: 255, G: 200, A: 255},
}

// colorSwatch is a tappable square that selects its colour.
type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Toolbar holds the brush settings and history actions for one board.
type Toolbar struct {
	board *BoardWidget

	Tool   *widget.RadioGroup
	Width  *widget.Slider
	Undo   *widget.Button
	Redo   *widget.Button
	Clear  *widget.Button
	Export *widget.Button
	Status *widget.Label

	content fyne.CanvasObject
}

func NewToolbar(b *BoardWidget, win fyne.Window) *Toolbar {
	t := &Toolbar{board: b, Status: widget.NewLabel("")}

	t.Tool = widget.NewRadioGroup([]string{state.ToolBrush.String(), state.ToolEraser.String()}, func(s string) {
		if tool, err := state.ParseTool(s); err == nil {
			b.SetTool(tool)
		}
	})
	t.Tool.Horizontal = true
	t.Tool.Required = true
	t.Tool.SetSelected(b.Board().Controls().Tool().String())

	swatches := container.NewHBox()
	for _, c := range palette {
		swatches.Add(newColorSwatch(c, b.SetColor))
	}

	t.Width = widget.NewSlider(1, 50)
	t.Width.SetValue(b.Board().Controls().LineWidth())
	t.Width.OnChanged = b.SetLineWidth
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), t.Width)

	t.Undo = widget.NewButtonWithIcon("", theme.ContentUndoIcon(), b.Undo)
	t.Redo = widget.NewButtonWithIcon("", theme.ContentRedoIcon(), b.Redo)
	t.Clear = widget.NewButtonWithIcon("", theme.DeleteIcon(), b.Clear)
	t.Export = widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), func() { t.showExport(win) })

	b.OnChanged = t.refresh
	t.refresh()

	t.content = container.NewHBox(
		widget.NewLabel("Tool:"),
		t.Tool,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		swatches,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		widget.NewSeparator(),
		t.Undo, t.Redo, t.Clear, t.Export,
		layout.NewSpacer(),
		t.Status,
	)
	return t
}

func (t *Toolbar) Object() fyne.CanvasObject { return t.content }

// refresh enables the history buttons to match what can be undone.
func (t *Toolbar) refresh() {
	bd := t.board.Board()
	setEnabled(t.Undo, bd.CanUndo())
	setEnabled(t.Redo, bd.CanRedo())
	t.Status.SetText(fmt.Sprintf("strokes: %d", len(bd.Done())))
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (t *Toolbar) showExport(win fyne.Window) {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()
		if err := t.board.Export(w, w.URI().Name()); err != nil {
			dialog.ShowError(err, win)
		}
	}, win)
	d.SetFileName("drawing.png")
	d.Show()
}
