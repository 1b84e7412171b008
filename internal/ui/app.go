package ui

import (
	"context"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"

	"Freehand/internal/config"
)

// RunApp opens the drawing window and blocks until it is closed. When
// configPath is set the file is watched and engine changes are applied
// live.
func RunApp(cfg config.Config, configPath string, log *slog.Logger) {
	myApp := app.NewWithID("freehand")
	myWindow := myApp.NewWindow("Freehand")
	myWindow.Resize(fyne.NewSize(1024, 768))

	board := NewBoardWidget(cfg.Engine, log)
	toolbar := NewToolbar(board, myWindow)
	addShortcuts(myWindow, board)

	content := container.NewBorder(toolbar.Object(), nil, nil, nil, board)
	myWindow.SetContent(content)

	if configPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			err := config.Watch(ctx, configPath, log, func(c config.Config) {
				fyne.Do(func() { board.Reconfigure(c.Engine) })
			})
			if err != nil {
				log.Warn("config watch stopped", "err", err)
			}
		}()
	}

	myWindow.ShowAndRun()
}

func addShortcuts(w fyne.Window, b *BoardWidget) {
	undo := &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	redo := &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift}
	w.Canvas().AddShortcut(undo, func(fyne.Shortcut) { b.Undo() })
	w.Canvas().AddShortcut(redo, func(fyne.Shortcut) { b.Redo() })
}
