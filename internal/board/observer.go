package board

import (
	"time"

	"Freehand/internal/state"
)

// Observer is notified of engine events. Calls happen on the goroutine that
// drives the board and must not call back into it.
type Observer interface {
	StrokeCommitted(s state.Stroke)
	StrokeAbandoned()
	HistoryChanged(done, undone int)
	Redrawn(d time.Duration)
}

// NopObserver ignores everything. Embed it to implement part of Observer.
type NopObserver struct{}

func (NopObserver) StrokeCommitted(state.Stroke) {}
func (NopObserver) StrokeAbandoned()             {}
func (NopObserver) HistoryChanged(int, int)      {}
func (NopObserver) Redrawn(time.Duration)        {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (o Observers) StrokeCommitted(s state.Stroke) {
	for _, ob := range o {
		ob.StrokeCommitted(s)
	}
}

func (o Observers) StrokeAbandoned() {
	for _, ob := range o {
		ob.StrokeAbandoned()
	}
}

func (o Observers) HistoryChanged(done, undone int) {
	for _, ob := range o {
		ob.HistoryChanged(done, undone)
	}
}

func (o Observers) Redrawn(d time.Duration) {
	for _, ob := range o {
		ob.Redrawn(d)
	}
}
