package net

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"Freehand/internal/board"
	"Freehand/internal/state"
)

// Metrics are the server's Prometheus collectors.
type Metrics struct {
	Events    *prometheus.CounterVec
	Malformed prometheus.Counter
	Strokes   *prometheus.CounterVec
	Redraw    prometheus.Histogram
	Sessions  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freehand_events_total",
			Help: "Messages applied to a board, by type",
		}, []string{"type"}),
		Malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "freehand_malformed_messages_total",
			Help: "Messages rejected with an error reply",
		}),
		Strokes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freehand_strokes_total",
			Help: "Finished strokes, by outcome",
		}, []string{"outcome"}),
		Redraw: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "freehand_redraw_seconds",
			Help:    "Time spent replaying history",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "freehand_sessions",
			Help: "Connected input clients",
		}),
	}
	reg.MustRegister(
		m.Events,
		m.Malformed,
		m.Strokes,
		m.Redraw,
		m.Sessions,
		collectors.NewGoCollector(),
		collectors.NewBuildInfoCollector(),
	)
	return m
}

// observer feeds a session's board events into m.
type observer struct {
	board.NopObserver
	m *Metrics
}

func (o observer) StrokeCommitted(state.Stroke) { o.m.Strokes.WithLabelValues("committed").Inc() }
func (o observer) StrokeAbandoned()             { o.m.Strokes.WithLabelValues("abandoned").Inc() }
func (o observer) Redrawn(d time.Duration)      { o.m.Redraw.Observe(d.Seconds()) }
