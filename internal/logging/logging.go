// Package logging builds the process logger and shares it with the raster
// library.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gogpu/gg"
)

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// New returns a text or json logger writing to w and installs it as gg's
// logger. An unknown format falls back to text.
func New(level, format string, w io.Writer) (*slog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: l}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	log := slog.New(h)
	gg.SetLogger(log.With("lib", "gg"))
	return log, nil
}
