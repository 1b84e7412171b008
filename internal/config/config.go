// Package config loads the TOML configuration for the engine and its hosts.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"Freehand/internal/geom"
	"Freehand/internal/render"
	"Freehand/internal/state"
)

var ErrInvalid = errors.New("invalid configuration")

// Config is the root of the configuration file.
type Config struct {
	Engine Engine `toml:"engine"`
	Server Server `toml:"server"`
	Log    Log    `toml:"log"`
}

// Engine holds the tunables of the drawing engine.
type Engine struct {
	geom.Limits

	DefaultColor     Color      `toml:"default_color"`
	DefaultLineWidth float64    `toml:"default_line_width"`
	DefaultTool      state.Tool `toml:"default_tool"`

	// MaxHistory bounds the undo depth; 0 is unbounded.
	MaxHistory       int `toml:"max_history"`
	MaxSurfacePixels int `toml:"max_surface_pixels"`
}

type Server struct {
	Listen  string `toml:"listen"`
	MDNS    bool   `toml:"mdns"`
	Metrics bool   `toml:"metrics"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func Default() Config {
	return Config{
		Engine: Engine{
			Limits:           geom.DefaultLimits(),
			DefaultColor:     Color{A: 255},
			DefaultLineWidth: state.DefaultLineWidth,
			DefaultTool:      state.ToolBrush,
			MaxSurfacePixels: render.DefaultMaxPixels,
		},
		Server: Server{
			Listen:  ":8888",
			Metrics: true,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// LoadFile reads path on top of the defaults. Unknown keys are an error.
func LoadFile(path string) (Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return c, fmt.Errorf("load %s: %w", path, err)
	}
	return c, finish(c, md)
}

// Load is like LoadFile but reads the configuration from a string.
func Load(s string) (Config, error) {
	c := Default()
	md, err := toml.Decode(s, &c)
	if err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, finish(c, md)
}

func finish(c Config, md toml.MetaData) error {
	if u := md.Undecoded(); len(u) > 0 {
		return fmt.Errorf("%w: undecoded fields %v", ErrInvalid, u)
	}
	return c.Validate()
}

func (c Config) Validate() error {
	e := c.Engine
	switch {
	case !(e.Min > 0) || math.IsInf(e.Max, 0) || !(e.Max >= e.Min):
		return fmt.Errorf("%w: zoom range [%v, %v]", ErrInvalid, e.Min, e.Max)
	case !(e.DefaultLineWidth > 0) || math.IsInf(e.DefaultLineWidth, 0):
		return fmt.Errorf("%w: default_line_width %v", ErrInvalid, e.DefaultLineWidth)
	case e.MaxHistory < 0:
		return fmt.Errorf("%w: max_history %d", ErrInvalid, e.MaxHistory)
	case e.MaxSurfacePixels <= 0:
		return fmt.Errorf("%w: max_surface_pixels %d", ErrInvalid, e.MaxSurfacePixels)
	}
	return nil
}

// Color is an NRGBA color written as #rrggbb or #rrggbbaa.
type Color color.NRGBA

func (c Color) NRGBA() color.NRGBA { return color.NRGBA(c) }

func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseColor parses #rgb, #rrggbb and #rrggbbaa.
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
