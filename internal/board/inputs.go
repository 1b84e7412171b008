package board

import (
	"image/color"
	"sync"

	"Freehand/internal/config"
	"Freehand/internal/state"
)

// Inputs supplies the brush settings. They are read once when a stroke
// starts; changing them mid-stroke affects only the next stroke.
type Inputs interface {
	Color() color.NRGBA
	LineWidth() float64
	Tool() state.Tool
}

// Controls is the default Inputs, set by toolbars and remote clients.
type Controls struct {
	mu    sync.Mutex
	color color.NRGBA
	width float64
	tool  state.Tool
}

func NewControls(cfg config.Engine) *Controls {
	return &Controls{
		color: cfg.DefaultColor.NRGBA(),
		width: cfg.DefaultLineWidth,
		tool:  cfg.DefaultTool,
	}
}

func (c *Controls) Color() color.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.color
}

func (c *Controls) LineWidth() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

func (c *Controls) Tool() state.Tool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tool
}

func (c *Controls) SetColor(v color.NRGBA) {
	c.mu.Lock()
	c.color = v
	c.mu.Unlock()
}

// SetLineWidth stores w as given. Unusable widths are replaced with the
// default when the stroke begins.
func (c *Controls) SetLineWidth(w float64) {
	c.mu.Lock()
	c.width = w
	c.mu.Unlock()
}

func (c *Controls) SetTool(t state.Tool) {
	c.mu.Lock()
	c.tool = t
	c.mu.Unlock()
}
