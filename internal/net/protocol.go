package net

import (
	"fmt"

	"Freehand/internal/config"
	"Freehand/internal/geom"
	"Freehand/internal/gesture"
	"Freehand/internal/state"
)

// Message is one JSON text frame from an input client. Type selects which of
// the other fields are read.
type Message struct {
	Type string `json:"type"`

	// resize
	Metrics *geom.Metrics `json:"metrics,omitempty"`

	// pointer
	Kind     string   `json:"kind,omitempty"`
	ID       int64    `json:"id,omitempty"`
	Pos      geom.Vec `json:"pos"`
	Pressure float64  `json:"pressure,omitempty"`
	Primary  bool     `json:"primary,omitempty"`

	// touch
	Touches []gesture.Contact `json:"touches,omitempty"`

	// settings; empty fields leave the setting unchanged
	Color     string  `json:"color,omitempty"`
	LineWidth float64 `json:"lineWidth,omitempty"`
	Tool      string  `json:"tool,omitempty"`
}

const (
	TypeResize   = "resize"
	TypePointer  = "pointer"
	TypeTouch    = "touch"
	TypeUndo     = "undo"
	TypeRedo     = "redo"
	TypeClear    = "clear"
	TypeSettings = "settings"
	TypeFrame    = "frame"
	TypeState    = "state"
	TypeError    = "error"
)

// StateReply answers a state request.
type StateReply struct {
	Type    string       `json:"type"`
	State   string       `json:"state"`
	Scale   float64      `json:"scale"`
	Offset  geom.Vec     `json:"offset"`
	Done    int          `json:"done"`
	Undone  int          `json:"undone"`
	Metrics geom.Metrics `json:"metrics"`
	Color   string       `json:"color"`
	Width   float64      `json:"lineWidth"`
	Tool    state.Tool   `json:"tool"`
}

// ErrorReply reports a message that could not be applied. The session stays
// open.
type ErrorReply struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (m Message) pointer() (gesture.PointerEvent, error) {
	k, ok := gesture.ParsePointerKind(m.Kind)
	if !ok {
		return gesture.PointerEvent{}, fmt.Errorf("unknown pointer kind %q", m.Kind)
	}
	return gesture.PointerEvent{Kind: k, ID: m.ID, Pos: m.Pos, Pressure: m.Pressure, Primary: m.Primary}, nil
}

func (m Message) touch() (gesture.TouchEvent, error) {
	k, ok := gesture.ParseTouchKind(m.Kind)
	if !ok {
		return gesture.TouchEvent{}, fmt.Errorf("unknown touch kind %q", m.Kind)
	}
	return gesture.TouchEvent{Kind: k, Touches: m.Touches}, nil
}

// settings parses every field before any is applied.
type settings struct {
	color *config.Color
	width float64
	tool  *state.Tool
}

func (m Message) settings() (settings, error) {
	var s settings
	if m.Color != "" {
		c, err := config.ParseColor(m.Color)
		if err != nil {
			return s, err
		}
		s.color = &c
	}
	if m.LineWidth < 0 {
		return s, fmt.Errorf("lineWidth %v", m.LineWidth)
	}
	s.width = m.LineWidth
	if m.Tool != "" {
		t, err := state.ParseTool(m.Tool)
		if err != nil {
			return s, err
		}
		s.tool = &t
	}
	return s, nil
}
