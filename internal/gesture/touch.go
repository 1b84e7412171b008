package gesture

import (
	"cmp"
	"slices"

	"Freehand/internal/geom"
)

type TouchKind int

const (
	TouchStart TouchKind = iota
	TouchMove
	TouchEnd
	TouchCancel
)

var touchKinds = map[string]TouchKind{
	"start":  TouchStart,
	"move":   TouchMove,
	"end":    TouchEnd,
	"cancel": TouchCancel,
}

func ParseTouchKind(s string) (TouchKind, bool) {
	k, ok := touchKinds[s]
	return k, ok
}

// Contact is one finger of a multi-touch event.
type Contact struct {
	ID    int64    `json:"id"`
	Pos   geom.Vec `json:"pos"`
	Force float64  `json:"force"`
}

// TouchEvent carries every contact still on the surface after the change.
type TouchEvent struct {
	Kind    TouchKind
	Touches []Contact
}

// Touch feeds a multi-touch event through the state machine. The contact
// table is replaced by the event's list.
func (r *Router) Touch(ev TouchEvent) {
	touches := slices.Clone(ev.Touches)
	slices.SortFunc(touches, func(a, b Contact) int { return cmp.Compare(a.ID, b.ID) })
	touches = slices.CompactFunc(touches, func(a, b Contact) bool { return a.ID == b.ID })

	r.contacts = r.contacts[:0]
	for _, t := range touches {
		r.contacts = append(r.contacts, contact{id: t.ID, pos: t.Pos})
	}

	switch ev.Kind {
	case TouchStart, TouchMove:
		r.touchActive(ev.Kind, touches)
	case TouchEnd:
		r.endContacts(false)
	case TouchCancel:
		r.endContacts(true)
	}
}

func (r *Router) touchActive(kind TouchKind, touches []Contact) {
	n := len(touches)
	switch {
	case n >= 2:
		if r.state != Pinching {
			r.startPinch()
			return
		}
		r.updatePinch()
	case n == 1:
		t := touches[0]
		switch r.state {
		case Idle:
			if kind == TouchStart {
				r.state = Drawing
				r.drawID = t.ID
				r.h.BeginStroke(t.Pos, t.Force)
			}
		case Drawing:
			if t.ID == r.drawID {
				r.h.ExtendStroke(t.Pos, t.Force)
			} else {
				r.endContacts(false)
			}
		case Pinching:
			r.state = Idle
		}
	case n == 0:
		r.endContacts(false)
	}
}
