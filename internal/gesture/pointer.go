package gesture

import "Freehand/internal/geom"

type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerCancel
	PointerLeave
)

var pointerKinds = map[string]PointerKind{
	"down":   PointerDown,
	"move":   PointerMove,
	"up":     PointerUp,
	"cancel": PointerCancel,
	"leave":  PointerLeave,
}

// ParsePointerKind maps the host's event names (down, move, up, cancel,
// leave) to a PointerKind.
func ParsePointerKind(s string) (PointerKind, bool) {
	k, ok := pointerKinds[s]
	return k, ok
}

// PointerEvent is one raw pointer event from the host.
type PointerEvent struct {
	Kind     PointerKind
	ID       int64
	Pos      geom.Vec
	Pressure float64
	Primary  bool
}

// Pointer feeds one pointer event through the state machine. Events that do
// not fit the current state are dropped.
func (r *Router) Pointer(ev PointerEvent) {
	switch ev.Kind {
	case PointerDown:
		r.pointerDown(ev)
	case PointerMove:
		r.pointerMove(ev)
	case PointerUp, PointerLeave:
		r.pointerEnd(ev, false)
	case PointerCancel:
		r.pointerEnd(ev, true)
	}
}

func (r *Router) pointerDown(ev PointerEvent) {
	if r.index(ev.ID) >= 0 {
		r.pointerMove(ev)
		return
	}
	r.contacts = append(r.contacts, contact{id: ev.ID, pos: ev.Pos})

	switch {
	case len(r.contacts) >= 2:
		if r.state != Pinching {
			r.startPinch()
		}
	case r.state == Idle && ev.Primary:
		r.state = Drawing
		r.drawID = ev.ID
		r.h.BeginStroke(ev.Pos, ev.Pressure)
	}
}

func (r *Router) pointerMove(ev PointerEvent) {
	i := r.index(ev.ID)
	if i < 0 {
		return
	}
	r.contacts[i].pos = ev.Pos

	switch r.state {
	case Drawing:
		if ev.ID == r.drawID {
			r.h.ExtendStroke(ev.Pos, ev.Pressure)
		}
	case Pinching:
		if ev.ID == r.pinchIDs[0] || ev.ID == r.pinchIDs[1] {
			r.updatePinch()
		}
	}
}

func (r *Router) pointerEnd(ev PointerEvent, cancel bool) {
	i := r.index(ev.ID)
	if i < 0 {
		return
	}
	r.contacts = append(r.contacts[:i], r.contacts[i+1:]...)
	r.endContacts(cancel)
}
