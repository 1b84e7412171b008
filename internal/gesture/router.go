// Package gesture classifies raw pointer and touch input into either single
// point drawing or a two-contact camera gesture, never both at once.
package gesture

import (
	"fmt"
	"slices"

	"Freehand/internal/geom"
)

type State int

const (
	Idle State = iota
	Drawing
	Pinching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Pinching:
		return "pinching"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Handler receives the outcome of classification. Positions are in screen
// pixels relative to the surface's top-left.
type Handler interface {
	BeginStroke(pos geom.Vec, pressure float64)
	ExtendStroke(pos geom.Vec, pressure float64)
	CommitStroke()
	AbandonStroke()
	CameraChanged()
}

type contact struct {
	id  int64
	pos geom.Vec
}

// Router is the gesture state machine. It mutates the camera while pinching
// and forwards drawing to its Handler. It is not safe for concurrent use.
type Router struct {
	h   Handler
	cam *geom.Camera

	state    State
	contacts []contact // arrival order
	drawID   int64
	pinchIDs [2]int64
	pinch    geom.PinchContext
}

func NewRouter(cam *geom.Camera, h Handler) *Router {
	return &Router{h: h, cam: cam}
}

func (r *Router) State() State { return r.state }

// Pinch returns the rolling references of the current pinch.
func (r *Router) Pinch() geom.PinchContext { return r.pinch }

// Contacts returns the number of contacts currently down.
func (r *Router) Contacts() int { return len(r.contacts) }

// Reset abandons any gesture in flight and forgets all contacts.
func (r *Router) Reset() {
	if r.state == Drawing {
		r.h.AbandonStroke()
	}
	r.contacts = nil
	r.state = Idle
}

func (r *Router) index(id int64) int {
	return slices.IndexFunc(r.contacts, func(c contact) bool { return c.id == id })
}

func (r *Router) pos(id int64) (geom.Vec, bool) {
	if i := r.index(id); i >= 0 {
		return r.contacts[i].pos, true
	}
	return geom.Vec{}, false
}

// startPinch enters Pinching using the two oldest contacts. Any stroke in
// progress is dropped without reaching the history.
func (r *Router) startPinch() {
	if r.state == Drawing {
		r.h.AbandonStroke()
	}
	a, b := r.contacts[0], r.contacts[1]
	r.pinchIDs = [2]int64{a.id, b.id}
	r.pinch = geom.BeginPinch(r.cam, a.pos, b.pos)
	r.state = Pinching
}

func (r *Router) updatePinch() {
	a, okA := r.pos(r.pinchIDs[0])
	b, okB := r.pos(r.pinchIDs[1])
	if !okA || !okB {
		// one of the tracked contacts lifted while others remain
		r.startPinch()
		return
	}
	r.pinch = r.cam.ApplyPinch(r.pinch, a, b)
	r.h.CameraChanged()
}

// endContacts settles the state after contacts went away.
func (r *Router) endContacts(cancel bool) {
	switch r.state {
	case Drawing:
		if _, ok := r.pos(r.drawID); ok {
			return
		}
		r.state = Idle
		if cancel {
			r.h.AbandonStroke()
		} else {
			r.h.CommitStroke()
		}
	case Pinching:
		if len(r.contacts) < 2 {
			r.state = Idle
			return
		}
		_, okA := r.pos(r.pinchIDs[0])
		_, okB := r.pos(r.pinchIDs[1])
		if !okA || !okB {
			r.startPinch()
		}
	}
}
