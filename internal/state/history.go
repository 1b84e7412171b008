package state

// History is the ordered record of committed strokes. Done is exactly what is
// rendered, oldest first; Undone only ever holds strokes removed by Undo.
type History struct {
	done   []Stroke
	undone []Stroke

	// floor is the number of done strokes that can no longer be undone.
	floor int

	// MaxUndo bounds how many of the newest strokes can be undone. Older
	// strokes stay rendered but become permanent. Zero means unbounded.
	MaxUndo int
}

func NewHistory(maxUndo int) *History {
	return &History{MaxUndo: maxUndo}
}

// Commit appends s and discards any redo history.
func (h *History) Commit(s Stroke) {
	h.done = append(h.done, s)
	h.undone = nil
	if h.MaxUndo > 0 && len(h.done)-h.floor > h.MaxUndo {
		h.floor = len(h.done) - h.MaxUndo
	}
}

// Undo moves the newest done stroke onto the undone stack. It reports
// whether anything moved.
func (h *History) Undo() bool {
	n := len(h.done)
	if n <= h.floor {
		return false
	}
	h.undone = append(h.undone, h.done[n-1])
	h.done = h.done[:n-1]
	return true
}

// Redo moves the newest undone stroke back onto the done stack.
func (h *History) Redo() bool {
	n := len(h.undone)
	if n == 0 {
		return false
	}
	h.done = append(h.done, h.undone[n-1])
	h.undone = h.undone[:n-1]
	return true
}

// Clear empties both stacks.
func (h *History) Clear() {
	h.done = nil
	h.undone = nil
	h.floor = 0
}

// Done returns the rendered strokes in commit order.
func (h *History) Done() []Stroke { return append([]Stroke(nil), h.done...) }

// Undone returns the redo stack, the next stroke to redo last.
func (h *History) Undone() []Stroke { return append([]Stroke(nil), h.undone...) }

func (h *History) Len() int      { return len(h.done) }
func (h *History) CanUndo() bool { return len(h.done) > h.floor }
func (h *History) CanRedo() bool { return len(h.undone) > 0 }
