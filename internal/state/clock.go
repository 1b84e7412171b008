package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

var commitSeq uint64

// nextStrokeID stamps a stroke with a unique ID and a process-wide commit
// sequence number.
func nextStrokeID() (string, uint64) {
	return uuid.NewString(), atomic.AddUint64(&commitSeq, 1)
}
