package importer

import (
	"fmt"

	"github.com/google/uuid"
)

// Event is one human-readable progress notification from a running import.
type Event struct {
	RunID   uuid.UUID
	Phase   Phase
	Message string
	Rows    int
}

func (e Event) String() string {
	if e.Rows > 0 {
		return fmt.Sprintf("[%s] %s (%d rows)", e.Phase, e.Message, e.Rows)
	}
	return fmt.Sprintf("[%s] %s", e.Phase, e.Message)
}

// notify sends a progress event without ever blocking the pipeline: when the
// consumer is absent or slow the event is dropped. Progress is advisory and
// must not affect pipeline correctness.
func (p *Pipeline) notify(phase Phase, message string, rows int) {
	if p.progress == nil {
		return
	}
	select {
	case p.progress <- Event{RunID: p.runID, Phase: phase, Message: message, Rows: rows}:
	default:
	}
}
