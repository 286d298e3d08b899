package generation

import (
	"time"

	"github.com/Conceptual-Machines/qrious/internal/encoder"
	"github.com/Conceptual-Machines/qrious/internal/payload"
)

// Phase is the generation state machine position
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Snapshot is a read-only copy of the controller state.
// Started is set for Pending, Result for Ready and Reason for Failed.
type Snapshot struct {
	Phase   Phase
	Token   uint64
	Started time.Time
	Settled time.Time
	Result  encoder.Result
	Reason  string
	Request payload.Request
}

// Payload returns the templated string of the request this snapshot belongs to
func (s Snapshot) Payload() string {
	return payload.Template(s.Request)
}

// Stats counts generation outcomes since the controller was created
type Stats struct {
	Requested  uint64 `json:"requested"`
	Rejected   uint64 `json:"rejected"`
	Succeeded  uint64 `json:"succeeded"`
	Failed     uint64 `json:"failed"`
	Superseded uint64 `json:"superseded"`
	Exports    uint64 `json:"exports"`
	Copies     uint64 `json:"copies"`
}
