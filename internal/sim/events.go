package sim

import (
	"time"

	"github.com/vovakirdan/axiom-drop/internal/core"
	"github.com/vovakirdan/axiom-drop/internal/level"
)

// Cause explains why a session finished.
type Cause string

const (
	CauseTarget       Cause = "target"       // entered a target zone
	CauseDestabilizer Cause = "destabilizer" // entered a destabilizer zone
	CauseFell         Cause = "fell"         // dropped past the bottom margin
)

// NodeHit describes a node collected during a step.
type NodeHit struct {
	Index  int            `json:"index"`
	Type   level.NodeType `json:"type"`
	Points int            `json:"points"`
	At     core.Point     `json:"at"`
}

// Outcome is reported once, on the step that finishes the session.
type Outcome struct {
	State GameState `json:"state"`
	Cause Cause     `json:"cause"`
	Score int       `json:"score"`
}

// PulseEvent asks the host to call EndPulse after RevertAfter has elapsed.
// The host schedules it on the same queue that drives the simulation.
type PulseEvent struct {
	RevertAfter time.Duration
}

// StepResult reports what happened during one Advance.
type StepResult struct {
	Hits    []NodeHit
	Outcome *Outcome
	Pulse   *PulseEvent
}

// Empty reports whether the step produced no events.
func (r StepResult) Empty() bool {
	return len(r.Hits) == 0 && r.Outcome == nil && r.Pulse == nil
}
