package dag

import (
	"fmt"

	"surfgen/internal/core"
)

// State is the runtime execution state of one task node.
type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// executionState maps identity to current state for one run.
type executionState map[core.Identity]State

func isTerminal(s State) bool {
	return s == StateDone || s == StateFailed
}

// transition performs a validated state change. The caller supplies the
// expected prior state so inconsistent scheduling is observable instead of
// silent.
func (st executionState) transition(id core.Identity, from, to State) error {
	cur, ok := st[id]
	if !ok {
		return fmt.Errorf("unknown task in state: %s", id)
	}
	if cur != from {
		return fmt.Errorf("invalid transition for %s: expected %s, got %s", id, from, cur)
	}
	if !allowedTransition(from, to) {
		return fmt.Errorf("disallowed transition for %s: %s -> %s", id, from, to)
	}
	st[id] = to
	return nil
}

func allowedTransition(from, to State) bool {
	switch from {
	case StatePending:
		// pending -> done covers cache hits; pending -> failed covers
		// inherited dependency failures.
		return to == StateRunning || to == StateDone || to == StateFailed
	case StateRunning:
		return to == StateDone || to == StateFailed
	default:
		return false
	}
}
