package workflows

import "fmt"

// StateMachine enforces forward-only status transitions.
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewStateMachine creates a state machine from an adjacency list of allowed
// transitions. Terminal statuses map to an empty slice.
func NewStateMachine(transitions map[string][]string) *StateMachine {
	allowed := make(map[string][]string, len(transitions))
	for from, to := range transitions {
		allowed[from] = append([]string(nil), to...)
	}
	return &StateMachine{allowedTransitions: allowed}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// Transition returns to when the move is allowed, or an error naming both ends.
func (sm *StateMachine) Transition(from, to string) (string, error) {
	if !sm.CanTransition(from, to) {
		return from, fmt.Errorf("transition %s -> %s is not allowed", from, to)
	}
	return to, nil
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}

// IsTerminal reports whether no transition leaves status.
func (sm *StateMachine) IsTerminal(status string) bool {
	allowed, exists := sm.allowedTransitions[status]
	return exists && len(allowed) == 0
}
