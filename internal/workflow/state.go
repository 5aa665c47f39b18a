package workflow

import "fmt"

type State string

const (
	StateProposed  State = "proposed"
	StateRefining  State = "refining"
	StateRunning   State = "running"
	StateCancelled State = "cancelled"
)

type Event string

const (
	EventAutoApprove Event = "auto_approve"
	EventAllow       Event = "allow"
	EventAlwaysAllow Event = "always_allow"
	EventRefine      Event = "refine"
	EventEmptyRefine Event = "empty_refine"
	EventReject      Event = "reject"
	EventGenerated   Event = "generated"
)

var transitions = map[State]map[Event]State{
	StateProposed: {
		EventAutoApprove: StateRunning,
		EventAllow:       StateRunning,
		EventAlwaysAllow: StateRunning,
		EventRefine:      StateRefining,
		EventEmptyRefine: StateProposed,
		EventReject:      StateCancelled,
	},
	StateRefining: {
		EventGenerated: StateProposed,
	},
	StateRunning:   {},
	StateCancelled: {},
}

func (s State) Terminal() bool {
	return s == StateRunning || s == StateCancelled
}

func ValidateState(s State) error {
	if _, ok := transitions[s]; !ok {
		return fmt.Errorf("invalid workflow state: %q", s)
	}
	return nil
}

// Next returns the state reached from `from` on `ev`.
func Next(from State, ev Event) (State, error) {
	if err := ValidateState(from); err != nil {
		return from, err
	}
	to, ok := transitions[from][ev]
	if !ok {
		return from, fmt.Errorf("invalid workflow transition: %s on %s", from, ev)
	}
	return to, nil
}
