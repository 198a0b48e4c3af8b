package engine

import "fmt"

// State is the position of a run in its lifecycle.
type State int

const (
	StateInitialized State = iota
	StateEvolving
	StateConverged
	StateExhaustedBudget
	StateStopped
)

var stateNames = map[State]string{
	StateInitialized:     "initialized",
	StateEvolving:        "evolving",
	StateConverged:       "converged",
	StateExhaustedBudget: "exhausted_budget",
	StateStopped:         "stopped",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether the run has finished.
func (s State) Terminal() bool {
	return s == StateConverged || s == StateExhaustedBudget || s == StateStopped
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for k, v := range stateNames {
		if v == string(text) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}
