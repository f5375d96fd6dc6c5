package check

import (
	"fmt"
	"strings"
)

// State is the monitoring state of a service. The numeric values are the
// conventional plugin exit codes.
type State int

const (
	StateOK      State = 0
	StateWarn    State = 1
	StateCrit    State = 2
	StateUnknown State = 3
)

// String returns the short upper-case name of the state.
func (s State) String() string {
	switch s {
	case StateOK:
		return "OK"
	case StateWarn:
		return "WARN"
	case StateCrit:
		return "CRIT"
	case StateUnknown:
		return "UNKNOWN"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Marker returns the summary marker used to flag a breached value:
// "(!)" for WARN, "(!!)" for CRIT, "(?)" for UNKNOWN and "" for OK.
func (s State) Marker() string {
	switch s {
	case StateWarn:
		return "(!)"
	case StateCrit:
		return "(!!)"
	case StateUnknown:
		return "(?)"
	}
	return ""
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "OK":
		*s = StateOK
	case "WARN", "WARNING":
		*s = StateWarn
	case "CRIT", "CRITICAL":
		*s = StateCrit
	case "UNKNOWN":
		*s = StateUnknown
	default:
		return fmt.Errorf("unknown state %q", string(b))
	}
	return nil
}

// severity orders states from best to worst: OK < WARN < UNKNOWN < CRIT.
func (s State) severity() int {
	switch s {
	case StateOK:
		return 0
	case StateWarn:
		return 1
	case StateUnknown:
		return 2
	default:
		return 3
	}
}

// Worst returns the most severe of the given states, StateOK if none.
func Worst(states ...State) State {
	worst := StateOK
	for _, s := range states {
		if s.severity() > worst.severity() {
			worst = s
		}
	}
	return worst
}
