package check

import (
	"time"
)

// Result captures the outcome of a single check execution.
type Result struct {
	// Timestamp is when the check was executed.
	Timestamp time.Time

	// State is the evaluated monitoring state.
	State State

	// Summary is a single human-readable line stating the measured values
	// and which levels were breached.
	Summary string

	// Metrics holds named measurements from the check execution, keyed by
	// MetricDef.Name (e.g. {"rta": 0.0123}). Absent keys were not measured.
	Metrics map[string]float64
}
