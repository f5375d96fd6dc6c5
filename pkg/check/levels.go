package check

import "fmt"

// Direction selects whether Levels alert on high or low values.
type Direction int

const (
	// Upper levels breach when the measured value is at or above the
	// threshold (latency, jitter, packet loss).
	Upper Direction = iota
	// Lower levels breach when the measured value is at or below the
	// threshold (quality scores such as MOS).
	Lower
)

// Levels is a warn/crit threshold pair.
type Levels struct {
	Warn      float64
	Crit      float64
	Direction Direction
}

// UpperLevels returns levels that alert on high values.
func UpperLevels(warn, crit float64) Levels {
	return Levels{Warn: warn, Crit: crit}
}

// LowerLevels returns levels that alert on low values.
func LowerLevels(warn, crit float64) Levels {
	return Levels{Warn: warn, Crit: crit, Direction: Lower}
}

// Check returns the state of v against the levels. CRIT takes
// precedence when both thresholds are breached.
func (l Levels) Check(v float64) State {
	if l.Direction == Lower {
		switch {
		case v <= l.Crit:
			return StateCrit
		case v <= l.Warn:
			return StateWarn
		}
		return StateOK
	}

	switch {
	case v >= l.Crit:
		return StateCrit
	case v >= l.Warn:
		return StateWarn
	}
	return StateOK
}

// Ordered reports whether warn is the less severe threshold: warn <= crit
// for upper levels, warn >= crit for lower levels.
func (l Levels) Ordered() bool {
	if l.Direction == Lower {
		return l.Warn >= l.Crit
	}
	return l.Warn <= l.Crit
}

// Describe renders the levels using format for each threshold value,
// e.g. "warn/crit at 40.00 ms/80.00 ms" or "warn/crit below 3.50/3.00".
func (l Levels) Describe(format func(float64) string) string {
	word := "at"
	if l.Direction == Lower {
		word = "below"
	}
	return fmt.Sprintf("warn/crit %s %s/%s", word, format(l.Warn), format(l.Crit))
}
