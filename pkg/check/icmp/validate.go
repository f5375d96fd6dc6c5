package icmp

import (
	"errors"
	"fmt"

	"github.com/kylerisse/icmpqual/pkg/check"
	"github.com/kylerisse/icmpqual/pkg/host"
)

// ValidationError reports a configuration field that violates its
// constraint. It is returned at configuration time and never corrected.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("icmp: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("icmp: %s: %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidateIndex checks an indexed address mode position.
func ValidateIndex(field string, i int) error {
	if i >= 1 {
		return nil
	}
	return &ValidationError{Field: field, Value: i, Message: "index must be ≥ 1"}
}

// ValidateMOS checks a single MOS level.
func ValidateMOS(field string, v float64) error {
	if 0.0 <= v && v <= MaxMOS {
		return nil
	}
	return &ValidationError{Field: field, Value: v, Message: "MOS value must be between 0.0 and 4.4"}
}

// ValidateMinPings checks the quorum of successful targets.
func ValidateMinPings(n int) error {
	if n >= 1 {
		return nil
	}
	return &ValidationError{Field: "min_pings", Value: n, Message: "min_pings must be ≥ 1"}
}

// ValidateDescription checks the service description.
func ValidateDescription(s string) error {
	if s != "" {
		return nil
	}
	return &ValidationError{Field: "description", Message: "description must not be empty"}
}

// ValidateNonNegative checks a level that must not be negative, such as
// a jitter, round-trip or loss threshold.
func ValidateNonNegative(field string, v float64) error {
	if v >= 0 {
		return nil
	}
	return &ValidationError{Field: field, Value: v, Message: "value must be ≥ 0"}
}

// Validate checks every field of c and returns all violations joined.
// Beyond the per-field rules it requires warn to be the less severe
// threshold of each level pair.
func (c Config) Validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(ValidateDescription(c.Description))

	switch c.Address.Kind {
	case host.IndexedIPv4, host.IndexedIPv6:
		add(ValidateIndex("address.index", c.Address.Index))
	case host.Explicit:
		if c.Address.Host == "" {
			add(&ValidationError{Field: "address.host", Message: "explicit address must not be empty"})
		}
	}

	if c.MinPings != 0 {
		add(ValidateMinPings(c.MinPings))
	}

	if c.Packets < 1 {
		add(&ValidationError{Field: "packets", Value: c.Packets, Message: "packets must be ≥ 1"})
	}
	if c.Timeout <= 0 {
		add(&ValidationError{Field: "timeout", Value: c.Timeout, Message: "timeout must be positive"})
	}

	add(validateUpper("rta", &c.RTA))
	add(validateUpper("loss", &c.Loss))
	add(validateUpper("jitter", c.Jitter))

	if c.MOS != nil {
		add(ValidateMOS("mos.warn", c.MOS.Warn))
		add(ValidateMOS("mos.crit", c.MOS.Crit))
		if c.MOS.Direction != check.Lower {
			add(&ValidationError{Field: "mos", Message: "MOS levels must alert on low values"})
		} else if !c.MOS.Ordered() {
			add(&ValidationError{
				Field:   "mos",
				Value:   fmt.Sprintf("%.2f/%.2f", c.MOS.Warn, c.MOS.Crit),
				Message: "warning level must be greater than or equal to critical level",
			})
		}
	}

	return errors.Join(errs...)
}

// validateUpper checks an optional pair of upper levels.
func validateUpper(field string, l *check.Levels) error {
	if l == nil {
		return nil
	}
	if err := ValidateNonNegative(field+".warn", l.Warn); err != nil {
		return err
	}
	if err := ValidateNonNegative(field+".crit", l.Crit); err != nil {
		return err
	}
	if l.Direction != check.Upper || !l.Ordered() {
		return &ValidationError{
			Field:   field,
			Value:   fmt.Sprintf("%g/%g", l.Warn, l.Crit),
			Message: "warning level must be less than or equal to critical level",
		}
	}
	return nil
}
