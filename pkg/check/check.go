// Package check defines the core interfaces and types for monitoring checks.
//
// A Rule is a validated check configuration for one host. Expanding a Rule
// against the host's address inventory yields one or more Checks, each of
// which is an independently monitored service instance.
//
// Results from check execution are captured in a Result struct, which
// provides a uniform shape regardless of check type: a State, a
// human-readable summary, and a set of named metrics.
//
// The Registry maps rule type names to factories, allowing rules to be
// instantiated from raw configuration at runtime.
package check

import (
	"context"

	"github.com/kylerisse/icmpqual/pkg/host"
)

// Check is a single monitored service instance.
type Check interface {
	// Name returns the service name, unique per host.
	Name() string

	// Type returns the registered name of the rule that produced this check.
	Type() string

	// Targets returns the probe targets assigned to this service.
	Targets() []string

	// Run executes the check and returns a Result.
	// The provided context can be used for cancellation and timeouts.
	Run(ctx context.Context) Result
}

// Rule is a validated check configuration that can be expanded into
// service instances for a host.
type Rule interface {
	// Type returns the registered name of this rule type (e.g. "icmp").
	Type() string

	// Describe returns the metrics produced by checks of this rule.
	Describe() Descriptor

	// Checks expands the rule against a host's address inventory.
	Checks(inv host.Inventory) ([]Check, error)
}
