package icmp

import (
	"fmt"

	"github.com/kylerisse/icmpqual/pkg/host"
)

// ServiceSpec describes one service instance created for a host.
type ServiceSpec struct {
	// Name is unique among the specs produced for one host.
	Name string

	// Targets are the addresses probed by the service, in resolution order.
	Targets []string

	// Family is the IP family the targets were selected from.
	Family host.Family

	// Required is the number of targets that must answer.
	Required int
}

// Instantiate turns resolved targets into service specs.
//
// Without multiple services it returns exactly one spec carrying every
// target, even when targets is empty. With multiple services it returns
// one spec per target, named "<description> <address>".
func Instantiate(targets []string, cfg Config) ([]ServiceSpec, error) {
	family := cfg.Address.Family()

	if !cfg.MultipleServices {
		required := len(targets)
		if cfg.MinPings > 0 {
			if len(targets) > 0 && cfg.MinPings > len(targets) {
				return nil, &ValidationError{
					Field:   "min_pings",
					Value:   cfg.MinPings,
					Message: fmt.Sprintf("exceeds the %d resolved target address(es)", len(targets)),
				}
			}
			required = cfg.MinPings
		}
		return []ServiceSpec{{
			Name:     cfg.Description,
			Targets:  append([]string(nil), targets...),
			Family:   family,
			Required: required,
		}}, nil
	}

	specs := make([]ServiceSpec, 0, len(targets))
	used := make(map[string]bool, len(targets))
	for _, t := range targets {
		base := cfg.Description + " " + t
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s (%d)", base, n)
		}
		used[name] = true
		specs = append(specs, ServiceSpec{
			Name:     name,
			Targets:  []string{t},
			Family:   family,
			Required: 1,
		})
	}
	return specs, nil
}
