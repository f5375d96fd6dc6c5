// Package host models a monitored host's address inventory and the
// address-selection modes used to pick probe targets from it.
package host

import "maps"

// DefaultCheck is the check injected when a host declares none.
const DefaultCheck = "icmp"

// Host represents the configuration of a monitored host as read from
// the host file.
type Host struct {
	Name          string                    `json:"-" yaml:"-"`
	Address       string                    `json:"address,omitempty" yaml:"address,omitempty"`               // Primary address
	Alias         string                    `json:"alias,omitempty" yaml:"alias,omitempty"`                   // DNS name or address used by the alias mode
	IPv4Addresses []string                  `json:"ipv4_addresses,omitempty" yaml:"ipv4_addresses,omitempty"` // Additional IPv4 addresses
	IPv6Addresses []string                  `json:"ipv6_addresses,omitempty" yaml:"ipv6_addresses,omitempty"` // Additional IPv6 addresses
	Checks        map[string]map[string]any `json:"checks,omitempty" yaml:"checks,omitempty"`
}

// ApplyDefaults injects a default icmp check when no checks are configured.
func (h *Host) ApplyDefaults() {
	if len(h.Checks) == 0 {
		h.Checks = map[string]map[string]any{
			DefaultCheck: {},
		}
	}
}

// EnabledChecks returns the checks whose "enabled" key is absent or true.
// The returned config maps are copies without the "enabled" key.
func (h *Host) EnabledChecks() map[string]map[string]any {
	enabled := make(map[string]map[string]any, len(h.Checks))
	for name, cfg := range h.Checks {
		if v, ok := cfg["enabled"]; ok {
			if b, ok := v.(bool); ok && !b {
				continue
			}
		}
		c := maps.Clone(cfg)
		if c == nil {
			c = map[string]any{}
		}
		delete(c, "enabled")
		enabled[name] = c
	}
	return enabled
}

// Inventory returns the read-only address inventory of the host.
func (h *Host) Inventory() Inventory {
	return Inventory{
		Name:    h.Name,
		Address: h.Address,
		Alias:   h.Alias,
		IPv4:    append([]string(nil), h.IPv4Addresses...),
		IPv6:    append([]string(nil), h.IPv6Addresses...),
	}
}

// Inventory is the set of addresses known for a host.
type Inventory struct {
	Name    string   // host name, used when Address or Alias is empty
	Address string   // primary address
	Alias   string   // alias, resolved as a DNS name by the prober
	IPv4    []string // additional IPv4 addresses, in configured order
	IPv6    []string // additional IPv6 addresses, in configured order
}
