package host

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestApplyDefaults_NilChecks(t *testing.T) {
	h := Host{Name: "test"}
	h.ApplyDefaults()

	if len(h.Checks) != 1 {
		t.Fatalf("expected 1 default check, got %d", len(h.Checks))
	}
	if _, ok := h.Checks["icmp"]; !ok {
		t.Error("expected default icmp check")
	}
}

func TestApplyDefaults_ExistingChecks(t *testing.T) {
	h := Host{
		Name: "test",
		Checks: map[string]map[string]any{
			"icmp": {"description": "PING backbone"},
		},
	}
	h.ApplyDefaults()

	if len(h.Checks) != 1 {
		t.Fatalf("expected 1 check, got %d", len(h.Checks))
	}
	if h.Checks["icmp"]["description"] != "PING backbone" {
		t.Error("expected configured check to be preserved")
	}
}

func TestApplyDefaults_DoesNotMutateDefault(t *testing.T) {
	h1 := Host{Name: "h1"}
	h1.ApplyDefaults()
	h1.Checks["icmp"]["min_pings"] = 2

	h2 := Host{Name: "h2"}
	h2.ApplyDefaults()

	if _, ok := h2.Checks["icmp"]["min_pings"]; ok {
		t.Error("mutating one host's defaults should not affect another")
	}
}

func TestEnabledChecks_OneDisabled(t *testing.T) {
	h := Host{
		Checks: map[string]map[string]any{
			"icmp":   {"enabled": false},
			"icmp_b": {"description": "PING b"},
		},
	}

	enabled := h.EnabledChecks()
	if len(enabled) != 1 {
		t.Errorf("expected 1 enabled check, got %d", len(enabled))
	}
	if _, ok := enabled["icmp"]; ok {
		t.Error("expected icmp to be disabled")
	}
}

func TestEnabledChecks_StripsEnabledKey(t *testing.T) {
	h := Host{
		Checks: map[string]map[string]any{
			"icmp": {"enabled": true, "description": "PING"},
		},
	}

	enabled := h.EnabledChecks()
	if _, ok := enabled["icmp"]["enabled"]; ok {
		t.Error("expected enabled key to be stripped")
	}
	if _, ok := h.Checks["icmp"]["enabled"]; !ok {
		t.Error("original config must not be modified")
	}
}

func TestEnabledChecks_NilConfig(t *testing.T) {
	h := Host{Checks: map[string]map[string]any{"icmp": nil}}

	enabled := h.EnabledChecks()
	if enabled["icmp"] == nil {
		t.Error("expected empty non-nil config map")
	}
}

func TestJSON_WithAddresses(t *testing.T) {
	input := `{
		"address": "10.0.0.1",
		"alias": "core.example.net",
		"ipv4_addresses": ["10.0.0.2", "10.0.0.3"],
		"ipv6_addresses": ["2001:db8::1"],
		"checks": {"icmp": {"multiple_services": true}}
	}`

	var h Host
	if err := json.Unmarshal([]byte(input), &h); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if h.Address != "10.0.0.1" {
		t.Errorf("expected address 10.0.0.1, got %q", h.Address)
	}
	if len(h.IPv4Addresses) != 2 || len(h.IPv6Addresses) != 1 {
		t.Errorf("unexpected additional addresses: %v %v", h.IPv4Addresses, h.IPv6Addresses)
	}
	if h.Checks["icmp"]["multiple_services"] != true {
		t.Errorf("expected multiple_services true, got %v", h.Checks["icmp"]["multiple_services"])
	}
}

func TestYAML_WithAddresses(t *testing.T) {
	input := `
address: 10.0.0.1
alias: core.example.net
ipv4_addresses: [10.0.0.2]
checks:
  icmp:
    min_pings: 1
`

	var h Host
	if err := yaml.Unmarshal([]byte(input), &h); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if h.Alias != "core.example.net" {
		t.Errorf("expected alias, got %q", h.Alias)
	}
	if h.Checks["icmp"]["min_pings"] != 1 {
		t.Errorf("expected min_pings 1, got %v", h.Checks["icmp"]["min_pings"])
	}
}

func TestInventory_CopiesSlices(t *testing.T) {
	h := Host{Name: "h", IPv4Addresses: []string{"10.0.0.2"}}
	inv := h.Inventory()
	inv.IPv4[0] = "changed"

	if h.IPv4Addresses[0] != "10.0.0.2" {
		t.Error("inventory must not alias the host's address slices")
	}
}
