package server

import (
	"time"

	"github.com/kylerisse/icmpqual/pkg/check"
)

// HostStatus is the aggregate status of a host across all its services.
// The string values are stable API output.
type HostStatus string

const (
	// HostStatusUnconfigured means the host has no services and no
	// configuration errors.
	HostStatusUnconfigured HostStatus = "unconfigured"
	// HostStatusPending means no service has produced a result yet.
	HostStatusPending HostStatus = "pending"
	// HostStatusOK means every service is OK with a fresh result.
	HostStatusOK HostStatus = "ok"
	// HostStatusWarn means the worst service state is WARN.
	HostStatusWarn HostStatus = "warn"
	// HostStatusCrit means at least one service is CRIT.
	HostStatusCrit HostStatus = "crit"
	// HostStatusUnknown means the worst service state is UNKNOWN, results
	// are stale, or part of the host's configuration was rejected.
	HostStatusUnknown HostStatus = "unknown"
)

// stalenessFactor is how many intervals a result may age before it is
// treated as UNKNOWN.
const stalenessFactor = 5

// computeHostStatus determines the aggregate status of a host from its
// service snapshots. Services that have not run yet are ignored unless no
// service has run. A result whose last update is at or before now-window
// counts as UNKNOWN. A host with configuration errors is at least UNKNOWN.
func computeHostStatus(snapshots map[string]check.StatusSnapshot, configErrors bool, now time.Time, window time.Duration) HostStatus {
	if len(snapshots) == 0 {
		if configErrors {
			return HostStatusUnknown
		}
		return HostStatusUnconfigured
	}

	cutoff := now.Add(-window).Unix()
	states := make([]check.State, 0, len(snapshots)+1)
	if configErrors {
		states = append(states, check.StateUnknown)
	}
	for _, snap := range snapshots {
		if snap.LastUpdate == 0 {
			continue
		}
		if snap.LastUpdate <= cutoff {
			states = append(states, check.StateUnknown)
			continue
		}
		states = append(states, snap.State)
	}
	if len(states) == 0 {
		return HostStatusPending
	}

	switch check.Worst(states...) {
	case check.StateOK:
		return HostStatusOK
	case check.StateWarn:
		return HostStatusWarn
	case check.StateCrit:
		return HostStatusCrit
	default:
		return HostStatusUnknown
	}
}
