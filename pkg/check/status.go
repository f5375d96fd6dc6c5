package check

import (
	"maps"
	"sync"
)

// Status tracks the latest result of a check execution.
// It is safe for concurrent reads via the exported accessor methods,
// but writes should be done through SetResult.
type Status struct {
	mu         sync.RWMutex
	lastResult Result
	lastUpdate int64
	hasResult  bool
}

// NewStatus creates a Status with no result yet (UNKNOWN, no metrics).
func NewStatus() *Status {
	return &Status{}
}

// State returns the state of the last result, or StateUnknown if the
// check has not run yet.
func (s *Status) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasResult {
		return StateUnknown
	}
	return s.lastResult.State
}

// Metric returns the value of a named metric from the last result.
func (s *Status) Metric(key string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.lastResult.Metrics[key]
	return v, ok
}

// LastUpdate returns the unix timestamp of the last stored result.
func (s *Status) LastUpdate() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// SetResult stores the latest check result and records its timestamp.
func (s *Status) SetResult(result Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResult = result
	s.hasResult = true
	if !result.Timestamp.IsZero() {
		s.lastUpdate = result.Timestamp.Unix()
	}
}

// Snapshot returns a point-in-time copy of the status fields.
// This is useful for building API responses without holding the lock.
func (s *Status) Snapshot() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.lastResult.State
	if !s.hasResult {
		state = StateUnknown
	}

	return StatusSnapshot{
		State:      state,
		Summary:    s.lastResult.Summary,
		Metrics:    maps.Clone(s.lastResult.Metrics),
		LastUpdate: s.lastUpdate,
	}
}

// StatusSnapshot is a point-in-time copy of Status fields.
type StatusSnapshot struct {
	State      State
	Summary    string
	Metrics    map[string]float64
	LastUpdate int64
}
