package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kylerisse/icmpqual/pkg/check"
)

// ServiceAPIResponse is the API view of one service's latest result.
type ServiceAPIResponse struct {
	Type       string             `json:"type"`
	Targets    []string           `json:"targets"`
	State      check.State        `json:"state"`
	Summary    string             `json:"summary,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	LastUpdate int64              `json:"lastupdate"`
}

// HostAPIResponse is the API view of a host.
type HostAPIResponse struct {
	Address  string                        `json:"address,omitempty"`
	Alias    string                        `json:"alias,omitempty"`
	Status   HostStatus                    `json:"status"`
	Errors   []string                      `json:"errors,omitempty"`
	Services map[string]ServiceAPIResponse `json:"services"`
}

// SummaryAPIResponse counts hosts and services by status.
type SummaryAPIResponse struct {
	Hosts    map[HostStatus]int  `json:"hosts"`
	Services map[check.State]int `json:"services"`
	Total    int                 `json:"total"`
}

func (s *Server) hostResponse(name string, now time.Time) HostAPIResponse {
	h := s.hosts[name]
	snapshots := s.hostStatuses(name)

	resp := HostAPIResponse{
		Address:  h.Address,
		Alias:    h.Alias,
		Status:   computeHostStatus(snapshots, len(s.hostErrors[name]) > 0, now, s.stalenessWindow()),
		Errors:   s.hostErrors[name],
		Services: make(map[string]ServiceAPIResponse, len(snapshots)),
	}

	for _, chk := range s.checks[name] {
		snap, ok := snapshots[chk.Name()]
		if !ok {
			continue
		}
		resp.Services[chk.Name()] = ServiceAPIResponse{
			Type:       chk.Type(),
			Targets:    chk.Targets(),
			State:      snap.State,
			Summary:    snap.Summary,
			Metrics:    snap.Metrics,
			LastUpdate: snap.LastUpdate,
		}
	}
	return resp
}

func (s *Server) stalenessWindow() time.Duration {
	if s.interval <= 0 {
		return stalenessFactor * time.Minute
	}
	return stalenessFactor * s.interval
}

func (s *Server) handleAPI(w http.ResponseWriter, _ *http.Request) {
	now := time.Now()
	hosts := make(map[string]HostAPIResponse, len(s.hosts))
	for name := range s.hosts {
		hosts[name] = s.hostResponse(name, now)
	}
	writeJSON(w, hosts)
}

func (s *Server) handleHostAPI(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("hostname")
	if _, ok := s.hosts[name]; !ok {
		http.Error(w, "host not found", http.StatusNotFound)
		return
	}
	writeJSON(w, s.hostResponse(name, time.Now()))
}

func (s *Server) handleSummaryAPI(w http.ResponseWriter, _ *http.Request) {
	now := time.Now()
	summary := SummaryAPIResponse{
		Hosts:    make(map[HostStatus]int),
		Services: make(map[check.State]int),
	}
	for name := range s.hosts {
		resp := s.hostResponse(name, now)
		summary.Hosts[resp.Status]++
		summary.Total++
		for _, svc := range resp.Services {
			summary.Services[svc.State]++
		}
	}
	writeJSON(w, summary)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
