package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/kylerisse/icmpqual/pkg/check"
	"github.com/kylerisse/icmpqual/pkg/host"
)

// Config holds the daemon settings. The env tags are read by cleanenv.
type Config struct {
	HostFile   string        `env:"ICMPQUAL_HOSTS" env-default:"hosts.yaml"`
	ListenPort string        `env:"ICMPQUAL_LISTEN_PORT" env-default:"1982"`
	Interval   time.Duration `env:"ICMPQUAL_INTERVAL" env-default:"1m"`
	RateLimit  float64       `env:"ICMPQUAL_RATE_LIMIT" env-default:"20"`
	RateBurst  int           `env:"ICMPQUAL_RATE_BURST" env-default:"50"`
}

// Server runs every configured service on a schedule and serves the
// latest results over HTTP.
type Server struct {
	hosts      map[string]*host.Host
	checks     map[string][]check.Check            // host -> services
	statuses   map[string]map[string]*check.Status // host -> service -> status
	hostErrors map[string][]string                 // host -> configuration errors
	statusMu   sync.RWMutex

	interval   time.Duration
	listenPort string
	limiter    *rate.Limiter
	logger     *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer loads the host file and builds every host's services through
// registry. Configuration errors of individual hosts are logged and kept
// for the API; they do not prevent the server from starting.
func NewServer(cfg Config, registry *check.Registry, logger *logrus.Logger) (*Server, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}

	hosts, err := host.LoadFile(cfg.HostFile)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		hosts:      hosts,
		checks:     make(map[string][]check.Check),
		statuses:   make(map[string]map[string]*check.Status),
		hostErrors: make(map[string][]string),
		interval:   cfg.Interval,
		listenPort: cfg.ListenPort,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
	s.buildChecks(registry)
	return s, nil
}

// Start begins a worker for each service and starts the API server.
func (s *Server) Start() {
	s.logger.Info("Starting workers for each service...")

	s.startAPI()

	for _, name := range s.hostNames() {
		for _, chk := range s.checks[name] {
			s.wg.Add(1)
			go s.worker(name, chk)
		}
	}
}

// Stop gracefully shuts down all workers.
func (s *Server) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Info("All workers stopped.")
}

// Checks returns the services built for hostName.
func (s *Server) Checks(hostName string) []check.Check {
	return s.checks[hostName]
}

// HostErrors returns the configuration errors recorded for hostName.
func (s *Server) HostErrors(hostName string) []string {
	return s.hostErrors[hostName]
}

// buildChecks creates the rules and services of every host.
func (s *Server) buildChecks(registry *check.Registry) {
	for _, name := range s.hostNames() {
		h := s.hosts[name]
		h.ApplyDefaults()

		ruleNames := make([]string, 0, len(h.Checks))
		enabled := h.EnabledChecks()
		for ruleName := range enabled {
			ruleNames = append(ruleNames, ruleName)
		}
		sort.Strings(ruleNames)

		for _, ruleName := range ruleNames {
			rule, err := registry.Create(ruleName, enabled[ruleName])
			if err != nil {
				s.recordError(name, fmt.Errorf("rule %s: %w", ruleName, err))
				continue
			}

			checks, err := rule.Checks(h.Inventory())
			if err != nil {
				s.recordError(name, fmt.Errorf("rule %s: %w", ruleName, err))
				continue
			}
			if len(checks) == 0 {
				s.logger.Warnf("Host %s: rule %s resolved to no services", name, ruleName)
			}

			for _, chk := range checks {
				if s.hasStatus(name, chk.Name()) {
					s.recordError(name, fmt.Errorf("rule %s: duplicate service name %q", ruleName, chk.Name()))
					continue
				}
				s.getOrCreateStatus(name, chk.Name())
				s.checks[name] = append(s.checks[name], chk)
				s.logger.Debugf("Host %s: service %q probing %v", name, chk.Name(), chk.Targets())
			}
		}
	}
}

// recordError logs a host configuration error and keeps it for the API.
// Joined errors are recorded one line per error.
func (s *Server) recordError(hostName string, err error) {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			s.recordError(hostName, e)
		}
		return
	}
	s.logger.Errorf("Host %s: %v", hostName, err)
	s.hostErrors[hostName] = append(s.hostErrors[hostName], err.Error())
}

// getOrCreateStatus returns the status for a host's service, creating it
// if needed.
func (s *Server) getOrCreateStatus(hostName, service string) *check.Status {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	if s.statuses[hostName] == nil {
		s.statuses[hostName] = make(map[string]*check.Status)
	}
	if st, ok := s.statuses[hostName][service]; ok {
		return st
	}
	st := check.NewStatus()
	s.statuses[hostName][service] = st
	return st
}

func (s *Server) hasStatus(hostName, service string) bool {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	_, ok := s.statuses[hostName][service]
	return ok
}

// hostStatuses returns snapshots of every service status of a host.
func (s *Server) hostStatuses(hostName string) map[string]check.StatusSnapshot {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()

	snaps := make(map[string]check.StatusSnapshot, len(s.statuses[hostName]))
	for service, st := range s.statuses[hostName] {
		snaps[service] = st.Snapshot()
	}
	return snaps
}

// hostNames returns the configured host names in sorted order.
func (s *Server) hostNames() []string {
	names := make([]string, 0, len(s.hosts))
	for name := range s.hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
