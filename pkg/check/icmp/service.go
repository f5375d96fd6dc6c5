package icmp

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/kylerisse/icmpqual/pkg/check"
	"github.com/kylerisse/icmpqual/pkg/host"
)

// ProbeOptions are passed to a Prober for every target.
type ProbeOptions struct {
	Packets int
	Timeout time.Duration
	Family  host.Family
}

// Prober sends echo requests to a target and reports what it measured.
// Implementations must be safe for concurrent use.
type Prober interface {
	Probe(ctx context.Context, target string, opts ProbeOptions) Sample
}

// Service is one icmp service instance. It implements check.Check.
type Service struct {
	spec   ServiceSpec
	cfg    Config
	prober Prober
}

// NewService creates a Service for spec.
func NewService(spec ServiceSpec, cfg Config, prober Prober) (*Service, error) {
	if prober == nil {
		return nil, fmt.Errorf("icmp: prober must not be nil")
	}
	return &Service{spec: spec, cfg: cfg, prober: prober}, nil
}

// Name returns the service name.
func (s *Service) Name() string {
	return s.spec.Name
}

// Type returns the check type name.
func (s *Service) Type() string {
	return TypeName
}

// Targets returns the addresses probed by the service.
func (s *Service) Targets() []string {
	return append([]string(nil), s.spec.Targets...)
}

// Spec returns the service spec.
func (s *Service) Spec() ServiceSpec {
	return s.spec
}

// Run probes all targets concurrently and evaluates the samples.
func (s *Service) Run(ctx context.Context) check.Result {
	now := time.Now()

	opts := ProbeOptions{
		Packets: s.cfg.Packets,
		Timeout: s.cfg.Timeout,
		Family:  s.spec.Family,
	}
	samples := iter.Map(s.spec.Targets, func(target *string) Sample {
		sample := s.prober.Probe(ctx, *target, opts)
		sample.Target = *target
		return sample
	})

	result := Evaluate(s.cfg, s.spec, samples)
	result.Timestamp = now
	return result
}

// Rule is a validated icmp configuration. It implements check.Rule.
type Rule struct {
	cfg    Config
	prober Prober
}

// NewRule creates a Rule from a validated Config.
func NewRule(cfg Config, prober Prober) (*Rule, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if prober == nil {
		return nil, fmt.Errorf("icmp: prober must not be nil")
	}
	return &Rule{cfg: cfg, prober: prober}, nil
}

// Type returns the rule type name.
func (r *Rule) Type() string {
	return TypeName
}

// Describe returns the metrics produced by icmp checks.
func (r *Rule) Describe() check.Descriptor {
	return Desc
}

// Config returns the rule's configuration.
func (r *Rule) Config() Config {
	return r.cfg
}

// Checks resolves the rule's address mode against inv and instantiates
// one check per resulting service spec. It never returns an empty list
// without an error.
func (r *Rule) Checks(inv host.Inventory) ([]check.Check, error) {
	targets, err := host.Resolve(inv, r.cfg.Address)
	if err != nil {
		return nil, err
	}

	specs, err := Instantiate(targets, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("host %s: %w", inv.Name, err)
	}
	if len(specs) == 0 {
		// Per-address mode with nothing to probe still reports the host,
		// as a target-less service that evaluates to UNKNOWN.
		specs = []ServiceSpec{{Name: r.cfg.Description, Family: r.cfg.Address.Family()}}
	}

	checks := make([]check.Check, 0, len(specs))
	for _, spec := range specs {
		svc, err := NewService(spec, r.cfg, r.prober)
		if err != nil {
			return nil, err
		}
		checks = append(checks, svc)
	}
	return checks, nil
}

// NewFactory returns a check.Factory that builds icmp rules probing
// through prober.
func NewFactory(prober Prober) check.Factory {
	return func(config map[string]any) (check.Rule, error) {
		cfg, err := ParseConfig(config)
		if err != nil {
			return nil, err
		}
		return NewRule(cfg, prober)
	}
}
