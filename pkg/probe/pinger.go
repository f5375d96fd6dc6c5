// Package probe sends ICMP echo requests and summarizes the replies into
// samples for the icmp check.
//
// It uses go-ping for the echo exchange and resolves host names with
// miekg/dns so that the requested IP family is honoured.
package probe

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/go-ping/ping"
	"github.com/sirupsen/logrus"

	"github.com/kylerisse/icmpqual/pkg/check/icmp"
	"github.com/kylerisse/icmpqual/pkg/host"
)

// DefaultInterval is the default wait between echo requests.
const DefaultInterval = 200 * time.Millisecond

// Lookuper resolves a target name to an address of the given family.
type Lookuper interface {
	Lookup(ctx context.Context, name string, family host.Family) (string, error)
}

// Pinger implements icmp.Prober.
type Pinger struct {
	lookup     Lookuper
	interval   time.Duration
	privileged bool
	logger     *logrus.Logger
}

// Option is a functional option for configuring a Pinger.
type Option func(*Pinger) error

// WithInterval sets the wait between echo requests.
func WithInterval(d time.Duration) Option {
	return func(p *Pinger) error {
		if d <= 0 {
			return fmt.Errorf("interval must be positive, got %v", d)
		}
		p.interval = d
		return nil
	}
}

// WithPrivileged selects raw ICMP sockets instead of unprivileged UDP ones.
func WithPrivileged(b bool) Option {
	return func(p *Pinger) error {
		p.privileged = b
		return nil
	}
}

// WithLookup sets the name resolver used for non-literal targets.
func WithLookup(l Lookuper) Option {
	return func(p *Pinger) error {
		if l == nil {
			return fmt.Errorf("lookup must not be nil")
		}
		p.lookup = l
		return nil
	}
}

// NewPinger creates a Pinger. Without WithLookup only IP literals can be
// probed.
func NewPinger(logger *logrus.Logger, opts ...Option) (*Pinger, error) {
	if logger == nil {
		return nil, fmt.Errorf("probe: logger must not be nil")
	}
	p := &Pinger{
		interval: DefaultInterval,
		logger:   logger,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("probe: %w", err)
		}
	}
	return p, nil
}

// Probe pings target and summarizes the replies. Failures are reported
// through the returned Sample, never as a panic or error return.
func (p *Pinger) Probe(ctx context.Context, target string, opts icmp.ProbeOptions) icmp.Sample {
	addr, err := p.resolve(ctx, target, opts.Family)
	if err != nil {
		p.logger.Debugf("Probe %s: %v", target, err)
		return icmp.Sample{Target: target, Err: err}
	}

	pinger, err := ping.NewPinger(addr)
	if err != nil {
		return icmp.Sample{Target: target, Err: fmt.Errorf("ping %s: %w", target, err)}
	}
	pinger.Count = opts.Packets
	pinger.Timeout = opts.Timeout
	pinger.Interval = p.interval
	pinger.SetPrivileged(p.privileged)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pinger.Stop()
		case <-done:
		}
	}()

	if err := pinger.Run(); err != nil {
		p.logger.Debugf("Probe %s (%s): %v", target, addr, err)
		return icmp.Sample{Target: target, Err: fmt.Errorf("ping %s: %w", target, err)}
	}

	stats := pinger.Statistics()
	p.logger.Debugf("Probe %s (%s): %d/%d replies, avg %v", target, addr, stats.PacketsRecv, stats.PacketsSent, stats.AvgRtt)

	sent := stats.PacketsSent
	if sent < opts.Packets {
		sent = opts.Packets
	}
	return Summarize(target, sent, stats.Rtts)
}

func (p *Pinger) resolve(ctx context.Context, target string, family host.Family) (string, error) {
	if ip, err := netip.ParseAddr(target); err == nil {
		return ip.String(), nil
	}
	if p.lookup == nil {
		return "", fmt.Errorf("ping %s: no resolver configured for host names", target)
	}
	return p.lookup.Lookup(ctx, target, family)
}
