package probe

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"

	"github.com/kylerisse/icmpqual/pkg/host"
)

const (
	// DefaultResolvConf is where the system resolver configuration is read from.
	DefaultResolvConf = "/etc/resolv.conf"

	// DefaultDNSTimeout is the default per-query timeout.
	DefaultDNSTimeout = 2 * time.Second
)

// Resolver turns host names into addresses by querying DNS servers
// directly. IP literals are returned unchanged.
type Resolver struct {
	servers []string // host:port
	client  *dns.Client
}

// NewResolver creates a Resolver querying servers in order.
func NewResolver(servers []string, timeout time.Duration) (*Resolver, error) {
	if len(servers) == 0 {
		return nil, fmt.Errorf("resolver: at least one server is required")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("resolver: timeout must be positive, got %v", timeout)
	}
	return &Resolver{
		servers: append([]string(nil), servers...),
		client:  &dns.Client{Timeout: timeout},
	}, nil
}

// NewSystemResolver creates a Resolver from a resolv.conf style file.
func NewSystemResolver(path string, timeout time.Duration) (*Resolver, error) {
	conf, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("resolver: read %s: %w", path, err)
	}
	servers := make([]string, 0, len(conf.Servers))
	for _, s := range conf.Servers {
		servers = append(servers, net.JoinHostPort(s, conf.Port))
	}
	return NewResolver(servers, timeout)
}

// Lookup returns the first address of name in the requested family.
// FamilyAny tries A before AAAA.
func (r *Resolver) Lookup(ctx context.Context, name string, family host.Family) (string, error) {
	if ip, err := netip.ParseAddr(name); err == nil {
		return ip.String(), nil
	}

	var qtypes []uint16
	switch family {
	case host.FamilyIPv4:
		qtypes = []uint16{dns.TypeA}
	case host.FamilyIPv6:
		qtypes = []uint16{dns.TypeAAAA}
	default:
		qtypes = []uint16{dns.TypeA, dns.TypeAAAA}
	}

	var lastErr error
	for _, qtype := range qtypes {
		addr, err := r.query(ctx, name, qtype)
		if err == nil {
			return addr, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// query asks each server in turn until one returns a usable answer.
func (r *Resolver) query(ctx context.Context, name string, qtype uint16) (string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range r.servers {
		resp, _, err := r.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = fmt.Errorf("resolve %s %s via %s: %w", dns.TypeToString[qtype], name, server, err)
			continue
		}
		if resp.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("resolve %s %s via %s: rcode %s", dns.TypeToString[qtype], name, server, dns.RcodeToString[resp.Rcode])
			continue
		}
		for _, rr := range resp.Answer {
			switch a := rr.(type) {
			case *dns.A:
				if qtype == dns.TypeA {
					return a.A.String(), nil
				}
			case *dns.AAAA:
				if qtype == dns.TypeAAAA {
					return a.AAAA.String(), nil
				}
			}
		}
		lastErr = fmt.Errorf("resolve %s %s via %s: no answer", dns.TypeToString[qtype], name, server)
	}
	return "", lastErr
}
