package probe

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/miekg/dns"

	"github.com/kylerisse/icmpqual/pkg/host"
)

// startTestServer starts an in-process UDP DNS server on a random port.
// The server is shut down automatically when the test ends.
func startTestServer(t *testing.T, handler func(dns.ResponseWriter, *dns.Msg)) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	srv := &dns.Server{PacketConn: pc, Handler: dns.HandlerFunc(handler)}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })
	return pc.LocalAddr().String()
}

// zoneHandler answers A and AAAA queries from a fixed table.
func zoneHandler(a, aaaa map[string]string) func(dns.ResponseWriter, *dns.Msg) {
	return func(w dns.ResponseWriter, req *dns.Msg) {
		resp := new(dns.Msg)
		resp.SetReply(req)
		q := req.Question[0]
		hdr := dns.RR_Header{Name: q.Name, Class: dns.ClassINET, Ttl: 60}

		switch q.Qtype {
		case dns.TypeA:
			if ip, ok := a[q.Name]; ok {
				hdr.Rrtype = dns.TypeA
				resp.Answer = append(resp.Answer, &dns.A{Hdr: hdr, A: net.ParseIP(ip)})
			}
		case dns.TypeAAAA:
			if ip, ok := aaaa[q.Name]; ok {
				hdr.Rrtype = dns.TypeAAAA
				resp.Answer = append(resp.Answer, &dns.AAAA{Hdr: hdr, AAAA: net.ParseIP(ip)})
			}
		}
		if len(resp.Answer) == 0 {
			if _, ok := a[q.Name]; !ok {
				if _, ok := aaaa[q.Name]; !ok {
					resp.Rcode = dns.RcodeNameError
				}
			}
		}
		_ = w.WriteMsg(resp)
	}
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	addr := startTestServer(t, zoneHandler(
		map[string]string{"dual.example.net.": "192.0.2.10", "v4.example.net.": "192.0.2.20"},
		map[string]string{"dual.example.net.": "2001:db8::10", "v6.example.net.": "2001:db8::30"},
	))
	r, err := NewResolver([]string{addr}, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

func TestNewResolver_Invalid(t *testing.T) {
	if _, err := NewResolver(nil, time.Second); err == nil {
		t.Error("expected error for no servers")
	}
	if _, err := NewResolver([]string{"127.0.0.1:53"}, 0); err == nil {
		t.Error("expected error for zero timeout")
	}
}

func TestResolver_Lookup(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name   string
		target string
		family host.Family
		want   string
	}{
		{"ipv4 literal", "198.51.100.1", host.FamilyAny, "198.51.100.1"},
		{"ipv6 literal", "2001:db8::1", host.FamilyIPv6, "2001:db8::1"},
		{"any prefers A", "dual.example.net", host.FamilyAny, "192.0.2.10"},
		{"ipv6 family", "dual.example.net", host.FamilyIPv6, "2001:db8::10"},
		{"any falls back to AAAA", "v6.example.net", host.FamilyAny, "2001:db8::30"},
		{"ipv4 family", "v4.example.net", host.FamilyIPv4, "192.0.2.20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Lookup(context.Background(), tt.target, tt.family)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestResolver_LookupFailures(t *testing.T) {
	r := newTestResolver(t)

	if _, err := r.Lookup(context.Background(), "missing.example.net", host.FamilyAny); err == nil {
		t.Error("expected error for NXDOMAIN")
	}
	if _, err := r.Lookup(context.Background(), "v4.example.net", host.FamilyIPv6); err == nil {
		t.Error("expected error when family has no records")
	}
}

func TestResolver_FallsBackToNextServer(t *testing.T) {
	good := startTestServer(t, zoneHandler(map[string]string{"v4.example.net.": "192.0.2.20"}, nil))
	bad := startTestServer(t, func(w dns.ResponseWriter, req *dns.Msg) {
		resp := new(dns.Msg)
		resp.SetRcode(req, dns.RcodeServerFailure)
		_ = w.WriteMsg(resp)
	})

	r, err := NewResolver([]string{bad, good}, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := r.Lookup(context.Background(), "v4.example.net", host.FamilyIPv4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "192.0.2.20" {
		t.Errorf("expected 192.0.2.20, got %s", got)
	}
}

func TestNewSystemResolver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolv.conf")
	if err := os.WriteFile(path, []byte("nameserver 127.0.0.53\nnameserver ::1\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	r, err := NewSystemResolver(path, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.servers) != 2 || r.servers[0] != "127.0.0.53:53" || r.servers[1] != "[::1]:53" {
		t.Errorf("unexpected servers %v", r.servers)
	}

	if _, err := NewSystemResolver(filepath.Join(t.TempDir(), "missing"), time.Second); err == nil {
		t.Error("expected error for missing file")
	}
}
