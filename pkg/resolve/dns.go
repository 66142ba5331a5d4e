package resolve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/miekg/dns"
)

const (
	DefaultDNSTimeout = 3 * time.Second
	defaultDNSPort    = "53"
)

// DefaultResolvers are used by NewDNSResolver when no servers are given.
var DefaultResolvers = []string{"1.1.1.1", "8.8.8.8", "9.9.9.9"}

// DNSResolver sends A queries over UDP, rotating through its servers.
type DNSResolver struct {
	servers []string
	client  *dns.Client
	next    atomic.Uint32
}

// NewDNSResolver creates a UDP resolver. Servers may omit the port.
func NewDNSResolver(servers []string, timeout time.Duration) (*DNSResolver, error) {
	if len(servers) == 0 {
		servers = DefaultResolvers
	}
	if timeout <= 0 {
		timeout = DefaultDNSTimeout
	}

	normalized := make([]string, 0, len(servers))
	for _, s := range servers {
		addr, err := normalizeServer(s)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, addr)
	}

	return &DNSResolver{
		servers: normalized,
		client:  &dns.Client{Net: "udp", Timeout: timeout},
	}, nil
}

func normalizeServer(s string) (string, error) {
	if _, _, err := net.SplitHostPort(s); err == nil {
		return s, nil
	}
	if net.ParseIP(s) == nil {
		return "", fmt.Errorf("invalid resolver address: %q", s)
	}
	return net.JoinHostPort(s, defaultDNSPort), nil
}

// Resolve returns the A records for host. NXDOMAIN yields no addresses and no error.
func (r *DNSResolver) Resolve(ctx context.Context, host string) ([]string, error) {
	server := r.servers[int(r.next.Add(1)-1)%len(r.servers)]

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), dns.TypeA)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return nil, fmt.Errorf("query %s via %s: %w", host, server, err)
	}
	if resp == nil {
		return nil, errors.New("empty dns response")
	}

	switch resp.Rcode {
	case dns.RcodeSuccess, dns.RcodeNameError:
	default:
		return nil, fmt.Errorf("query %s via %s: %s", host, server, dns.RcodeToString[resp.Rcode])
	}

	ips := []string{}
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			ips = append(ips, a.A.String())
		}
	}
	return ips, nil
}
