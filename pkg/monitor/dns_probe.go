package monitor

import (
	"context"
	"fmt"
	"net"
	"time"

	"fleetcheck/pkg/target"
)

// ResolverResult is what one nameserver answered for a site.
type ResolverResult struct {
	Server string
	OK     bool
	IPv4   string
	IPv6   string
}

// LookupFunc resolves host against nameserver. network is "ip4" or "ip6".
type LookupFunc func(ctx context.Context, nameserver, network, host string) ([]net.IP, error)

// DNSProbe resolves each site against a primary and an optional secondary
// resolver and reports both answers.
type DNSProbe struct {
	Primary   string
	Secondary string
	Timeout   time.Duration
	Lookup    LookupFunc
}

func (p *DNSProbe) Name() string {
	return MonitorTypeDNS
}

// Check marks the site Up when any resolver answered. The displayed
// addresses come from the primary, falling back to the secondary only
// when the primary has none.
func (p *DNSProbe) Check(ctx context.Context, t target.Target) Outcome {
	start := time.Now()
	primary := p.query(ctx, p.Primary, t.Address)
	results := []ResolverResult{primary}
	var latency *float64
	if primary.OK {
		latency = Millis(time.Since(start))
	}
	if p.Secondary != "" {
		results = append(results, p.query(ctx, p.Secondary, t.Address))
	}

	status := StatusDown
	for _, r := range results {
		if r.OK {
			status = StatusUp
			break
		}
	}

	ipv4, ipv6 := primary.IPv4, primary.IPv6
	if len(results) > 1 {
		if ipv4 == "" {
			ipv4 = results[1].IPv4
		}
		if ipv6 == "" {
			ipv6 = results[1].IPv6
		}
	}

	return Outcome{
		TargetID:      t.ID,
		Status:        status,
		LatencyMillis: latency,
		RawInfo:       fmt.Sprintf("%s %s", dash(ipv4), dash(ipv6)),
		CheckedAt:     start,
		Resolvers:     results,
	}
}

func (p *DNSProbe) query(ctx context.Context, server, host string) ResolverResult {
	res := ResolverResult{Server: server}
	nameserver := server
	if _, _, err := net.SplitHostPort(server); err != nil {
		nameserver = net.JoinHostPort(server, "53")
	}

	lookup := p.Lookup
	if lookup == nil {
		lookup = p.defaultLookup
	}

	for _, network := range []string{"ip4", "ip6"} {
		qctx := ctx
		var cancel context.CancelFunc = func() {}
		if p.Timeout > 0 {
			qctx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		ips, err := lookup(qctx, nameserver, network, host)
		cancel()
		if err != nil || len(ips) == 0 {
			continue
		}
		if network == "ip4" {
			res.IPv4 = ips[0].String()
		} else {
			res.IPv6 = ips[0].String()
		}
	}
	res.OK = res.IPv4 != "" || res.IPv6 != ""
	return res
}

func (p *DNSProbe) defaultLookup(ctx context.Context, nameserver, network, host string) ([]net.IP, error) {
	r := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
			d := net.Dialer{Timeout: p.Timeout}
			return d.DialContext(ctx, "udp", nameserver)
		},
	}
	return r.LookupIP(ctx, network, host)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
