package monitor

import (
	"context"
	"fmt"
	"time"

	"fleetcheck/pkg/target"
)

// Status is the liveness verdict for one target in one run.
type Status int

const (
	StatusUp Status = iota
	StatusDown
	StatusNotFound
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUp:
		return "Up"
	case StatusDown:
		return "Down"
	case StatusNotFound:
		return "Not Found"
	case StatusError:
		return "Error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is produced exactly once per target per run.
type Outcome struct {
	TargetID      target.ID
	Status        Status
	LatencyMillis *float64 // nil when no latency could be parsed
	RawInfo       string
	CheckedAt     time.Time

	// Resolvers is only set by the DNS probe.
	Resolvers []ResolverResult
}

func (o Outcome) Up() bool { return o.Status == StatusUp }

// Millis wraps a latency value for Outcome.LatencyMillis.
func Millis(d time.Duration) *float64 {
	ms := float64(d) / float64(time.Millisecond)
	return &ms
}

// Probe checks one target at a time.
type Probe interface {
	Name() string
	Check(ctx context.Context, t target.Target) Outcome
}

// BatchProbe checks every target on one host with a single query and
// returns one outcome per member.
type BatchProbe interface {
	Name() string
	CheckBatch(ctx context.Context, b target.HostBatch) []Outcome
}

// MonitorType defines the supported monitor types
const (
	MonitorTypePing   = "ping"
	MonitorTypeICMP   = "icmp"
	MonitorTypeDocker = "docker"
	MonitorTypeDNS    = "dns"
)

// GetProbe returns a reachability Probe for the configured method.
func GetProbe(method string) (Probe, error) {
	switch method {
	case "", "exec", MonitorTypePing:
		return &PingProbe{}, nil
	case MonitorTypeICMP:
		return &ICMPProbe{}, nil
	default:
		return nil, fmt.Errorf("unknown ping method: %s", method)
	}
}
