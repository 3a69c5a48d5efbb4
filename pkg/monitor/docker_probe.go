package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleetcheck/pkg/target"

	"go.uber.org/zap"
)

// ErrParse marks a batch response line that could not be read.
var ErrParse = errors.New("malformed status line")

// Container is one entry of a host's container listing.
type Container struct {
	Name   string
	Status string
}

// ContainerLister lists every container on one host in a single call.
type ContainerLister interface {
	ListContainers(ctx context.Context) ([]Container, error)
	RestartContainer(ctx context.Context, name string) error
}

// DockerProbe resolves the status of all containers on a host with one
// listing per host.
type DockerProbe struct {
	// ListerFor picks the lister for a host. It is called once per batch.
	ListerFor func(host string) ContainerLister
	Timeout   time.Duration
	Logger    *zap.Logger
}

func (p *DockerProbe) Name() string {
	return MonitorTypeDocker
}

func (p *DockerProbe) CheckBatch(ctx context.Context, b target.HostBatch) []Outcome {
	start := time.Now()
	outcomes := make([]Outcome, 0, len(b.Members))

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	containers, err := p.ListerFor(b.Address).ListContainers(ctx)
	if err != nil {
		p.logger().Warn("container listing failed", zap.String("host", b.Address), zap.Error(err))
		for _, m := range b.Members {
			outcomes = append(outcomes, Outcome{
				TargetID:  m.ID,
				Status:    StatusError,
				RawInfo:   err.Error(),
				CheckedAt: start,
			})
		}
		return outcomes
	}

	byName := make(map[string]string, len(containers))
	for _, c := range containers {
		byName[c.Name] = c.Status
	}

	for _, m := range b.Members {
		status, ok := byName[m.Name]
		if !ok {
			outcomes = append(outcomes, Outcome{TargetID: m.ID, Status: StatusNotFound, RawInfo: "Not Found", CheckedAt: start})
			continue
		}
		outcomes = append(outcomes, Outcome{
			TargetID:  m.ID,
			Status:    ClassifyContainer(status),
			RawInfo:   status,
			CheckedAt: start,
		})
	}
	return outcomes
}

// Restart restarts the container behind t on its own host.
func (p *DockerProbe) Restart(ctx context.Context, t target.Target) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	if err := p.ListerFor(t.Address).RestartContainer(ctx, t.Name); err != nil {
		return fmt.Errorf("restart %s on %s: %w", t.Name, t.Address, err)
	}
	return nil
}

func (p *DockerProbe) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// ClassifyContainer maps docker's human status ("Up 2 minutes",
// "Exited (1) 3 hours ago") to a Status.
func ClassifyContainer(status string) Status {
	if strings.HasPrefix(strings.TrimSpace(status), "Up") {
		return StatusUp
	}
	return StatusDown
}

// ParseContainerLine splits a "name|||status" line.
func ParseContainerLine(line string) (name, status string, err error) {
	name, status, ok := strings.Cut(line, "|||")
	name, status = strings.TrimSpace(name), strings.TrimSpace(status)
	if !ok || name == "" || status == "" {
		return "", "", fmt.Errorf("%w: %q", ErrParse, line)
	}
	return name, status, nil
}
