// Package checker wires registry, batcher, engine, aggregator and history
// together for each kind of check.
package checker

import (
	"context"
	"time"

	"fleetcheck/pkg/config"
	"fleetcheck/pkg/engine"
	"fleetcheck/pkg/history"
	"fleetcheck/pkg/monitor"
	"fleetcheck/pkg/report"
	"fleetcheck/pkg/store"
	"fleetcheck/pkg/target"

	"go.uber.org/zap"
)

// Servers checks host reachability and appends every result to history.
type Servers struct {
	Registry *target.Registry
	Settings config.Settings
	History  history.Store // nil disables history
	Logger   *zap.Logger

	// Probe replaces the configured ping method when set.
	Probe monitor.Probe
	Now   func() time.Time
}

// Run probes the targets of the given groups (all of them when none is
// given) and returns the report in declaration order.
func (s *Servers) Run(ctx context.Context, groups ...string) (report.Report, error) {
	logger := nopIfNil(s.Logger)
	inner, err := s.inner()
	if err != nil {
		return report.Report{}, err
	}
	probe := &monitor.RetryProbe{
		Inner:    inner,
		Attempts: s.Settings.Retries,
		Backoff:  s.Settings.Backoff,
		Timeout:  s.Settings.Timeout,
	}

	targets := s.Registry.Filter(groups...)
	results := store.New()
	defer results.Reset()

	if err := engine.New(s.Settings.Concurrency, logger).RunTargets(ctx, probe, targets, results); err != nil {
		logger.Error("reachability run incomplete", zap.Error(err))
	}
	rep := report.Build(targets, results)

	if s.History != nil {
		if err := history.LogRun(ctx, s.History, rep, s.now()); err != nil {
			logger.Warn("history append failed", zap.Error(err))
		}
	}
	return rep, nil
}

func (s *Servers) inner() (monitor.Probe, error) {
	if s.Probe != nil {
		return s.Probe, nil
	}
	p, err := monitor.GetProbe(s.Settings.PingMethod)
	if err != nil {
		return nil, err
	}
	switch p := p.(type) {
	case *monitor.PingProbe:
		p.Timeout = s.Settings.Timeout
	case *monitor.ICMPProbe:
		p.Timeout = s.Settings.Timeout
	}
	return p, nil
}

func (s *Servers) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// History looks a target up by name and computes its uptime windows.
func History(ctx context.Context, reg *target.Registry, s history.Store, name string, now time.Time) (target.Target, []history.Window, error) {
	t, err := reg.Lookup(name)
	if err != nil {
		return target.Target{}, nil, err
	}
	records, err := s.Records(ctx, t)
	if err != nil {
		return t, nil, err
	}
	return t, history.Uptime(records, now, history.DefaultWindows), nil
}

func nopIfNil(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
