package checker

import (
	"context"

	"fleetcheck/pkg/config"
	"fleetcheck/pkg/engine"
	"fleetcheck/pkg/monitor"
	"fleetcheck/pkg/report"
	"fleetcheck/pkg/store"
	"fleetcheck/pkg/target"

	"go.uber.org/zap"
)

// DNS compares what the primary and secondary resolvers return per site.
type DNS struct {
	Registry  *target.Registry
	Primary   string
	Secondary string
	Settings  config.Settings
	Logger    *zap.Logger

	// Lookup replaces network resolution when set.
	Lookup monitor.LookupFunc
}

func (d *DNS) Run(ctx context.Context) (report.Report, error) {
	logger := nopIfNil(d.Logger)
	probe := &monitor.DNSProbe{
		Primary:   d.Primary,
		Secondary: d.Secondary,
		Timeout:   d.Settings.DNSTimeout,
		Lookup:    d.Lookup,
	}

	targets := d.Registry.Targets()
	results := store.New()
	defer results.Reset()

	if err := engine.New(d.Settings.Concurrency, logger).RunTargets(ctx, probe, targets, results); err != nil {
		logger.Error("dns run incomplete", zap.Error(err))
	}
	return report.Build(targets, results), nil
}
