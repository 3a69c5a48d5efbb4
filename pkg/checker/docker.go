package checker

import (
	"context"
	"sync"

	"fleetcheck/pkg/config"
	"fleetcheck/pkg/engine"
	"fleetcheck/pkg/monitor"
	"fleetcheck/pkg/remote"
	"fleetcheck/pkg/report"
	"fleetcheck/pkg/store"
	"fleetcheck/pkg/target"

	"go.uber.org/zap"
)

// Docker checks containers with one listing per host and can restart the
// ones that are down. Close releases the host connections.
type Docker struct {
	Registry  *target.Registry
	Settings  config.Settings
	Executors *remote.Registry
	Logger    *zap.Logger

	// UseAPI lists containers on loopback hosts through the Docker Engine
	// API instead of the docker CLI.
	UseAPI    bool
	NewAPI    func() (*monitor.APILister, error)
	apiOnce   sync.Once
	api       *monitor.APILister
	apiErr    error
	probeOnce sync.Once
	probe     *monitor.DockerProbe
}

func (d *Docker) Run(ctx context.Context) (report.Report, error) {
	logger := nopIfNil(d.Logger)
	targets := d.Registry.Targets()
	results := store.New()
	defer results.Reset()

	batches := target.GroupByHost(targets)
	if err := engine.New(d.Settings.Concurrency, logger).RunBatches(ctx, d.dockerProbe(), batches, results); err != nil {
		logger.Error("docker run incomplete", zap.Error(err))
	}
	return report.Build(targets, results), nil
}

// RestartDown restarts every container in rep that is not up.
func (d *Docker) RestartDown(ctx context.Context, rep report.Report) []report.RestartResult {
	return report.RestartDown(ctx, d.dockerProbe(), rep, d.Logger)
}

// RestartOne restarts a single container by name without probing.
func (d *Docker) RestartOne(ctx context.Context, name string) (report.RestartResult, error) {
	return report.RestartOne(ctx, d.dockerProbe(), d.Registry, name)
}

func (d *Docker) Close() error {
	if d.Executors != nil {
		d.Executors.CloseAll()
	}
	if d.api != nil {
		return d.api.Close()
	}
	return nil
}

func (d *Docker) dockerProbe() *monitor.DockerProbe {
	d.probeOnce.Do(func() {
		if d.Executors == nil {
			d.Executors = remote.NewRegistry(nil)
		}
		d.probe = &monitor.DockerProbe{
			ListerFor: d.listerFor,
			Timeout:   d.Settings.DockerTimeout,
			Logger:    d.Logger,
		}
	})
	return d.probe
}

func (d *Docker) listerFor(host string) monitor.ContainerLister {
	if d.UseAPI && remote.IsLocal(host) {
		d.apiOnce.Do(func() {
			newAPI := d.NewAPI
			if newAPI == nil {
				newAPI = monitor.NewAPILister
			}
			d.api, d.apiErr = newAPI()
		})
		if d.apiErr != nil {
			return failingLister{err: d.apiErr}
		}
		return d.api
	}
	return &monitor.CommandLister{Exec: d.Executors.ForHost(host), Logger: d.Logger}
}

type failingLister struct{ err error }

func (f failingLister) ListContainers(ctx context.Context) ([]monitor.Container, error) {
	return nil, f.err
}

func (f failingLister) RestartContainer(ctx context.Context, name string) error {
	return f.err
}
