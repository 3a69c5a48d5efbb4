package main

import (
	"fleetcheck/pkg/config"
	"fleetcheck/pkg/history"
	"fleetcheck/pkg/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand needs once the config is loaded.
type app struct {
	configPath  string
	debug       bool
	concurrency int

	cfg      *config.Config
	settings config.Settings
	logger   *zap.Logger
	history  history.Store
}

func (a *app) load(cmd *cobra.Command) error {
	path, err := config.Find(a.configPath)
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.settings = cfg.Settings()
	if cmd.Flags().Changed("concurrency") {
		a.settings.Concurrency = a.concurrency
	}

	level := cfg.Logging.Level
	if a.debug {
		level = "debug"
	}
	a.logger, err = logging.NewLogger(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		File:   cfg.ResolvePath(cfg.Logging.File),
	})
	if err != nil {
		return err
	}
	a.logger.Debug("config loaded", zap.String("path", path))
	return nil
}

func (a *app) openHistory() (history.Store, error) {
	if a.history != nil {
		return a.history, nil
	}
	s, err := history.Open(a.cfg.History.Backend, a.cfg.ResolvePath(a.cfg.History.Dir), a.cfg.ResolvePath(a.cfg.History.Path), a.logger)
	if err != nil {
		return nil, err
	}
	a.history = s
	return s, nil
}

func (a *app) close() {
	if a.history != nil {
		_ = a.history.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
