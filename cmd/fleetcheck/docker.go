package main

import (
	"fmt"

	"fleetcheck/pkg/checker"
	"fleetcheck/pkg/remote"
	"fleetcheck/pkg/report"
	"fleetcheck/pkg/target"
	"fleetcheck/pkg/ui"

	"github.com/spf13/cobra"
)

func dockerCmd(a *app) *cobra.Command {
	var quiet, restart bool
	var restartOne string
	cmd := &cobra.Command{
		Use:   "docker",
		Short: "Check container status on every configured host",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			reg, err := target.NewRegistry(a.cfg.DockerEntries())
			if err != nil {
				return err
			}
			d := &checker.Docker{
				Registry:  reg,
				Settings:  a.settings,
				Executors: remote.NewRegistry(remote.SSHFactory(a.cfg.SSH)),
				UseAPI:    a.cfg.Docker.API,
				Logger:    a.logger,
			}
			defer func() { _ = d.Close() }()

			out := cmd.OutOrStdout()
			if restartOne != "" {
				res, err := d.RestartOne(cmd.Context(), restartOne)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, ui.Restarts([]report.RestartResult{res}))
				if res.Err != nil {
					return fmt.Errorf("restart %s: %w", res.Target.DisplayName, res.Err)
				}
				return nil
			}

			rep, err := d.Run(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, ui.Report(rep, quiet))
			_, _ = fmt.Fprintln(out, ui.Stats(rep.Summary))
			if restart {
				if results := d.RestartDown(cmd.Context(), rep); len(results) > 0 {
					_, _ = fmt.Fprintln(out, ui.Restarts(results))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only show containers that are not up")
	cmd.Flags().BoolVar(&restart, "restart", false, "Restart every container that is not up")
	cmd.Flags().StringVar(&restartOne, "restart-one", "", "Restart a single container by name without checking")
	return cmd
}
