package main

import (
	"fmt"

	"fleetcheck/pkg/checker"
	"fleetcheck/pkg/config"
	"fleetcheck/pkg/target"
	"fleetcheck/pkg/ui"

	"github.com/spf13/cobra"
)

func serversCmd(a *app) *cobra.Command {
	var local, remote, quiet bool
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Ping every configured server and log the results to history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			reg, err := target.NewRegistry(a.cfg.ServerEntries())
			if err != nil {
				return err
			}
			hist, err := a.openHistory()
			if err != nil {
				return err
			}

			var groups []string
			if local != remote {
				if local {
					groups = []string{config.GroupLocal}
				} else {
					groups = []string{config.GroupRemote}
				}
			}

			s := &checker.Servers{Registry: reg, Settings: a.settings, History: hist, Logger: a.logger}
			rep, err := s.Run(cmd.Context(), groups...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, ui.Report(rep, quiet))
			_, _ = fmt.Fprintln(out, ui.Stats(rep.Summary))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&local, "local", "l", false, "Only check servers in the local group")
	cmd.Flags().BoolVarP(&remote, "remote", "r", false, "Only check servers in the remote group")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only show servers that are not up")
	return cmd
}
