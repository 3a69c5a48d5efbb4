package main

import (
	"fmt"
	"time"

	"fleetcheck/pkg/checker"
	"fleetcheck/pkg/target"
	"fleetcheck/pkg/ui"

	"github.com/spf13/cobra"
)

func historyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history NAME",
		Short: "Show 24h, 7d and 30d uptime for a server",
		Args:  cobra.ExactArgs(1),
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
			t, windows, err := checker.History(cmd.Context(), reg, hist, args[0], time.Now())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), ui.Uptime(t, windows))
			return nil
		},
	}
}
