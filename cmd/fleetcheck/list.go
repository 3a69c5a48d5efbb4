package main

import (
	"fmt"

	"fleetcheck/pkg/target"
	"fleetcheck/pkg/ui"

	"github.com/spf13/cobra"
)

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured targets without checking them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			var entries []target.Entry
			entries = append(entries, a.cfg.ServerEntries()...)
			entries = append(entries, a.cfg.DockerEntries()...)
			entries = append(entries, a.cfg.DNSEntries()...)
			reg, err := target.NewRegistry(entries)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), ui.List(reg.Targets()))
			return nil
		},
	}
}
