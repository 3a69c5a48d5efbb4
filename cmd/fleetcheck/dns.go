package main

import (
	"fmt"

	"fleetcheck/pkg/checker"
	"fleetcheck/pkg/target"
	"fleetcheck/pkg/ui"

	"github.com/spf13/cobra"
)

func dnsCmd(a *app) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "dns",
		Short: "Resolve every configured site against the primary and secondary resolvers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			reg, err := target.NewRegistry(a.cfg.DNSEntries())
			if err != nil {
				return err
			}
			d := &checker.DNS{
				Registry:  reg,
				Primary:   a.cfg.DNS.Primary,
				Secondary: a.cfg.DNS.Secondary,
				Settings:  a.settings,
				Logger:    a.logger,
			}
			rep, err := d.Run(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, ui.DNS(rep, quiet))
			_, _ = fmt.Fprintln(out, ui.Stats(rep.Summary))
			_, _ = fmt.Fprintln(out, ui.ResolverStats(rep.Resolvers))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only show sites that did not resolve")
	return cmd
}
