package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root, a := newRootCmd()
	err := root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "fleetcheck",
		Short:         "Check host reachability, container status and DNS resolvers",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to configuration file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().IntVar(&a.concurrency, "concurrency", 0, "Maximum probes in flight (overrides config, 0 = unbounded)")

	root.AddCommand(serversCmd(a))
	root.AddCommand(dockerCmd(a))
	root.AddCommand(dnsCmd(a))
	root.AddCommand(listCmd(a))
	root.AddCommand(historyCmd(a))
	return root, a
}
