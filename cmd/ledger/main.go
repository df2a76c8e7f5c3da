// Package main provides the ledger command line.
// Executes: parse → normalize → aggregate → validate → report
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configFile  string
	metricsAddr string
)

// errIssuesFound signals validation issues; the command has already printed them.
var errIssuesFound = errors.New("validation issues found")

var rootCmd = &cobra.Command{
	Use:           "ledger",
	Short:         "Reconcile thinkorswim fill alerts into a round-trip ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	rootCmd.AddCommand(
		newParseCmd(),
		newBuildCmd(),
		newRunCmd(),
		newValidateCmd(),
		newReportCmd(),
		newMigrateCmd(),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errIssuesFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
