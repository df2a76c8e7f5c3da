package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trade-alert-ledger/internal/csvio"
	"trade-alert-ledger/internal/domain"
)

func newBuildCmd() *cobra.Command {
	var (
		in   string
		asOf string
		out  ledgerOutputs
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Aggregate normalized fills into round trips",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			var fills []domain.Fill
			err = readFile(in, func(r io.Reader) error {
				var readErr error
				fills, readErr = csvio.ReadFills(r)
				if readErr != nil && fills == nil {
					return readErr
				}
				if readErr != nil {
					a.logger.Warn("skipped invalid fill rows", zap.Error(readErr))
				}
				return nil
			})
			if err != nil {
				return err
			}

			now, err := a.asOf(asOf)
			if err != nil {
				return err
			}
			p, err := a.pipeline(nil)
			if err != nil {
				return err
			}

			result, err := p.RunFills(cmd.Context(), fills, now)
			if err != nil {
				return err
			}
			if err := out.write(result.RoundTrips, result.Issues, now); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Built %d round trips from %d fills (%d issues)\n",
				len(result.RoundTrips), len(result.Fills), len(result.Issues))
			printIssues(cmd.ErrOrStderr(), result.Issues)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Normalized fills CSV")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Judge expirations at this RFC 3339 instant (default now)")
	out.bind(cmd)
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
