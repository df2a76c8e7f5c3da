package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/reporting"
	"trade-alert-ledger/internal/verification"
)

func newValidateCmd() *cobra.Command {
	var (
		in            string
		usePostgres   bool
		useClickhouse bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Audit a round-trip ledger; exits 1 when any issue is found",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if in == "" && !usePostgres && !useClickhouse {
				return errors.New("one of --in, --postgres or --clickhouse is required")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			validator, err := a.validator()
			if err != nil {
				return err
			}

			var report *verification.Report
			if in != "" {
				var rts []*domain.RoundTrip
				err = readFile(in, func(r io.Reader) error {
					var readErr error
					rts, readErr = reporting.ReadJSON(r)
					return readErr
				})
				if err != nil {
					return err
				}
				report = validator.BuildReport(rts)
			} else {
				st, err := openStores(ctx, a, usePostgres, useClickhouse)
				if err != nil {
					return err
				}
				defer st.close()

				report, err = validator.VerifyStore(ctx, st.roundTrips)
				if err != nil {
					return err
				}
			}

			for _, issue := range report.Issues {
				a.metrics.RecordIssue(issue.Field)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Validated %d round trips: %d clean, %d with issues\n",
				report.TotalRoundTrips, report.CleanRoundTrips, report.RoundTripsWithIssues)
			printIssues(cmd.OutOrStdout(), report.Issues)

			if !report.OK() {
				return errIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Round trips JSON written by build or run")
	cmd.Flags().BoolVar(&usePostgres, "postgres", false, "Validate the ledger stored in Postgres")
	cmd.Flags().BoolVar(&useClickhouse, "clickhouse", false, "Validate the ledger stored in ClickHouse")
	return cmd
}
