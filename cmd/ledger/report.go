package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"trade-alert-ledger/internal/reporting"
)

func newReportCmd() *cobra.Command {
	var (
		out           string
		usePostgres   bool
		useClickhouse bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a Markdown summary of the stored ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !usePostgres && !useClickhouse {
				return errors.New("one of --postgres or --clickhouse is required")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			st, err := openStores(ctx, a, usePostgres, useClickhouse)
			if err != nil {
				return err
			}
			defer st.close()

			validator, err := a.validator()
			if err != nil {
				return err
			}
			report, err := reporting.NewGenerator(st.roundTrips, validator).Generate(ctx)
			if err != nil {
				return err
			}

			md := reporting.RenderMarkdown(report)
			if out == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}
			return writeString(out, md)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Write the report here instead of stdout")
	cmd.Flags().BoolVar(&usePostgres, "postgres", false, "Read the ledger from Postgres")
	cmd.Flags().BoolVar(&useClickhouse, "clickhouse", false, "Read the ledger from ClickHouse")
	return cmd
}
