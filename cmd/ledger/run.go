package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"trade-alert-ledger/internal/csvio"
)

func newRunCmd() *cobra.Command {
	var (
		in            string
		fillsOut      string
		failuresOut   string
		asOf          string
		usePostgres   bool
		useClickhouse bool
		out           ledgerOutputs
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Parse, normalize, aggregate and validate in one pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			records, err := readSubjects(in)
			if err != nil {
				return err
			}
			now, err := a.asOf(asOf)
			if err != nil {
				return err
			}

			st, err := openStores(ctx, a, usePostgres, useClickhouse)
			if err != nil {
				return err
			}
			defer st.close()

			p, err := a.pipeline(st)
			if err != nil {
				return err
			}
			result, err := p.Run(ctx, records, now)
			if err != nil {
				return err
			}

			if fillsOut != "" {
				if err := writeFile(fillsOut, func(w io.Writer) error { return csvio.WriteFills(w, result.Fills) }); err != nil {
					return err
				}
			}
			if failuresOut != "" {
				if err := writeFile(failuresOut, func(w io.Writer) error { return csvio.WriteFailures(w, result.AllFailures()) }); err != nil {
					return err
				}
			}
			if err := out.write(result.RoundTrips, result.Issues, now); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Run %s\n", result.RunID)
			fmt.Fprintf(w, "  Subjects:    %d\n", len(records))
			fmt.Fprintf(w, "  Fills:       %d (%d new in store)\n", len(result.Fills), result.InsertedFills)
			fmt.Fprintf(w, "  Failures:    %d parse, %d rejected\n", len(result.Failures), len(result.Rejections))
			fmt.Fprintf(w, "  Round trips: %d\n", len(result.RoundTrips))
			fmt.Fprintf(w, "  Issues:      %d\n", len(result.Issues))
			printIssues(cmd.ErrOrStderr(), result.Issues)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Subjects CSV (message_id, date_iso, subject)")
	cmd.Flags().StringVar(&fillsOut, "fills", "", "Write normalized fills CSV")
	cmd.Flags().StringVar(&failuresOut, "failures", "", "Write failures CSV")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Judge expirations at this RFC 3339 instant (default now)")
	cmd.Flags().BoolVar(&usePostgres, "postgres", false, "Persist fills and round trips to Postgres")
	cmd.Flags().BoolVar(&useClickhouse, "clickhouse", false, "Persist round trips to ClickHouse")
	out.bind(cmd)
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
