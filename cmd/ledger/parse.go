package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"trade-alert-ledger/internal/csvio"
)

func newParseCmd() *cobra.Command {
	var in, out, failures string

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse alert subjects into normalized fills",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			records, err := readSubjects(in)
			if err != nil {
				return err
			}

			p, err := a.pipeline(nil)
			if err != nil {
				return err
			}
			result := p.Normalize(cmd.Context(), records)

			if err := writeFile(out, func(w io.Writer) error { return csvio.WriteFills(w, result.Fills) }); err != nil {
				return err
			}
			if failures != "" {
				if err := writeFile(failures, func(w io.Writer) error { return csvio.WriteFailures(w, result.AllFailures()) }); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Parsed %d subjects: %d fills, %d parse failures, %d rejections\n",
				len(records), len(result.Fills), len(result.Failures), len(result.Rejections))
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Subjects CSV (message_id, date_iso, subject)")
	cmd.Flags().StringVar(&out, "out", "", "Normalized fills CSV")
	cmd.Flags().StringVar(&failures, "failures", "", "Failures CSV")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
