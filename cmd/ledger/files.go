package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"trade-alert-ledger/internal/csvio"
	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/reporting"
	"trade-alert-ledger/internal/verification"
)

// readFile opens path and hands it to read.
func readFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return read(f)
}

// writeFile creates path and hands it to write.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeString(path, content string) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	})
}

func readSubjects(path string) ([]csvio.SubjectRecord, error) {
	var records []csvio.SubjectRecord
	err := readFile(path, func(r io.Reader) error {
		var err error
		records, err = csvio.ReadSubjects(r)
		return err
	})
	return records, err
}

// ledgerOutputs are the optional files a ledger build writes.
type ledgerOutputs struct {
	json    string
	csv     string
	legsCSV string
	report  string
}

func (o *ledgerOutputs) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.json, "json", "", "Write round trips as JSON")
	cmd.Flags().StringVar(&o.csv, "csv", "", "Write one CSV row per round trip")
	cmd.Flags().StringVar(&o.legsCSV, "legs-csv", "", "Write one CSV row per leg")
	cmd.Flags().StringVar(&o.report, "report", "", "Write a Markdown summary")
}

func (o *ledgerOutputs) write(rts []*domain.RoundTrip, issues []verification.Issue, generatedAt time.Time) error {
	if o.json != "" {
		if err := writeFile(o.json, func(w io.Writer) error { return reporting.WriteJSON(w, rts) }); err != nil {
			return err
		}
	}
	if o.csv != "" {
		if err := writeString(o.csv, reporting.RenderCSV(rts)); err != nil {
			return err
		}
	}
	if o.legsCSV != "" {
		if err := writeString(o.legsCSV, reporting.RenderLegsCSV(rts)); err != nil {
			return err
		}
	}
	if o.report != "" {
		report := &reporting.Report{GeneratedAt: generatedAt, Summary: reporting.BuildSummary(rts, issues)}
		if err := writeString(o.report, reporting.RenderMarkdown(report)); err != nil {
			return err
		}
	}
	return nil
}

func printIssues(w io.Writer, issues []verification.Issue) {
	for _, issue := range issues {
		fmt.Fprintln(w, issue.String())
	}
}
