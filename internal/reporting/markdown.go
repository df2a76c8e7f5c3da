package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	s := r.Summary

	sb.WriteString("# Round-Trip Ledger Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Totals
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Round Trips | %d |\n", s.Totals.RoundTrips))
	sb.WriteString(fmt.Sprintf("| Flat | %d |\n", s.Totals.Flat))
	sb.WriteString(fmt.Sprintf("| Open | %d |\n", s.Totals.Open))
	sb.WriteString(fmt.Sprintf("| Synthetic Expirations | %d |\n", s.Totals.Synthetic))
	sb.WriteString(fmt.Sprintf("| Wins / Losses | %d / %d |\n", s.Totals.Wins, s.Totals.Losses))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.4f |\n", s.Totals.WinRate()))
	sb.WriteString(fmt.Sprintf("| Realized P&L | %s |\n", s.Totals.TotalPnL.StringFixed(2)))
	sb.WriteString("\n")

	// Per account
	sb.WriteString("## By Account\n\n")
	if len(s.Accounts) > 0 {
		sb.WriteString("| Account | RoundTrips | Flat | Open | Synthetic | Wins | Losses | P&L | Mean | Median | StdDev |\n")
		sb.WriteString("|---------|------------|------|------|-----------|------|--------|-----|------|--------|--------|\n")
		for _, a := range s.Accounts {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %d | %d | %s | %.2f | %.2f | %.2f |\n",
				a.Account, a.RoundTrips, a.Flat, a.Open, a.Synthetic, a.Wins, a.Losses,
				a.TotalPnL.StringFixed(2), a.MeanPnL, a.MedianPnL, a.StdDevPnL))
		}
	} else {
		sb.WriteString("No round trips.\n")
	}
	sb.WriteString("\n")

	// Validation
	sb.WriteString("## Validation\n\n")
	if len(s.Issues) > 0 {
		sb.WriteString(fmt.Sprintf("%d issue(s) found.\n\n", len(s.Issues)))
		for _, issue := range s.Issues {
			sb.WriteString(fmt.Sprintf("- %s\n", issue))
		}
	} else {
		sb.WriteString("No issues found.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
