package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"trade-alert-ledger/internal/verification"
)

// Report is a rendered-ready view of one ledger.
type Report struct {
	GeneratedAt time.Time
	Summary     Summary
}

// Summary aggregates a ledger overall and per account.
type Summary struct {
	Totals   SummaryRow
	Accounts []SummaryRow // sorted by account
	Issues   []verification.Issue
}

// SummaryRow holds counts and P&L statistics for a set of round trips.
// Win/loss and the P&L statistics cover flat round trips only.
type SummaryRow struct {
	Account    string // empty on the totals row
	RoundTrips int
	Flat       int // net quantity zero, synthetic expirations included
	Open       int
	Synthetic  int
	Wins       int
	Losses     int
	TotalPnL   decimal.Decimal // realized cash P&L of flat round trips
	MeanPnL    float64
	StdDevPnL  float64 // sample standard deviation
	MedianPnL  float64
}

// WinRate returns wins / flat round trips, 0 when nothing is flat.
func (r SummaryRow) WinRate() float64 {
	if r.Flat == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Flat)
}
