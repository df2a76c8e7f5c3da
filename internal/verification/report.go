package verification

import (
	"context"
	"fmt"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/storage"
)

// Report summarizes a validation pass over a ledger.
type Report struct {
	TotalRoundTrips      int
	CleanRoundTrips      int
	RoundTripsWithIssues int
	Issues               []Issue
}

// OK reports whether the ledger passed every check.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

// BuildReport validates rts and counts clean and failing round trips.
func (v *Validator) BuildReport(rts []*domain.RoundTrip) *Report {
	report := &Report{TotalRoundTrips: len(rts)}
	for _, rt := range rts {
		issues := v.ValidateRoundTrip(rt)
		if len(issues) == 0 {
			report.CleanRoundTrips++
			continue
		}
		report.RoundTripsWithIssues++
		report.Issues = append(report.Issues, issues...)
	}
	return report
}

// VerifyStore loads the stored ledger and validates it.
func (v *Validator) VerifyStore(ctx context.Context, store storage.RoundTripStore) (*Report, error) {
	rts, err := store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load round trips: %w", err)
	}
	return v.BuildReport(rts), nil
}
