// Package verification audits round-trip ledgers. Every derived field of a
// round trip is recomputed from its legs and compared against the stored value.
// The validator never modifies a ledger.
package verification

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"trade-alert-ledger/internal/domain"
)

// Default absolute tolerances.
var (
	DefaultValueTolerance = decimal.New(1, -4) // VWAPs and gross values
	DefaultPnLTolerance   = decimal.New(1, -2) // realized cash P&L
)

// Options configures comparison tolerances.
type Options struct {
	ValueTolerance decimal.Decimal
	PnLTolerance   decimal.Decimal
}

// DefaultOptions returns the standard tolerances.
func DefaultOptions() Options {
	return Options{
		ValueTolerance: DefaultValueTolerance,
		PnLTolerance:   DefaultPnLTolerance,
	}
}

// Issue is one violation found on one round trip.
type Issue struct {
	RoundTripID int    // id of the offending round trip
	Field       string // field that failed the check
	Description string // human readable detail
}

// String returns the issue tagged with its round-trip id.
func (i Issue) String() string {
	return fmt.Sprintf("[RT %d] %s", i.RoundTripID, i.Description)
}

// Validator recomputes round-trip aggregates from legs.
type Validator struct {
	opts Options
}

// NewValidator creates a validator. Zero tolerances fall back to the defaults.
func NewValidator(opts Options) *Validator {
	if opts.ValueTolerance.IsZero() {
		opts.ValueTolerance = DefaultValueTolerance
	}
	if opts.PnLTolerance.IsZero() {
		opts.PnLTolerance = DefaultPnLTolerance
	}
	return &Validator{opts: opts}
}

// IsSyntheticLeg reports whether a leg was injected to flatten an expired
// position: it carries the sentinel id, a subject starting with
// "synthetic expiration", or no message id together with a zero price.
func IsSyntheticLeg(leg domain.Leg) bool {
	if leg.TradeID == domain.SyntheticTradeID {
		return true
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(leg.Subject)), "synthetic expiration") {
		return true
	}
	return leg.MessageID == "" && leg.Price.IsZero()
}

// Validate checks every round trip and returns all issues found, in ledger
// order. An empty result means the ledger is consistent.
func (v *Validator) Validate(rts []*domain.RoundTrip) []Issue {
	var issues []Issue
	for _, rt := range rts {
		issues = append(issues, v.ValidateRoundTrip(rt)...)
	}
	return issues
}

// ValidateRoundTrip runs every check on one round trip.
func (v *Validator) ValidateRoundTrip(rt *domain.RoundTrip) []Issue {
	if rt == nil {
		return []Issue{{Field: "round_trip", Description: "round trip is nil"}}
	}

	c := &checker{rt: rt}
	c.checkRequired()
	c.checkTimestamps()

	r := recompute(rt)
	c.checkQuantities(r)
	c.checkValues(r, v.opts.ValueTolerance)
	c.checkVWAPs(r, v.opts.ValueTolerance)
	c.checkPnL(r, v.opts.PnLTolerance)
	c.checkLegCashflows(v.opts.ValueTolerance)
	c.checkSyntheticFlat(r)

	return c.issues
}
