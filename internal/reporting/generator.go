package reporting

import (
	"context"
	"fmt"
	"time"

	"trade-alert-ledger/internal/storage"
	"trade-alert-ledger/internal/verification"
)

// Generator produces reports from a stored ledger.
type Generator struct {
	store     storage.RoundTripStore
	validator *verification.Validator
	now       func() time.Time // injectable for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(store storage.RoundTripStore, validator *verification.Validator) *Generator {
	return &Generator{
		store:     store,
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate loads the ledger, validates it and summarizes it.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	rts, err := g.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load round trips: %w", err)
	}

	var issues []verification.Issue
	if g.validator != nil {
		issues = g.validator.Validate(rts)
	}

	return &Report{
		GeneratedAt: g.now(),
		Summary:     BuildSummary(rts, issues),
	}, nil
}
