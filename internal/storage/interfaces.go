package storage

import (
	"context"

	"trade-alert-ledger/internal/domain"
)

// FillStore provides access to normalized fills.
type FillStore interface {
	// Upsert stores fills keyed by TradeHash. Fills whose hash is already
	// stored are skipped. Returns the number of newly stored fills.
	Upsert(ctx context.Context, fills []domain.Fill) (int, error)

	// GetAll returns every stored fill in first-stored order.
	GetAll(ctx context.Context) ([]domain.Fill, error)

	// GetByAccount returns the fills of one account in first-stored order.
	GetByAccount(ctx context.Context, account string) ([]domain.Fill, error)
}

// RoundTripStore provides access to the latest round-trip ledger.
type RoundTripStore interface {
	// Replace swaps the stored ledger for rts.
	Replace(ctx context.Context, rts []*domain.RoundTrip) error

	// GetAll returns the stored ledger ordered by round-trip id.
	GetAll(ctx context.Context) ([]*domain.RoundTrip, error)

	// GetByStableID retrieves one round trip. Returns ErrNotFound if not exists.
	GetByStableID(ctx context.Context, stableID string) (*domain.RoundTrip, error)
}
