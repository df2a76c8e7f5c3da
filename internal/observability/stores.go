package observability

import (
	"context"
	"time"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/storage"
)

// MeteredFillStore records query duration and errors for a FillStore.
type MeteredFillStore struct {
	next     storage.FillStore
	database string
	metrics  *Metrics
}

// NewMeteredFillStore wraps next. database labels the metrics ("postgres").
func NewMeteredFillStore(next storage.FillStore, database string, m *Metrics) *MeteredFillStore {
	return &MeteredFillStore{next: next, database: database, metrics: m}
}

func (s *MeteredFillStore) Upsert(ctx context.Context, fills []domain.Fill) (int, error) {
	start := time.Now()
	n, err := s.next.Upsert(ctx, fills)
	s.metrics.RecordDBQuery(s.database, "upsert_fills", time.Since(start), err)
	return n, err
}

func (s *MeteredFillStore) GetAll(ctx context.Context) ([]domain.Fill, error) {
	start := time.Now()
	fills, err := s.next.GetAll(ctx)
	s.metrics.RecordDBQuery(s.database, "get_fills", time.Since(start), err)
	return fills, err
}

func (s *MeteredFillStore) GetByAccount(ctx context.Context, account string) ([]domain.Fill, error) {
	start := time.Now()
	fills, err := s.next.GetByAccount(ctx, account)
	s.metrics.RecordDBQuery(s.database, "get_fills_by_account", time.Since(start), err)
	return fills, err
}

// MeteredRoundTripStore records query duration and errors for a RoundTripStore.
type MeteredRoundTripStore struct {
	next     storage.RoundTripStore
	database string
	metrics  *Metrics
}

// NewMeteredRoundTripStore wraps next.
func NewMeteredRoundTripStore(next storage.RoundTripStore, database string, m *Metrics) *MeteredRoundTripStore {
	return &MeteredRoundTripStore{next: next, database: database, metrics: m}
}

func (s *MeteredRoundTripStore) Replace(ctx context.Context, rts []*domain.RoundTrip) error {
	start := time.Now()
	err := s.next.Replace(ctx, rts)
	s.metrics.RecordDBQuery(s.database, "replace_round_trips", time.Since(start), err)
	return err
}

func (s *MeteredRoundTripStore) GetAll(ctx context.Context) ([]*domain.RoundTrip, error) {
	start := time.Now()
	rts, err := s.next.GetAll(ctx)
	s.metrics.RecordDBQuery(s.database, "get_round_trips", time.Since(start), err)
	return rts, err
}

func (s *MeteredRoundTripStore) GetByStableID(ctx context.Context, stableID string) (*domain.RoundTrip, error) {
	start := time.Now()
	rt, err := s.next.GetByStableID(ctx, stableID)
	s.metrics.RecordDBQuery(s.database, "get_round_trip", time.Since(start), err)
	return rt, err
}

var (
	_ storage.FillStore      = (*MeteredFillStore)(nil)
	_ storage.RoundTripStore = (*MeteredRoundTripStore)(nil)
)
