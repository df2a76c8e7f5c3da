package memory

import (
	"context"
	"sync"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/storage"
)

// RoundTripStore is an in-memory implementation of storage.RoundTripStore.
type RoundTripStore struct {
	mu       sync.RWMutex
	ledger   []*domain.RoundTrip
	byStable map[string]*domain.RoundTrip
}

// NewRoundTripStore creates a new in-memory round-trip store.
func NewRoundTripStore() *RoundTripStore {
	return &RoundTripStore{
		byStable: make(map[string]*domain.RoundTrip),
	}
}

// Replace swaps the stored ledger for rts.
func (s *RoundTripStore) Replace(_ context.Context, rts []*domain.RoundTrip) error {
	if err := storage.CheckRoundTrips(rts); err != nil {
		return err
	}

	ledger := make([]*domain.RoundTrip, 0, len(rts))
	byStable := make(map[string]*domain.RoundTrip, len(rts))
	for _, rt := range rts {
		c := copyRoundTrip(rt)
		ledger = append(ledger, c)
		byStable[c.StableID] = c
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger = ledger
	s.byStable = byStable
	return nil
}

// GetAll returns the stored ledger in the order it was written.
func (s *RoundTripStore) GetAll(_ context.Context) ([]*domain.RoundTrip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.RoundTrip, 0, len(s.ledger))
	for _, rt := range s.ledger {
		result = append(result, copyRoundTrip(rt))
	}
	return result, nil
}

// GetByStableID retrieves one round trip. Returns ErrNotFound if not exists.
func (s *RoundTripStore) GetByStableID(_ context.Context, stableID string) (*domain.RoundTrip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rt, exists := s.byStable[stableID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyRoundTrip(rt), nil
}

func copyRoundTrip(rt *domain.RoundTrip) *domain.RoundTrip {
	c := *rt
	if rt.ExpiryDate != nil {
		d := *rt.ExpiryDate
		c.ExpiryDate = &d
	}
	c.Legs = append([]domain.Leg(nil), rt.Legs...)
	return &c
}

var _ storage.RoundTripStore = (*RoundTripStore)(nil)
