package memory

import (
	"context"
	"sync"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/storage"
)

// FillStore is an in-memory implementation of storage.FillStore.
type FillStore struct {
	mu    sync.RWMutex
	fills []domain.Fill       // first-stored order
	seen  map[string]struct{} // trade hashes
}

// NewFillStore creates a new in-memory fill store.
func NewFillStore() *FillStore {
	return &FillStore{
		seen: make(map[string]struct{}),
	}
}

// Upsert stores fills whose trade hash is new. Returns the number stored.
func (s *FillStore) Upsert(_ context.Context, fills []domain.Fill) (int, error) {
	if err := storage.CheckFills(fills); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, f := range fills {
		if _, exists := s.seen[f.TradeHash]; exists {
			continue
		}
		s.seen[f.TradeHash] = struct{}{}
		s.fills = append(s.fills, copyFill(f))
		inserted++
	}
	return inserted, nil
}

// GetAll returns every stored fill.
func (s *FillStore) GetAll(_ context.Context) ([]domain.Fill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Fill, 0, len(s.fills))
	for _, f := range s.fills {
		result = append(result, copyFill(f))
	}
	return result, nil
}

// GetByAccount returns the fills of one account.
func (s *FillStore) GetByAccount(_ context.Context, account string) ([]domain.Fill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Fill
	for _, f := range s.fills {
		if f.Account == account {
			result = append(result, copyFill(f))
		}
	}
	return result, nil
}

func copyFill(f domain.Fill) domain.Fill {
	if f.ExpiryDate != nil {
		d := *f.ExpiryDate
		f.ExpiryDate = &d
	}
	return f
}

var _ storage.FillStore = (*FillStore)(nil)
