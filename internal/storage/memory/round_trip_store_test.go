package memory

import (
	"context"
	"errors"
	"testing"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/storage"
)

func TestRoundTripStore_ReplaceAndGet(t *testing.T) {
	store := NewRoundTripStore()
	ctx := context.Background()

	first := []*domain.RoundTrip{
		{ID: 1, StableID: "a", Symbol: "SPY", Legs: []domain.Leg{{TradeID: "1"}}},
		{ID: 2, StableID: "b", Symbol: "QQQ"},
	}
	if err := store.Replace(ctx, first); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	got, err := store.GetByStableID(ctx, "b")
	if err != nil {
		t.Fatalf("GetByStableID failed: %v", err)
	}
	if got.Symbol != "QQQ" {
		t.Errorf("Symbol mismatch: got %s, want QQQ", got.Symbol)
	}

	second := []*domain.RoundTrip{{ID: 1, StableID: "c", Symbol: "/ESM24"}}
	if err := store.Replace(ctx, second); err != nil {
		t.Fatalf("second Replace failed: %v", err)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 || all[0].StableID != "c" {
		t.Errorf("expected only the replacement ledger, got %+v", all)
	}

	if _, err := store.GetByStableID(ctx, "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for replaced round trip, got %v", err)
	}
}

func TestRoundTripStore_RejectsBadLedger(t *testing.T) {
	store := NewRoundTripStore()
	ctx := context.Background()

	err := store.Replace(ctx, []*domain.RoundTrip{{ID: 1, StableID: "a"}, {ID: 2, StableID: "a"}})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	err = store.Replace(ctx, []*domain.RoundTrip{{ID: 1}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	err = store.Replace(ctx, []*domain.RoundTrip{nil})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil entry, got %v", err)
	}
}

func TestRoundTripStore_LegsAreCopied(t *testing.T) {
	store := NewRoundTripStore()
	ctx := context.Background()

	rt := &domain.RoundTrip{ID: 1, StableID: "a", Legs: []domain.Leg{{TradeID: "1"}}}
	if err := store.Replace(ctx, []*domain.RoundTrip{rt}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	rt.Legs[0].TradeID = "changed"

	got, err := store.GetByStableID(ctx, "a")
	if err != nil {
		t.Fatalf("GetByStableID failed: %v", err)
	}
	if got.Legs[0].TradeID != "1" {
		t.Errorf("stored legs share memory with the caller")
	}
}
