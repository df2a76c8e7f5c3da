package memory

import (
	"context"
	"errors"
	"testing"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/storage"
)

func TestFillStore_UpsertIsIdempotent(t *testing.T) {
	store := NewFillStore()
	ctx := context.Background()

	fills := []domain.Fill{
		{TradeID: "1", Account: "0960", TradeHash: "h1"},
		{TradeID: "2", Account: "0960", TradeHash: "h2"},
	}

	n, err := store.Upsert(ctx, fills)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}

	n, err = store.Upsert(ctx, append(fills, domain.Fill{TradeID: "3", Account: "1111", TradeHash: "h3"}))
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if n != 1 {
		t.Errorf("inserted on replay = %d, want 1", n)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("GetAll returned %d fills, want 3", len(all))
	}
	for i, want := range []string{"1", "2", "3"} {
		if all[i].TradeID != want {
			t.Errorf("fill %d: got trade %s, want %s", i, all[i].TradeID, want)
		}
	}
}

func TestFillStore_GetByAccount(t *testing.T) {
	store := NewFillStore()
	ctx := context.Background()

	_, err := store.Upsert(ctx, []domain.Fill{
		{TradeID: "1", Account: "0960", TradeHash: "h1"},
		{TradeID: "2", Account: "1111", TradeHash: "h2"},
		{TradeID: "3", Account: "0960", TradeHash: "h3"},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByAccount(ctx, "0960")
	if err != nil {
		t.Fatalf("GetByAccount failed: %v", err)
	}
	if len(got) != 2 || got[0].TradeID != "1" || got[1].TradeID != "3" {
		t.Errorf("unexpected fills for account 0960: %+v", got)
	}

	none, err := store.GetByAccount(ctx, "9999")
	if err != nil {
		t.Fatalf("GetByAccount failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no fills, got %d", len(none))
	}
}

func TestFillStore_RejectsMissingHash(t *testing.T) {
	store := NewFillStore()

	_, err := store.Upsert(context.Background(), []domain.Fill{{TradeID: "1"}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestFillStore_ReturnsCopies(t *testing.T) {
	store := NewFillStore()
	ctx := context.Background()

	expiry := domain.NewDate(2024, 5, 17)
	if _, err := store.Upsert(ctx, []domain.Fill{{TradeID: "1", TradeHash: "h1", ExpiryDate: &expiry}}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	first, _ := store.GetAll(ctx)
	first[0].ExpiryDate.Day = 1

	second, _ := store.GetAll(ctx)
	if second[0].ExpiryDate.Day != 17 {
		t.Errorf("stored fill was mutated through a returned copy")
	}
}
