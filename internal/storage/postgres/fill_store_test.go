package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/idhash"
	"trade-alert-ledger/internal/storage"
	"trade-alert-ledger/internal/storage/postgres"
)

func createTestFill(tradeID, account string, side domain.Side, price string, at time.Time) domain.Fill {
	expiry := domain.NewDate(2024, time.May, 17)
	qty := int64(2)
	if side == domain.SideSell {
		qty = -qty
	}
	f := domain.Fill{
		TradeID:            tradeID,
		Side:               side,
		QtyAbs:             2,
		QtySigned:          qty,
		Symbol:             "SPY",
		Account:            account,
		ContractMultiplier: decimal.NewFromInt(100),
		IsOption:           true,
		ExpiryDate:         &expiry,
		Strike:             decimal.NewNullDecimal(dec("500.5")),
		OptionType:         domain.OptionTypePut,
		AssetClass:         domain.AssetClassETF,
		Price:              dec(price),
		UnderlyingMark:     decimal.NewNullDecimal(dec("501.25")),
		Timestamp:          at,
		MessageID:          "msg-" + tradeID,
		Subject:            "#" + tradeID + " SPY",
	}
	f.TradeHash = idhash.FillHash(f)
	return f
}

func TestFillStore_UpsertAndGetAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewFillStore(pool)

	at := time.Date(2024, 5, 13, 9, 30, 0, 0, edt)
	fills := []domain.Fill{
		createTestFill("1", "0960", domain.SideBuy, "1.25", at),
		createTestFill("2", "0960", domain.SideSell, "1.7500", at.Add(time.Hour)),
	}

	n, err := store.Upsert(ctx, fills)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "1", first.TradeID)
	assert.Equal(t, fills[0].TradeHash, first.TradeHash)
	assert.Equal(t, domain.SideBuy, first.Side)
	assert.Equal(t, uint64(2), first.QtyAbs)
	assert.Equal(t, int64(2), first.QtySigned)
	assert.True(t, dec("100").Equal(first.ContractMultiplier))
	assert.True(t, dec("1.25").Equal(first.Price))
	assert.True(t, first.Strike.Valid)
	assert.True(t, dec("500.5").Equal(first.Strike.Decimal))
	assert.True(t, first.UnderlyingMark.Valid)
	assert.False(t, first.ImpliedVolPct.Valid)
	require.NotNil(t, first.ExpiryDate)
	assert.Equal(t, "2024-05-17", first.ExpiryDate.String())
	assert.Equal(t, domain.OptionTypePut, first.OptionType)
	assert.Equal(t, domain.AssetClassETF, first.AssetClass)
	assert.True(t, at.Equal(first.Timestamp))

	_, offset := first.Timestamp.Zone()
	assert.Equal(t, -4*3600, offset, "zone offset should survive storage")

	// Key survives the NUMERIC round trip
	assert.Equal(t, fills[0].Key(), first.Key())
}

func TestFillStore_UpsertIsIdempotent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewFillStore(pool)

	at := time.Date(2024, 5, 13, 9, 30, 0, 0, edt)
	fills := []domain.Fill{
		createTestFill("1", "0960", domain.SideBuy, "1.25", at),
		createTestFill("2", "0960", domain.SideSell, "1.75", at.Add(time.Hour)),
	}

	_, err := store.Upsert(ctx, fills)
	require.NoError(t, err)

	n, err := store.Upsert(ctx, append(fills, createTestFill("3", "0960", domain.SideBuy, "1.00", at.Add(2*time.Hour))))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestFillStore_GetByAccount(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewFillStore(pool)

	at := time.Date(2024, 5, 13, 9, 30, 0, 0, edt)
	_, err := store.Upsert(ctx, []domain.Fill{
		createTestFill("1", "0960", domain.SideBuy, "1.25", at),
		createTestFill("2", "1111", domain.SideBuy, "1.25", at),
		createTestFill("3", "0960", domain.SideSell, "1.50", at.Add(time.Minute)),
	})
	require.NoError(t, err)

	got, err := store.GetByAccount(ctx, "0960")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].TradeID)
	assert.Equal(t, "3", got[1].TradeID)

	none, err := store.GetByAccount(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFillStore_RejectsMissingHash(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewFillStore(pool)

	_, err := store.Upsert(context.Background(), []domain.Fill{{TradeID: "1", Account: "0960"}})
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))
}

func TestAccountID_Deterministic(t *testing.T) {
	assert.Equal(t, postgres.AccountID("0960"), postgres.AccountID("0960"))
	assert.NotEqual(t, postgres.AccountID("0960"), postgres.AccountID("0961"))
	assert.Equal(t, 5, int(postgres.AccountID("0960").Version()))
}
