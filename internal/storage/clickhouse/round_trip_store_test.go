package clickhouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/idhash"
	"trade-alert-ledger/internal/roundtrip"
	"trade-alert-ledger/internal/storage"
	"trade-alert-ledger/internal/storage/clickhouse"
)

var edt = time.FixedZone("EDT", -4*3600)

func testFill(id string, side domain.Side, price string, at time.Time) domain.Fill {
	expiry := domain.NewDate(2024, time.May, 17)
	f := domain.Fill{
		TradeID:            id,
		Side:               side,
		QtyAbs:             3,
		QtySigned:          3 * -side.Sign(),
		Symbol:             "/ESM24",
		Account:            "0960",
		ContractMultiplier: decimal.NewFromInt(50),
		IsOption:           true,
		ExpiryDate:         &expiry,
		Strike:             decimal.NewNullDecimal(decimal.NewFromInt(5200)),
		OptionType:         domain.OptionTypeCall,
		FutRootSymbol:      "/ES",
		AssetClass:         domain.AssetClassFuture,
		Price:              decimal.RequireFromString(price),
		Timestamp:          at,
		MessageID:          "msg-" + id,
	}
	f.TradeHash = idhash.FillHash(f)
	return f
}

func TestRoundTripStore_ReplaceAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := clickhouse.NewRoundTripStore(conn)

	at := time.Date(2024, 5, 13, 10, 0, 0, 0, edt)
	fills := []domain.Fill{
		testFill("1", domain.SideBuy, "12.25", at),
		testFill("2", domain.SideSell, "14.75", at.Add(30*time.Minute)),
	}
	ledger := roundtrip.NewAggregator().Aggregate(fills, at.Add(time.Hour))
	require.Len(t, ledger, 1)

	require.NoError(t, store.Replace(ctx, ledger))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	want, g := ledger[0], got[0]
	assert.Equal(t, want.StableID, g.StableID)
	assert.Equal(t, want.Key(), g.Key())
	assert.Equal(t, "/ES", g.FutRootSymbol)
	assert.Equal(t, uint64(3), g.QtyBuy)
	assert.Equal(t, uint64(3), g.QtySell)
	assert.True(t, decimal.RequireFromString("375").Equal(g.RealizedPnLCash), "pnl %s", g.RealizedPnLCash)
	assert.True(t, want.BuyVWAP.Decimal.Equal(g.BuyVWAP.Decimal))
	assert.True(t, want.OpenDT.Equal(g.OpenDT))
	_, offset := g.OpenDT.Zone()
	assert.Equal(t, -4*3600, offset)
	require.Len(t, g.Legs, 2)

	byID, err := store.GetByStableID(ctx, want.StableID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, byID.ID)
}

func TestRoundTripStore_LatestVersionWins(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := clickhouse.NewRoundTripStore(conn)

	at := time.Date(2024, 5, 13, 10, 0, 0, 0, edt)
	open := []domain.Fill{testFill("1", domain.SideBuy, "12.25", at)}
	first := roundtrip.NewAggregator().Aggregate(open, at.Add(time.Hour))
	require.NoError(t, store.Replace(ctx, first))

	other := testFill("9", domain.SideBuy, "10", at)
	other.Account = "1111"
	other.TradeHash = idhash.FillHash(other)
	second := roundtrip.NewAggregator().Aggregate([]domain.Fill{other}, at.Add(time.Hour))
	require.NoError(t, store.Replace(ctx, second))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1111", got[0].Account)

	_, err = store.GetByStableID(ctx, first[0].StableID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
