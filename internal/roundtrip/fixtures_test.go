package roundtrip

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-alert-ledger/internal/domain"
)

var (
	edt  = time.FixedZone("EDT", -4*3600)
	t0   = time.Date(2024, 5, 13, 9, 30, 0, 0, edt)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// makeFill creates an option fill on the SPY 2024-05-17 500 PUT contract.
func makeFill(id string, side domain.Side, qty uint64, price string, offset time.Duration) domain.Fill {
	expiry := domain.NewDate(2024, time.May, 17)
	signed := int64(qty)
	if side == domain.SideSell {
		signed = -signed
	}
	return domain.Fill{
		TradeID:            id,
		Side:               side,
		QtyAbs:             qty,
		QtySigned:          signed,
		Symbol:             "SPY",
		Account:            "0960",
		ContractMultiplier: decimal.NewFromInt(100),
		IsOption:           true,
		ExpiryDate:         &expiry,
		Strike:             decimal.NewNullDecimal(decimal.NewFromInt(500)),
		OptionType:         domain.OptionTypePut,
		Price:              dec(price),
		Timestamp:          t0.Add(offset),
		MessageID:          "msg-" + id,
		Subject:            fmt.Sprintf("#%s %s %d SPY", id, side, qty),
	}
}

func withStrike(f domain.Fill, strike int64) domain.Fill {
	f.Strike = decimal.NewNullDecimal(decimal.NewFromInt(strike))
	return f
}

func withExpiry(f domain.Fill, d domain.Date) domain.Fill {
	f.ExpiryDate = &d
	return f
}

func assertDecimalEqual(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func assertNullDecimal(t *testing.T, want string, got decimal.NullDecimal, field string) {
	t.Helper()
	if want == "" {
		assert.False(t, got.Valid, "%s: want null, got %s", field, got.Decimal)
		return
	}
	require.True(t, got.Valid, "%s: want %s, got null", field, want)
	assert.True(t, dec(want).Equal(got.Decimal), "%s: want %s, got %s", field, want, got.Decimal)
}

// assertSameLedger compares two ledgers by value.
func assertSameLedger(t *testing.T, want, got []*domain.RoundTrip) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.StableID, g.StableID)
		assert.Equal(t, w.Key(), g.Key())
		assert.Equal(t, w.QtyBuy, g.QtyBuy)
		assert.Equal(t, w.QtySell, g.QtySell)
		assert.Equal(t, w.BuyVWAP.Valid, g.BuyVWAP.Valid)
		assert.True(t, w.BuyVWAP.Decimal.Equal(g.BuyVWAP.Decimal))
		assert.Equal(t, w.SellVWAP.Valid, g.SellVWAP.Valid)
		assert.True(t, w.SellVWAP.Decimal.Equal(g.SellVWAP.Decimal))
		assert.True(t, w.GrossBuyValue.Equal(g.GrossBuyValue))
		assert.True(t, w.GrossSellValue.Equal(g.GrossSellValue))
		assert.True(t, w.RealizedPnLCash.Equal(g.RealizedPnLCash))
		assert.True(t, w.OpenDT.Equal(g.OpenDT))
		assert.True(t, w.CloseDT.Equal(g.CloseDT))
		assert.Equal(t, w.SyntheticExpiration, g.SyntheticExpiration)
		require.Len(t, g.Legs, len(w.Legs))
		for j := range w.Legs {
			assert.Equal(t, w.Legs[j].TradeID, g.Legs[j].TradeID)
		}
	}
}
