package idhash

import (
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"

	"trade-alert-ledger/internal/domain"
)

func TestComputeFillHash(t *testing.T) {
	ts := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		account   string
		contract  string
		side      domain.Side
		qty       uint64
		price     decimal.Decimal
		messageID string
		synthetic bool
		wantLen   int // hash length should be 64
	}{
		{
			name:      "option buy",
			account:   "0960",
			contract:  "SPY 2024-05-17 500 PUT x100",
			side:      domain.SideBuy,
			qty:       2,
			price:     decimal.RequireFromString("0.12"),
			messageID: "18f5a2b3c4d5e6f7",
			wantLen:   64,
		},
		{
			name:      "synthetic close",
			account:   "0960",
			contract:  "SPY 2024-05-17 500 PUT x100",
			side:      domain.SideSell,
			qty:       2,
			price:     decimal.Zero,
			synthetic: true,
			wantLen:   64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeFillHash(tt.account, tt.contract, tt.side, tt.qty, tt.price, ts, tt.messageID, tt.synthetic)

			if len(got) != tt.wantLen {
				t.Errorf("ComputeFillHash() length = %d, want %d", len(got), tt.wantLen)
			}

			got2 := ComputeFillHash(tt.account, tt.contract, tt.side, tt.qty, tt.price, ts, tt.messageID, tt.synthetic)
			if got != got2 {
				t.Errorf("ComputeFillHash() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeFillHash_DifferentInputs(t *testing.T) {
	ts := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	price := decimal.RequireFromString("1.25")
	base := ComputeFillHash("acct", "SPY x100", domain.SideBuy, 1, price, ts, "m1", false)

	if base == ComputeFillHash("other", "SPY x100", domain.SideBuy, 1, price, ts, "m1", false) {
		t.Error("Different account should produce different hash")
	}
	if base == ComputeFillHash("acct", "SPY x100", domain.SideSell, 1, price, ts, "m1", false) {
		t.Error("Different side should produce different hash")
	}
	if base == ComputeFillHash("acct", "SPY x100", domain.SideBuy, 2, price, ts, "m1", false) {
		t.Error("Different qty should produce different hash")
	}
	if base == ComputeFillHash("acct", "SPY x100", domain.SideBuy, 1, price, ts.Add(time.Second), "m1", false) {
		t.Error("Different timestamp should produce different hash")
	}
	if base == ComputeFillHash("acct", "SPY x100", domain.SideBuy, 1, price, ts, "m1", true) {
		t.Error("Synthetic flag should produce different hash")
	}
}

func TestComputeFillHash_ZoneIndependent(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	utc := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	price := decimal.RequireFromString("1.25")

	a := ComputeFillHash("acct", "SPY x100", domain.SideBuy, 1, price, utc, "m1", false)
	b := ComputeFillHash("acct", "SPY x100", domain.SideBuy, 1, price, utc.In(ny), "m1", false)
	if a != b {
		t.Errorf("same instant in different zones hashed differently: %s != %s", a, b)
	}
}

func TestFillHash_PriceScaleIndependent(t *testing.T) {
	f := domain.Fill{
		Account:            "0960",
		Symbol:             "SPY",
		Side:               domain.SideBuy,
		QtyAbs:             2,
		ContractMultiplier: decimal.NewFromInt(100),
		Price:              decimal.RequireFromString("0.12"),
		Timestamp:          time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC),
		MessageID:          "m1",
	}
	g := f
	g.Price = decimal.RequireFromString("0.120")

	if FillHash(f) != FillHash(g) {
		t.Error("0.12 and 0.120 should hash identically")
	}
}

func TestComputeRoundTripID(t *testing.T) {
	key := domain.Key{
		Account:    "0960",
		Symbol:     "SPY",
		Multiplier: "100",
		IsOption:   true,
		Expiry:     "2024-05-17",
		Strike:     "500",
		OptionType: domain.OptionTypePut,
	}

	id := ComputeRoundTripID(key)
	raw, err := base58.Decode(id)
	if err != nil {
		t.Fatalf("stable id is not base58: %v", err)
	}
	if len(raw) != stableIDBytes {
		t.Errorf("decoded length = %d, want %d", len(raw), stableIDBytes)
	}
	if id != ComputeRoundTripID(key) {
		t.Error("ComputeRoundTripID() not deterministic")
	}

	other := key
	other.Strike = "505"
	if id == ComputeRoundTripID(other) {
		t.Error("Different strike should produce different id")
	}
}
