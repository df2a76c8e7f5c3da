package normalization

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/subject"
)

var testTime = time.Date(2024, 5, 10, 10, 15, 0, 0, time.FixedZone("EDT", -4*3600))

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseMultiplierToken(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"100", "100", true},
		{"1/50", "50", true},
		{"1/20", "20", true},
		{"1/10", "10", true},
		{"2/100", "50", true},
		{"100 1/50", "50", true}, // fraction wins over trailing integer
		{"1/50 100", "50", true},
		{"", "", false},
		{"ABC", "", false},
		{"0", "", false},
		{"0/50", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseMultiplierToken(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, dec(tt.want).Equal(got), "got %s", got)
			}
		})
	}
}

func TestResolveFutRoot(t *testing.T) {
	n := NewNormalizer(DefaultOptions())

	tests := []struct {
		symbol string
		want   string
	}{
		{"/ESM24", "/ES"},
		{"/MESM24", "/MES"},
		{"/MNQU24", "/MNQ"},
		{"/NQU24", "/NQ"},
		{"/ZBU24", "/ZB"},
		{"/ES", "/ES"},
		{"SPY", ""},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			assert.Equal(t, tt.want, n.ResolveFutRoot(tt.symbol))
		})
	}
}

func TestMultiplier_Priority(t *testing.T) {
	n := NewNormalizer(DefaultOptions())

	tests := []struct {
		name        string
		symbol      string
		raw         string
		want        string
		wantDefined bool
	}{
		{"fixed root beats token", "/ESM24", "1/20", "50", true},
		{"index alias beats token", "SPX", "10", "100", true},
		{"etf alias with no token", "SPY", "", "100", true},
		{"parsed token", "AAPL", "100", "100", true},
		{"unknown root uses fraction", "/CLN24", "1/1000", "1000", true},
		{"absent falls back to 1", "AAPL", "", "1", false},
		{"non-numeric falls back to 1", "AAPL", "X", "1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, defined := n.Multiplier(tt.symbol, n.ResolveFutRoot(tt.symbol), tt.raw)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
			assert.Equal(t, tt.wantDefined, defined)
		})
	}
}

func TestNormalize_ParsedSubject(t *testing.T) {
	p := subject.NewParser()
	n := NewNormalizer(DefaultOptions())

	pf := p.Parse("#123 BOT +2 SPY 100 17 MAY 24 500 PUT @.12MARK=520.79 IMPL VOL=13.29% , ACCOUNT *****0960")
	f, err := n.Normalize(Input{Parsed: pf, Timestamp: testTime, MessageID: "m-1", Subject: "subj"})
	require.NoError(t, err)

	assert.Equal(t, "0960", f.Account)
	assert.True(t, dec("100").Equal(f.ContractMultiplier))
	assert.Equal(t, domain.AssetClassETF, f.AssetClass)
	assert.Empty(t, f.FutRootSymbol)
	assert.True(t, dec("0.12").Equal(f.Price))
	assert.Equal(t, testTime, f.Timestamp)
	assert.Equal(t, "m-1", f.MessageID)
	assert.Len(t, f.TradeHash, 64)
}

func TestNormalize_FuturesRootsShareGroup(t *testing.T) {
	p := subject.NewParser()
	n := NewNormalizer(DefaultOptions())

	a := p.Parse("#400 BOT +1 /ESM24 1/50 MAY 24 (Wk2) /E2BK24 5200 PUT @12.50 CME MARK=5210.25 IMPL VOL=15.2% , ACCOUNT ***1234")
	b := p.Parse("#401 SOLD -1 /ESM24 50 MAY 24 (Wk2) /E2BK24 5200 PUT @14.00 CME MARK=5205.00 IMPL VOL=15.9% , ACCOUNT ***1234")
	require.True(t, a.ParseOK, a.FailReason)
	require.True(t, b.ParseOK, b.FailReason)
	require.NotEqual(t, a.ContractCodeOrMultiplier, b.ContractCodeOrMultiplier)

	fa, err := n.Normalize(Input{Parsed: a, Timestamp: testTime})
	require.NoError(t, err)
	fb, err := n.Normalize(Input{Parsed: b, Timestamp: testTime.Add(time.Hour)})
	require.NoError(t, err)

	assert.True(t, dec("50").Equal(fa.ContractMultiplier))
	assert.True(t, dec("50").Equal(fb.ContractMultiplier))
	assert.Equal(t, "/ES", fa.FutRootSymbol)
	assert.Equal(t, domain.AssetClassFuture, fa.AssetClass)
	assert.Equal(t, fa.Key(), fb.Key())
}

func TestNormalize_Rejections(t *testing.T) {
	p := subject.NewParser()
	n := NewNormalizer(DefaultOptions())

	ok := p.Parse("#123 BOT +2 AAPL 100 17 MAY 24 500 PUT @.12")
	require.True(t, ok.ParseOK, ok.FailReason)

	tests := []struct {
		name    string
		in      Input
		wantErr error
	}{
		{
			name:    "not parsed",
			in:      Input{Parsed: p.Parse("#123 BOT +2 SPY 100 17 MAY 24 500 PUT"), Timestamp: testTime},
			wantErr: ErrNotParsed,
		},
		{
			name:    "missing timestamp",
			in:      Input{Parsed: ok, DefaultAccount: "A"},
			wantErr: ErrMissingTimestamp,
		},
		{
			name:    "missing account",
			in:      Input{Parsed: ok, Timestamp: testTime},
			wantErr: ErrMissingAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	f, err := n.Normalize(Input{Parsed: ok, Timestamp: testTime, DefaultAccount: "A"})
	require.NoError(t, err)
	assert.Equal(t, "A", f.Account)
}

func TestCorrect_FlatFileFill(t *testing.T) {
	n := NewNormalizer(DefaultOptions())

	f := domain.Fill{
		Symbol:             "/ESM24",
		ContractMultiplier: dec("20"),
		Account:            "1234",
		Side:               domain.SideBuy,
		QtyAbs:             1,
		QtySigned:          1,
		Price:              dec("12.5"),
		Timestamp:          testTime,
	}

	got := n.Correct(f)
	assert.True(t, dec("50").Equal(got.ContractMultiplier))
	assert.Equal(t, "/ES", got.FutRootSymbol)
	assert.NotEmpty(t, got.TradeHash)

	stock := n.Correct(domain.Fill{Symbol: "AAPL", Account: "1", Price: dec("1"), Timestamp: testTime})
	assert.True(t, dec("1").Equal(stock.ContractMultiplier))
	assert.Equal(t, domain.AssetClassEquity, stock.AssetClass)
}

func TestInferAssetClass(t *testing.T) {
	assert.Equal(t, domain.AssetClassFuture, InferAssetClass("/ESM24"))
	assert.Equal(t, domain.AssetClassIndex, InferAssetClass("SPX"))
	assert.Equal(t, domain.AssetClassIndex, InferAssetClass("vix"))
	assert.Equal(t, domain.AssetClassETF, InferAssetClass("QQQ"))
	assert.Equal(t, domain.AssetClassEquity, InferAssetClass("NVDA"))
}
