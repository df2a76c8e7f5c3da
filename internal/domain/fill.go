package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParsedFill is the canonical record extracted from one alert subject line.
// It is produced once per input line and never mutated.
type ParsedFill struct {
	TradeID   string
	Side      Side
	QtyAbs    uint64
	QtySigned int64 // positive for BUY, negative for SELL
	Symbol    string

	// ContractCodeOrMultiplier is the raw multiplier token as it appeared in the
	// subject ("100", "1/50"). The normalizer resolves it.
	ContractCodeOrMultiplier string

	ExpiryDate     *Date
	Strike         decimal.NullDecimal
	OptionType     OptionType
	Price          decimal.NullDecimal
	UnderlyingMark decimal.NullDecimal
	ImpliedVolPct  decimal.NullDecimal // raw percentage, 13.29 means 13.29%
	Account        string              // mask characters stripped; empty if absent

	IsOption   bool
	ParseOK    bool
	FailReason string // empty when ParseOK
	Format     string // format family that matched; empty on failure
}

// Fill is a normalized executed transaction, the input of round-trip aggregation.
type Fill struct {
	TradeID   string
	Side      Side
	QtyAbs    uint64
	QtySigned int64
	Symbol    string
	Account   string

	ContractMultiplier decimal.Decimal // corrected per known-instrument rules
	IsOption           bool
	ExpiryDate         *Date
	Strike             decimal.NullDecimal
	OptionType         OptionType
	FutRootSymbol      string // resolved futures root, e.g. "/ES"; empty otherwise
	AssetClass         AssetClass

	Price          decimal.Decimal
	UnderlyingMark decimal.NullDecimal
	ImpliedVolPct  decimal.NullDecimal

	Timestamp time.Time // zone of the alert is preserved
	MessageID string
	Subject   string

	// TradeHash is the idempotency key used when persisting fills.
	TradeHash string
}

// Key returns the position identity of the fill.
func (f Fill) Key() Key {
	k := Key{
		Account:    f.Account,
		Symbol:     f.Symbol,
		Multiplier: f.ContractMultiplier.String(),
		IsOption:   f.IsOption,
		OptionType: f.OptionType,
	}
	if f.ExpiryDate != nil {
		k.Expiry = f.ExpiryDate.String()
	}
	if f.Strike.Valid {
		k.Strike = f.Strike.Decimal.String()
	}
	return k
}

// ContractString returns a human readable instrument description, e.g.
// "SPY 2024-05-17 500 PUT x100" or "AAPL x1".
func (f Fill) ContractString() string {
	var sb strings.Builder
	sb.WriteString(f.Symbol)
	if f.IsOption {
		if f.ExpiryDate != nil {
			sb.WriteString(" ")
			sb.WriteString(f.ExpiryDate.String())
		}
		if f.Strike.Valid {
			sb.WriteString(" ")
			sb.WriteString(f.Strike.Decimal.String())
		}
		if f.OptionType != OptionTypeNone {
			sb.WriteString(" ")
			sb.WriteString(string(f.OptionType))
		}
	}
	sb.WriteString(" x")
	sb.WriteString(f.ContractMultiplier.String())
	return sb.String()
}
