package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SyntheticTradeID marks a leg injected to flatten an expired open position.
const SyntheticTradeID = "SYN_EXP"

// SyntheticSubject is the fixed description carried by synthetic legs.
const SyntheticSubject = "Synthetic expiration at $0.00"

// Key is the position identity shared by all fills of one round trip.
// Decimal components are held in canonical string form so Key is comparable.
type Key struct {
	Account    string
	Symbol     string
	Multiplier string
	IsOption   bool
	Expiry     string // YYYY-MM-DD, empty when undated
	Strike     string // empty for non-options
	OptionType OptionType
}

// String returns a pipe-delimited representation of the key.
func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s|%t|%s|%s|%s",
		k.Account, k.Symbol, k.Multiplier, k.IsOption, k.Expiry, k.Strike, k.OptionType)
}

// Leg is one fill as recorded inside a round trip.
type Leg struct {
	TradeID            string              `json:"trade_id"`
	Side               Side                `json:"side"`
	Qty                uint64              `json:"qty"`
	Price              decimal.Decimal     `json:"price"`
	CashflowPerUnit    decimal.Decimal     `json:"cashflow_per_unit"` // price * multiplier * (+1 SELL, -1 BUY)
	ContractMultiplier decimal.Decimal     `json:"contract_multiplier"`
	UnderlyingMark     decimal.NullDecimal `json:"underlying_mark"`
	ImpliedVolPct      decimal.NullDecimal `json:"implied_vol_pct"`
	Timestamp          time.Time           `json:"timestamp"`
	MessageID          string              `json:"message_id,omitempty"`
	Subject            string              `json:"subject,omitempty"`
}

// RoundTrip aggregates every fill of one position identity.
type RoundTrip struct {
	ID       int    `json:"id"`        // sequential within one aggregation run
	StableID string `json:"stable_id"` // deterministic hash of the identity key

	Account            string              `json:"account"`
	Symbol             string              `json:"symbol"`
	ContractMultiplier decimal.Decimal     `json:"contract_multiplier"`
	IsOption           bool                `json:"is_option"`
	ExpiryDate         *Date               `json:"expiry_date"`
	Strike             decimal.NullDecimal `json:"strike"`
	OptionType         OptionType          `json:"option_type,omitempty"`
	FutRootSymbol      string              `json:"fut_root_symbol,omitempty"`

	QtyBuy          uint64              `json:"qty_buy"`
	QtySell         uint64              `json:"qty_sell"`
	BuyVWAP         decimal.NullDecimal `json:"buy_vwap"`
	SellVWAP        decimal.NullDecimal `json:"sell_vwap"`
	GrossBuyValue   decimal.Decimal     `json:"gross_buy_value"`
	GrossSellValue  decimal.Decimal     `json:"gross_sell_value"`
	RealizedPnLCash decimal.Decimal     `json:"realized_pnl_cash"`

	OpenDT              time.Time `json:"open_dt"`
	CloseDT             time.Time `json:"close_dt"`
	SyntheticExpiration bool      `json:"synthetic_expiration"`

	Legs []Leg `json:"legs"`
}

// Key returns the identity key of the round trip.
func (rt *RoundTrip) Key() Key {
	k := Key{
		Account:    rt.Account,
		Symbol:     rt.Symbol,
		Multiplier: rt.ContractMultiplier.String(),
		IsOption:   rt.IsOption,
		OptionType: rt.OptionType,
	}
	if rt.ExpiryDate != nil {
		k.Expiry = rt.ExpiryDate.String()
	}
	if rt.Strike.Valid {
		k.Strike = rt.Strike.Decimal.String()
	}
	return k
}

// NetQty returns qty_buy - qty_sell.
func (rt *RoundTrip) NetQty() int64 {
	return int64(rt.QtyBuy) - int64(rt.QtySell)
}
