package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/verification"
)

// RenderCSV renders one row per round trip, in ledger order.
func RenderCSV(rts []*domain.RoundTrip) string {
	var sb strings.Builder

	// Header
	sb.WriteString("id,stable_id,account,symbol,contract_multiplier,is_option,expiry_date,strike,option_type,")
	sb.WriteString("qty_buy,qty_sell,buy_vwap,sell_vwap,gross_buy_value,gross_sell_value,realized_pnl_cash,")
	sb.WriteString("open_dt,close_dt,synthetic_expiration,legs\n")

	for _, rt := range rts {
		expiry := ""
		if rt.ExpiryDate != nil {
			expiry = rt.ExpiryDate.String()
		}
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s,%t,%s,%s,%s,%d,%d,%s,%s,%s,%s,%s,%s,%s,%t,%d\n",
			rt.ID,
			rt.StableID,
			rt.Account,
			rt.Symbol,
			rt.ContractMultiplier.String(),
			rt.IsOption,
			expiry,
			nullDecimal(rt.Strike),
			rt.OptionType,
			rt.QtyBuy,
			rt.QtySell,
			nullDecimal(rt.BuyVWAP),
			nullDecimal(rt.SellVWAP),
			rt.GrossBuyValue.String(),
			rt.GrossSellValue.String(),
			rt.RealizedPnLCash.StringFixed(2),
			formatTime(rt.OpenDT),
			formatTime(rt.CloseDT),
			rt.SyntheticExpiration,
			len(rt.Legs),
		))
	}

	return sb.String()
}

// RenderLegsCSV renders every leg of every round trip.
func RenderLegsCSV(rts []*domain.RoundTrip) string {
	var sb strings.Builder

	sb.WriteString("round_trip_id,stable_id,leg,trade_id,side,qty,price,cashflow_per_unit,contract_multiplier,timestamp,message_id,synthetic\n")

	for _, rt := range rts {
		for i, leg := range rt.Legs {
			sb.WriteString(fmt.Sprintf("%d,%s,%d,%s,%s,%d,%s,%s,%s,%s,%s,%t\n",
				rt.ID,
				rt.StableID,
				i,
				leg.TradeID,
				leg.Side,
				leg.Qty,
				leg.Price.String(),
				leg.CashflowPerUnit.String(),
				leg.ContractMultiplier.String(),
				formatTime(leg.Timestamp),
				leg.MessageID,
				verification.IsSyntheticLeg(leg),
			))
		}
	}

	return sb.String()
}

func nullDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
