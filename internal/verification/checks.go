package verification

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"trade-alert-ledger/internal/domain"
)

// recomputed holds aggregates derived directly from legs.
type recomputed struct {
	buyQty, sellQty       uint64 // real legs
	synBuyQty, synSellQty uint64 // synthetic legs
	buyValue, sellValue   decimal.Decimal
	pnl                   decimal.Decimal
	netAll                int64 // all legs, synthetic included
}

func recompute(rt *domain.RoundTrip) recomputed {
	r := recomputed{
		buyValue:  decimal.Zero,
		sellValue: decimal.Zero,
		pnl:       decimal.Zero,
	}

	for _, leg := range rt.Legs {
		if leg.Side == domain.SideBuy {
			r.netAll += int64(leg.Qty)
		} else {
			r.netAll -= int64(leg.Qty)
		}

		if IsSyntheticLeg(leg) {
			if leg.Side == domain.SideBuy {
				r.synBuyQty += leg.Qty
			} else {
				r.synSellQty += leg.Qty
			}
			continue
		}

		qty := decimal.NewFromInt(int64(leg.Qty))
		value := leg.Price.Mul(qty)
		mult := leg.ContractMultiplier
		if mult.IsZero() {
			mult = rt.ContractMultiplier
		}

		if leg.Side == domain.SideBuy {
			r.buyQty += leg.Qty
			r.buyValue = r.buyValue.Add(value)
			r.pnl = r.pnl.Sub(value.Mul(mult))
		} else {
			r.sellQty += leg.Qty
			r.sellValue = r.sellValue.Add(value)
			r.pnl = r.pnl.Add(value.Mul(mult))
		}
	}

	return r
}

// checker accumulates issues for one round trip.
type checker struct {
	rt     *domain.RoundTrip
	issues []Issue
}

func (c *checker) add(field, format string, args ...interface{}) {
	c.issues = append(c.issues, Issue{
		RoundTripID: c.rt.ID,
		Field:       field,
		Description: fmt.Sprintf(format, args...),
	})
}

func (c *checker) checkRequired() {
	rt := c.rt
	if rt.Account == "" {
		c.add("account", "missing account")
	}
	if rt.Symbol == "" {
		c.add("symbol", "missing symbol")
	}
	if !rt.ContractMultiplier.IsPositive() {
		c.add("contract_multiplier", "contract_multiplier must be positive, got %s", rt.ContractMultiplier)
	}
	if len(rt.Legs) == 0 {
		c.add("legs", "round trip has no legs")
	}
	if rt.IsOption {
		if !rt.Strike.Valid {
			c.add("strike", "option round trip missing strike")
		}
		if !rt.OptionType.IsValid() {
			c.add("option_type", "option round trip has invalid option_type %q", rt.OptionType)
		}
	}
	for i, leg := range rt.Legs {
		if !leg.Side.IsValid() {
			c.add("legs", "leg %d has invalid side %q", i, leg.Side)
		}
		if leg.Timestamp.IsZero() {
			c.add("legs", "leg %d missing timestamp", i)
		}
	}
}

func (c *checker) checkTimestamps() {
	rt := c.rt
	if rt.OpenDT.IsZero() {
		c.add("open_dt", "missing open_dt")
	}
	if rt.CloseDT.IsZero() {
		c.add("close_dt", "missing close_dt")
	}
	if !rt.OpenDT.IsZero() && !rt.CloseDT.IsZero() && rt.OpenDT.After(rt.CloseDT) {
		c.add("open_dt", "open_dt %s is after close_dt %s",
			rt.OpenDT.Format(time.RFC3339), rt.CloseDT.Format(time.RFC3339))
	}
}

// checkQuantities compares stored counts with real plus synthetic leg quantity.
func (c *checker) checkQuantities(r recomputed) {
	if want := r.buyQty + r.synBuyQty; c.rt.QtyBuy != want {
		c.add("qty_buy", "qty_buy mismatch: stored %d, recomputed %d", c.rt.QtyBuy, want)
	}
	if want := r.sellQty + r.synSellQty; c.rt.QtySell != want {
		c.add("qty_sell", "qty_sell mismatch: stored %d, recomputed %d", c.rt.QtySell, want)
	}
}

func (c *checker) checkValues(r recomputed, tol decimal.Decimal) {
	if !within(c.rt.GrossBuyValue, r.buyValue, tol) {
		c.add("gross_buy_value", "gross_buy_value mismatch: stored %s, recomputed %s", c.rt.GrossBuyValue, r.buyValue)
	}
	if !within(c.rt.GrossSellValue, r.sellValue, tol) {
		c.add("gross_sell_value", "gross_sell_value mismatch: stored %s, recomputed %s", c.rt.GrossSellValue, r.sellValue)
	}
}

func (c *checker) checkVWAPs(r recomputed, tol decimal.Decimal) {
	c.compareVWAP("buy_vwap", c.rt.BuyVWAP, r.buyValue, r.buyQty, tol)
	c.compareVWAP("sell_vwap", c.rt.SellVWAP, r.sellValue, r.sellQty, tol)
}

func (c *checker) compareVWAP(field string, stored decimal.NullDecimal, value decimal.Decimal, qty uint64, tol decimal.Decimal) {
	if qty == 0 {
		if stored.Valid {
			c.add(field, "%s is %s but there are no real legs on that side", field, stored.Decimal)
		}
		return
	}

	want := value.Div(decimal.NewFromInt(int64(qty)))
	if !stored.Valid {
		c.add(field, "%s missing, recomputed %s", field, want.StringFixed(6))
		return
	}
	if !within(stored.Decimal, want, tol) {
		c.add(field, "%s mismatch: stored %s, recomputed %s", field, stored.Decimal, want.StringFixed(6))
	}
}

func (c *checker) checkPnL(r recomputed, tol decimal.Decimal) {
	if !within(c.rt.RealizedPnLCash, r.pnl, tol) {
		c.add("realized_pnl_cash", "realized_pnl_cash mismatch: stored %s, recomputed %s",
			c.rt.RealizedPnLCash, r.pnl.StringFixed(2))
	}
}

// checkLegCashflows verifies cashflow_per_unit = price * multiplier * sign on real legs.
func (c *checker) checkLegCashflows(tol decimal.Decimal) {
	for i, leg := range c.rt.Legs {
		if IsSyntheticLeg(leg) || !leg.Side.IsValid() {
			continue
		}
		want := leg.Price.Mul(leg.ContractMultiplier).Mul(decimal.NewFromInt(leg.Side.Sign()))
		if !within(leg.CashflowPerUnit, want, tol) {
			c.add("cashflow_per_unit", "leg %d (%s) cashflow_per_unit mismatch: stored %s, recomputed %s",
				i, leg.TradeID, leg.CashflowPerUnit, want)
		}
	}
}

func (c *checker) checkSyntheticFlat(r recomputed) {
	if c.rt.SyntheticExpiration && r.netAll != 0 {
		c.add("synthetic_expiration", "synthetic_expiration set but net qty including synthetic leg is %d", r.netAll)
	}
}

// within reports whether |a - b| <= tol.
func within(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}
