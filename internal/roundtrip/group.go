package roundtrip

import (
	"time"

	"github.com/shopspring/decimal"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/idhash"
)

// Rounding applied at finalization.
const (
	VWAPPlaces = 6
	PnLPlaces  = 2
)

// group holds the running totals of one position identity during a pass.
type group struct {
	key   domain.Key
	order int         // arrival index of the first fill
	proto domain.Fill // first fill; carries descriptive fields and the zone

	qtyBuy       uint64
	qtySell      uint64
	buyNotional  decimal.Decimal // sum(price * qty), pre-multiplier
	sellNotional decimal.Decimal
	cashflow     decimal.Decimal // sum(price * qty * multiplier * sign)

	openDT  time.Time
	closeDT time.Time
	legs    []domain.Leg
}

func newGroup(key domain.Key, order int, f domain.Fill) *group {
	return &group{
		key:          key,
		order:        order,
		proto:        f,
		buyNotional:  decimal.Zero,
		sellNotional: decimal.Zero,
		cashflow:     decimal.Zero,
		openDT:       f.Timestamp,
		closeDT:      f.Timestamp,
	}
}

func (g *group) add(f domain.Fill) {
	qty := decimal.NewFromInt(int64(f.QtyAbs))
	notional := f.Price.Mul(qty)
	perUnit := f.Price.Mul(f.ContractMultiplier).Mul(decimal.NewFromInt(f.Side.Sign()))

	switch f.Side {
	case domain.SideBuy:
		g.qtyBuy += f.QtyAbs
		g.buyNotional = g.buyNotional.Add(notional)
	case domain.SideSell:
		g.qtySell += f.QtyAbs
		g.sellNotional = g.sellNotional.Add(notional)
	}
	g.cashflow = g.cashflow.Add(perUnit.Mul(qty))

	if f.Timestamp.Before(g.openDT) {
		g.openDT = f.Timestamp
	}
	if f.Timestamp.After(g.closeDT) {
		g.closeDT = f.Timestamp
	}

	g.legs = append(g.legs, domain.Leg{
		TradeID:            f.TradeID,
		Side:               f.Side,
		Qty:                f.QtyAbs,
		Price:              f.Price,
		CashflowPerUnit:    perUnit,
		ContractMultiplier: f.ContractMultiplier,
		UnderlyingMark:     f.UnderlyingMark,
		ImpliedVolPct:      f.ImpliedVolPct,
		Timestamp:          f.Timestamp,
		MessageID:          legMessageID(f),
		Subject:            f.Subject,
	})
}

// legMessageID keeps a real leg distinguishable from a synthetic one when the
// fill arrived without a message id, by falling back to its trade hash.
func legMessageID(f domain.Fill) string {
	if f.MessageID != "" {
		return f.MessageID
	}
	if f.TradeHash != "" {
		return f.TradeHash
	}
	return idhash.FillHash(f)
}

// merge folds o into g. The caller guarantees g.order < o.order, so g keeps
// its prototype and o's legs follow g's.
func (g *group) merge(o *group) {
	g.qtyBuy += o.qtyBuy
	g.qtySell += o.qtySell
	g.buyNotional = g.buyNotional.Add(o.buyNotional)
	g.sellNotional = g.sellNotional.Add(o.sellNotional)
	g.cashflow = g.cashflow.Add(o.cashflow)

	if o.openDT.Before(g.openDT) {
		g.openDT = o.openDT
	}
	if o.closeDT.After(g.closeDT) {
		g.closeDT = o.closeDT
	}
	g.legs = append(g.legs, o.legs...)
}

// finalize produces the round trip, injecting a synthetic expiration leg when
// the position is still open after its expiry end-of-day.
func (g *group) finalize(id int, stableID string, asOf time.Time) *domain.RoundTrip {
	legs := make([]domain.Leg, len(g.legs), len(g.legs)+1)
	copy(legs, g.legs)

	rt := &domain.RoundTrip{
		ID:                 id,
		StableID:           stableID,
		Account:            g.proto.Account,
		Symbol:             g.proto.Symbol,
		ContractMultiplier: g.proto.ContractMultiplier,
		IsOption:           g.proto.IsOption,
		ExpiryDate:         g.proto.ExpiryDate,
		Strike:             g.proto.Strike,
		OptionType:         g.proto.OptionType,
		FutRootSymbol:      g.proto.FutRootSymbol,
		QtyBuy:             g.qtyBuy,
		QtySell:            g.qtySell,
		BuyVWAP:            VWAP(g.buyNotional, g.qtyBuy),
		SellVWAP:           VWAP(g.sellNotional, g.qtySell),
		GrossBuyValue:      g.buyNotional,
		GrossSellValue:     g.sellNotional,
		RealizedPnLCash:    g.cashflow.Round(PnLPlaces),
		OpenDT:             g.openDT,
		CloseDT:            g.closeDT,
		Legs:               legs,
	}

	net := rt.NetQty()
	if net == 0 || g.proto.ExpiryDate == nil {
		return rt
	}

	expiresAt := g.proto.ExpiryDate.EndOfDay(g.proto.Timestamp.Location())
	if !expiresAt.Before(asOf) {
		return rt
	}

	leg := syntheticLeg(net, g.proto.ContractMultiplier, expiresAt)
	if leg.Side == domain.SideSell {
		rt.QtySell += leg.Qty
	} else {
		rt.QtyBuy += leg.Qty
	}
	if expiresAt.After(rt.CloseDT) {
		rt.CloseDT = expiresAt
	}
	rt.Legs = append(rt.Legs, leg)
	rt.SyntheticExpiration = true

	return rt
}

// syntheticLeg flattens a net position at zero price.
func syntheticLeg(net int64, multiplier decimal.Decimal, at time.Time) domain.Leg {
	side := domain.SideSell
	qty := net
	if net < 0 {
		side = domain.SideBuy
		qty = -net
	}
	return domain.Leg{
		TradeID:            domain.SyntheticTradeID,
		Side:               side,
		Qty:                uint64(qty),
		Price:              decimal.Zero,
		CashflowPerUnit:    decimal.Zero,
		ContractMultiplier: multiplier,
		Timestamp:          at,
		Subject:            domain.SyntheticSubject,
	}
}

// VWAP returns notional / qty rounded half-up to 6 places, or null when qty is 0.
func VWAP(notional decimal.Decimal, qty uint64) decimal.NullDecimal {
	if qty == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(notional.DivRound(decimal.NewFromInt(int64(qty)), VWAPPlaces))
}
