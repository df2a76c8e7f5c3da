package subject

import (
	"regexp"

	"trade-alert-ledger/internal/domain"
)

// diagnoser scans a subject that no format matched and names the first
// missing or invalid core field. Fields it does find are kept on the record.
type diagnoser struct {
	tradeID    *regexp.Regexp
	side       *regexp.Regexp
	qty        *regexp.Regexp
	symbol     *regexp.Regexp
	optionType *regexp.Regexp
	expiry     *regexp.Regexp
	strike     *regexp.Regexp
	strikeDate *regexp.Regexp
	yearTail   *regexp.Regexp
	price      *regexp.Regexp
}

func newDiagnoser() *diagnoser {
	return &diagnoser{
		tradeID:    regexp.MustCompile(`#(\d+)`),
		side:       regexp.MustCompile(`\b(` + sidePattern + `)\b`),
		qty:        regexp.MustCompile(`\b(?:` + sidePattern + `)\s+([+-]?\d+)\b`),
		symbol:     regexp.MustCompile(`\b(?:` + sidePattern + `)\s+[+-]?\d+\s+(/?[A-Z][A-Z0-9.]*)`),
		optionType: regexp.MustCompile(`\b(PUT|CALL)\b`),
		expiry:     regexp.MustCompile(`\b(?:` + monthPattern + `)\s+\d{2}\b|\(Wk\s*\d\)|\(Weeklys\)`),
		strike:     regexp.MustCompile(`(` + numPattern + `)\s+(?:PUT|CALL)\b`),
		strikeDate: regexp.MustCompile(`\b\d{1,2}\s+(?:` + monthPattern + `)\s+\d{2}\s+(` + numPattern + `)\b`),
		yearTail:   regexp.MustCompile(`\b(?:` + monthPattern + `)\s+$`),
		price:      regexp.MustCompile(`@\s*(` + numPattern + `)`),
	}
}

func (d *diagnoser) diagnose(s string) domain.ParsedFill {
	var pf domain.ParsedFill

	idMatch := d.tradeID.FindStringSubmatch(s)
	sideMatch := d.side.FindStringSubmatch(s)
	if idMatch == nil && sideMatch == nil {
		return failed(pf, ReasonNoPatternMatched)
	}

	if idMatch == nil {
		return failed(pf, ReasonMissingTradeID)
	}
	pf.TradeID = idMatch[1]

	if sideMatch == nil {
		return failed(pf, ReasonMissingSide)
	}
	pf.Side = sides[sideMatch[1]]

	qtyMatch := d.qty.FindStringSubmatch(s)
	if qtyMatch == nil {
		return failed(pf, ReasonMissingQty)
	}
	signed, abs, ok := parseQty(qtyMatch[1], pf.Side)
	if !ok {
		return failed(pf, ReasonInvalidQty)
	}
	pf.QtySigned, pf.QtyAbs = signed, abs

	symMatch := d.symbol.FindStringSubmatch(s)
	if symMatch == nil {
		return failed(pf, ReasonMissingSymbol)
	}
	pf.Symbol = symMatch[1]

	hasType := d.optionType.MatchString(s)
	if hasType || d.expiry.MatchString(s) {
		pf.IsOption = true

		strike, ok := d.findStrike(s)
		if !ok {
			return failed(pf, ReasonMissingStrike)
		}
		pf.Strike = parseDecimal(strike)

		if !hasType {
			return failed(pf, ReasonMissingOptionType)
		}
		pf.OptionType = domain.OptionType(d.optionType.FindStringSubmatch(s)[1])
	}

	priceMatch := d.price.FindStringSubmatch(s)
	if priceMatch == nil {
		return failed(pf, ReasonMissingPrice)
	}
	pf.Price = parseDecimal(priceMatch[1])

	return failed(pf, ReasonNoPatternMatched)
}

// findStrike returns the number before PUT/CALL, or the number following an
// explicit expiry date. A two-digit year directly before PUT/CALL is not a strike.
func (d *diagnoser) findStrike(s string) (string, bool) {
	if loc := d.strike.FindStringSubmatchIndex(s); loc != nil {
		if !d.yearTail.MatchString(s[:loc[2]]) {
			return s[loc[2]:loc[3]], true
		}
	}
	if m := d.strikeDate.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}
