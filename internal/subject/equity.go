package subject

import (
	"regexp"

	"trade-alert-ledger/internal/domain"
)

// FormatEquityOption is the equity/ETF/index option family:
//
//	#<id> BOT +2 SPY 100 (Weeklys) 17 MAY 24 500 PUT @.12CBOEMARK=520.79 IMPL VOL=13.29% , ACCOUNT *****0960
const FormatEquityOption = "EQUITY_OPTION"

type equityOptionFormat struct {
	pattern *regexp.Regexp
}

func newEquityOptionFormat() *equityOptionFormat {
	return &equityOptionFormat{
		pattern: regexp.MustCompile(headPattern +
			`(?P<symbol>[A-Z][A-Z0-9.]*)\s+(?P<mult>\d+)(?:\s+\(Weeklys\))?\s+` +
			`(?P<day>\d{1,2})\s+(?P<mon>[A-Z]{3})\s+(?P<yy>\d{2})\s+` +
			`(?P<strike>` + numPattern + `)\s+(?P<otype>PUT|CALL)\s*@\s*(?P<price>` + numPattern + `)` +
			tailPattern),
	}
}

func (f *equityOptionFormat) Name() string { return FormatEquityOption }

func (f *equityOptionFormat) Match(s string) (domain.ParsedFill, bool) {
	m := f.pattern.FindStringSubmatch(s)
	if m == nil {
		return domain.ParsedFill{}, false
	}
	g := namedGroups(f.pattern.SubexpNames(), m)

	pf := domain.ParsedFill{
		Symbol:                   g["symbol"],
		ContractCodeOrMultiplier: g["mult"],
		IsOption:                 true,
		Strike:                   parseDecimal(g["strike"]),
		OptionType:               domain.OptionType(g["otype"]),
		Price:                    parseDecimal(g["price"]),
	}
	if !g.head(&pf) {
		return failed(pf, ReasonInvalidQty), true
	}

	expiry, ok := explicitDate(g["day"], g["mon"], g["yy"])
	if !ok {
		return failed(pf, ReasonInvalidExpiry), true
	}
	pf.ExpiryDate = &expiry

	pf.ParseOK = true
	pf.Format = FormatEquityOption
	return pf, true
}
