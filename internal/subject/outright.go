package subject

import (
	"regexp"

	"trade-alert-ledger/internal/domain"
)

// FormatOutright is a non-option fill (stock, ETF or future):
//
//	#<id> BOT +100 AAPL @187.44 NASDAQ , ACCOUNT ***1234
const FormatOutright = "OUTRIGHT"

type outrightFormat struct {
	pattern *regexp.Regexp
}

func newOutrightFormat() *outrightFormat {
	return &outrightFormat{
		pattern: regexp.MustCompile(headPattern +
			`(?P<symbol>/?[A-Z][A-Z0-9.]*)\s*@\s*(?P<price>` + numPattern + `)` +
			tailPattern),
	}
}

func (f *outrightFormat) Name() string { return FormatOutright }

func (f *outrightFormat) Match(s string) (domain.ParsedFill, bool) {
	m := f.pattern.FindStringSubmatch(s)
	if m == nil {
		return domain.ParsedFill{}, false
	}
	g := namedGroups(f.pattern.SubexpNames(), m)

	pf := domain.ParsedFill{
		Symbol: g["symbol"],
		Price:  parseDecimal(g["price"]),
	}
	if !g.head(&pf) {
		return failed(pf, ReasonInvalidQty), true
	}

	pf.ParseOK = true
	pf.Format = FormatOutright
	return pf, true
}
