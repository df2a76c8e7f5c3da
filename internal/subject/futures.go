package subject

import (
	"regexp"
	"strconv"

	"trade-alert-ledger/internal/domain"
)

// FormatFuturesOption is the futures option family. The expiry is either an
// explicit day or a month with a weekly ordinal:
//
//	#<id> SOLD -1 /ESM24 1/50 MAY 24 (Thursday) (Wk2) /E2BK24 5200 PUT @12.50 CME MARK=5210.25 IMPL VOL=15.2% , ACCOUNT ***1234
const FormatFuturesOption = "FUTURES_OPTION"

type futuresOptionFormat struct {
	pattern  *regexp.Regexp
	week     *regexp.Regexp
	thursday *regexp.Regexp
}

func newFuturesOptionFormat() *futuresOptionFormat {
	return &futuresOptionFormat{
		pattern: regexp.MustCompile(headPattern +
			`(?P<symbol>/[A-Z]{1,4}[FGHJKMNQUVXZ]\d{1,2})\s+(?P<mult>\d+/\d+|\d+)\s+` +
			`(?:(?P<day>\d{1,2})\s+)?(?P<mon>[A-Z]{3})\s+(?P<yy>\d{2})` +
			`(?P<tags>(?:\s+\([^)]*\))*)\s+(?:(?P<optroot>/[A-Z0-9]+)\s+)?` +
			`(?P<strike>` + numPattern + `)\s+(?P<otype>PUT|CALL)\s*@\s*(?P<price>` + numPattern + `)` +
			tailPattern),
		week:     regexp.MustCompile(`(?i)\((?:Wk|Wkly|Weeklys)\s*(\d)\)`),
		thursday: regexp.MustCompile(`(?i)\(Thursday\)`),
	}
}

func (f *futuresOptionFormat) Name() string { return FormatFuturesOption }

func (f *futuresOptionFormat) Match(s string) (domain.ParsedFill, bool) {
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

	expiry, ok := f.expiry(g)
	if !ok {
		return failed(pf, ReasonInvalidExpiry), true
	}
	pf.ExpiryDate = expiry

	pf.ParseOK = true
	pf.Format = FormatFuturesOption
	return pf, true
}

// expiry resolves the explicit day when present, else the weekly ordinal.
// A month without either is a monthly contract with no resolvable day (nil, true).
func (f *futuresOptionFormat) expiry(g groups) (*domain.Date, bool) {
	if g["day"] != "" {
		d, ok := explicitDate(g["day"], g["mon"], g["yy"])
		if !ok {
			return nil, false
		}
		return &d, true
	}

	wm := f.week.FindStringSubmatch(g["tags"])
	if wm == nil {
		return nil, true
	}

	month, ok := months[g["mon"]]
	if !ok {
		return nil, false
	}
	yy, err := strconv.Atoi(g["yy"])
	if err != nil {
		return nil, false
	}
	n, err := strconv.Atoi(wm[1])
	if err != nil {
		return nil, false
	}

	d, ok := WeeklyExpiry(2000+yy, month, n, f.thursday.MatchString(g["tags"]))
	if !ok {
		return nil, false
	}
	return &d, true
}
