package subject

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"trade-alert-ledger/internal/domain"
)

// Shared pattern fragments.
const (
	// numPattern accepts "1", "1.23" and ".45".
	numPattern = `(?:\d+(?:\.\d+)?|\.\d+)`

	sidePattern = `BOT|BUY|BTO|BTC|SOLD|SELL|STO|STC`

	monthPattern = `JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC`

	// headPattern matches "#<id> [noise] <side> <qty>".
	headPattern = `^#(?P<trade_id>\d+)\s+(?:[A-Za-z]+\s+)*?(?P<side>` + sidePattern + `)\s+(?P<qty>[+-]?\d+)\s+`

	// tailPattern matches the optional exchange, mark, implied volatility and
	// account. An all-caps exchange name may sit directly against MARK=
	// ("NASDAQ BXMARK=") or stand alone before the account.
	tailPattern = `(?:\s*(?:[A-Z]+(?: [A-Z]+)* ?)?MARK=(?P<mark>` + numPattern + `)|\s*[A-Z]+(?: [A-Z]+)*)?` +
		`(?:\s+IMPL VOL=(?P<iv>` + numPattern + `)%)?` +
		`(?:\s*,\s*ACCOUNT\s+(?P<account>\S+))?\s*$`
)

var months = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

var sides = map[string]domain.Side{
	"BOT": domain.SideBuy, "BUY": domain.SideBuy, "BTO": domain.SideBuy, "BTC": domain.SideBuy,
	"SOLD": domain.SideSell, "SELL": domain.SideSell, "STO": domain.SideSell, "STC": domain.SideSell,
}

// groups maps named capture groups to their values.
type groups map[string]string

func namedGroups(names []string, matches []string) groups {
	g := make(groups, len(names))
	for i, name := range names {
		if name != "" && i < len(matches) {
			g[name] = matches[i]
		}
	}
	return g
}

// head fills the fields shared by every format: trade id, side, quantity,
// mark, implied volatility and account. It returns false when the quantity is zero.
func (g groups) head(pf *domain.ParsedFill) bool {
	pf.TradeID = g["trade_id"]
	pf.Side = sides[g["side"]]

	qtySigned, qtyAbs, ok := parseQty(g["qty"], pf.Side)
	if !ok {
		return false
	}
	pf.QtySigned = qtySigned
	pf.QtyAbs = qtyAbs

	pf.UnderlyingMark = parseDecimal(g["mark"])
	pf.ImpliedVolPct = parseDecimal(g["iv"])
	pf.Account = stripAccountMask(g["account"])
	return true
}

// parseQty applies the sign rule: an explicit sign wins, otherwise the side decides.
func parseQty(raw string, side domain.Side) (int64, uint64, bool) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n == 0 || n == math.MinInt64 {
		return 0, 0, false
	}
	abs := n
	if abs < 0 {
		abs = -abs
	}
	if strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "-") {
		return n, uint64(abs), true
	}
	if side == domain.SideSell {
		return -abs, uint64(abs), true
	}
	return abs, uint64(abs), true
}

// parseDecimal returns an invalid NullDecimal for empty or malformed input.
func parseDecimal(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// stripAccountMask removes leading mask characters ("*****0960" -> "0960").
func stripAccountMask(s string) string {
	return strings.TrimLeft(strings.TrimSpace(s), "*")
}

// explicitDate resolves "17 MAY 24". Returns false for impossible dates.
func explicitDate(day, mon, yy string) (domain.Date, bool) {
	m, ok := months[mon]
	if !ok {
		return domain.Date{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return domain.Date{}, false
	}
	y, err := strconv.Atoi(yy)
	if err != nil {
		return domain.Date{}, false
	}
	date := domain.NewDate(2000+y, m, d)
	if date.Day != d || date.Month != m {
		return domain.Date{}, false
	}
	return date, true
}

func failed(pf domain.ParsedFill, reason string) domain.ParsedFill {
	pf.ParseOK = false
	pf.FailReason = reason
	pf.Format = ""
	return pf
}
