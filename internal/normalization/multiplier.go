package normalization

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"trade-alert-ledger/internal/domain"
)

var (
	fractionToken = regexp.MustCompile(`^(\d+)/(\d+)$`)
	numberToken   = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	contractCode  = regexp.MustCompile(`^(/[A-Z0-9]+?)[FGHJKMNQUVXZ]\d{1,2}$`)
)

// ParseMultiplierToken resolves a raw multiplier string. A fractional token
// "a/b" (points per contract) resolves to b/a and takes priority over a
// trailing integer token. Returns false when nothing positive is found.
func ParseMultiplierToken(raw string) (decimal.Decimal, bool) {
	fields := strings.Fields(raw)

	for _, tok := range fields {
		m := fractionToken.FindStringSubmatch(tok)
		if m == nil {
			continue
		}
		num, _ := decimal.NewFromString(m[1])
		den, _ := decimal.NewFromString(m[2])
		if num.IsZero() || den.IsZero() {
			continue
		}
		return den.Div(num), true
	}

	for i := len(fields) - 1; i >= 0; i-- {
		if !numberToken.MatchString(fields[i]) {
			continue
		}
		d, err := decimal.NewFromString(fields[i])
		if err != nil || !d.IsPositive() {
			continue
		}
		return d, true
	}

	return decimal.Decimal{}, false
}

// ResolveFutRoot returns the futures root of a contract symbol ("/ESM24" -> "/ES").
// Known roots are matched longest first; otherwise the month code and year are
// stripped. Symbols without the root marker return "".
func (n *Normalizer) ResolveFutRoot(symbol string) string {
	if !strings.HasPrefix(symbol, "/") {
		return ""
	}
	for _, root := range n.roots {
		if strings.HasPrefix(symbol, root) {
			return root
		}
	}
	if m := contractCode.FindStringSubmatch(symbol); m != nil {
		return m[1]
	}
	return symbol
}

// Multiplier applies the correction rules in priority order: a fixed futures
// root value, then the index/ETF alias value, then the parsed token, then the
// default. The second return is false when the default was used.
func (n *Normalizer) Multiplier(symbol, futRoot, raw string) (decimal.Decimal, bool) {
	if futRoot != "" {
		if m, ok := n.opts.FixedRootMultipliers[futRoot]; ok {
			return m, true
		}
	}
	if _, ok := n.aliases[strings.ToUpper(symbol)]; ok {
		return n.opts.IndexMultiplier, true
	}
	if m, ok := ParseMultiplierToken(raw); ok {
		return m, true
	}
	return n.opts.DefaultMultiplier, false
}

// InferAssetClass classifies a symbol.
func InferAssetClass(symbol string) domain.AssetClass {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasPrefix(s, "/") {
		return domain.AssetClassFuture
	}
	switch s {
	case "SPX", "SPXW", "NDX", "RUT", "VIX", "XSP":
		return domain.AssetClassIndex
	case "SPY", "QQQ", "IWM", "DIA":
		return domain.AssetClassETF
	}
	return domain.AssetClassEquity
}
