package normalization

import "github.com/shopspring/decimal"

// Options controls instrument-specific multiplier corrections.
type Options struct {
	// FixedRootMultipliers forces the multiplier for a resolved futures root.
	FixedRootMultipliers map[string]decimal.Decimal
	// IndexAliases are cash-settled index/ETF symbols forced to IndexMultiplier.
	IndexAliases    []string
	IndexMultiplier decimal.Decimal
	// FuturesRoots are the known root codes, matched longest first.
	FuturesRoots []string
	// DefaultMultiplier applies when the parsed token is absent or non-numeric.
	DefaultMultiplier decimal.Decimal
}

// DefaultOptions returns the standard correction tables.
func DefaultOptions() Options {
	return Options{
		FixedRootMultipliers: map[string]decimal.Decimal{
			"/ES":  decimal.NewFromInt(50),
			"/MES": decimal.NewFromInt(5),
			"/NQ":  decimal.NewFromInt(20),
			"/MNQ": decimal.NewFromInt(2),
		},
		IndexAliases:      []string{"SPX", "SPY"},
		IndexMultiplier:   decimal.NewFromInt(100),
		FuturesRoots:      []string{"/ES", "/NQ", "/MNQ", "/MES", "/CL", "/GC", "/YM", "/RTY", "/EW", "/QN"},
		DefaultMultiplier: decimal.NewFromInt(1),
	}
}
