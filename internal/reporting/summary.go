package reporting

import (
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/verification"
)

// BuildSummary computes overall and per-account statistics for a ledger.
func BuildSummary(rts []*domain.RoundTrip, issues []verification.Issue) Summary {
	byAccount := make(map[string][]*domain.RoundTrip)
	for _, rt := range rts {
		if rt == nil {
			continue
		}
		byAccount[rt.Account] = append(byAccount[rt.Account], rt)
	}

	accounts := make([]string, 0, len(byAccount))
	for a := range byAccount {
		accounts = append(accounts, a)
	}
	sort.Strings(accounts)

	s := Summary{
		Totals: summarize("", rts),
		Issues: issues,
	}
	for _, a := range accounts {
		s.Accounts = append(s.Accounts, summarize(a, byAccount[a]))
	}
	return s
}

func summarize(account string, rts []*domain.RoundTrip) SummaryRow {
	row := SummaryRow{Account: account, TotalPnL: decimal.Zero}

	var pnls []float64
	for _, rt := range rts {
		if rt == nil {
			continue
		}
		row.RoundTrips++
		if rt.SyntheticExpiration {
			row.Synthetic++
		}
		if rt.NetQty() != 0 {
			row.Open++
			continue
		}

		row.Flat++
		row.TotalPnL = row.TotalPnL.Add(rt.RealizedPnLCash)
		switch rt.RealizedPnLCash.Sign() {
		case 1:
			row.Wins++
		case -1:
			row.Losses++
		}
		pnls = append(pnls, rt.RealizedPnLCash.InexactFloat64())
	}

	if len(pnls) == 0 {
		return row
	}
	sort.Float64s(pnls)
	row.MeanPnL = stat.Mean(pnls, nil)
	row.MedianPnL = stat.Quantile(0.5, stat.Empirical, pnls, nil)
	if len(pnls) > 1 {
		row.StdDevPnL = stat.StdDev(pnls, nil)
	}
	return row
}
