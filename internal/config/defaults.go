package config

import (
	"trade-alert-ledger/internal/normalization"
	"trade-alert-ledger/internal/verification"
)

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	norm := normalization.DefaultOptions()
	n := &c.Normalization
	if n.FixedRootMultipliers == nil {
		n.FixedRootMultipliers = make(map[string]string, len(norm.FixedRootMultipliers))
		for root, m := range norm.FixedRootMultipliers {
			n.FixedRootMultipliers[root] = m.String()
		}
	}
	if n.IndexAliases == nil {
		n.IndexAliases = append([]string(nil), norm.IndexAliases...)
	}
	if n.IndexMultiplier == "" {
		n.IndexMultiplier = norm.IndexMultiplier.String()
	}
	if n.FuturesRoots == nil {
		n.FuturesRoots = append([]string(nil), norm.FuturesRoots...)
	}
	if n.DefaultMultiplier == "" {
		n.DefaultMultiplier = norm.DefaultMultiplier.String()
	}

	if c.Validation.ValueTolerance == "" {
		c.Validation.ValueTolerance = verification.DefaultValueTolerance.String()
	}
	if c.Validation.PnLTolerance == "" {
		c.Validation.PnLTolerance = verification.DefaultPnLTolerance.String()
	}
}
