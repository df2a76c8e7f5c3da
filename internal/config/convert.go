package config

import (
	"fmt"

	"github.com/shopspring/decimal"

	"trade-alert-ledger/internal/normalization"
	"trade-alert-ledger/internal/verification"
)

// ToNormalizationOptions converts the normalization section.
func (c *Config) ToNormalizationOptions() (normalization.Options, error) {
	n := c.Normalization
	opts := normalization.Options{
		FixedRootMultipliers: make(map[string]decimal.Decimal, len(n.FixedRootMultipliers)),
		IndexAliases:         append([]string(nil), n.IndexAliases...),
		FuturesRoots:         append([]string(nil), n.FuturesRoots...),
	}

	for root, raw := range n.FixedRootMultipliers {
		m, err := decimal.NewFromString(raw)
		if err != nil {
			return normalization.Options{}, fmt.Errorf("%w: fixed_root_multipliers[%s]: %v", ErrInvalidConfig, root, err)
		}
		opts.FixedRootMultipliers[root] = m
	}

	var err error
	if opts.IndexMultiplier, err = decimal.NewFromString(n.IndexMultiplier); err != nil {
		return normalization.Options{}, fmt.Errorf("%w: index_multiplier: %v", ErrInvalidConfig, err)
	}
	if opts.DefaultMultiplier, err = decimal.NewFromString(n.DefaultMultiplier); err != nil {
		return normalization.Options{}, fmt.Errorf("%w: default_multiplier: %v", ErrInvalidConfig, err)
	}
	return opts, nil
}

// ToVerificationOptions converts the validation section.
func (c *Config) ToVerificationOptions() (verification.Options, error) {
	value, err := decimal.NewFromString(c.Validation.ValueTolerance)
	if err != nil {
		return verification.Options{}, fmt.Errorf("%w: value_tolerance: %v", ErrInvalidConfig, err)
	}
	pnl, err := decimal.NewFromString(c.Validation.PnLTolerance)
	if err != nil {
		return verification.Options{}, fmt.Errorf("%w: pnl_tolerance: %v", ErrInvalidConfig, err)
	}
	return verification.Options{ValueTolerance: value, PnLTolerance: pnl}, nil
}
