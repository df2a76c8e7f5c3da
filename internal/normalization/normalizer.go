// Package normalization turns parsed alert subjects into engine-ready fills,
// correcting contract multipliers the raw text cannot reliably encode.
package normalization

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/idhash"
)

// Rejection errors. A rejected fill never reaches aggregation.
var (
	ErrNotParsed        = errors.New("subject not parsed")
	ErrMissingPrice     = errors.New("missing price")
	ErrMissingTimestamp = errors.New("missing timestamp")
	ErrMissingAccount   = errors.New("missing account")
)

// Input is a parsed subject plus its side-channel context.
type Input struct {
	Parsed         domain.ParsedFill
	Timestamp      time.Time
	MessageID      string
	Subject        string
	DefaultAccount string // used when the subject carries no account
}

// Normalizer converts ParsedFills into Fills.
type Normalizer struct {
	opts    Options
	roots   []string
	aliases map[string]struct{}
}

// NewNormalizer creates a normalizer. Zero-valued multipliers in opts fall
// back to DefaultOptions.
func NewNormalizer(opts Options) *Normalizer {
	def := DefaultOptions()
	if opts.DefaultMultiplier.IsZero() {
		opts.DefaultMultiplier = def.DefaultMultiplier
	}
	if opts.IndexMultiplier.IsZero() {
		opts.IndexMultiplier = def.IndexMultiplier
	}

	roots := make([]string, 0, len(opts.FuturesRoots)+len(opts.FixedRootMultipliers))
	seen := make(map[string]struct{})
	for _, r := range opts.FuturesRoots {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			roots = append(roots, r)
		}
	}
	for r := range opts.FixedRootMultipliers {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			roots = append(roots, r)
		}
	}
	// Longest first, ties by name.
	sort.Slice(roots, func(i, j int) bool {
		if len(roots[i]) != len(roots[j]) {
			return len(roots[i]) > len(roots[j])
		}
		return roots[i] < roots[j]
	})

	aliases := make(map[string]struct{}, len(opts.IndexAliases))
	for _, a := range opts.IndexAliases {
		aliases[strings.ToUpper(a)] = struct{}{}
	}

	return &Normalizer{opts: opts, roots: roots, aliases: aliases}
}

// Normalize converts one parsed subject into a Fill.
// Returns a wrapped rejection error when a core field is unusable.
func (n *Normalizer) Normalize(in Input) (domain.Fill, error) {
	pf := in.Parsed
	if !pf.ParseOK {
		return domain.Fill{}, fmt.Errorf("%w: %s", ErrNotParsed, pf.FailReason)
	}
	if !pf.Price.Valid {
		return domain.Fill{}, fmt.Errorf("trade %s: %w", pf.TradeID, ErrMissingPrice)
	}
	if in.Timestamp.IsZero() {
		return domain.Fill{}, fmt.Errorf("trade %s: %w", pf.TradeID, ErrMissingTimestamp)
	}

	account := pf.Account
	if account == "" {
		account = in.DefaultAccount
	}
	if account == "" {
		return domain.Fill{}, fmt.Errorf("trade %s: %w", pf.TradeID, ErrMissingAccount)
	}

	f := domain.Fill{
		TradeID:        pf.TradeID,
		Side:           pf.Side,
		QtyAbs:         pf.QtyAbs,
		QtySigned:      pf.QtySigned,
		Symbol:         pf.Symbol,
		Account:        account,
		IsOption:       pf.IsOption,
		ExpiryDate:     pf.ExpiryDate,
		Strike:         pf.Strike,
		OptionType:     pf.OptionType,
		Price:          pf.Price.Decimal,
		UnderlyingMark: pf.UnderlyingMark,
		ImpliedVolPct:  pf.ImpliedVolPct,
		Timestamp:      in.Timestamp,
		MessageID:      in.MessageID,
		Subject:        in.Subject,
	}
	return n.correct(f, pf.ContractCodeOrMultiplier), nil
}

// Correct re-applies the instrument rules to an already normalized fill, as
// read back from a flat file or a store. The existing multiplier is treated
// as the raw token.
func (n *Normalizer) Correct(f domain.Fill) domain.Fill {
	raw := ""
	if !f.ContractMultiplier.IsZero() {
		raw = f.ContractMultiplier.String()
	}
	return n.correct(f, raw)
}

func (n *Normalizer) correct(f domain.Fill, raw string) domain.Fill {
	f.FutRootSymbol = n.ResolveFutRoot(f.Symbol)
	f.ContractMultiplier, _ = n.Multiplier(f.Symbol, f.FutRootSymbol, raw)
	f.AssetClass = InferAssetClass(f.Symbol)
	f.TradeHash = idhash.FillHash(f)
	return f
}
