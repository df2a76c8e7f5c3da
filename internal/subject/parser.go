// Package subject parses thinkorswim order-fill alert subjects into
// canonical ParsedFill records.
package subject

import (
	"regexp"
	"strings"

	"trade-alert-ledger/internal/domain"
)

// Failure reasons, in the order fields are checked.
const (
	ReasonMissingTradeID    = "missing trade_id"
	ReasonMissingSide       = "missing side"
	ReasonMissingQty        = "missing qty"
	ReasonInvalidQty        = "invalid qty"
	ReasonMissingSymbol     = "missing symbol"
	ReasonMissingStrike     = "missing strike"
	ReasonMissingOptionType = "missing option_type"
	ReasonMissingPrice      = "missing price"
	ReasonInvalidExpiry     = "invalid expiry"
	ReasonNoPatternMatched  = "no pattern matched"
)

// Format is one subject format family.
type Format interface {
	// Name identifies the family, recorded in ParsedFill.Format.
	Name() string
	// Match parses s when the whole string matches the family.
	// A matched subject may still fail (e.g. a weekly ordinal that names no day),
	// in which case the returned record has ParseOK=false.
	Match(s string) (domain.ParsedFill, bool)
}

// Parser tries each registered format in priority order.
type Parser struct {
	formats   []Format
	noise     *regexp.Regexp
	diagnoser *diagnoser
}

// NewParser creates a parser with the default formats registered:
// equity/ETF/index options, futures options, then outright instruments.
func NewParser() *Parser {
	p := &Parser{
		noise:     regexp.MustCompile(`(?i)^tIP\s+`),
		diagnoser: newDiagnoser(),
	}

	p.RegisterFormat(newEquityOptionFormat())
	p.RegisterFormat(newFuturesOptionFormat())
	p.RegisterFormat(newOutrightFormat())

	return p
}

// RegisterFormat appends a format at the lowest priority.
func (p *Parser) RegisterFormat(f Format) {
	p.formats = append(p.formats, f)
}

// Parse produces exactly one ParsedFill for the subject. It never panics;
// failures are reported through ParseOK and FailReason.
func (p *Parser) Parse(subject string) domain.ParsedFill {
	s := p.clean(subject)

	for _, f := range p.formats {
		if pf, ok := f.Match(s); ok {
			return pf
		}
	}

	return p.diagnoser.diagnose(s)
}

// clean trims quotes, drops a leading noise token and collapses whitespace.
func (p *Parser) clean(subject string) string {
	s := strings.TrimSpace(subject)
	s = strings.Trim(s, `"`)
	s = p.noise.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
