package csvio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"trade-alert-ledger/internal/domain"
)

// fillRow is the flat-file layout of a normalized fill.
type fillRow struct {
	MessageID          string `csv:"message_id"`
	DateISO            string `csv:"date_iso"`
	IsOption           string `csv:"is_option"`
	TradeID            string `csv:"trade_id"`
	Side               string `csv:"side"`
	QtySigned          string `csv:"qty_signed"`
	QtyAbs             string `csv:"qty_abs"`
	Symbol             string `csv:"symbol"`
	ContractMultiplier string `csv:"contract_multiplier"`
	Price              string `csv:"price"`
	Account            string `csv:"account"`
	ExpiryDate         string `csv:"expiry_date"`
	Strike             string `csv:"strike"`
	OptionType         string `csv:"option_type"`
	UnderlyingMark     string `csv:"underlying_mark"`
	ImpliedVolPct      string `csv:"implied_vol_pct"`
	FutRootSymbol      string `csv:"fut_root_symbol"`
	Subject            string `csv:"subject"`
}

var fillColumns = []string{
	"message_id", "date_iso", "is_option", "trade_id", "side", "qty_signed", "qty_abs",
	"symbol", "contract_multiplier", "price", "account",
}

// ReadFills reads a normalized fills file. Invalid rows are skipped; their
// errors are joined into the returned error next to the valid fills.
// A missing required column fails the whole file with ErrMissingColumns.
func ReadFills(r io.Reader) ([]domain.Fill, error) {
	data, err := readAll(r, fillColumns)
	if err != nil {
		return nil, err
	}

	var rows []*fillRow
	if err := gocsv.Unmarshal(bytes.NewReader(data), &rows); err != nil {
		return nil, fmt.Errorf("decode fills: %w", err)
	}

	fills := make([]domain.Fill, 0, len(rows))
	var rowErrs []error
	for i, row := range rows {
		f, err := row.toFill()
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: %w", i+2, err)) // header is line 1
			continue
		}
		fills = append(fills, f)
	}
	return fills, errors.Join(rowErrs...)
}

// WriteFills writes fills in the flat-file layout.
func WriteFills(w io.Writer, fills []domain.Fill) error {
	rows := make([]*fillRow, 0, len(fills))
	for i := range fills {
		rows = append(rows, newFillRow(fills[i]))
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("encode fills: %w", err)
	}
	return nil
}

func newFillRow(f domain.Fill) *fillRow {
	row := &fillRow{
		MessageID:          f.MessageID,
		DateISO:            FormatTimestamp(f.Timestamp),
		IsOption:           cast.ToString(f.IsOption),
		TradeID:            f.TradeID,
		Side:               string(f.Side),
		QtySigned:          cast.ToString(f.QtySigned),
		QtyAbs:             cast.ToString(f.QtyAbs),
		Symbol:             f.Symbol,
		ContractMultiplier: f.ContractMultiplier.String(),
		Price:              f.Price.String(),
		Account:            f.Account,
		Strike:             nullString(f.Strike),
		OptionType:         string(f.OptionType),
		UnderlyingMark:     nullString(f.UnderlyingMark),
		ImpliedVolPct:      nullString(f.ImpliedVolPct),
		FutRootSymbol:      f.FutRootSymbol,
		Subject:            f.Subject,
	}
	if f.ExpiryDate != nil {
		row.ExpiryDate = f.ExpiryDate.String()
	}
	return row
}

func (row *fillRow) toFill() (domain.Fill, error) {
	var f domain.Fill
	var err error

	f.MessageID = strings.TrimSpace(row.MessageID)
	f.TradeID = strings.TrimSpace(row.TradeID)
	f.Symbol = strings.TrimSpace(row.Symbol)
	f.Account = strings.TrimSpace(row.Account)
	f.FutRootSymbol = strings.TrimSpace(row.FutRootSymbol)
	f.Subject = row.Subject

	if f.Account == "" {
		return f, errors.New("missing account")
	}
	if f.Symbol == "" {
		return f, errors.New("missing symbol")
	}

	f.Side = domain.Side(strings.ToUpper(strings.TrimSpace(row.Side)))
	if !f.Side.IsValid() {
		return f, fmt.Errorf("invalid side %q", row.Side)
	}

	if f.IsOption, err = parseBool(row.IsOption); err != nil {
		return f, fmt.Errorf("is_option: %w", err)
	}
	if f.QtyAbs, err = cast.ToUint64E(strings.TrimSpace(row.QtyAbs)); err != nil || f.QtyAbs == 0 {
		return f, fmt.Errorf("qty_abs missing or not positive: %q", row.QtyAbs)
	}
	if f.QtySigned, err = cast.ToInt64E(strings.TrimSpace(row.QtySigned)); err != nil {
		return f, fmt.Errorf("qty_signed: %w", err)
	}
	if magnitude(f.QtySigned) != f.QtyAbs {
		return f, fmt.Errorf("qty_signed %d does not match qty_abs %d", f.QtySigned, f.QtyAbs)
	}
	if f.Price, err = requiredDecimal(row.Price); err != nil {
		return f, fmt.Errorf("price: %w", err)
	}
	if f.ContractMultiplier, err = requiredDecimal(row.ContractMultiplier); err != nil {
		return f, fmt.Errorf("contract_multiplier: %w", err)
	}
	if f.Timestamp, err = ParseTimestamp(row.DateISO); err != nil {
		return f, fmt.Errorf("date_iso: %w", err)
	}
	if f.UnderlyingMark, err = optionalDecimal(row.UnderlyingMark); err != nil {
		return f, fmt.Errorf("underlying_mark: %w", err)
	}
	if f.ImpliedVolPct, err = optionalDecimal(row.ImpliedVolPct); err != nil {
		return f, fmt.Errorf("implied_vol_pct: %w", err)
	}

	if f.IsOption {
		if f.Strike, err = optionalDecimal(row.Strike); err != nil {
			return f, fmt.Errorf("strike: %w", err)
		}
		f.OptionType = domain.OptionType(strings.ToUpper(strings.TrimSpace(row.OptionType)))
		if exp := strings.TrimSpace(row.ExpiryDate); exp != "" {
			d, err := domain.ParseDate(exp)
			if err != nil {
				return f, fmt.Errorf("expiry_date: %w", err)
			}
			f.ExpiryDate = &d
		}
	}
	return f, nil
}

// parseBool accepts the spellings exporters use for booleans.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "f", "no", "n":
		return false, nil
	case "1", "true", "t", "yes", "y":
		return true, nil
	}
	return cast.ToBoolE(s)
}

func requiredDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("empty value")
	}
	return decimal.NewFromString(s)
}

func optionalDecimal(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// magnitude returns |n| without overflowing on math.MinInt64.
func magnitude(n int64) uint64 {
	if n < 0 {
		return uint64(-(n + 1)) + 1
	}
	return uint64(n)
}
