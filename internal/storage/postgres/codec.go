package postgres

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"trade-alert-ledger/internal/domain"
)

// Numeric values travel as text and are cast in SQL, so no precision is lost
// between shopspring decimals and NUMERIC columns.

func decimalArg(d decimal.Decimal) string {
	return d.String()
}

func nullDecimalArg(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

func dateArg(d *domain.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return d, nil
}

func parseNullDecimal(field string, s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseDecimal(field, *s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func parseDateText(s *string) (*domain.Date, error) {
	if s == nil {
		return nil, nil
	}
	d, err := domain.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// offsetOf returns the UTC offset of t in seconds.
func offsetOf(t time.Time) int32 {
	_, offset := t.Zone()
	return int32(offset)
}

// inOffset restores the zone offset a timestamp was recorded with.
func inOffset(t time.Time, offset int32) time.Time {
	return t.In(time.FixedZone(zoneName(offset), int(offset)))
}

func zoneName(offset int32) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, offset/3600, (offset%3600)/60)
}
