package clickhouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/shopspring/decimal"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/storage"
)

// RoundTripStore implements storage.RoundTripStore using ClickHouse.
// Every Replace writes the ledger under a new version; reads return the
// highest version only.
type RoundTripStore struct {
	conn *Conn
	now  func() time.Time
}

// NewRoundTripStore creates a new RoundTripStore.
func NewRoundTripStore(conn *Conn) *RoundTripStore {
	return &RoundTripStore{conn: conn, now: time.Now}
}

// Compile-time interface check.
var _ storage.RoundTripStore = (*RoundTripStore)(nil)

const roundTripColumns = `
	stable_id, version, id, account, symbol, contract_multiplier,
	is_option, expiry_date, strike, option_type, fut_root_symbol,
	qty_buy, qty_sell, buy_vwap, sell_vwap,
	gross_buy_value, gross_sell_value, realized_pnl_cash,
	open_dt, open_offset_seconds, close_dt, close_offset_seconds,
	synthetic_expiration, legs
`

const latestVersion = `version = (SELECT max(version) FROM round_trips)`

// Replace writes rts as the new latest ledger.
func (s *RoundTripStore) Replace(ctx context.Context, rts []*domain.RoundTrip) error {
	if err := storage.CheckRoundTrips(rts); err != nil {
		return err
	}
	if len(rts) == 0 {
		return nil
	}

	version := uint64(s.now().UnixNano())

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO round_trips (`+roundTripColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, rt := range rts {
		legs, err := json.Marshal(rt.Legs)
		if err != nil {
			return fmt.Errorf("encode legs of %s: %w", rt.StableID, err)
		}

		err = batch.Append(
			rt.StableID, version, int64(rt.ID), rt.Account, rt.Symbol, rt.ContractMultiplier,
			rt.IsOption, dateValue(rt.ExpiryDate), nullDecimalValue(rt.Strike), string(rt.OptionType), rt.FutRootSymbol,
			rt.QtyBuy, rt.QtySell, nullDecimalValue(rt.BuyVWAP), nullDecimalValue(rt.SellVWAP),
			rt.GrossBuyValue, rt.GrossSellValue, rt.RealizedPnLCash,
			rt.OpenDT.UTC(), offsetOf(rt.OpenDT), rt.CloseDT.UTC(), offsetOf(rt.CloseDT),
			rt.SyntheticExpiration, string(legs),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetAll returns the latest ledger ordered by round-trip id.
func (s *RoundTripStore) GetAll(ctx context.Context) ([]*domain.RoundTrip, error) {
	query := `SELECT ` + roundTripColumns + ` FROM round_trips FINAL WHERE ` + latestVersion + ` ORDER BY id ASC`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query round trips: %w", err)
	}
	defer rows.Close()

	var result []*domain.RoundTrip
	for rows.Next() {
		rt, err := scanRoundTrip(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate round trips: %w", err)
	}
	return result, nil
}

// GetByStableID retrieves one round trip of the latest ledger.
// Returns ErrNotFound if not exists.
func (s *RoundTripStore) GetByStableID(ctx context.Context, stableID string) (*domain.RoundTrip, error) {
	query := `SELECT ` + roundTripColumns + ` FROM round_trips FINAL WHERE stable_id = ? AND ` + latestVersion + ` LIMIT 1`

	rt, err := scanRoundTrip(s.conn.QueryRow(ctx, query, stableID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return rt, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

var (
	_ rowScanner = (driver.Row)(nil)
	_ rowScanner = (driver.Rows)(nil)
)

func scanRoundTrip(row rowScanner) (*domain.RoundTrip, error) {
	var (
		rt                        domain.RoundTrip
		version                   uint64
		id                        int64
		optionType                string
		expiry                    *time.Time
		strike, buyVWAP, sellVWAP *decimal.Decimal
		openDT, closeDT           time.Time
		openOffset, closeOffset   int32
		legs                      string
	)

	err := row.Scan(
		&rt.StableID, &version, &id, &rt.Account, &rt.Symbol, &rt.ContractMultiplier,
		&rt.IsOption, &expiry, &strike, &optionType, &rt.FutRootSymbol,
		&rt.QtyBuy, &rt.QtySell, &buyVWAP, &sellVWAP,
		&rt.GrossBuyValue, &rt.GrossSellValue, &rt.RealizedPnLCash,
		&openDT, &openOffset, &closeDT, &closeOffset,
		&rt.SyntheticExpiration, &legs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan round trip: %w", err)
	}

	rt.ID = int(id)
	rt.OptionType = domain.OptionType(optionType)
	rt.Strike = nullDecimalFrom(strike)
	rt.BuyVWAP = nullDecimalFrom(buyVWAP)
	rt.SellVWAP = nullDecimalFrom(sellVWAP)
	rt.OpenDT = inOffset(openDT, openOffset)
	rt.CloseDT = inOffset(closeDT, closeOffset)
	if expiry != nil {
		d := domain.NewDate(expiry.Year(), expiry.Month(), expiry.Day())
		rt.ExpiryDate = &d
	}

	if err := json.Unmarshal([]byte(legs), &rt.Legs); err != nil {
		return nil, fmt.Errorf("decode legs of %s: %w", rt.StableID, err)
	}
	return &rt, nil
}

func dateValue(d *domain.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return &t
}

func nullDecimalValue(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func nullDecimalFrom(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func offsetOf(t time.Time) int32 {
	_, offset := t.Zone()
	return int32(offset)
}

func inOffset(t time.Time, offset int32) time.Time {
	return t.In(time.FixedZone("", int(offset)))
}
