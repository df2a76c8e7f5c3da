package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/storage"
)

// RoundTripStore implements storage.RoundTripStore using PostgreSQL.
type RoundTripStore struct {
	pool *Pool
}

// NewRoundTripStore creates a new RoundTripStore.
func NewRoundTripStore(pool *Pool) *RoundTripStore {
	return &RoundTripStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RoundTripStore = (*RoundTripStore)(nil)

const insertRoundTripSQL = `
	INSERT INTO round_trips (
		stable_id, id, account, symbol, contract_multiplier,
		is_option, expiry_date, strike, option_type, fut_root_symbol,
		qty_buy, qty_sell, buy_vwap, sell_vwap,
		gross_buy_value, gross_sell_value, realized_pnl_cash,
		open_dt, open_offset_seconds, close_dt, close_offset_seconds,
		synthetic_expiration, legs
	) VALUES (
		$1, $2, $3, $4, $5::numeric,
		$6, $7::date, $8::numeric, $9, $10,
		$11, $12, $13::numeric, $14::numeric,
		$15::numeric, $16::numeric, $17::numeric,
		$18, $19, $20, $21,
		$22, $23::jsonb
	)
`

const selectRoundTripSQL = `
	SELECT
		stable_id, id, account, symbol, contract_multiplier::text,
		is_option, expiry_date::text, strike::text, option_type, fut_root_symbol,
		qty_buy, qty_sell, buy_vwap::text, sell_vwap::text,
		gross_buy_value::text, gross_sell_value::text, realized_pnl_cash::text,
		open_dt, open_offset_seconds, close_dt, close_offset_seconds,
		synthetic_expiration, legs::text
	FROM round_trips
`

// Replace swaps the stored ledger for rts in one transaction.
func (s *RoundTripStore) Replace(ctx context.Context, rts []*domain.RoundTrip) error {
	if err := storage.CheckRoundTrips(rts); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM round_trips`); err != nil {
		return fmt.Errorf("clear round trips: %w", err)
	}

	for _, rt := range rts {
		legs, err := json.Marshal(rt.Legs)
		if err != nil {
			return fmt.Errorf("encode legs of %s: %w", rt.StableID, err)
		}

		_, err = tx.Exec(ctx, insertRoundTripSQL,
			rt.StableID, rt.ID, rt.Account, rt.Symbol, decimalArg(rt.ContractMultiplier),
			rt.IsOption, dateArg(rt.ExpiryDate), nullDecimalArg(rt.Strike), string(rt.OptionType), rt.FutRootSymbol,
			int64(rt.QtyBuy), int64(rt.QtySell), nullDecimalArg(rt.BuyVWAP), nullDecimalArg(rt.SellVWAP),
			decimalArg(rt.GrossBuyValue), decimalArg(rt.GrossSellValue), decimalArg(rt.RealizedPnLCash),
			rt.OpenDT, offsetOf(rt.OpenDT), rt.CloseDT, offsetOf(rt.CloseDT),
			rt.SyntheticExpiration, string(legs),
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert round trip %s: %w", rt.StableID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll returns the stored ledger ordered by round-trip id.
func (s *RoundTripStore) GetAll(ctx context.Context) ([]*domain.RoundTrip, error) {
	rows, err := s.pool.Query(ctx, selectRoundTripSQL+` ORDER BY id`)
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

// GetByStableID retrieves one round trip. Returns ErrNotFound if not exists.
func (s *RoundTripStore) GetByStableID(ctx context.Context, stableID string) (*domain.RoundTrip, error) {
	row := s.pool.QueryRow(ctx, selectRoundTripSQL+` WHERE stable_id = $1`, stableID)
	rt, err := scanRoundTrip(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return rt, nil
}

func scanRoundTrip(row pgx.Row) (*domain.RoundTrip, error) {
	var (
		rt                                domain.RoundTrip
		optionType                        string
		qtyBuy, qtySell                   int64
		multiplier, grossBuy, grossSell   string
		pnl                               string
		expiry, strike, buyVWAP, sellVWAP *string
		openDT, closeDT                   time.Time
		openOffset, closeOffset           int32
		legs                              string
	)

	err := row.Scan(
		&rt.StableID, &rt.ID, &rt.Account, &rt.Symbol, &multiplier,
		&rt.IsOption, &expiry, &strike, &optionType, &rt.FutRootSymbol,
		&qtyBuy, &qtySell, &buyVWAP, &sellVWAP,
		&grossBuy, &grossSell, &pnl,
		&openDT, &openOffset, &closeDT, &closeOffset,
		&rt.SyntheticExpiration, &legs,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scan round trip: %w", err)
	}

	rt.OptionType = domain.OptionType(optionType)
	rt.QtyBuy = uint64(qtyBuy)
	rt.QtySell = uint64(qtySell)
	rt.OpenDT = inOffset(openDT, openOffset)
	rt.CloseDT = inOffset(closeDT, closeOffset)

	if rt.ContractMultiplier, err = parseDecimal("contract_multiplier", multiplier); err != nil {
		return nil, err
	}
	if rt.GrossBuyValue, err = parseDecimal("gross_buy_value", grossBuy); err != nil {
		return nil, err
	}
	if rt.GrossSellValue, err = parseDecimal("gross_sell_value", grossSell); err != nil {
		return nil, err
	}
	if rt.RealizedPnLCash, err = parseDecimal("realized_pnl_cash", pnl); err != nil {
		return nil, err
	}
	if rt.Strike, err = parseNullDecimal("strike", strike); err != nil {
		return nil, err
	}
	if rt.BuyVWAP, err = parseNullDecimal("buy_vwap", buyVWAP); err != nil {
		return nil, err
	}
	if rt.SellVWAP, err = parseNullDecimal("sell_vwap", sellVWAP); err != nil {
		return nil, err
	}
	if rt.ExpiryDate, err = parseDateText(expiry); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(legs), &rt.Legs); err != nil {
		return nil, fmt.Errorf("decode legs of %s: %w", rt.StableID, err)
	}
	return &rt, nil
}
