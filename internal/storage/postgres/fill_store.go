package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/storage"
)

// FillStore implements storage.FillStore using PostgreSQL.
type FillStore struct {
	pool     *Pool
	accounts *accountRegistry
}

// NewFillStore creates a new FillStore.
func NewFillStore(pool *Pool) *FillStore {
	return &FillStore{
		pool:     pool,
		accounts: newAccountRegistry(pool),
	}
}

// Compile-time interface check.
var _ storage.FillStore = (*FillStore)(nil)

const insertFillSQL = `
	INSERT INTO fills (
		trade_hash, account_id, trade_id, side, qty_abs, qty_signed,
		symbol, contract_multiplier, fut_root_symbol, asset_class,
		is_option, expiry_date, strike, option_type,
		price, underlying_mark, implied_vol_pct,
		ts, ts_offset_seconds, message_id, subject
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8::numeric, $9, $10,
		$11, $12::date, $13::numeric, $14,
		$15::numeric, $16::numeric, $17::numeric,
		$18, $19, $20, $21
	)
	ON CONFLICT (trade_hash) DO NOTHING
`

const selectFillSQL = `
	SELECT
		f.trade_hash, a.label, f.trade_id, f.side, f.qty_abs, f.qty_signed,
		f.symbol, f.contract_multiplier::text, f.fut_root_symbol, f.asset_class,
		f.is_option, f.expiry_date::text, f.strike::text, f.option_type,
		f.price::text, f.underlying_mark::text, f.implied_vol_pct::text,
		f.ts, f.ts_offset_seconds, f.message_id, f.subject
	FROM fills f
	JOIN accounts a ON a.account_id = f.account_id
`

// Upsert stores fills in one transaction, skipping trade hashes already present.
func (s *FillStore) Upsert(ctx context.Context, fills []domain.Fill) (int, error) {
	if err := storage.CheckFills(fills); err != nil {
		return 0, err
	}
	if len(fills) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var labels []string
	inserted := 0
	for _, f := range fills {
		accountID, err := s.accounts.ensure(ctx, tx, f.Account)
		if err != nil {
			s.accounts.forget(labels)
			return 0, err
		}
		labels = append(labels, f.Account)

		tag, err := tx.Exec(ctx, insertFillSQL,
			f.TradeHash, accountID, f.TradeID, string(f.Side), int64(f.QtyAbs), f.QtySigned,
			f.Symbol, decimalArg(f.ContractMultiplier), f.FutRootSymbol, string(f.AssetClass),
			f.IsOption, dateArg(f.ExpiryDate), nullDecimalArg(f.Strike), string(f.OptionType),
			decimalArg(f.Price), nullDecimalArg(f.UnderlyingMark), nullDecimalArg(f.ImpliedVolPct),
			f.Timestamp, offsetOf(f.Timestamp), f.MessageID, f.Subject,
		)
		if err != nil {
			s.accounts.forget(labels)
			return 0, fmt.Errorf("insert fill %s: %w", f.TradeID, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		s.accounts.forget(labels)
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}

// GetAll returns every stored fill in first-stored order.
func (s *FillStore) GetAll(ctx context.Context) ([]domain.Fill, error) {
	rows, err := s.pool.Query(ctx, selectFillSQL+` ORDER BY f.seq`)
	if err != nil {
		return nil, fmt.Errorf("query fills: %w", err)
	}
	defer rows.Close()

	return scanFills(rows)
}

// GetByAccount returns the fills of one account in first-stored order.
func (s *FillStore) GetByAccount(ctx context.Context, account string) ([]domain.Fill, error) {
	rows, err := s.pool.Query(ctx, selectFillSQL+` WHERE f.account_id = $1 ORDER BY f.seq`, AccountID(account))
	if err != nil {
		return nil, fmt.Errorf("query fills by account: %w", err)
	}
	defer rows.Close()

	return scanFills(rows)
}

func scanFills(rows pgx.Rows) ([]domain.Fill, error) {
	var result []domain.Fill
	for rows.Next() {
		f, err := scanFill(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fills: %w", err)
	}
	return result, nil
}

func scanFill(row pgx.Row) (domain.Fill, error) {
	var (
		f                                   domain.Fill
		side, assetClass, optionType        string
		qtyAbs                              int64
		multiplier, price                   string
		expiry, strike, mark, impliedVolPct *string
		offset                              int32
	)

	err := row.Scan(
		&f.TradeHash, &f.Account, &f.TradeID, &side, &qtyAbs, &f.QtySigned,
		&f.Symbol, &multiplier, &f.FutRootSymbol, &assetClass,
		&f.IsOption, &expiry, &strike, &optionType,
		&price, &mark, &impliedVolPct,
		&f.Timestamp, &offset, &f.MessageID, &f.Subject,
	)
	if err != nil {
		return domain.Fill{}, fmt.Errorf("scan fill: %w", err)
	}

	f.Side = domain.Side(side)
	f.QtyAbs = uint64(qtyAbs)
	f.AssetClass = domain.AssetClass(assetClass)
	f.OptionType = domain.OptionType(optionType)
	f.Timestamp = inOffset(f.Timestamp, offset)

	if f.ContractMultiplier, err = parseDecimal("contract_multiplier", multiplier); err != nil {
		return domain.Fill{}, err
	}
	if f.Price, err = parseDecimal("price", price); err != nil {
		return domain.Fill{}, err
	}
	if f.Strike, err = parseNullDecimal("strike", strike); err != nil {
		return domain.Fill{}, err
	}
	if f.UnderlyingMark, err = parseNullDecimal("underlying_mark", mark); err != nil {
		return domain.Fill{}, err
	}
	if f.ImpliedVolPct, err = parseNullDecimal("implied_vol_pct", impliedVolPct); err != nil {
		return domain.Fill{}, err
	}
	if f.ExpiryDate, err = parseDateText(expiry); err != nil {
		return domain.Fill{}, err
	}
	return f, nil
}
