package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/observability"
	"trade-alert-ledger/internal/storage"
	chstore "trade-alert-ledger/internal/storage/clickhouse"
	"trade-alert-ledger/internal/storage/migrations"
	pgstore "trade-alert-ledger/internal/storage/postgres"
)

// stores holds the persistence selected on the command line.
type stores struct {
	fills      storage.FillStore
	roundTrips storage.RoundTripStore
	closers    []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores connects to the requested backends and applies migrations.
// Fills live in Postgres; round trips go to every selected backend and are
// read back from the first.
func openStores(ctx context.Context, a *app, usePostgres, useClickhouse bool) (*stores, error) {
	st := &stores{}
	var rtStores []storage.RoundTripStore

	if usePostgres {
		if a.cfg.Postgres.DSN == "" {
			return nil, errors.New("postgres requested but no DSN configured")
		}
		pool, err := pgstore.NewPool(ctx, a.cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, pool.Close)

		if err := migrations.RunPostgresMigrations(ctx, pool, a.logger); err != nil {
			st.close()
			return nil, err
		}
		st.fills = observability.NewMeteredFillStore(pgstore.NewFillStore(pool), "postgres", a.metrics)
		rtStores = append(rtStores, observability.NewMeteredRoundTripStore(pgstore.NewRoundTripStore(pool), "postgres", a.metrics))
		a.logger.Info("postgres store ready")
	}

	if useClickhouse {
		if a.cfg.ClickHouse.DSN == "" {
			st.close()
			return nil, errors.New("clickhouse requested but no DSN configured")
		}
		conn, err := migrations.RunClickhouseMigrations(ctx, a.cfg.ClickHouse.DSN, a.logger)
		if err != nil {
			st.close()
			return nil, err
		}
		st.closers = append(st.closers, func() {
			if err := conn.Close(); err != nil {
				a.logger.Warn("close clickhouse", zap.Error(err))
			}
		})
		rtStores = append(rtStores, observability.NewMeteredRoundTripStore(chstore.NewRoundTripStore(conn), "clickhouse", a.metrics))
		a.logger.Info("clickhouse store ready")
	}

	switch len(rtStores) {
	case 0:
	case 1:
		st.roundTrips = rtStores[0]
	default:
		st.roundTrips = teeRoundTripStore(rtStores)
	}
	return st, nil
}

// teeRoundTripStore replaces the ledger in every store and reads from the first.
type teeRoundTripStore []storage.RoundTripStore

func (t teeRoundTripStore) Replace(ctx context.Context, rts []*domain.RoundTrip) error {
	for _, s := range t {
		if err := s.Replace(ctx, rts); err != nil {
			return fmt.Errorf("replace round trips: %w", err)
		}
	}
	return nil
}

func (t teeRoundTripStore) GetAll(ctx context.Context) ([]*domain.RoundTrip, error) {
	return t[0].GetAll(ctx)
}

func (t teeRoundTripStore) GetByStableID(ctx context.Context, stableID string) (*domain.RoundTrip, error) {
	return t[0].GetByStableID(ctx, stableID)
}
