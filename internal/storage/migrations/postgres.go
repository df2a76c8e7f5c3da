package migrations

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"trade-alert-ledger/internal/storage/postgres"
)

// RunPostgresMigrations applies the accounts, fills and round_trips schema.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, m := range files {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		logger.Debug("applied migration", zap.String("backend", "postgres"), zap.String("file", m.name))
	}
	return nil
}
