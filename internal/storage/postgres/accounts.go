package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// accountNamespace scopes uuid5 account ids.
var accountNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("trade-alert-ledger/accounts"))

// AccountID returns the deterministic id for an account label.
func AccountID(label string) uuid.UUID {
	return uuid.NewSHA1(accountNamespace, []byte(label))
}

// accountRegistry ensures account rows exist, remembering labels it has
// already written so repeated ingests skip the round trip.
type accountRegistry struct {
	pool  *Pool
	known *cache.Cache
}

func newAccountRegistry(pool *Pool) *accountRegistry {
	return &accountRegistry{
		pool:  pool,
		known: cache.New(cache.NoExpiration, 0),
	}
}

// ensure inserts the account row when missing and returns its id.
func (r *accountRegistry) ensure(ctx context.Context, q querier, label string) (uuid.UUID, error) {
	if id, ok := r.known.Get(label); ok {
		return id.(uuid.UUID), nil
	}

	id := AccountID(label)
	_, err := q.Exec(ctx, `
		INSERT INTO accounts (account_id, label) VALUES ($1, $2)
		ON CONFLICT (account_id) DO NOTHING
	`, id, label)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert account %s: %w", label, err)
	}

	r.known.SetDefault(label, id)
	return id, nil
}

// forget drops cached labels after a rolled-back transaction.
func (r *accountRegistry) forget(labels []string) {
	for _, l := range labels {
		r.known.Delete(l)
	}
}
