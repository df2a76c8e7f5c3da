// Package roundtrip groups normalized fills into round trips and computes
// their VWAPs, realized cash P&L and synthetic expirations.
package roundtrip

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"trade-alert-ledger/internal/domain"
	"trade-alert-ledger/internal/idhash"
)

// Aggregator builds round-trip ledgers. It holds no state between passes.
type Aggregator struct {
	workers int
}

// NewAggregator creates a new round-trip aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// WithWorkers bounds the goroutines used by AggregatePartitions. Zero means unbounded.
func (a *Aggregator) WithWorkers(n int) *Aggregator {
	a.workers = n
	return a
}

// Aggregate groups fills by position identity and finalizes one round trip per
// group. Fills need not be sorted. asOf is the instant synthetic expiration is
// judged against. Round trips are returned in order of each group's first fill
// and numbered from 1 in that order.
func (a *Aggregator) Aggregate(fills []domain.Fill, asOf time.Time) []*domain.RoundTrip {
	groups := buildGroups(fills, 0)
	return finalizeAll(orderedGroups(groups), asOf)
}

// AggregatePartitions aggregates each partition concurrently and merges the
// partial groups by summing their running totals. The result equals
// Aggregate over the partitions concatenated in order.
func (a *Aggregator) AggregatePartitions(ctx context.Context, parts [][]domain.Fill, asOf time.Time) ([]*domain.RoundTrip, error) {
	partials := make([]map[domain.Key]*group, len(parts))

	eg, ctx := errgroup.WithContext(ctx)
	if a.workers > 0 {
		eg.SetLimit(a.workers)
	}

	offset := 0
	for i, part := range parts {
		base := offset
		offset += len(part)

		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			partials[i] = buildGroups(part, base)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[domain.Key]*group)
	for _, partial := range partials {
		for _, g := range orderedGroups(partial) {
			if existing, ok := merged[g.key]; ok {
				existing.merge(g)
				continue
			}
			merged[g.key] = g
		}
	}

	return finalizeAll(orderedGroups(merged), asOf), nil
}

// buildGroups folds fills into groups. base offsets arrival indexes so that
// partitions keep a global first-seen order.
func buildGroups(fills []domain.Fill, base int) map[domain.Key]*group {
	groups := make(map[domain.Key]*group)
	for i, f := range fills {
		key := f.Key()
		g, ok := groups[key]
		if !ok {
			g = newGroup(key, base+i, f)
			groups[key] = g
		}
		g.add(f)
	}
	return groups
}

// orderedGroups returns groups sorted by first arrival.
func orderedGroups(groups map[domain.Key]*group) []*group {
	out := make([]*group, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].order < out[j].order
	})
	return out
}

func finalizeAll(groups []*group, asOf time.Time) []*domain.RoundTrip {
	rts := make([]*domain.RoundTrip, 0, len(groups))
	for i, g := range groups {
		rts = append(rts, g.finalize(i+1, idhash.ComputeRoundTripID(g.key), asOf))
	}
	return rts
}
