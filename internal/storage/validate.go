package storage

import (
	"fmt"

	"trade-alert-ledger/internal/domain"
)

// CheckFills rejects fills that cannot be keyed.
func CheckFills(fills []domain.Fill) error {
	for i := range fills {
		if fills[i].TradeHash == "" {
			return fmt.Errorf("fill %d (%s) has no trade hash: %w", i, fills[i].TradeID, ErrInvalidInput)
		}
	}
	return nil
}

// CheckRoundTrips rejects nil entries, missing stable ids and repeated stable ids.
func CheckRoundTrips(rts []*domain.RoundTrip) error {
	seen := make(map[string]struct{}, len(rts))
	for i, rt := range rts {
		if rt == nil || rt.StableID == "" {
			return fmt.Errorf("round trip %d has no stable id: %w", i, ErrInvalidInput)
		}
		if _, ok := seen[rt.StableID]; ok {
			return fmt.Errorf("round trip %s: %w", rt.StableID, ErrDuplicateKey)
		}
		seen[rt.StableID] = struct{}{}
	}
	return nil
}
