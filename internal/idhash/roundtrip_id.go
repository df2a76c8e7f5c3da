package idhash

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"

	"trade-alert-ledger/internal/domain"
)

// stableIDBytes is the number of hash bytes kept in a round-trip stable id.
const stableIDBytes = 16

// ComputeRoundTripID derives a stable identifier from a position identity key.
// Formula: base58(SHA256(key)[:16])
// The same key yields the same id across runs regardless of input ordering.
func ComputeRoundTripID(key domain.Key) string {
	hash := sha256.Sum256([]byte(key.String()))
	return base58.Encode(hash[:stableIDBytes])
}
