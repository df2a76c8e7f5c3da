package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"trade-alert-ledger/internal/domain"
)

// ComputeFillHash computes a deterministic trade hash using SHA256.
// Formula: SHA256(account|contract|side|qty|price|timestamp|message_id|is_synthetic)
// The timestamp is rendered in UTC so the same instant hashes identically
// regardless of the zone it was reported in.
// Returns hex-encoded hash (64 characters).
func ComputeFillHash(
	account string,
	contract string,
	side domain.Side,
	qty uint64,
	price decimal.Decimal,
	ts time.Time,
	messageID string,
	isSynthetic bool,
) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%s|%s|%s|%t",
		account,
		contract,
		string(side),
		qty,
		price.String(),
		ts.UTC().Format(time.RFC3339Nano),
		messageID,
		isSynthetic,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// FillHash computes the trade hash of a normalized fill.
func FillHash(f domain.Fill) string {
	return ComputeFillHash(
		f.Account,
		f.ContractString(),
		f.Side,
		f.QtyAbs,
		f.Price,
		f.Timestamp,
		f.MessageID,
		f.TradeID == domain.SyntheticTradeID,
	)
}
