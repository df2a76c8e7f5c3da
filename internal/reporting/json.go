package reporting

import (
	"encoding/json"
	"fmt"
	"io"

	"trade-alert-ledger/internal/domain"
)

// WriteJSON writes the ledger as an indented JSON array. Decimals are
// strings, timestamps RFC 3339 with offset and dates YYYY-MM-DD.
func WriteJSON(w io.Writer, rts []*domain.RoundTrip) error {
	if rts == nil {
		rts = []*domain.RoundTrip{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rts); err != nil {
		return fmt.Errorf("encode round trips: %w", err)
	}
	return nil
}

// ReadJSON reads a ledger written by WriteJSON.
func ReadJSON(r io.Reader) ([]*domain.RoundTrip, error) {
	var rts []*domain.RoundTrip
	if err := json.NewDecoder(r).Decode(&rts); err != nil {
		return nil, fmt.Errorf("decode round trips: %w", err)
	}
	return rts, nil
}
