package csvio

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// Failure stages.
const (
	StageParse     = "parse"
	StageNormalize = "normalize"
)

// FailureRecord is one subject that did not become a fill, with whatever
// fields were recovered before the failure.
type FailureRecord struct {
	MessageID string `csv:"message_id"`
	DateISO   string `csv:"date_iso"`
	Stage     string `csv:"stage"`
	Reason    string `csv:"reason"`
	TradeID   string `csv:"trade_id"`
	Side      string `csv:"side"`
	Qty       string `csv:"qty"`
	Symbol    string `csv:"symbol"`
	Subject   string `csv:"subject"`
}

// WriteFailures writes failure records for later review.
func WriteFailures(w io.Writer, failures []FailureRecord) error {
	rows := make([]*FailureRecord, 0, len(failures))
	for i := range failures {
		rows = append(rows, &failures[i])
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("encode failures: %w", err)
	}
	return nil
}
