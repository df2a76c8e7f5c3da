package csvio

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

// SubjectRecord is one exported alert: its mailbox id, send time and subject.
type SubjectRecord struct {
	MessageID string
	Timestamp time.Time // zero when date_iso was empty or invalid
	Subject   string
	Account   string // optional per-row account fallback
}

type subjectRow struct {
	MessageID string `csv:"message_id"`
	DateISO   string `csv:"date_iso"`
	Subject   string `csv:"subject"`
	Account   string `csv:"account"`
}

var subjectColumns = []string{"message_id", "date_iso", "subject"}

// ReadSubjects reads a subject export. Rows with an unparseable date_iso keep
// a zero Timestamp so the normalizer can reject them with a reason.
func ReadSubjects(r io.Reader) ([]SubjectRecord, error) {
	data, err := readAll(r, subjectColumns)
	if err != nil {
		return nil, err
	}

	var rows []*subjectRow
	if err := gocsv.Unmarshal(bytes.NewReader(data), &rows); err != nil {
		return nil, fmt.Errorf("decode subjects: %w", err)
	}

	records := make([]SubjectRecord, 0, len(rows))
	for _, row := range rows {
		rec := SubjectRecord{
			MessageID: strings.TrimSpace(row.MessageID),
			Subject:   row.Subject,
			Account:   strings.TrimSpace(row.Account),
		}
		if row.DateISO != "" {
			if ts, err := ParseTimestamp(row.DateISO); err == nil {
				rec.Timestamp = ts
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteSubjects writes records in the export layout.
func WriteSubjects(w io.Writer, records []SubjectRecord) error {
	rows := make([]*subjectRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, &subjectRow{
			MessageID: rec.MessageID,
			DateISO:   FormatTimestamp(rec.Timestamp),
			Subject:   rec.Subject,
			Account:   rec.Account,
		})
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("encode subjects: %w", err)
	}
	return nil
}
