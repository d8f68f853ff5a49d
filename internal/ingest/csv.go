// Package ingest decodes and validates transaction batches before they reach
// the analysis pipeline. The pipeline assumes clean input; everything the
// spec calls malformed is rejected here.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/ringtrace/backend/internal/domain"
)

// requiredColumns must all be present in the CSV header.
var requiredColumns = []string{"transaction_id", "sender_id", "receiver_id", "amount", "timestamp"}

// ErrMissingHeader indicates the CSV input had no header row at all.
var ErrMissingHeader = errors.New("csv header row is missing")

// timestampLayouts lists the accepted timestamp formats, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ReadBatch decodes a CSV transaction batch. The batch is rejected when a
// required column is missing or a row carries a blank id or malformed amount.
// A timestamp matching no accepted layout keeps its row with a zero time, so
// velocity detection degrades instead of the whole run failing. A header-only
// file is a valid empty batch.
func ReadBatch(r io.Reader) ([]domain.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	txs := []domain.Transaction{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line, err)
		}

		tx, err := parseRow(record, columns, line)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func parseRow(record []string, columns map[string]int, line int) (domain.Transaction, error) {
	field := func(name string) string {
		idx := columns[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	id := field("transaction_id")
	sender := field("sender_id")
	receiver := field("receiver_id")
	if id == "" || sender == "" || receiver == "" {
		return domain.Transaction{}, fmt.Errorf("row %d: transaction_id, sender_id and receiver_id are required", line)
	}

	amount, err := decimal.NewFromString(field("amount"))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("row %d: invalid amount %q", line, field("amount"))
	}
	if amount.IsNegative() {
		return domain.Transaction{}, fmt.Errorf("row %d: amount must be non-negative", line)
	}

	return domain.Transaction{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Amount:     amount.InexactFloat64(),
		Timestamp:  ParseTimestamp(field("timestamp")),
	}, nil
}

// ParseTimestamp parses a timestamp against the accepted layouts, returning
// the zero time when none matches.
func ParseTimestamp(value string) time.Time {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
