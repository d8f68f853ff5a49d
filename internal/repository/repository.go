// Package repository persists raw transaction batches in the graph store.
// Only ledgers are archived; analysis results are recomputed on demand, so
// nothing derived ever reaches the database.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vanshika/ringtrace/backend/internal/domain"
	"github.com/vanshika/ringtrace/backend/internal/graph"
)

var (
	// ErrBatchNotFound indicates no archived transfers carry the batch id.
	ErrBatchNotFound = errors.New("batch not found")
	// ErrEmptyBatch rejects archiving a batch with no transactions.
	ErrEmptyBatch = errors.New("cannot archive an empty batch")
)

// BatchSummary describes one archived ledger batch.
type BatchSummary struct {
	BatchID      string
	Transactions int64
}

// Repository executes the cypher behind the ledger archive.
type Repository struct {
	client graph.Client
}

// New constructs a Repository backed by the provided graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

const saveBatchCypher = `
UNWIND $transactions AS tx
MERGE (s:Account {accountId: tx.senderId})
MERGE (r:Account {accountId: tx.receiverId})
CREATE (s)-[:TRANSFERRED {
    transactionId: tx.transactionId,
    batchId: $batchId,
    amount: tx.amount,
    timestamp: tx.timestamp
}]->(r)
`

// SaveBatch archives a transaction batch under the given id. Accounts are
// merged so repeated batches share nodes; every transfer becomes its own
// relationship, preserving multiplicity.
func (r *Repository) SaveBatch(ctx context.Context, batchID string, txs []domain.Transaction) error {
	if batchID == "" {
		return errors.New("batch id is required")
	}
	if len(txs) == 0 {
		return ErrEmptyBatch
	}

	rows := make([]map[string]any, 0, len(txs))
	for _, tx := range txs {
		timestamp := ""
		if tx.HasTimestamp() {
			timestamp = tx.Timestamp.UTC().Format(time.RFC3339Nano)
		}
		rows = append(rows, map[string]any{
			"transactionId": tx.ID,
			"senderId":      tx.SenderID,
			"receiverId":    tx.ReceiverID,
			"amount":        tx.Amount,
			"timestamp":     timestamp,
		})
	}

	_, err := r.client.ExecuteWrite(ctx, saveBatchCypher, map[string]any{
		"batchId":      batchID,
		"transactions": rows,
	})
	if err != nil {
		return fmt.Errorf("archive batch %s: %w", batchID, err)
	}
	return nil
}

const loadBatchCypher = `
MATCH (s:Account)-[t:TRANSFERRED {batchId: $batchId}]->(r:Account)
RETURN t.transactionId AS transactionId,
       s.accountId AS senderId,
       r.accountId AS receiverId,
       t.amount AS amount,
       t.timestamp AS timestamp
ORDER BY t.transactionId
`

// LoadBatch returns the archived transactions for a batch id. An archived
// batch always holds at least one transfer, so zero records means the id is
// unknown.
func (r *Repository) LoadBatch(ctx context.Context, batchID string) ([]domain.Transaction, error) {
	res, err := r.client.ExecuteRead(ctx, loadBatchCypher, map[string]any{"batchId": batchID})
	if err != nil {
		return nil, fmt.Errorf("load batch %s: %w", batchID, err)
	}
	if len(res.Records) == 0 {
		return nil, ErrBatchNotFound
	}

	txs := make([]domain.Transaction, 0, len(res.Records))
	for _, rec := range res.Records {
		txs = append(txs, domain.Transaction{
			ID:         stringValue(rec, "transactionId"),
			SenderID:   stringValue(rec, "senderId"),
			ReceiverID: stringValue(rec, "receiverId"),
			Amount:     floatValue(rec, "amount"),
			Timestamp:  timeValue(rec, "timestamp"),
		})
	}
	return txs, nil
}

const listBatchesCypher = `
MATCH ()-[t:TRANSFERRED]->()
RETURN t.batchId AS batchId, count(t) AS transactions
ORDER BY batchId
`

// ListBatches returns a summary of every archived batch.
func (r *Repository) ListBatches(ctx context.Context) ([]BatchSummary, error) {
	res, err := r.client.ExecuteRead(ctx, listBatchesCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}

	batches := make([]BatchSummary, 0, len(res.Records))
	for _, rec := range res.Records {
		batches = append(batches, BatchSummary{
			BatchID:      stringValue(rec, "batchId"),
			Transactions: intValue(rec, "transactions"),
		})
	}
	return batches, nil
}

const deleteBatchCypher = `
MATCH ()-[t:TRANSFERRED {batchId: $batchId}]->()
DELETE t
`

// DeleteBatch removes an archived batch's transfers. Account nodes remain;
// they may be shared with other batches.
func (r *Repository) DeleteBatch(ctx context.Context, batchID string) error {
	if _, err := r.client.ExecuteWrite(ctx, deleteBatchCypher, map[string]any{"batchId": batchID}); err != nil {
		return fmt.Errorf("delete batch %s: %w", batchID, err)
	}
	return nil
}

// --- record mapping helpers ---

func stringValue(rec graph.Record, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

func floatValue(rec graph.Record, key string) float64 {
	switch v := rec[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func intValue(rec graph.Record, key string) int64 {
	switch v := rec[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

func timeValue(rec graph.Record, key string) time.Time {
	s, ok := rec[key].(string)
	if !ok || s == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
