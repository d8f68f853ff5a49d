package generator

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// WriteDataset serializes the ledger into transactions.csv and manifest.json
// under the provided directory. The CSV matches the upload schema, so the
// output can be fed straight back through the analysis endpoints.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeCSV(filepath.Join(dir, "transactions.csv"), dataset); err != nil {
		return err
	}

	manifest := struct {
		Transactions     int        `json:"transactions"`
		Mules            []string   `json:"mules"`
		RingAccounts     [][]string `json:"ring_accounts"`
		LayeringAccounts [][]string `json:"layering_accounts"`
	}{
		Transactions:     len(dataset.Transactions),
		Mules:            dataset.Mules,
		RingAccounts:     dataset.RingAccounts,
		LayeringAccounts: dataset.LayeringAccounts,
	}
	return writeJSON(filepath.Join(dir, "manifest.json"), manifest)
}

func writeCSV(path string, dataset Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"transaction_id", "sender_id", "receiver_id", "amount", "timestamp"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range dataset.Transactions {
		record := []string{
			tx.ID,
			tx.SenderID,
			tx.ReceiverID,
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			tx.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv for %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
