package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanshika/ringtrace/backend/internal/analysis"
	"github.com/vanshika/ringtrace/backend/internal/domain"
	"github.com/vanshika/ringtrace/backend/internal/repository"
)

const cycleCSV = `transaction_id,sender_id,receiver_id,amount,timestamp
TX_1,A,B,5000,2024-05-01T12:00:00Z
TX_2,B,C,5000,2024-05-01T12:05:00Z
TX_3,C,A,5000,2024-05-01T12:10:00Z
`

type stubArchive struct {
	batches map[string][]domain.Transaction
	err     error
}

func newStubArchive() *stubArchive {
	return &stubArchive{batches: map[string][]domain.Transaction{}}
}

func (s *stubArchive) SaveBatch(_ context.Context, batchID string, txs []domain.Transaction) error {
	if s.err != nil {
		return s.err
	}
	if len(txs) == 0 {
		return repository.ErrEmptyBatch
	}
	s.batches[batchID] = txs
	return nil
}

func (s *stubArchive) LoadBatch(_ context.Context, batchID string) ([]domain.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	txs, ok := s.batches[batchID]
	if !ok {
		return nil, repository.ErrBatchNotFound
	}
	return txs, nil
}

func (s *stubArchive) ListBatches(context.Context) ([]repository.BatchSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	summaries := make([]repository.BatchSummary, 0, len(s.batches))
	for id, txs := range s.batches {
		summaries = append(summaries, repository.BatchSummary{BatchID: id, Transactions: int64(len(txs))})
	}
	return summaries, nil
}

func (s *stubArchive) DeleteBatch(_ context.Context, batchID string) error {
	if s.err != nil {
		return s.err
	}
	delete(s.batches, batchID)
	return nil
}

func newTestAPIHandlers(archive ArchiveStore, samplePath string) *APIHandlers {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	analyzer := analysis.NewAnalyzer(analysis.Config{}, logger)
	return NewAPIHandlers(logger, analyzer, archive, samplePath)
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) domain.AnalysisResult {
	t.Helper()
	var result domain.AnalysisResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

func TestHandleUploadMultipart(t *testing.T) {
	h := newTestAPIHandlers(nil, "")

	body, contentType := multipartBody(t, "file", "ledger.csv", cycleCSV)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.handleUpload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := decodeResult(t, rec)
	if len(result.Nodes) != 3 || len(result.FraudRings) != 1 {
		t.Fatalf("expected 3 nodes and 1 ring, got %d nodes and %d rings",
			len(result.Nodes), len(result.FraudRings))
	}
}

func TestHandleUploadRawBody(t *testing.T) {
	h := newTestAPIHandlers(nil, "")

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(cycleCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()

	h.handleUpload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if result := decodeResult(t, rec); result.Summary.TotalAccountsAnalyzed != 3 {
		t.Fatalf("expected 3 accounts analyzed, got %d", result.Summary.TotalAccountsAnalyzed)
	}
}

func TestHandleUploadMissingColumn(t *testing.T) {
	h := newTestAPIHandlers(nil, "")

	malformed := "transaction_id,sender_id,receiver_id,amount\nTX_1,A,B,100\n"
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(malformed))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()

	h.handleUpload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "timestamp") {
		t.Fatalf("error should name the missing column, got %s", rec.Body.String())
	}
}

func TestHandleUploadMethodNotAllowed(t *testing.T) {
	h := newTestAPIHandlers(nil, "")

	req := httptest.NewRequest(http.MethodGet, "/upload", nil)
	rec := httptest.NewRecorder()

	h.handleUpload(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != http.MethodPost {
		t.Fatalf("expected Allow: POST, got %q", got)
	}
}

func TestHandleUploadReportView(t *testing.T) {
	h := newTestAPIHandlers(nil, "")

	req := httptest.NewRequest(http.MethodPost, "/upload?view=report", strings.NewReader(cycleCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()

	h.handleUpload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var report domain.ComplianceReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Accounts) != 3 {
		t.Fatalf("expected 3 report entries, got %d", len(report.Accounts))
	}
	for i := 1; i < len(report.Accounts); i++ {
		if report.Accounts[i].SuspicionScore > report.Accounts[i-1].SuspicionScore {
			t.Fatal("report entries must be sorted by score descending")
		}
	}
}

func TestHandleSampleData(t *testing.T) {
	samplePath := filepath.Join(t.TempDir(), "transactions.csv")
	if err := os.WriteFile(samplePath, []byte(cycleCSV), 0o644); err != nil {
		t.Fatalf("write sample file: %v", err)
	}
	h := newTestAPIHandlers(nil, samplePath)

	req := httptest.NewRequest(http.MethodGet, "/sample-data", nil)
	rec := httptest.NewRecorder()

	h.handleSampleData(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if result := decodeResult(t, rec); len(result.FraudRings) != 1 {
		t.Fatalf("expected the sample cycle to be detected, got %d rings", len(result.FraudRings))
	}
}

func TestHandleSampleDataMissingFile(t *testing.T) {
	h := newTestAPIHandlers(nil, filepath.Join(t.TempDir(), "nope.csv"))

	req := httptest.NewRequest(http.MethodGet, "/sample-data", nil)
	rec := httptest.NewRecorder()

	h.handleSampleData(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHandleAnalyzeJSON(t *testing.T) {
	h := newTestAPIHandlers(nil, "")

	payload := `{"transactions":[
		{"transaction_id":"TX_1","sender_id":"A","receiver_id":"B","amount":5000,"timestamp":"2024-05-01T12:00:00Z"},
		{"transaction_id":"TX_2","sender_id":"B","receiver_id":"A","amount":5000,"timestamp":"2024-05-01T12:05:00Z"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.handleAnalyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if result := decodeResult(t, rec); len(result.FraudRings) != 1 {
		t.Fatalf("expected 1 ring from the two-account loop, got %d", len(result.FraudRings))
	}
}

func TestHandleAnalyzeRejectsNegativeAmount(t *testing.T) {
	h := newTestAPIHandlers(nil, "")

	payload := `{"transactions":[{"transaction_id":"TX_1","sender_id":"A","receiver_id":"B","amount":-5}]}`
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	h.handleAnalyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleAnalyzeRejectsUnknownFields(t *testing.T) {
	h := newTestAPIHandlers(nil, "")

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"bogus":true}`))
	rec := httptest.NewRecorder()

	h.handleAnalyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBatchEndpointsWithoutArchive(t *testing.T) {
	h := newTestAPIHandlers(nil, "")

	req := httptest.NewRequest(http.MethodPost, "/batches", strings.NewReader(cycleCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()

	h.handleBatches(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without an archive, got %d", rec.Code)
	}
}

func TestCreateAndAnalyzeBatch(t *testing.T) {
	archive := newStubArchive()
	h := newTestAPIHandlers(archive, "")

	req := httptest.NewRequest(http.MethodPost, "/batches?batchId=B1", strings.NewReader(cycleCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.handleBatches(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Status       string `json:"status"`
		BatchID      string `json:"batch_id"`
		Transactions int    `json:"transactions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.BatchID != "B1" || created.Transactions != 3 {
		t.Fatalf("unexpected create response: %+v", created)
	}

	req = httptest.NewRequest(http.MethodGet, "/batches/B1/analysis", nil)
	rec = httptest.NewRecorder()
	h.handleBatchByID(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if result := decodeResult(t, rec); len(result.FraudRings) != 1 {
		t.Fatalf("expected the archived cycle to be detected, got %d rings", len(result.FraudRings))
	}
}

func TestCreateBatchGeneratesID(t *testing.T) {
	archive := newStubArchive()
	h := newTestAPIHandlers(archive, "")

	req := httptest.NewRequest(http.MethodPost, "/batches", strings.NewReader(cycleCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.handleBatches(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		BatchID string `json:"batch_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.BatchID == "" {
		t.Fatal("expected a generated batch id")
	}
	if _, ok := archive.batches[created.BatchID]; !ok {
		t.Fatalf("batch %q was not archived", created.BatchID)
	}
}

func TestCreateBatchRejectsEmptyBatch(t *testing.T) {
	h := newTestAPIHandlers(newStubArchive(), "")

	headerOnly := "transaction_id,sender_id,receiver_id,amount,timestamp\n"
	req := httptest.NewRequest(http.MethodPost, "/batches?batchId=B1", strings.NewReader(headerOnly))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.handleBatches(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an empty batch, got %d", rec.Code)
	}
}

func TestAnalyzeUnknownBatch(t *testing.T) {
	h := newTestAPIHandlers(newStubArchive(), "")

	req := httptest.NewRequest(http.MethodGet, "/batches/missing/analysis", nil)
	rec := httptest.NewRecorder()
	h.handleBatchByID(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteBatch(t *testing.T) {
	archive := newStubArchive()
	archive.batches["B1"] = []domain.Transaction{{ID: "TX_1", SenderID: "A", ReceiverID: "B"}}
	h := newTestAPIHandlers(archive, "")

	req := httptest.NewRequest(http.MethodDelete, "/batches/B1", nil)
	rec := httptest.NewRecorder()
	h.handleBatchByID(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, ok := archive.batches["B1"]; ok {
		t.Fatal("batch B1 should have been deleted")
	}
}

func TestListBatchesEmpty(t *testing.T) {
	h := newTestAPIHandlers(newStubArchive(), "")

	req := httptest.NewRequest(http.MethodGet, "/batches", nil)
	rec := httptest.NewRecorder()
	h.handleBatches(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"batches":[]`) {
		t.Fatalf("expected an empty batches array, got %s", rec.Body.String())
	}
}
