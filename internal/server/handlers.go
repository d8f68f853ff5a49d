package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/vanshika/ringtrace/backend/internal/analysis"
	"github.com/vanshika/ringtrace/backend/internal/domain"
	"github.com/vanshika/ringtrace/backend/internal/ingest"
	"github.com/vanshika/ringtrace/backend/internal/metrics"
	"github.com/vanshika/ringtrace/backend/internal/repository"
)

// maxUploadBytes caps the size of an uploaded ledger file.
const maxUploadBytes = 64 << 20

// ArchiveStore is the persistence contract for ledger batches. It is nil when
// the service runs without a graph store.
type ArchiveStore interface {
	SaveBatch(ctx context.Context, batchID string, txs []domain.Transaction) error
	LoadBatch(ctx context.Context, batchID string) ([]domain.Transaction, error)
	ListBatches(ctx context.Context) ([]repository.BatchSummary, error)
	DeleteBatch(ctx context.Context, batchID string) error
}

// APIHandlers exposes HTTP handlers for the analysis REST API.
type APIHandlers struct {
	logger     *slog.Logger
	analyzer   *analysis.Analyzer
	archive    ArchiveStore
	samplePath string
}

// NewAPIHandlers constructs an APIHandlers instance. archive may be nil; the
// batch endpoints then answer 503.
func NewAPIHandlers(logger *slog.Logger, analyzer *analysis.Analyzer, archive ArchiveStore, samplePath string) *APIHandlers {
	return &APIHandlers{
		logger:     logger,
		analyzer:   analyzer,
		archive:    archive,
		samplePath: samplePath,
	}
}

// handleUpload analyzes a CSV ledger uploaded as multipart form data (field
// "file") or as a raw request body.
func (h *APIHandlers) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	txs, err := h.readUploadedBatch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondAnalysis(w, r, txs, "upload")
}

// handleSampleData analyzes the read-only reference dataset. The file is
// opened fresh per request and never written.
func (h *APIHandlers) handleSampleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	file, err := os.Open(h.samplePath)
	if err != nil {
		h.logger.Error("failed to open sample dataset", "error", err, "path", h.samplePath)
		writeError(w, http.StatusInternalServerError, "could not load sample data")
		return
	}
	defer file.Close()

	txs, err := ingest.ReadBatch(file)
	if err != nil {
		h.logger.Error("sample dataset is malformed", "error", err, "path", h.samplePath)
		writeError(w, http.StatusInternalServerError, "could not load sample data")
		return
	}

	h.respondAnalysis(w, r, txs, "sample")
}

// handleAnalyze analyzes a JSON transaction batch.
func (h *APIHandlers) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload analyzeRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := payload.toTransactions()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondAnalysis(w, r, txs, "api")
}

func (h *APIHandlers) handleBatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createBatch(w, r)
	case http.MethodGet:
		h.listBatches(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *APIHandlers) createBatch(w http.ResponseWriter, r *http.Request) {
	if !h.requireArchive(w) {
		return
	}

	txs, err := h.readUploadedBatch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	batchID := strings.TrimSpace(r.URL.Query().Get("batchId"))
	if batchID == "" {
		batchID = uuid.NewString()
	}

	if err := h.archive.SaveBatch(r.Context(), batchID, txs); err != nil {
		if errors.Is(err, repository.ErrEmptyBatch) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to archive batch", "error", err, "batchId", batchID)
		writeError(w, http.StatusInternalServerError, "failed to archive batch")
		return
	}

	respondJSON(w, http.StatusCreated, batchCreatedResponse{
		Status:       "ok",
		BatchID:      batchID,
		Transactions: len(txs),
	})
}

func (h *APIHandlers) listBatches(w http.ResponseWriter, r *http.Request) {
	if !h.requireArchive(w) {
		return
	}

	batches, err := h.archive.ListBatches(r.Context())
	if err != nil {
		h.logger.Error("failed to list batches", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list batches")
		return
	}

	resp := batchListResponse{Batches: []batchSummaryResponse{}}
	for _, b := range batches {
		resp.Batches = append(resp.Batches, batchSummaryResponse{
			BatchID:      b.BatchID,
			Transactions: b.Transactions,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleBatchByID serves /batches/{id} (DELETE) and /batches/{id}/analysis
// (GET).
func (h *APIHandlers) handleBatchByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/batches/"), "/")
	parts := strings.Split(rest, "/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "batch ID is required")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.deleteBatch(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "analysis" && r.Method == http.MethodGet:
		h.analyzeBatch(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *APIHandlers) deleteBatch(w http.ResponseWriter, r *http.Request, batchID string) {
	if !h.requireArchive(w) {
		return
	}

	if err := h.archive.DeleteBatch(r.Context(), batchID); err != nil {
		h.logger.Error("failed to delete batch", "error", err, "batchId", batchID)
		writeError(w, http.StatusInternalServerError, "failed to delete batch")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandlers) analyzeBatch(w http.ResponseWriter, r *http.Request, batchID string) {
	if !h.requireArchive(w) {
		return
	}

	txs, err := h.archive.LoadBatch(r.Context(), batchID)
	if err != nil {
		if errors.Is(err, repository.ErrBatchNotFound) {
			writeError(w, http.StatusNotFound, "batch not found")
			return
		}
		h.logger.Error("failed to load batch", "error", err, "batchId", batchID)
		writeError(w, http.StatusInternalServerError, "failed to load batch")
		return
	}

	h.respondAnalysis(w, r, txs, "batch")
}

// respondAnalysis runs the pipeline and writes either the full result or the
// compliance report view, depending on the view query parameter.
func (h *APIHandlers) respondAnalysis(w http.ResponseWriter, r *http.Request, txs []domain.Transaction, source string) {
	result := h.analyzer.Analyze(txs)
	metrics.ObserveAnalysis(source, len(txs), result.Summary.ProcessingTimeSeconds)

	if strings.EqualFold(r.URL.Query().Get("view"), "report") {
		respondJSON(w, http.StatusOK, analysis.BuildReport(result))
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *APIHandlers) readUploadedBatch(r *http.Request) ([]domain.Transaction, error) {
	body, err := h.uploadReader(r)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return ingest.ReadBatch(io.LimitReader(body, maxUploadBytes))
}

func (h *APIHandlers) uploadReader(r *http.Request) (io.ReadCloser, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New(`multipart field "file" is required`)
		}
		return file, nil
	}
	if r.Body == nil {
		return nil, errors.New("request body is required")
	}
	return r.Body, nil
}

func (h *APIHandlers) requireArchive(w http.ResponseWriter) bool {
	if h.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "ledger archive is not configured")
		return false
	}
	return true
}

// --- Request & Response DTOs ---

type analyzeRequest struct {
	Transactions []transactionRequest `json:"transactions"`
}

type transactionRequest struct {
	TransactionID string  `json:"transaction_id"`
	SenderID      string  `json:"sender_id"`
	ReceiverID    string  `json:"receiver_id"`
	Amount        float64 `json:"amount"`
	Timestamp     string  `json:"timestamp"`
}

func (req analyzeRequest) toTransactions() ([]domain.Transaction, error) {
	txs := make([]domain.Transaction, 0, len(req.Transactions))
	for i, tx := range req.Transactions {
		if tx.TransactionID == "" || tx.SenderID == "" || tx.ReceiverID == "" {
			return nil, fmt.Errorf("transaction %d: transaction_id, sender_id and receiver_id are required", i)
		}
		if tx.Amount < 0 {
			return nil, fmt.Errorf("transaction %d: amount must be non-negative", i)
		}
		txs = append(txs, domain.Transaction{
			ID:         tx.TransactionID,
			SenderID:   tx.SenderID,
			ReceiverID: tx.ReceiverID,
			Amount:     tx.Amount,
			Timestamp:  ingest.ParseTimestamp(tx.Timestamp),
		})
	}
	return txs, nil
}

type batchCreatedResponse struct {
	Status       string `json:"status"`
	BatchID      string `json:"batch_id"`
	Transactions int    `json:"transactions"`
}

type batchListResponse struct {
	Batches []batchSummaryResponse `json:"batches"`
}

type batchSummaryResponse struct {
	BatchID      string `json:"batch_id"`
	Transactions int64  `json:"transactions"`
}

// --- Helpers ---

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
