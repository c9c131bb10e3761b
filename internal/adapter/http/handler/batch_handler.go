package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/batchledger/internal/adapter/http/dto"
	"github.com/iho/batchledger/internal/engine"
)

// BatchHandler handles batch submission and status requests.
type BatchHandler struct {
	engine      *engine.Engine
	waitTimeout time.Duration
}

// NewBatchHandler creates a new BatchHandler. waitTimeout bounds how long
// the wait endpoint blocks.
func NewBatchHandler(eng *engine.Engine, waitTimeout time.Duration) *BatchHandler {
	if waitTimeout <= 0 {
		waitTimeout = 30 * time.Second
	}

	return &BatchHandler{
		engine:      eng,
		waitTimeout: waitTimeout,
	}
}

// Submit enqueues a batch of transactions.
func (h *BatchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	batchID, err := h.engine.SubmitBatch(req.ToDomain())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to submit batch", err.Error())

		return
	}

	writeJSON(w, http.StatusAccepted, dto.SubmitBatchResponse{BatchID: batchID})
}

// Get returns a batch status snapshot.
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing batch ID", "")
		return
	}

	status, err := h.engine.BatchStatus(id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get batch", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchStatusFromEngine(status))
}

// Wait blocks until the batch completes or the wait timeout elapses, then
// returns the final status.
func (h *BatchHandler) Wait(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing batch ID", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.waitTimeout)
	defer cancel()

	err := h.engine.WaitForBatch(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusRequestTimeout, "batch did not complete in time", err.Error())
			return
		}

		writeError(w, mapDomainError(err), "failed to wait for batch", err.Error())

		return
	}

	status, err := h.engine.BatchStatus(id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get batch", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchStatusFromEngine(status))
}

// Stats returns the engine's performance counters.
func (h *BatchHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.engine.Stats()

	writeJSON(w, http.StatusOK, dto.StatsResponse{
		Processed:             stats.Processed,
		Failed:                stats.Failed,
		Batches:               stats.Batches,
		Blocks:                stats.Blocks,
		QueueDepth:            stats.QueueDepth,
		TransactionsPerSecond: stats.TransactionsPerSecond,
	})
}
