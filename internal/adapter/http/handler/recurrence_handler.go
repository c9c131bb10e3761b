package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/batchledger/internal/adapter/http/dto"
	"github.com/iho/batchledger/internal/engine"
)

// RecurrenceHandler handles recurrence schedule CRUD and execution.
type RecurrenceHandler struct {
	engine *engine.Engine
}

// NewRecurrenceHandler creates a new RecurrenceHandler.
func NewRecurrenceHandler(eng *engine.Engine) *RecurrenceHandler {
	return &RecurrenceHandler{engine: eng}
}

// Create registers a new recurrence schedule.
func (h *RecurrenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRecurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.ID == "" || req.TemplateID == "" {
		writeError(w, http.StatusBadRequest, "missing recurrence or template ID", "")
		return
	}

	rec := req.ToDomain()
	if err := h.engine.Recurrences().Register(rec); err != nil {
		writeError(w, mapDomainError(err), "failed to register recurrence", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.RecurrenceFromDomain(*rec))
}

// List returns all recurrence schedules.
func (h *RecurrenceHandler) List(w http.ResponseWriter, r *http.Request) {
	recs := h.engine.Recurrences().List()
	writeJSON(w, http.StatusOK, dto.RecurrencesFromDomain(recs))
}

// Get returns a recurrence schedule by ID.
func (h *RecurrenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.engine.Recurrences().Get(id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get recurrence", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RecurrenceFromDomain(rec))
}

// Update replaces an existing recurrence schedule.
func (h *RecurrenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.CreateRecurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.TemplateID == "" {
		writeError(w, http.StatusBadRequest, "missing template ID", "")
		return
	}

	rec := req.ToDomain()
	if err := h.engine.Recurrences().Update(id, rec); err != nil {
		writeError(w, mapDomainError(err), "failed to update recurrence", err.Error())
		return
	}

	updated, err := h.engine.Recurrences().Get(id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get recurrence", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RecurrenceFromDomain(updated))
}

// Delete removes a recurrence schedule.
func (h *RecurrenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.engine.Recurrences().Remove(id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete recurrence", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Run instantiates every due schedule and submits the resulting
// transactions as one batch.
func (h *RecurrenceHandler) Run(w http.ResponseWriter, r *http.Request) {
	batchID, count, err := h.engine.RunDue(time.Now().UTC())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to run recurrences", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RunDueResponse{
		BatchID:      batchID,
		Instantiated: count,
	})
}
