package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/batchledger/internal/adapter/http/dto"
	"github.com/iho/batchledger/internal/engine"
)

// TemplateHandler handles template CRUD and instantiation.
type TemplateHandler struct {
	engine *engine.Engine
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(eng *engine.Engine) *TemplateHandler {
	return &TemplateHandler{engine: eng}
}

// Create registers a new template.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "missing template ID", "")
		return
	}

	tpl := req.ToDomain()
	if err := h.engine.Templates().Register(tpl); err != nil {
		writeError(w, mapDomainError(err), "failed to register template", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TemplateFromDomain(tpl))
}

// List returns all registered templates.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates := h.engine.Templates().List()
	writeJSON(w, http.StatusOK, dto.TemplatesFromDomain(templates))
}

// Get returns a template by ID.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tpl, err := h.engine.Templates().Get(id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get template", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TemplateFromDomain(tpl))
}

// Delete removes a template.
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.engine.Templates().Remove(id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete template", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Instantiate builds a concrete transaction from the template without
// submitting it.
func (h *TemplateHandler) Instantiate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tpl, err := h.engine.Templates().Get(id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get template", err.Error())
		return
	}

	var req dto.InstantiateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := tpl.Instantiate(req.Values)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to instantiate template", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}
