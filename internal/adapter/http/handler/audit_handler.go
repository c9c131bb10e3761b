package handler

import (
	"net/http"

	"github.com/iho/batchledger/internal/adapter/http/dto"
	"github.com/iho/batchledger/internal/engine"
)

// AuditHandler exposes the audit trail: block listing, chain verification
// and the human-readable export.
type AuditHandler struct {
	engine *engine.Engine
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(eng *engine.Engine) *AuditHandler {
	return &AuditHandler{engine: eng}
}

// Blocks lists all committed blocks.
func (h *AuditHandler) Blocks(w http.ResponseWriter, r *http.Request) {
	blocks := h.engine.AuditTrail().Blocks()
	writeJSON(w, http.StatusOK, dto.BlocksFromDomain(blocks))
}

// Verify runs a full chain verification.
func (h *AuditHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.VerifyAuditTrail(); err != nil {
		writeJSON(w, http.StatusOK, dto.VerifyResponse{Valid: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, dto.VerifyResponse{Valid: true})
}

// Export streams the plain-text chain dump.
func (h *AuditHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if err := h.engine.ExportAuditTrail(w); err != nil {
		// Headers are already out; nothing left to do but log via middleware.
		return
	}
}
