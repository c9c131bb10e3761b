package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/batchledger/internal/adapter/http/dto"
	"github.com/iho/batchledger/internal/audit"
	"github.com/iho/batchledger/internal/domain"
	"github.com/iho/batchledger/internal/engine"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain and engine errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, engine.ErrBatchNotFound),
		errors.Is(err, domain.ErrTemplateNotFound),
		errors.Is(err, domain.ErrRecurrenceNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrEngineStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrDuplicateTemplate),
		errors.Is(err, domain.ErrDuplicateRecurrence):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNoTransactions),
		errors.Is(err, domain.ErrNoEntries),
		errors.Is(err, domain.ErrUnbalancedTransaction),
		errors.Is(err, domain.ErrMissingAmount),
		errors.Is(err, domain.ErrUnknownFrequency):
		return http.StatusBadRequest
	case errors.Is(err, audit.ErrBrokenChain):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
