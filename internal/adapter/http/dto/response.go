package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/batchledger/internal/domain"
	"github.com/iho/batchledger/internal/engine"
)

// SubmitBatchResponse acknowledges a batch submission.
type SubmitBatchResponse struct {
	BatchID string `json:"batch_id"`
}

// BatchStatusResponse represents a batch snapshot in API responses.
type BatchStatusResponse struct {
	ID            string `json:"id"`
	Size          int    `json:"size"`
	Processed     int    `json:"processed"`
	Completed     bool   `json:"completed"`
	HasErrors     bool   `json:"has_errors"`
	FailedIndices []int  `json:"failed_indices"`
}

// BatchStatusFromEngine converts an engine snapshot to a response.
func BatchStatusFromEngine(s engine.BatchStatus) *BatchStatusResponse {
	failed := s.FailedIndices
	if failed == nil {
		failed = []int{}
	}

	return &BatchStatusResponse{
		ID:            s.ID,
		Size:          s.Size,
		Processed:     s.Processed,
		Completed:     s.Completed,
		HasErrors:     s.HasErrors,
		FailedIndices: failed,
	}
}

// TransactionResponse represents a committed transaction.
type TransactionResponse struct {
	ID             string          `json:"id"`
	Description    string          `json:"description,omitempty"`
	Entries        []EntryItem     `json:"entries"`
	Timestamp      time.Time       `json:"timestamp"`
	Digest         string          `json:"digest"`
	PreviousDigest string          `json:"previous_digest"`
	TemplateID     string          `json:"template_id,omitempty"`
	IsRecurring    bool            `json:"is_recurring,omitempty"`
	RecurrenceID   string          `json:"recurrence_id,omitempty"`
	TotalDebits    decimal.Decimal `json:"total_debits"`
	TotalCredits   decimal.Decimal `json:"total_credits"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(tx *domain.Transaction) *TransactionResponse {
	entries := make([]EntryItem, len(tx.Entries))
	for i, e := range tx.Entries {
		entries[i] = EntryItem{
			AccountCode: e.AccountCode,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Description: e.Description,
		}
	}

	return &TransactionResponse{
		ID:             tx.ID,
		Description:    tx.Description,
		Entries:        entries,
		Timestamp:      tx.Timestamp,
		Digest:         tx.Digest,
		PreviousDigest: tx.PreviousDigest,
		TemplateID:     tx.TemplateID,
		IsRecurring:    tx.IsRecurring,
		RecurrenceID:   tx.RecurrenceID,
		TotalDebits:    tx.TotalDebits(),
		TotalCredits:   tx.TotalCredits(),
	}
}

// BlockResponse represents an audit block.
type BlockResponse struct {
	Number            uint64                 `json:"number"`
	PreviousBlockHash string                 `json:"previous_block_hash"`
	BlockHash         string                 `json:"block_hash"`
	Timestamp         time.Time              `json:"timestamp"`
	Transactions      []*TransactionResponse `json:"transactions"`
}

// BlockFromDomain converts a domain block to a response.
func BlockFromDomain(b *domain.Block) *BlockResponse {
	txs := make([]*TransactionResponse, len(b.Transactions))
	for i := range b.Transactions {
		txs[i] = TransactionFromDomain(&b.Transactions[i])
	}

	return &BlockResponse{
		Number:            b.Number,
		PreviousBlockHash: b.PreviousBlockHash,
		BlockHash:         b.BlockHash,
		Timestamp:         b.Timestamp,
		Transactions:      txs,
	}
}

// BlocksFromDomain converts domain blocks to responses.
func BlocksFromDomain(blocks []*domain.Block) []*BlockResponse {
	result := make([]*BlockResponse, len(blocks))
	for i, b := range blocks {
		result[i] = BlockFromDomain(b)
	}

	return result
}

// VerifyResponse reports the result of a chain verification.
type VerifyResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// TemplateResponse represents a template in API responses.
type TemplateResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Entries     []EntryItem `json:"entries"`
}

// TemplateFromDomain converts a domain template to a response.
func TemplateFromDomain(t *domain.Template) *TemplateResponse {
	entries := make([]EntryItem, len(t.Entries))
	for i, e := range t.Entries {
		entries[i] = EntryItem{
			AccountCode: e.AccountCode,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Description: e.Description,
		}
	}

	return &TemplateResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Entries:     entries,
	}
}

// TemplatesFromDomain converts domain templates to responses.
func TemplatesFromDomain(templates []*domain.Template) []*TemplateResponse {
	result := make([]*TemplateResponse, len(templates))
	for i, t := range templates {
		result[i] = TemplateFromDomain(t)
	}

	return result
}

// RecurrenceResponse represents a recurrence schedule in API responses.
type RecurrenceResponse struct {
	ID             string          `json:"id"`
	TemplateID     string          `json:"template_id"`
	Frequency      string          `json:"frequency"`
	Amount         decimal.Decimal `json:"amount"`
	NextOccurrence time.Time       `json:"next_occurrence"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	Active         bool            `json:"active"`
	ExecutionCount int             `json:"execution_count"`
}

// RecurrenceFromDomain converts a domain recurrence to a response.
func RecurrenceFromDomain(r domain.Recurrence) *RecurrenceResponse {
	resp := &RecurrenceResponse{
		ID:             r.ID,
		TemplateID:     r.TemplateID,
		Frequency:      string(r.Frequency),
		Amount:         r.Amount,
		NextOccurrence: r.NextOccurrence,
		Active:         r.Active,
		ExecutionCount: r.ExecutionCount,
	}

	if !r.EndDate.IsZero() {
		end := r.EndDate
		resp.EndDate = &end
	}

	return resp
}

// RecurrencesFromDomain converts domain recurrences to responses.
func RecurrencesFromDomain(recs []domain.Recurrence) []*RecurrenceResponse {
	result := make([]*RecurrenceResponse, len(recs))
	for i, r := range recs {
		result[i] = RecurrenceFromDomain(r)
	}

	return result
}

// RunDueResponse reports the outcome of a recurrence run.
type RunDueResponse struct {
	BatchID      string `json:"batch_id,omitempty"`
	Instantiated int    `json:"instantiated"`
}

// StatsResponse represents engine counters.
type StatsResponse struct {
	Processed             int64   `json:"processed"`
	Failed                int64   `json:"failed"`
	Batches               int64   `json:"batches"`
	Blocks                int     `json:"blocks"`
	QueueDepth            int     `json:"queue_depth"`
	TransactionsPerSecond float64 `json:"transactions_per_second"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
