package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/batchledger/internal/domain"
)

// EntryItem is one debit/credit line in a submitted transaction.
type EntryItem struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// TransactionItem is a single transaction in a batch submission.
type TransactionItem struct {
	ID          string      `json:"id,omitempty"`
	Description string      `json:"description,omitempty"`
	Entries     []EntryItem `json:"entries"`
}

// SubmitBatchRequest represents a request to submit a batch.
type SubmitBatchRequest struct {
	Transactions []TransactionItem `json:"transactions"`
}

// ToDomain converts the request to domain transactions.
func (r *SubmitBatchRequest) ToDomain() []*domain.Transaction {
	txs := make([]*domain.Transaction, len(r.Transactions))
	for i, item := range r.Transactions {
		entries := make([]domain.Entry, len(item.Entries))
		for j, e := range item.Entries {
			entries[j] = domain.Entry{
				AccountCode: e.AccountCode,
				Debit:       e.Debit,
				Credit:      e.Credit,
				Description: e.Description,
			}
		}

		txs[i] = &domain.Transaction{
			ID:          item.ID,
			Description: item.Description,
			Entries:     entries,
		}
	}

	return txs
}

// CreateTemplateRequest represents a request to register a template.
type CreateTemplateRequest struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Entries     []EntryItem `json:"entries"`
}

// ToDomain converts the request to a domain template.
func (r *CreateTemplateRequest) ToDomain() *domain.Template {
	entries := make([]domain.Entry, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = domain.Entry{
			AccountCode: e.AccountCode,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Description: e.Description,
		}
	}

	return &domain.Template{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Entries:     entries,
	}
}

// InstantiateTemplateRequest carries the placeholder values for template
// instantiation.
type InstantiateTemplateRequest struct {
	Values map[string]decimal.Decimal `json:"values"`
}

// CreateRecurrenceRequest represents a request to register a recurrence
// schedule.
type CreateRecurrenceRequest struct {
	ID             string          `json:"id"`
	TemplateID     string          `json:"template_id"`
	Frequency      string          `json:"frequency"`
	Amount         decimal.Decimal `json:"amount"`
	NextOccurrence time.Time       `json:"next_occurrence"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	Active         bool            `json:"active"`
}

// ToDomain converts the request to a domain recurrence.
func (r *CreateRecurrenceRequest) ToDomain() *domain.Recurrence {
	rec := &domain.Recurrence{
		ID:             r.ID,
		TemplateID:     r.TemplateID,
		Frequency:      domain.Frequency(r.Frequency),
		Amount:         r.Amount,
		NextOccurrence: r.NextOccurrence,
		Active:         r.Active,
	}

	if r.EndDate != nil {
		rec.EndDate = *r.EndDate
	}

	return rec
}
