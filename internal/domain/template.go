package domain

import "github.com/shopspring/decimal"

// amountPlaceholder marks a templated debit or credit to be replaced with
// the "amount" value at instantiation time.
var amountPlaceholder = decimal.NewFromInt(1)

// Template is a parameterized transaction blueprint. Entries whose debit
// or credit equals the placeholder sentinel 1.0 receive the "amount" value
// when the template is instantiated.
type Template struct {
	ID          string
	Name        string
	Description string
	Entries     []Entry
}

// Instantiate produces a concrete transaction from the template. The
// returned transaction has no ID or timestamp; both are assigned by the
// engine at submission time.
func (t *Template) Instantiate(values map[string]decimal.Decimal) (*Transaction, error) {
	amount, ok := values["amount"]
	if !ok {
		return nil, ErrMissingAmount
	}

	entries := make([]Entry, len(t.Entries))
	for i, e := range t.Entries {
		if e.Debit.Equal(amountPlaceholder) {
			e.Debit = amount
		}

		if e.Credit.Equal(amountPlaceholder) {
			e.Credit = amount
		}

		entries[i] = e
	}

	return &Transaction{
		Description: t.Description,
		Entries:     entries,
		TemplateID:  t.ID,
	}, nil
}
