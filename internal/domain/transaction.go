package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceTolerance is the maximum allowed difference between total debits
// and total credits of a transaction (0.01 currency units).
var BalanceTolerance = decimal.New(1, -2)

// Entry is a single debit/credit line within a transaction.
type Entry struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// Transaction is one double-entry accounting event. Once a transaction has
// been committed to the audit trail its Digest and PreviousDigest are set
// and it is never mutated again.
type Transaction struct {
	ID             string
	Description    string
	Entries        []Entry
	Timestamp      time.Time
	Digest         string
	PreviousDigest string
	TemplateID     string
	IsRecurring    bool
	RecurrenceID   string
}

// TotalDebits sums the debit amounts of all entries.
func (t *Transaction) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		total = total.Add(e.Debit)
	}

	return total
}

// TotalCredits sums the credit amounts of all entries.
func (t *Transaction) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		total = total.Add(e.Credit)
	}

	return total
}

// Validate checks the double-entry invariant: total debits and total
// credits must match within BalanceTolerance.
func (t *Transaction) Validate() error {
	if len(t.Entries) == 0 {
		return ErrNoEntries
	}

	diff := t.TotalDebits().Sub(t.TotalCredits()).Abs()
	if diff.GreaterThanOrEqual(BalanceTolerance) {
		return ErrUnbalancedTransaction
	}

	return nil
}
