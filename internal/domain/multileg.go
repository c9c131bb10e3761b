package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LegType classifies a leg of a composite transaction.
type LegType string

const (
	LegSimple           LegType = "simple"
	LegDerivative       LegType = "derivative"
	LegFXSwap           LegType = "fx_swap"
	LegInterestRateSwap LegType = "interest_rate_swap"
	LegEquitySwap       LegType = "equity_swap"
)

// Leg is one sub-component of a composite financial transaction, e.g. the
// spot side of an FX swap.
type Leg struct {
	LegID          string
	Type           LegType
	Entries        []Entry
	Currency       string
	Notional       decimal.Decimal
	SettlementDate time.Time
	Metadata       map[string]string
}

// MultiLegTransaction assembles multiple named legs into a single
// transaction. Legs keep their insertion order.
type MultiLegTransaction struct {
	ID          string
	Description string
	Legs        []Leg
}

// NewMultiLeg creates an empty multi-leg transaction.
func NewMultiLeg(id, description string) *MultiLegTransaction {
	return &MultiLegTransaction{
		ID:          id,
		Description: description,
	}
}

// AddLeg appends a leg, preserving insertion order.
func (m *MultiLegTransaction) AddLeg(leg Leg) {
	m.Legs = append(m.Legs, leg)
}

// RemoveLeg deletes the leg with the given ID, preserving the order of the
// remaining legs.
func (m *MultiLegTransaction) RemoveLeg(legID string) {
	kept := m.Legs[:0]
	for _, leg := range m.Legs {
		if leg.LegID != legID {
			kept = append(kept, leg)
		}
	}

	m.Legs = kept
}

// ToTransaction flattens all legs into one transaction by concatenating
// their entries in leg-insertion order.
func (m *MultiLegTransaction) ToTransaction() *Transaction {
	tx := &Transaction{
		ID:          m.ID,
		Description: m.Description,
	}

	for _, leg := range m.Legs {
		tx.Entries = append(tx.Entries, leg.Entries...)
	}

	return tx
}

// Validate requires at least one leg, at least one entry per leg, and the
// assembled transaction to satisfy the double-entry invariant.
func (m *MultiLegTransaction) Validate() error {
	if len(m.Legs) == 0 {
		return ErrNoLegs
	}

	for _, leg := range m.Legs {
		if len(leg.Entries) == 0 {
			return ErrEmptyLeg
		}
	}

	return m.ToTransaction().Validate()
}

// NewFXSwap builds a two-leg FX swap: a spot leg exchanging base for quote
// currency at spotRate, and a forward leg reversing the exchange at
// forwardRate. Entry amounts are denominated in the quote currency so each
// leg balances on its own.
func NewFXSwap(
	id, base, quote string,
	notional, spotRate, forwardRate decimal.Decimal,
	nearDate, farDate time.Time,
) *MultiLegTransaction {
	m := NewMultiLeg(id, fmt.Sprintf("FX swap %s/%s", base, quote))

	spotAmount := notional.Mul(spotRate)
	m.AddLeg(Leg{
		LegID:          id + "-spot",
		Type:           LegFXSwap,
		Currency:       quote,
		Notional:       notional,
		SettlementDate: nearDate,
		Metadata:       map[string]string{"rate": spotRate.String(), "side": "near"},
		Entries: []Entry{
			{
				AccountCode: "fx:position:" + base,
				Debit:       spotAmount,
				Description: fmt.Sprintf("buy %s %s spot", notional, base),
			},
			{
				AccountCode: "fx:cash:" + quote,
				Credit:      spotAmount,
				Description: fmt.Sprintf("sell %s spot", quote),
			},
		},
	})

	forwardAmount := notional.Mul(forwardRate)
	m.AddLeg(Leg{
		LegID:          id + "-forward",
		Type:           LegFXSwap,
		Currency:       quote,
		Notional:       notional,
		SettlementDate: farDate,
		Metadata:       map[string]string{"rate": forwardRate.String(), "side": "far"},
		Entries: []Entry{
			{
				AccountCode: "fx:cash:" + quote,
				Debit:       forwardAmount,
				Description: fmt.Sprintf("buy %s forward", quote),
			},
			{
				AccountCode: "fx:position:" + base,
				Credit:      forwardAmount,
				Description: fmt.Sprintf("sell %s %s forward", notional, base),
			},
		},
	})

	return m
}

// NewInterestRateSwap builds a two-leg interest rate swap: a fixed leg
// paying notional times fixedRate, and a floating leg receiving the same
// amount as a placeholder until the index fixing is known. Each leg carries
// a single entry; only the assembled transaction balances.
func NewInterestRateSwap(
	id, currency string,
	notional, fixedRate decimal.Decimal,
	floatingIndex string,
	startDate, endDate time.Time,
) *MultiLegTransaction {
	m := NewMultiLeg(id, fmt.Sprintf("interest rate swap fixed/%s", floatingIndex))

	fixedPayment := notional.Mul(fixedRate)
	m.AddLeg(Leg{
		LegID:          id + "-fixed",
		Type:           LegInterestRateSwap,
		Currency:       currency,
		Notional:       notional,
		SettlementDate: endDate,
		Metadata:       map[string]string{"rate": fixedRate.String(), "start": startDate.Format(time.RFC3339)},
		Entries: []Entry{
			{
				AccountCode: "irs:fixed:" + currency,
				Debit:       fixedPayment,
				Description: "fixed rate payment",
			},
		},
	})

	m.AddLeg(Leg{
		LegID:          id + "-floating",
		Type:           LegInterestRateSwap,
		Currency:       currency,
		Notional:       notional,
		SettlementDate: endDate,
		Metadata:       map[string]string{"index": floatingIndex, "start": startDate.Format(time.RFC3339)},
		Entries: []Entry{
			{
				AccountCode: "irs:floating:" + currency,
				Credit:      fixedPayment,
				Description: "floating rate receipt at " + floatingIndex,
			},
		},
	})

	return m
}
