package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewFXSwap(t *testing.T) {
	near := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	far := near.AddDate(0, 3, 0)

	swap := NewFXSwap(
		"swap-1", "EUR", "USD",
		decimal.NewFromInt(1_000_000),
		decimal.RequireFromString("1.0850"),
		decimal.RequireFromString("1.0910"),
		near, far,
	)

	if len(swap.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(swap.Legs))
	}

	if err := swap.Validate(); err != nil {
		t.Fatalf("expected valid swap, got %v", err)
	}

	tx := swap.ToTransaction()
	if err := tx.Validate(); err != nil {
		t.Fatalf("expected balanced assembled transaction, got %v", err)
	}

	if len(tx.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(tx.Entries))
	}
}

func TestNewInterestRateSwap(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(5, 0, 0)

	swap := NewInterestRateSwap(
		"irs-1", "USD",
		decimal.NewFromInt(10_000_000),
		decimal.RequireFromString("0.0425"),
		"SOFR",
		start, end,
	)

	if len(swap.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(swap.Legs))
	}

	if swap.Legs[0].Type != LegInterestRateSwap || swap.Legs[1].Type != LegInterestRateSwap {
		t.Fatalf("expected interest rate swap legs, got %s and %s", swap.Legs[0].Type, swap.Legs[1].Type)
	}

	if err := swap.Validate(); err != nil {
		t.Fatalf("expected valid swap, got %v", err)
	}

	tx := swap.ToTransaction()
	if err := tx.Validate(); err != nil {
		t.Fatalf("expected balanced assembled transaction, got %v", err)
	}

	// One fixed payment entry, one floating receipt entry.
	if len(tx.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(tx.Entries))
	}

	want := decimal.RequireFromString("425000")
	if !tx.Entries[0].Debit.Equal(want) {
		t.Errorf("expected fixed payment %s, got %s", want, tx.Entries[0].Debit)
	}

	if !tx.Entries[1].Credit.Equal(want) {
		t.Errorf("expected floating receipt %s, got %s", want, tx.Entries[1].Credit)
	}
}

func TestMultiLeg_RemoveLeg(t *testing.T) {
	m := NewMultiLeg("ml-1", "three legs")
	m.AddLeg(Leg{LegID: "a", Type: LegSimple, Entries: []Entry{{AccountCode: "a"}}})
	m.AddLeg(Leg{LegID: "b", Type: LegSimple, Entries: []Entry{{AccountCode: "b"}}})
	m.AddLeg(Leg{LegID: "c", Type: LegSimple, Entries: []Entry{{AccountCode: "c"}}})

	m.RemoveLeg("b")

	if len(m.Legs) != 2 {
		t.Fatalf("expected 2 legs after removal, got %d", len(m.Legs))
	}

	if m.Legs[0].LegID != "a" || m.Legs[1].LegID != "c" {
		t.Fatalf("expected remaining legs in order, got %s and %s", m.Legs[0].LegID, m.Legs[1].LegID)
	}

	// Removing an unknown leg leaves the rest untouched.
	m.RemoveLeg("missing")
	if len(m.Legs) != 2 {
		t.Fatalf("expected removal of unknown leg to be a no-op, got %d legs", len(m.Legs))
	}
}

func TestMultiLeg_ToTransactionPreservesLegOrder(t *testing.T) {
	m := NewMultiLeg("ml-1", "two legs")
	m.AddLeg(Leg{
		LegID:   "first",
		Type:    LegSimple,
		Entries: []Entry{{AccountCode: "a", Debit: decimal.NewFromInt(1)}},
	})
	m.AddLeg(Leg{
		LegID:   "second",
		Type:    LegSimple,
		Entries: []Entry{{AccountCode: "b", Credit: decimal.NewFromInt(1)}},
	})

	tx := m.ToTransaction()

	if len(tx.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(tx.Entries))
	}

	if tx.Entries[0].AccountCode != "a" || tx.Entries[1].AccountCode != "b" {
		t.Fatalf("expected entries in leg-insertion order, got %v", tx.Entries)
	}
}

func TestMultiLeg_Validate(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *MultiLegTransaction
		wantErr error
	}{
		{
			name:    "no legs",
			build:   func() *MultiLegTransaction { return NewMultiLeg("m", "") },
			wantErr: ErrNoLegs,
		},
		{
			name: "leg without entries",
			build: func() *MultiLegTransaction {
				m := NewMultiLeg("m", "")
				m.AddLeg(Leg{LegID: "l1", Type: LegDerivative})
				return m
			},
			wantErr: ErrEmptyLeg,
		},
		{
			name: "unbalanced assembly",
			build: func() *MultiLegTransaction {
				m := NewMultiLeg("m", "")
				m.AddLeg(Leg{
					LegID:   "l1",
					Type:    LegSimple,
					Entries: []Entry{{AccountCode: "a", Debit: decimal.NewFromInt(100)}},
				})
				return m
			},
			wantErr: ErrUnbalancedTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
