package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/batchledger/internal/domain"
)

func TestTemplateRegistry(t *testing.T) {
	reg := NewTemplateRegistry()

	tpl := &domain.Template{ID: "rent", Name: "Monthly rent"}
	require.NoError(t, reg.Register(tpl))
	require.ErrorIs(t, reg.Register(tpl), domain.ErrDuplicateTemplate)

	got, err := reg.Get("rent")
	require.NoError(t, err)
	require.Equal(t, "Monthly rent", got.Name)

	_, err = reg.Get("missing")
	require.ErrorIs(t, err, domain.ErrTemplateNotFound)

	require.NoError(t, reg.Register(&domain.Template{ID: "payroll"}))

	list := reg.List()
	require.Len(t, list, 2)
	require.Equal(t, "payroll", list[0].ID)
	require.Equal(t, "rent", list[1].ID)

	require.NoError(t, reg.Remove("rent"))
	require.ErrorIs(t, reg.Remove("rent"), domain.ErrTemplateNotFound)
	require.Len(t, reg.List(), 1)
}

func TestRecurrenceRegistry(t *testing.T) {
	reg := NewRecurrenceRegistry()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	rec := &domain.Recurrence{
		ID:             "rent-monthly",
		TemplateID:     "rent",
		Frequency:      domain.FrequencyMonthly,
		Amount:         decimal.NewFromInt(2500),
		NextOccurrence: base,
		Active:         true,
	}

	require.NoError(t, reg.Register(rec))
	require.ErrorIs(t, reg.Register(rec), domain.ErrDuplicateRecurrence)

	bad := &domain.Recurrence{ID: "bad", Frequency: domain.Frequency("hourly")}
	require.ErrorIs(t, reg.Register(bad), domain.ErrUnknownFrequency)

	got, err := reg.Get("rent-monthly")
	require.NoError(t, err)
	require.Equal(t, "rent", got.TemplateID)

	_, err = reg.Get("missing")
	require.ErrorIs(t, err, domain.ErrRecurrenceNotFound)

	require.Len(t, reg.List(), 1)
}

func TestRecurrenceRegistryUpdate(t *testing.T) {
	reg := NewRecurrenceRegistry()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, reg.Register(&domain.Recurrence{
		ID:             "rent-monthly",
		TemplateID:     "rent",
		Frequency:      domain.FrequencyMonthly,
		Amount:         decimal.NewFromInt(2500),
		NextOccurrence: base,
		Active:         true,
	}))

	replacement := &domain.Recurrence{
		ID:             "rent-monthly",
		TemplateID:     "rent",
		Frequency:      domain.FrequencyQuarterly,
		Amount:         decimal.NewFromInt(7500),
		NextOccurrence: base.AddDate(0, 1, 0),
		Active:         false,
	}

	require.NoError(t, reg.Update("rent-monthly", replacement))

	got, err := reg.Get("rent-monthly")
	require.NoError(t, err)
	require.Equal(t, domain.FrequencyQuarterly, got.Frequency)
	require.True(t, got.Amount.Equal(decimal.NewFromInt(7500)))
	require.False(t, got.Active)

	// Unknown IDs and unknown frequencies are rejected.
	require.ErrorIs(t, reg.Update("missing", replacement), domain.ErrRecurrenceNotFound)

	bad := *replacement
	bad.Frequency = domain.Frequency("hourly")
	require.ErrorIs(t, reg.Update("rent-monthly", &bad), domain.ErrUnknownFrequency)

	// The stored schedule keeps the path ID even if the body disagrees.
	renamed := *replacement
	renamed.ID = "other"
	require.NoError(t, reg.Update("rent-monthly", &renamed))

	got, err = reg.Get("rent-monthly")
	require.NoError(t, err)
	require.Equal(t, "rent-monthly", got.ID)
}

func TestRecurrenceRegistryDueAndAdvance(t *testing.T) {
	reg := NewRecurrenceRegistry()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, reg.Register(&domain.Recurrence{
		ID:             "due",
		Frequency:      domain.FrequencyDaily,
		NextOccurrence: base,
		Active:         true,
	}))
	require.NoError(t, reg.Register(&domain.Recurrence{
		ID:             "future",
		Frequency:      domain.FrequencyDaily,
		NextOccurrence: base.Add(48 * time.Hour),
		Active:         true,
	}))
	require.NoError(t, reg.Register(&domain.Recurrence{
		ID:             "paused",
		Frequency:      domain.FrequencyDaily,
		NextOccurrence: base,
		Active:         false,
	}))

	due := reg.Due(base.Add(time.Hour))
	require.Len(t, due, 1)
	require.Equal(t, "due", due[0].ID)

	next := base.Add(24 * time.Hour)
	require.NoError(t, reg.Advance("due", next))
	require.ErrorIs(t, reg.Advance("missing", next), domain.ErrRecurrenceNotFound)

	got, err := reg.Get("due")
	require.NoError(t, err)
	require.True(t, got.NextOccurrence.Equal(next))
	require.Equal(t, 1, got.ExecutionCount)

	require.Empty(t, reg.Due(base.Add(time.Hour)))

	require.NoError(t, reg.Remove("paused"))
	require.ErrorIs(t, reg.Remove("paused"), domain.ErrRecurrenceNotFound)
}

func TestRecurrenceRegistryCopiesOut(t *testing.T) {
	reg := NewRecurrenceRegistry()

	require.NoError(t, reg.Register(&domain.Recurrence{
		ID:        "r",
		Frequency: domain.FrequencyDaily,
		Active:    true,
	}))

	got, err := reg.Get("r")
	require.NoError(t, err)

	// Mutating the returned copy must not affect the stored schedule.
	got.Active = false

	again, err := reg.Get("r")
	require.NoError(t, err)
	require.True(t, again.Active)
}
