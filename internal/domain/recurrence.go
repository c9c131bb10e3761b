package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency describes how often a recurring transaction fires.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnually  Frequency = "annually"
)

// Interval returns the fixed advance duration for the frequency. These are
// calendar approximations (a month is treated as 720 hours), kept as fixed
// durations rather than true calendar arithmetic.
func (f Frequency) Interval() (time.Duration, error) {
	switch f {
	case FrequencyDaily:
		return 24 * time.Hour, nil
	case FrequencyWeekly:
		return 168 * time.Hour, nil
	case FrequencyBiweekly:
		return 336 * time.Hour, nil
	case FrequencyMonthly:
		return 720 * time.Hour, nil
	case FrequencyQuarterly:
		return 2160 * time.Hour, nil
	case FrequencyAnnually:
		return 8760 * time.Hour, nil
	default:
		return 0, ErrUnknownFrequency
	}
}

// Recurrence schedules repeated instantiation of a template. Amount is the
// value substituted for the template's "amount" placeholder on each run.
type Recurrence struct {
	ID             string
	TemplateID     string
	Frequency      Frequency
	Amount         decimal.Decimal
	NextOccurrence time.Time
	EndDate        time.Time // zero value means no end date
	Active         bool
	ExecutionCount int
}

// ShouldExecute reports whether the schedule is due at now: it must be
// active, now must be at or past NextOccurrence, and at or before EndDate
// when one is set.
func (r *Recurrence) ShouldExecute(now time.Time) bool {
	if !r.Active {
		return false
	}

	if now.Before(r.NextOccurrence) {
		return false
	}

	if !r.EndDate.IsZero() && now.After(r.EndDate) {
		return false
	}

	return true
}

// NextAfter returns the occurrence following t for this schedule's
// frequency.
func (r *Recurrence) NextAfter(t time.Time) (time.Time, error) {
	interval, err := r.Frequency.Interval()
	if err != nil {
		return time.Time{}, err
	}

	return t.Add(interval), nil
}
