package domain

import "errors"

var (
	// Transaction errors
	ErrNoEntries             = errors.New("transaction has no entries")
	ErrUnbalancedTransaction = errors.New("transaction debits do not equal credits")

	// Multi-leg errors
	ErrNoLegs   = errors.New("multi-leg transaction has no legs")
	ErrEmptyLeg = errors.New("multi-leg transaction has a leg with no entries")

	// Template errors
	ErrMissingAmount     = errors.New(`template instantiation requires an "amount" value`)
	ErrTemplateNotFound  = errors.New("template not found")
	ErrDuplicateTemplate = errors.New("template already registered")

	// Recurrence errors
	ErrRecurrenceNotFound  = errors.New("recurrence not found")
	ErrDuplicateRecurrence = errors.New("recurrence already registered")
	ErrUnknownFrequency    = errors.New("unknown recurrence frequency")
)
