package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/iho/batchledger/internal/domain"
)

// TemplateRegistry is a concurrency-safe store of transaction templates.
// It is not on the hot path; a single RWMutex over a map is enough.
type TemplateRegistry struct {
	mu        sync.RWMutex
	templates map[string]*domain.Template
}

// NewTemplateRegistry creates an empty template registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]*domain.Template),
	}
}

// Register adds a template. The template must carry a unique ID.
func (r *TemplateRegistry) Register(tpl *domain.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[tpl.ID]; ok {
		return domain.ErrDuplicateTemplate
	}

	r.templates[tpl.ID] = tpl

	return nil
}

// Get returns the template with the given ID.
func (r *TemplateRegistry) Get(id string) (*domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tpl, ok := r.templates[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}

	return tpl, nil
}

// List returns all templates ordered by ID.
func (r *TemplateRegistry) List() []*domain.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Template, 0, len(r.templates))
	for _, tpl := range r.templates {
		out = append(out, tpl)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Remove deletes the template with the given ID.
func (r *TemplateRegistry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[id]; !ok {
		return domain.ErrTemplateNotFound
	}

	delete(r.templates, id)

	return nil
}

// RecurrenceRegistry is a concurrency-safe store of recurrence schedules.
type RecurrenceRegistry struct {
	mu          sync.RWMutex
	recurrences map[string]*domain.Recurrence
}

// NewRecurrenceRegistry creates an empty recurrence registry.
func NewRecurrenceRegistry() *RecurrenceRegistry {
	return &RecurrenceRegistry{
		recurrences: make(map[string]*domain.Recurrence),
	}
}

// Register adds a schedule. The schedule must carry a unique ID and a
// known frequency.
func (r *RecurrenceRegistry) Register(rec *domain.Recurrence) error {
	if _, err := rec.Frequency.Interval(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recurrences[rec.ID]; ok {
		return domain.ErrDuplicateRecurrence
	}

	r.recurrences[rec.ID] = rec

	return nil
}

// Get returns a copy of the schedule with the given ID.
func (r *RecurrenceRegistry) Get(id string) (domain.Recurrence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.recurrences[id]
	if !ok {
		return domain.Recurrence{}, domain.ErrRecurrenceNotFound
	}

	return *rec, nil
}

// List returns copies of all schedules ordered by ID.
func (r *RecurrenceRegistry) List() []domain.Recurrence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Recurrence, 0, len(r.recurrences))
	for _, rec := range r.recurrences {
		out = append(out, *rec)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Update replaces the schedule with the given ID. The replacement must
// carry a known frequency; its ID is forced to id.
func (r *RecurrenceRegistry) Update(id string, rec *domain.Recurrence) error {
	if _, err := rec.Frequency.Interval(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recurrences[id]; !ok {
		return domain.ErrRecurrenceNotFound
	}

	updated := *rec
	updated.ID = id
	r.recurrences[id] = &updated

	return nil
}

// Due returns copies of all schedules that should execute at now.
func (r *RecurrenceRegistry) Due(now time.Time) []domain.Recurrence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Recurrence
	for _, rec := range r.recurrences {
		if rec.ShouldExecute(now) {
			out = append(out, *rec)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Advance records one execution of the schedule, moving its next
// occurrence forward to next and incrementing its execution count.
func (r *RecurrenceRegistry) Advance(id string, next time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.recurrences[id]
	if !ok {
		return domain.ErrRecurrenceNotFound
	}

	rec.NextOccurrence = next
	rec.ExecutionCount++

	return nil
}

// Remove deletes the schedule with the given ID.
func (r *RecurrenceRegistry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recurrences[id]; !ok {
		return domain.ErrRecurrenceNotFound
	}

	delete(r.recurrences, id)

	return nil
}
