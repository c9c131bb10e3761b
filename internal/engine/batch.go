package engine

import (
	"sync"
	"sync/atomic"

	"github.com/iho/batchledger/internal/domain"
)

// Batch is a submitted group of transactions tracked through processing.
// It is shared between the submitter (polling) and the worker that
// processes it (mutation), so all state transitions are race-free.
type Batch struct {
	ID           string
	Transactions []*domain.Transaction

	completed atomic.Bool
	hasErrors atomic.Bool

	mu     sync.Mutex
	failed []int

	done chan struct{}
}

func newBatch(id string, txs []*domain.Transaction) *Batch {
	return &Batch{
		ID:           id,
		Transactions: txs,
		done:         make(chan struct{}),
	}
}

// markFailed records the index of a rejected transaction.
func (b *Batch) markFailed(index int) {
	b.hasErrors.Store(true)

	b.mu.Lock()
	b.failed = append(b.failed, index)
	b.mu.Unlock()
}

// complete marks the batch done and wakes all waiters. The false to true
// transition happens exactly once.
func (b *Batch) complete() {
	if b.completed.CompareAndSwap(false, true) {
		close(b.done)
	}
}

// Completed reports whether processing has finished.
func (b *Batch) Completed() bool {
	return b.completed.Load()
}

// HasErrors reports whether any transaction in the batch was rejected.
func (b *Batch) HasErrors() bool {
	return b.hasErrors.Load()
}

// FailedIndices returns a copy of the rejected transaction indices.
func (b *Batch) FailedIndices() []int {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]int, len(b.failed))
	copy(out, b.failed)

	return out
}

// Done returns a channel closed when the batch completes.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Status returns a point-in-time snapshot of the batch.
func (b *Batch) Status() BatchStatus {
	failed := b.FailedIndices()

	return BatchStatus{
		ID:            b.ID,
		Size:          len(b.Transactions),
		Processed:     len(b.Transactions) - len(failed),
		Completed:     b.Completed(),
		HasErrors:     b.HasErrors(),
		FailedIndices: failed,
	}
}

// BatchStatus is an immutable snapshot of a batch for callers to inspect.
type BatchStatus struct {
	ID            string
	Size          int
	Processed     int
	Completed     bool
	HasErrors     bool
	FailedIndices []int
}
