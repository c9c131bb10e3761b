package engine

import "sync"

// batchQueue is the FIFO work queue shared by the worker pool. Enqueue and
// dequeue are the only operations performed under its lock; workers block
// on the condition variable until work arrives or the queue is closed.
type batchQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*Batch
	closed bool
}

func newBatchQueue() *batchQueue {
	q := &batchQueue{}
	q.cond = sync.NewCond(&q.mu)

	return q
}

// push enqueues a batch without blocking. It returns false once the queue
// has been closed.
func (q *batchQueue) push(b *Batch) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.items = append(q.items, b)
	q.cond.Signal()

	return true
}

// pop blocks until a batch is available or the queue is closed and
// drained. The second return value is false only when no more work will
// ever arrive.
func (q *batchQueue) pop() (*Batch, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}

	if len(q.items) == 0 {
		return nil, false
	}

	b := q.items[0]
	q.items = q.items[1:]

	return b, true
}

// close stops intake and wakes every blocked worker. Already queued
// batches are still handed out by pop, so in-flight work drains.
func (q *batchQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// depth returns the number of queued batches.
func (q *batchQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
