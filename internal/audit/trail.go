// Package audit maintains the hash-chained, append-only block ledger of
// processed transactions.
package audit

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/iho/batchledger/internal/domain"
	"github.com/iho/batchledger/internal/hash"
)

// GenesisHash is the previous-block hash of the first block in a trail.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

var (
	// ErrEmptyBatch is returned when appending a batch with no transactions.
	ErrEmptyBatch = errors.New("cannot append empty batch to audit trail")

	// ErrBrokenChain is returned by Verify when linkage or a stored hash
	// does not match the recomputed value.
	ErrBrokenChain = errors.New("audit trail integrity violation")
)

// Trail owns the ordered sequence of blocks. It is the single
// serialization point for block creation: block numbering, block linkage
// and per-transaction digest chaining all happen under one lock, so the
// chain reflects commit order even with concurrent appenders.
type Trail struct {
	mu           sync.Mutex
	blocks       []*domain.Block
	lastTxDigest string
	txCount      int
}

// NewTrail creates an empty audit trail.
func NewTrail() *Trail {
	return &Trail{}
}

// AppendBatch commits txs as one new block. PreviousDigest and Digest are
// assigned here, immediately before commit, seeded from the digest of the
// most recently committed transaction. Transactions are stored by value;
// the caller must not mutate them afterwards.
func (t *Trail) AppendBatch(txs []*domain.Transaction) (*domain.Block, error) {
	if len(txs) == 0 {
		return nil, ErrEmptyBatch
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().UTC()

	prevDigest := t.lastTxDigest
	committed := make([]domain.Transaction, 0, len(txs))
	digests := make([]string, 0, len(txs))

	for _, tx := range txs {
		if tx.Timestamp.IsZero() {
			tx.Timestamp = now
		}

		tx.PreviousDigest = prevDigest
		tx.Digest = hash.TransactionDigest(tx)
		prevDigest = tx.Digest

		committed = append(committed, *tx)
		digests = append(digests, tx.Digest)
	}

	previousBlockHash := GenesisHash
	if n := len(t.blocks); n > 0 {
		previousBlockHash = t.blocks[n-1].BlockHash
	}

	block := &domain.Block{
		Number:            uint64(len(t.blocks)) + 1,
		PreviousBlockHash: previousBlockHash,
		Transactions:      committed,
		Timestamp:         now,
	}
	block.BlockHash = hash.BlockDigest(block.Number, block.PreviousBlockHash, digests, block.Timestamp)

	t.blocks = append(t.blocks, block)
	t.lastTxDigest = prevDigest
	t.txCount += len(committed)

	return block, nil
}

// Verify scans the whole trail: the first block must link to GenesisHash,
// every stored block hash must match the hash recomputed from the block's
// content, every block must link to its predecessor's hash, and the
// per-transaction digest chain must be unbroken across blocks. Returns nil
// for a valid (or empty) trail. Verification is read-only and idempotent.
func (t *Trail) Verify() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	prevBlockHash := GenesisHash
	prevTxDigest := ""

	for i, block := range t.blocks {
		if block.PreviousBlockHash != prevBlockHash {
			return fmt.Errorf("%w: block %d previous hash mismatch", ErrBrokenChain, block.Number)
		}

		digests := make([]string, 0, len(block.Transactions))
		for j := range block.Transactions {
			tx := &block.Transactions[j]

			if tx.PreviousDigest != prevTxDigest {
				return fmt.Errorf("%w: block %d transaction %d previous digest mismatch", ErrBrokenChain, block.Number, j)
			}

			if recomputed := hash.TransactionDigest(tx); recomputed != tx.Digest {
				return fmt.Errorf("%w: block %d transaction %d digest mismatch", ErrBrokenChain, block.Number, j)
			}

			prevTxDigest = tx.Digest
			digests = append(digests, tx.Digest)
		}

		recomputed := hash.BlockDigest(block.Number, block.PreviousBlockHash, digests, block.Timestamp)
		if recomputed != block.BlockHash {
			return fmt.Errorf("%w: block %d hash mismatch", ErrBrokenChain, block.Number)
		}

		if block.Number != uint64(i)+1 {
			return fmt.Errorf("%w: block %d out of sequence", ErrBrokenChain, block.Number)
		}

		prevBlockHash = block.BlockHash
	}

	return nil
}

// Export writes a human-readable dump of the chain to w: one section per
// block with its number, timestamp, hashes and a linkage-verified flag.
func (t *Trail) Export(w io.Writer) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := fmt.Fprintf(w, "audit trail: %d blocks, %d transactions\n", len(t.blocks), t.txCount); err != nil {
		return err
	}

	prevBlockHash := GenesisHash
	for _, block := range t.blocks {
		digests := make([]string, 0, len(block.Transactions))
		for j := range block.Transactions {
			digests = append(digests, block.Transactions[j].Digest)
		}

		linked := block.PreviousBlockHash == prevBlockHash &&
			hash.BlockDigest(block.Number, block.PreviousBlockHash, digests, block.Timestamp) == block.BlockHash

		_, err := fmt.Fprintf(w, "block %d\n  timestamp: %s\n  transactions: %d\n  previous: %s\n  hash: %s\n  verified: %t\n",
			block.Number,
			block.Timestamp.Format(time.RFC3339Nano),
			len(block.Transactions),
			block.PreviousBlockHash,
			block.BlockHash,
			linked,
		)
		if err != nil {
			return err
		}

		prevBlockHash = block.BlockHash
	}

	return nil
}

// Blocks returns a snapshot of the block sequence.
func (t *Trail) Blocks() []*domain.Block {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*domain.Block, len(t.blocks))
	copy(out, t.blocks)

	return out
}

// BlockCount returns the number of committed blocks.
func (t *Trail) BlockCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.blocks)
}

// TransactionCount returns the number of committed transactions.
func (t *Trail) TransactionCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.txCount
}

// LastTransactionDigest returns the digest of the most recently committed
// transaction, or the empty string for an empty trail.
func (t *Trail) LastTransactionDigest() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.lastTxDigest
}
