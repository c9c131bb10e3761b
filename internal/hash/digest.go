// Package hash provides the digest primitive used for transaction and
// block hashing in the audit trail.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/iho/batchledger/internal/domain"
)

// timestampFormat is the canonical encoding of timestamps inside hashed
// payloads. Changing it changes every digest.
const timestampFormat = time.RFC3339Nano

// Sum returns the SHA-256 digest of payload as a lowercase hex string.
func Sum(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// TransactionDigest hashes the canonical pipe-delimited encoding of a
// transaction: id, description, timestamp and previous digest, followed by
// each entry's account code, debit, credit and description. The field
// order is part of the contract; reordering it breaks digest interop.
func TransactionDigest(tx *domain.Transaction) string {
	var b strings.Builder

	b.WriteString(tx.ID)
	b.WriteByte('|')
	b.WriteString(tx.Description)
	b.WriteByte('|')
	b.WriteString(tx.Timestamp.UTC().Format(timestampFormat))
	b.WriteByte('|')
	b.WriteString(tx.PreviousDigest)
	b.WriteByte('|')

	for _, e := range tx.Entries {
		b.WriteString(e.AccountCode)
		b.WriteByte('|')
		b.WriteString(e.Debit.String())
		b.WriteByte('|')
		b.WriteString(e.Credit.String())
		b.WriteByte('|')
		b.WriteString(e.Description)
		b.WriteByte('|')
	}

	return Sum([]byte(b.String()))
}

// BlockDigest hashes a block's content: number, previous block hash, the
// concatenated transaction digests and the block timestamp.
func BlockDigest(number uint64, previousBlockHash string, txDigests []string, timestamp time.Time) string {
	var b strings.Builder

	b.WriteString(strconv.FormatUint(number, 10))
	b.WriteByte('|')
	b.WriteString(previousBlockHash)
	b.WriteByte('|')

	for _, d := range txDigests {
		b.WriteString(d)
	}

	b.WriteByte('|')
	b.WriteString(timestamp.UTC().Format(timestampFormat))

	return Sum([]byte(b.String()))
}
