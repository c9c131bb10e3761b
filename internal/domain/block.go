package domain

import "time"

// Block groups the accepted transactions of one batch under a chained hash.
// Blocks are created only by the audit trail and are append-only.
type Block struct {
	Number            uint64
	PreviousBlockHash string
	Transactions      []Transaction
	Timestamp         time.Time
	BlockHash         string
}
