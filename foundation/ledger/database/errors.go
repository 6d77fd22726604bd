package database

import "errors"

// Set of errors the ledger database can return. The chain integrity errors
// indicate either a mining bug or tampering and must be surfaced, never
// retried silently.
var (
	ErrInvalidAmount      = errors.New("invalid transaction amount")
	ErrInvalidLink        = errors.New("block does not link to the current chain tip")
	ErrInvalidProofOfWork = errors.New("block hash does not satisfy the difficulty")
	ErrHashMismatch       = errors.New("block hash does not match the block contents")
	ErrMiningCancelled    = errors.New("mining cancelled")
	ErrBlockNotFound      = errors.New("block not found")
)
