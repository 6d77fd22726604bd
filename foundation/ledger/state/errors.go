package state

import "errors"

// Set of errors the lifecycle manager can return. Validation errors are
// raised synchronously at submission time and never mutate the pool.
var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrMiningInProgress    = errors.New("mining already in progress")
	ErrTransactionNotFound = errors.New("transaction not found")
)
