package models

import "errors"

// Ledger error taxonomy. Callers distinguish outcomes with errors.Is;
// operation wrappers add context with fmt.Errorf("...: %w", err).
var (
	// ErrValidation covers non-positive amounts and quantities.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientFunds means the account balance cannot cover the cost.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientShares means the account holds fewer shares than the
	// requested sell quantity.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrUnknownSymbol means the resolver returned the zero sentinel where
	// a real price is required (buy path only).
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrPersistence wraps storage failures. The triggering operation is
	// aborted and in-memory state is left as it was before the call.
	ErrPersistence = errors.New("persistence failed")
)
