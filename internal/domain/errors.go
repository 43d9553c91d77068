package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProductNotFound is returned when the product does not exist in the store
	ErrProductNotFound = errors.New("product not found")

	// ErrAlreadyTokenized is returned when the product already has a token recorded
	ErrAlreadyTokenized = errors.New("product already tokenized")

	// ErrWalletUnavailable is returned when no signing account is configured
	ErrWalletUnavailable = errors.New("wallet unavailable")

	// ErrUserRejected is returned when the account owner declines or abandons the connection
	ErrUserRejected = errors.New("wallet connection rejected")

	// ErrConfirmationTimedOut is returned when a submitted transaction was not observed in time.
	// The transaction may still confirm later.
	ErrConfirmationTimedOut = errors.New("confirmation timed out")

	// ErrTransactionReverted is returned when the receipt of a mint transaction reports failure
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrConfirmedButNotPersisted is returned when the mint confirmed on-chain but the store update failed
	ErrConfirmedButNotPersisted = errors.New("confirmed on-chain but not persisted")

	// ErrTransactionMismatch is returned when a transaction is not a mint of the product it is checked against
	ErrTransactionMismatch = errors.New("transaction is not a mint of this product")

	// ErrMissingTransactionHash is returned when persisting a token without its transaction hash
	ErrMissingTransactionHash = errors.New("transaction hash is required")

	// ErrEmptyTransformationEntries is returned when a processing certificate would be left without entries
	ErrEmptyTransformationEntries = errors.New("processing certificate requires at least one transformation entry")
)

// ValidationError lists the mint inputs that are missing
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: missing %s", strings.Join(e.Fields, ", "))
}

// WrongNetworkError is returned when the provider is connected to a different chain than required
type WrongNetworkError struct {
	Expected NetworkID
	Actual   NetworkID
}

func (e *WrongNetworkError) Error() string {
	return fmt.Sprintf("wrong network: expected %s, connected to %s", e.Expected.CAIP2(), e.Actual.CAIP2())
}

// ChainError wraps an error returned by the node while building or submitting a transaction.
// The message of the underlying error is preserved verbatim.
type ChainError struct {
	Op  string
	Err error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("chain %s: %v", e.Op, e.Err)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}
