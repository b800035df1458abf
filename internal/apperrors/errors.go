package apperrors

import (
	"errors"
)

var (
	ErrAccountNotFound        = errors.New("account does not exist")
	ErrAccountAlreadyExists   = errors.New("account with this email already exists")
	ErrAccountFrozen          = errors.New("account is frozen")
	ErrAccountStatusUnchanged = errors.New("account status already set")

	ErrInvalidAmount          = errors.New("amount must be within 0.01..999999999999999999.99 with at most two decimal places")
	ErrInvalidTransactionType = errors.New("transaction type must be deposit or withdraw")
	ErrInsufficientFunds      = errors.New("insufficient funds")

	// Concurrent write detected by the storage, the whole unit was rolled back
	// Safe to retry
	ErrConflict = errors.New("concurrent update conflict")

	// Any other storage failure, the unit was rolled back
	ErrStorage = errors.New("db error")
)

// IsRetryable reports whether the operation may be repeated as is
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
