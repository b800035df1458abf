package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ledger/internal/models"
)

type CreateAccountParams struct {
	FullName    string
	Email       string
	Phone       string
	Nationality string
	Religion    string
	Address     *string
	Type        string
}

// Account repository interface
type AccountRepo interface {
	// Create active account
	// If account with the email exists already has to return apperrors.ErrAccountAlreadyExists
	CreateAccount(ctx context.Context, params CreateAccountParams) (models.Account, error)

	// Get account by id
	// If forUpdate is set the account is locked till the end of the current unit of work
	// If account not found must return apperrors.ErrAccountNotFound
	GetAccount(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Account, error)

	// Set account status only if it differs from the current one
	// If account not found must return apperrors.ErrAccountNotFound
	// If status is already set must return apperrors.ErrAccountStatusUnchanged
	UpdateAccountStatus(ctx context.Context, id uuid.UUID, status string) (models.Account, error)
}

// Transaction repository interface
// The log is append-only: there are no update or delete methods
type TransactionRepo interface {
	// Append transaction to the log
	// If account not exists must return apperrors.ErrAccountNotFound
	CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)

	// List account transactions, newest first
	// If types is empty all types are returned
	ListTransactions(ctx context.Context, accountID uuid.UUID, types []string) ([]models.Transaction, error)

	// Sum of deposits minus sum of withdrawals, zero if there are no transactions
	SumBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
}

type Storage interface {
	Account() AccountRepo
	Transaction() TransactionRepo

	// Run fn in a unit of work
	// Every repository got from the passed Storage reads and writes within the unit
	// The unit is committed if fn returns nil and rolled back otherwise (panics included)
	// If the commit detects a concurrent write must return apperrors.ErrConflict
	InTx(ctx context.Context, fn func(Storage) error) error
}
