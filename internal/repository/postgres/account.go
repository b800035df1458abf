package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/ledger/internal/apperrors"
	"github.com/nkiryanov/ledger/internal/models"
	"github.com/nkiryanov/ledger/internal/repository"
)

type AccountRepo struct {
	DB DBTX
}

const accountColumns = `id, created_at, updated_at, full_name, email, phone, nationality, religion, address, type, status`

const createAccount = `-- name: CreateAccount
INSERT INTO accounts (id, full_name, email, phone, nationality, religion, address, type, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + accountColumns

func (r *AccountRepo) CreateAccount(ctx context.Context, p repository.CreateAccountParams) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, createAccount,
		uuid.New(), p.FullName, p.Email, p.Phone, p.Nationality, p.Religion, p.Address, p.Type, models.AccountStatusActive,
	)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return account, apperrors.ErrAccountAlreadyExists
		}

		return account, dbError(err)
	}

	return account, nil
}

const getAccount = `-- name: GetAccount
SELECT ` + accountColumns + ` FROM accounts
WHERE id = $1
`

func (r *AccountRepo) GetAccount(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Account, error) {
	query := getAccount
	if forUpdate {
		query += "FOR UPDATE"
	}

	rows, _ := r.DB.Query(ctx, query, id)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, apperrors.ErrAccountNotFound
	default:
		return account, dbError(err)
	}
}

// Conditional update: the row is touched only if status really changes
const updateAccountStatus = `-- name: UpdateAccountStatus
UPDATE accounts
SET status = $2, updated_at = now()
WHERE id = $1 AND status <> $2
RETURNING ` + accountColumns

func (r *AccountRepo) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status string) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, updateAccountStatus, id, status)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Nothing updated: either no such account or the condition did not match
		current, err := r.GetAccount(ctx, id, false)
		if err != nil {
			return current, err
		}
		return current, apperrors.ErrAccountStatusUnchanged
	default:
		return account, dbError(err)
	}
}

func rowToAccount(row pgx.CollectableRow) (models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.CreatedAt, &a.UpdatedAt,
		&a.FullName, &a.Email, &a.Phone, &a.Nationality, &a.Religion, &a.Address,
		&a.Type, &a.Status,
	)
	return a, err
}
