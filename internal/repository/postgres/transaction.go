package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ledger/internal/apperrors"
	"github.com/nkiryanov/ledger/internal/models"
)

type TransactionRepo struct {
	DB DBTX
}

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (id, created_at, account_id, type, amount)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, account_id, type, amount
`

func (r *TransactionRepo) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	rows, _ := r.DB.Query(ctx, createTransaction, t.ID, t.CreatedAt, t.AccountID, t.Type, t.Amount)
	created, err := pgx.CollectOneRow(rows, rowToTransaction)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return created, apperrors.ErrAccountNotFound
		}

		return created, dbError(err)
	}

	return created, nil
}

const listTransactions = `-- name: ListTransactions
SELECT id, created_at, account_id, type, amount FROM transactions
WHERE account_id = $1 AND (cardinality($2::text[]) = 0 OR type = ANY($2::text[]))
ORDER BY created_at DESC, id
`

func (r *TransactionRepo) ListTransactions(ctx context.Context, accountID uuid.UUID, types []string) ([]models.Transaction, error) {
	if types == nil {
		types = []string{}
	}

	rows, _ := r.DB.Query(ctx, listTransactions, accountID, types)
	transactions, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, dbError(err)
	}

	return transactions, nil
}

const sumBalance = `-- name: SumBalance
SELECT COALESCE(SUM(CASE WHEN type = 'deposit' THEN amount ELSE -amount END), 0)
FROM transactions
WHERE account_id = $1
`

func (r *TransactionRepo) SumBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := r.DB.QueryRow(ctx, sumBalance, accountID).Scan(&balance)
	if err != nil {
		return balance, dbError(err)
	}

	return balance, nil
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.CreatedAt, &t.AccountID, &t.Type, &t.Amount)
	return t, err
}
