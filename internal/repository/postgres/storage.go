package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/ledger/internal/apperrors"
	"github.com/nkiryanov/ledger/internal/repository"
)

// Common interface for *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Option func(*Storage)

// WithLockTimeout limits how long a unit of work waits for a row lock
// When the timeout is hit the unit fails with apperrors.ErrConflict
func WithLockTimeout(d time.Duration) Option {
	return func(s *Storage) {
		s.lockTimeout = d
	}
}

type Storage struct {
	db          DBTX
	lockTimeout time.Duration
}

func NewStorage(db DBTX, opts ...Option) *Storage {
	s := &Storage{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) Account() repository.AccountRepo {
	return &AccountRepo{DB: s.db}
}

func (s *Storage) Transaction() repository.TransactionRepo {
	return &TransactionRepo{DB: s.db}
}

// InTx runs fn in database transaction with READ COMMITTED isolation
// Called on a storage that already in transaction it uses savepoint
func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return dbError(err)
	}

	defer func() {
		// Rollback has to reach the server even if ctx is already cancelled
		rollbackCtx := context.WithoutCancel(ctx)

		if p := recover(); p != nil {
			_ = tx.Rollback(rollbackCtx)
			panic(p)
		}

		switch err {
		case nil:
			err = dbError(tx.Commit(ctx))
		default:
			_ = tx.Rollback(rollbackCtx)
		}
	}()

	if s.lockTimeout > 0 {
		_, err = tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", s.lockTimeout.Milliseconds()))
		if err != nil {
			return dbError(err)
		}
	}

	err = fn(&Storage{db: tx, lockTimeout: s.lockTimeout})

	return err
}

// dbError classifies postgres error
// Errors caused by concurrent transactions become apperrors.ErrConflict, the rest apperrors.ErrStorage
func dbError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return fmt.Errorf("%w: %w", apperrors.ErrConflict, err)
		}
	}

	return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
}
