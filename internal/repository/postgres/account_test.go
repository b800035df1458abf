package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/ledger/internal/apperrors"
	"github.com/nkiryanov/ledger/internal/models"
	"github.com/nkiryanov/ledger/internal/repository"
	"github.com/nkiryanov/ledger/internal/testutil"
)

func accountParams(email string) repository.CreateAccountParams {
	address := "221B Baker Street"
	return repository.CreateAccountParams{
		FullName:    "Ada Lovelace",
		Email:       email,
		Phone:       "+44 1",
		Nationality: "British",
		Religion:    "Anglican",
		Address:     &address,
		Type:        models.AccountTypeBusiness,
	}
}

func TestAccountRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create account", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}

			account, err := repo.CreateAccount(t.Context(), accountParams("ada@example.com"))

			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, account.ID)
			require.WithinDuration(t, time.Now(), account.CreatedAt, 2*time.Second)
			require.Equal(t, "ada@example.com", account.Email)
			require.Equal(t, models.AccountTypeBusiness, account.Type)
			require.Equal(t, models.AccountStatusActive, account.Status)
			require.NotNil(t, account.Address)
			require.Equal(t, "221B Baker Street", *account.Address)
		})
	})

	t.Run("create without address", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}
			params := accountParams("ada@example.com")
			params.Address = nil

			account, err := repo.CreateAccount(t.Context(), params)

			require.NoError(t, err)
			require.Nil(t, account.Address)
		})
	})

	t.Run("create duplicate email", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}
			_, err := repo.CreateAccount(t.Context(), accountParams("ada@example.com"))
			require.NoError(t, err)

			_, err = repo.CreateAccount(t.Context(), accountParams("ada@example.com"))

			require.ErrorIs(t, err, apperrors.ErrAccountAlreadyExists)
		})
	})

	t.Run("get account", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}
			created, err := repo.CreateAccount(t.Context(), accountParams("ada@example.com"))
			require.NoError(t, err)

			for _, forUpdate := range []bool{false, true} {
				got, err := repo.GetAccount(t.Context(), created.ID, forUpdate)
				require.NoError(t, err)
				require.Equal(t, created, got)
			}
		})
	})

	t.Run("get not existed", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}

			_, err := repo.GetAccount(t.Context(), uuid.New(), false)

			require.ErrorIs(t, err, apperrors.ErrAccountNotFound)
		})
	})

	t.Run("update status", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := AccountRepo{DB: tx}
			created, err := repo.CreateAccount(t.Context(), accountParams("ada@example.com"))
			require.NoError(t, err)

			frozen, err := repo.UpdateAccountStatus(t.Context(), created.ID, models.AccountStatusFrozen)
			require.NoError(t, err)
			require.Equal(t, models.AccountStatusFrozen, frozen.Status)

			again, err := repo.UpdateAccountStatus(t.Context(), created.ID, models.AccountStatusFrozen)
			require.ErrorIs(t, err, apperrors.ErrAccountStatusUnchanged)
			require.Equal(t, models.AccountStatusFrozen, again.Status, "current account must be returned")

			_, err = repo.UpdateAccountStatus(t.Context(), uuid.New(), models.AccountStatusFrozen)
			require.ErrorIs(t, err, apperrors.ErrAccountNotFound)
		})
	})
}

func TestStorage_InTx(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("rollback on error", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			s := NewStorage(tx)
			account, err := s.Account().CreateAccount(t.Context(), accountParams("ada@example.com"))
			require.NoError(t, err)

			err = s.InTx(t.Context(), func(inner repository.Storage) error {
				_, err := inner.Transaction().CreateTransaction(t.Context(), models.Transaction{
					AccountID: account.ID,
					Type:      models.TransactionTypeDeposit,
					Amount:    mustDecimal("10"),
				})
				require.NoError(t, err)
				return apperrors.ErrInsufficientFunds
			})
			require.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

			b, err := s.Transaction().SumBalance(t.Context(), account.ID)
			require.NoError(t, err)
			require.True(t, b.IsZero(), "rolled back transaction must not count")
		})
	})

	t.Run("commit", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			s := NewStorage(tx, WithLockTimeout(time.Second))
			account, err := s.Account().CreateAccount(t.Context(), accountParams("ada@example.com"))
			require.NoError(t, err)

			err = s.InTx(t.Context(), func(inner repository.Storage) error {
				_, err := inner.Transaction().CreateTransaction(t.Context(), models.Transaction{
					AccountID: account.ID,
					Type:      models.TransactionTypeDeposit,
					Amount:    mustDecimal("10"),
				})
				return err
			})
			require.NoError(t, err)

			b, err := s.Transaction().SumBalance(t.Context(), account.ID)
			require.NoError(t, err)
			require.Equal(t, "10.00", b.StringFixed(2))
		})
	})

	t.Run("lock timeout is conflict", func(t *testing.T) {
		// Needs two real connections, so data is committed
		s := NewStorage(pg.Pool, WithLockTimeout(100*time.Millisecond))
		account, err := s.Account().CreateAccount(t.Context(), accountParams(uuid.NewString()+"@example.com"))
		require.NoError(t, err)

		locked := make(chan struct{})
		release := make(chan struct{})
		done := make(chan error)

		go func() {
			done <- s.InTx(t.Context(), func(holder repository.Storage) error {
				_, err := holder.Account().GetAccount(t.Context(), account.ID, true)
				close(locked)
				<-release
				return err
			})
		}()

		<-locked
		err = s.InTx(t.Context(), func(waiter repository.Storage) error {
			_, err := waiter.Account().GetAccount(t.Context(), account.ID, true)
			return err
		})
		close(release)

		require.ErrorIs(t, err, apperrors.ErrConflict)
		require.True(t, apperrors.IsRetryable(err))
		require.NoError(t, <-done)
	})
}
