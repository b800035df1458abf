package account

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/ledger/internal/apperrors"
	"github.com/nkiryanov/ledger/internal/models"
	"github.com/nkiryanov/ledger/internal/repository"
	"github.com/nkiryanov/ledger/internal/repository/memory"
	"github.com/nkiryanov/ledger/internal/repository/postgres"
	"github.com/nkiryanov/ledger/internal/testutil"
)

func accountParams(email string) repository.CreateAccountParams {
	return repository.CreateAccountParams{
		FullName:    "Ada Lovelace",
		Email:       email,
		Phone:       "1",
		Nationality: "British",
		Religion:    "Anglican",
		Type:        models.AccountTypeChecking,
	}
}

func appendTransaction(t *testing.T, storage repository.Storage, accountID uuid.UUID, typ string, amount string) {
	t.Helper()

	_, err := storage.Transaction().CreateTransaction(t.Context(), models.Transaction{
		AccountID: accountID,
		Type:      typ,
		Amount:    decimal.RequireFromString(amount),
	})
	require.NoError(t, err)
}

// Run the same cases over every storage implementation
func testAccountService(t *testing.T, newStorage func(t *testing.T, fn func(storage repository.Storage))) {
	t.Run("create account", func(t *testing.T) {
		newStorage(t, func(storage repository.Storage) {
			s := NewService(storage, nil)

			account, err := s.CreateAccount(t.Context(), accountParams("ada@example.com"))

			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, account.ID)
			require.Equal(t, models.AccountStatusActive, account.Status)
			require.True(t, account.IsActive())
			require.Nil(t, account.Address)

			got, err := s.GetAccount(t.Context(), account.ID)
			require.NoError(t, err)
			require.Equal(t, account.Email, got.Email)
			require.Equal(t, account.Type, got.Type)
		})
	})

	t.Run("duplicate email", func(t *testing.T) {
		newStorage(t, func(storage repository.Storage) {
			s := NewService(storage, nil)
			_, err := s.CreateAccount(t.Context(), accountParams("ada@example.com"))
			require.NoError(t, err)

			_, err = s.CreateAccount(t.Context(), accountParams("ada@example.com"))

			require.ErrorIs(t, err, apperrors.ErrAccountAlreadyExists)
		})
	})

	t.Run("set active idempotent", func(t *testing.T) {
		newStorage(t, func(storage repository.Storage) {
			s := NewService(storage, nil)
			account, err := s.CreateAccount(t.Context(), accountParams("ada@example.com"))
			require.NoError(t, err)

			for range 2 {
				frozen, err := s.SetActive(t.Context(), account.ID, false)
				require.NoError(t, err, "freezing twice is not an error")
				require.Equal(t, models.AccountStatusFrozen, frozen.Status)
			}

			for range 2 {
				active, err := s.SetActive(t.Context(), account.ID, true)
				require.NoError(t, err, "unfreezing twice is not an error")
				require.True(t, active.IsActive())
			}
		})
	})

	t.Run("not found", func(t *testing.T) {
		newStorage(t, func(storage repository.Storage) {
			s := NewService(storage, nil)
			unknown := uuid.New()

			_, err := s.GetAccount(t.Context(), unknown)
			require.ErrorIs(t, err, apperrors.ErrAccountNotFound)

			_, err = s.SetActive(t.Context(), unknown, false)
			require.ErrorIs(t, err, apperrors.ErrAccountNotFound)

			_, err = s.GetBalance(t.Context(), unknown)
			require.ErrorIs(t, err, apperrors.ErrAccountNotFound)

			_, err = s.GetStatement(t.Context(), unknown)
			require.ErrorIs(t, err, apperrors.ErrAccountNotFound)
		})
	})

	t.Run("balance and statement", func(t *testing.T) {
		newStorage(t, func(storage repository.Storage) {
			s := NewService(storage, nil)
			account, err := s.CreateAccount(t.Context(), accountParams("ada@example.com"))
			require.NoError(t, err)

			b, err := s.GetBalance(t.Context(), account.ID)
			require.NoError(t, err)
			require.True(t, b.IsZero(), "new account has zero balance")

			appendTransaction(t, storage, account.ID, models.TransactionTypeDeposit, "100")
			appendTransaction(t, storage, account.ID, models.TransactionTypeWithdraw, "0.99")
			appendTransaction(t, storage, account.ID, models.TransactionTypeDeposit, "5.5")

			b, err = s.GetBalance(t.Context(), account.ID)
			require.NoError(t, err)
			require.Equal(t, "104.51", b.StringFixed(2))

			st, err := s.GetStatement(t.Context(), account.ID)
			require.NoError(t, err)
			require.Equal(t, account.ID, st.Account.ID)
			require.Equal(t, "104.51", st.Balance.StringFixed(2))
			require.Len(t, st.Transactions, 3)
		})
	})

	t.Run("frozen account balance readable", func(t *testing.T) {
		newStorage(t, func(storage repository.Storage) {
			s := NewService(storage, nil)
			account, err := s.CreateAccount(t.Context(), accountParams("ada@example.com"))
			require.NoError(t, err)
			appendTransaction(t, storage, account.ID, models.TransactionTypeDeposit, "7")

			_, err = s.SetActive(t.Context(), account.ID, false)
			require.NoError(t, err)

			b, err := s.GetBalance(t.Context(), account.ID)
			require.NoError(t, err)
			require.Equal(t, "7.00", b.StringFixed(2))
		})
	})
}

func TestAccountService(t *testing.T) {
	t.Parallel()

	t.Run("memory", func(t *testing.T) {
		testAccountService(t, func(t *testing.T, fn func(storage repository.Storage)) {
			fn(memory.NewStorage())
		})
	})

	t.Run("postgres", func(t *testing.T) {
		pg := testutil.StartPostgresContainer(t)
		t.Cleanup(pg.Terminate)

		testAccountService(t, func(t *testing.T, fn func(storage repository.Storage)) {
			testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
				fn(postgres.NewStorage(tx))
			})
		})
	})
}
