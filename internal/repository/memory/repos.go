package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ledger/internal/apperrors"
	"github.com/nkiryanov/ledger/internal/models"
	"github.com/nkiryanov/ledger/internal/repository"
)

type AccountRepo struct {
	storage *Storage
}

func (r *AccountRepo) CreateAccount(ctx context.Context, p repository.CreateAccountParams) (models.Account, error) {
	var account models.Account

	err := r.storage.run(ctx, func(u *unit) error {
		if u.emailTaken(p.Email) {
			return apperrors.ErrAccountAlreadyExists
		}

		ts := now()
		account = models.Account{
			ID:          uuid.New(),
			CreatedAt:   ts,
			UpdatedAt:   ts,
			FullName:    p.FullName,
			Email:       p.Email,
			Phone:       p.Phone,
			Nationality: p.Nationality,
			Religion:    p.Religion,
			Address:     p.Address,
			Type:        p.Type,
			Status:      models.AccountStatusActive,
		}
		u.putAccount(account, true)
		return nil
	})

	return account, err
}

func (r *AccountRepo) GetAccount(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Account, error) {
	var account models.Account

	err := r.storage.run(ctx, func(u *unit) error {
		a, ok := u.getAccount(id)
		if !ok {
			return apperrors.ErrAccountNotFound
		}
		if forUpdate {
			u.locked[id] = struct{}{}
		}
		account = a
		return nil
	})

	return account, err
}

func (r *AccountRepo) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status string) (models.Account, error) {
	var account models.Account

	err := r.storage.run(ctx, func(u *unit) error {
		a, ok := u.getAccount(id)
		if !ok {
			return apperrors.ErrAccountNotFound
		}
		account = a
		if a.Status == status {
			return apperrors.ErrAccountStatusUnchanged
		}

		account.Status = status
		account.UpdatedAt = now()
		u.putAccount(account, false)
		return nil
	})

	return account, err
}

type TransactionRepo struct {
	storage *Storage
}

func (r *TransactionRepo) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	err := r.storage.run(ctx, func(u *unit) error {
		if _, ok := u.getAccount(t.AccountID); !ok {
			return apperrors.ErrAccountNotFound
		}

		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now()
		}
		t.Amount = t.Amount.Round(2)

		u.appendTransaction(t)
		return nil
	})

	return t, err
}

func (r *TransactionRepo) ListTransactions(ctx context.Context, accountID uuid.UUID, types []string) ([]models.Transaction, error) {
	var transactions []models.Transaction

	err := r.storage.run(ctx, func(u *unit) error {
		for _, t := range u.transactions(accountID) {
			if len(types) == 0 || slices.Contains(types, t.Type) {
				transactions = append(transactions, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Newest first, same order as postgres repository
	slices.SortStableFunc(transactions, func(a, b models.Transaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	return transactions, nil
}

func (r *TransactionRepo) SumBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	balance := decimal.Zero

	err := r.storage.run(ctx, func(u *unit) error {
		for _, t := range u.transactions(accountID) {
			balance = balance.Add(t.Signed())
		}
		return nil
	})

	return balance, err
}
