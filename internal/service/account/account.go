package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ledger/internal/apperrors"
	"github.com/nkiryanov/ledger/internal/logger"
	"github.com/nkiryanov/ledger/internal/models"
	"github.com/nkiryanov/ledger/internal/repository"
	"github.com/nkiryanov/ledger/internal/service/balance"
)

type AccountService struct {
	storage    repository.Storage
	calculator balance.Calculator
	logger     logger.Logger
}

func NewService(storage repository.Storage, l logger.Logger) *AccountService {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &AccountService{
		storage: storage,
		logger:  l,
	}
}

// Open new active account
// Input expected to be validated already
func (s *AccountService) CreateAccount(ctx context.Context, params repository.CreateAccountParams) (models.Account, error) {
	account, err := s.storage.Account().CreateAccount(ctx, params)
	if err != nil {
		return account, fmt.Errorf("can't create account. Err: %w", err)
	}

	s.logger.Info("Account opened", "account_id", account.ID, "type", account.Type)
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (models.Account, error) {
	return s.storage.Account().GetAccount(ctx, id, false)
}

// SetActive freezes (active=false) or unfreezes (active=true) the account
// Setting the status the account already has is not an error
func (s *AccountService) SetActive(ctx context.Context, id uuid.UUID, active bool) (models.Account, error) {
	status := models.StatusFromActive(active)

	account, err := s.storage.Account().UpdateAccountStatus(ctx, id, status)

	switch {
	case err == nil:
		s.logger.Info("Account status changed", "account_id", id, "status", status)
		return account, nil
	case errors.Is(err, apperrors.ErrAccountStatusUnchanged):
		return account, nil
	default:
		return account, err
	}
}

// GetBalance returns the account balance derived from its transactions
func (s *AccountService) GetBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	var b decimal.Decimal

	// Read account and its transactions from one snapshot
	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		if _, err := storage.Account().GetAccount(ctx, id, false); err != nil {
			return err
		}

		var err error
		b, err = s.calculator.Balance(ctx, storage.Transaction(), id)
		return err
	})

	return b, err
}

type Statement struct {
	Account      models.Account
	Balance      decimal.Decimal
	Transactions []models.Transaction // newest first
}

// GetStatement returns account transactions and the balance they sum up to
func (s *AccountService) GetStatement(ctx context.Context, id uuid.UUID) (Statement, error) {
	var st Statement

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		account, err := storage.Account().GetAccount(ctx, id, false)
		if err != nil {
			return err
		}

		transactions, err := storage.Transaction().ListTransactions(ctx, id, nil)
		if err != nil {
			return err
		}

		st = Statement{
			Account:      account,
			Balance:      balance.Fold(transactions),
			Transactions: transactions,
		}
		return nil
	})

	return st, err
}
