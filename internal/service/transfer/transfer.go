package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ledger/internal/apperrors"
	"github.com/nkiryanov/ledger/internal/logger"
	"github.com/nkiryanov/ledger/internal/models"
	"github.com/nkiryanov/ledger/internal/repository"
	"github.com/nkiryanov/ledger/internal/service/balance"
)

// Terminal state of a transfer attempt
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeRejected  Outcome = "rejected" // business rule refused the transfer
	OutcomeAborted   Outcome = "aborted"  // storage failed or conflicted
)

type Params struct {
	AccountID uuid.UUID
	Type      string // models.TransactionTypeDeposit or models.TransactionTypeWithdraw
	Amount    decimal.Decimal
}

type Engine struct {
	storage    repository.Storage
	calculator balance.Calculator
	logger     logger.Logger

	now func() time.Time
}

func NewEngine(storage repository.Storage, l logger.Logger) *Engine {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Engine{
		storage: storage,
		logger:  l,
		now:     time.Now,
	}
}

// Transfer deposits to or withdraws from one account
//
// Account lookup, status check, funds check and the record insert run in one unit of work,
// the account is read for update so concurrent transfers to the account can't both pass the funds check.
// On any error the unit is rolled back and nothing is written. Conflicts are not retried here:
// apperrors.ErrConflict is returned and the caller decides.
func (e *Engine) Transfer(ctx context.Context, p Params) (models.Transaction, error) {
	if err := validateParams(p); err != nil {
		e.logResult(p, err)
		return models.Transaction{}, err
	}

	var created models.Transaction

	err := e.storage.InTx(ctx, func(s repository.Storage) error {
		account, err := s.Account().GetAccount(ctx, p.AccountID, true)
		if err != nil {
			return err
		}

		if !account.IsActive() {
			return apperrors.ErrAccountFrozen
		}

		if p.Type == models.TransactionTypeWithdraw {
			current, err := e.calculator.Balance(ctx, s.Transaction(), p.AccountID)
			if err != nil {
				return err
			}
			if current.LessThan(p.Amount) {
				return fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, current.StringFixed(2), p.Amount.StringFixed(2))
			}
		}

		created, err = s.Transaction().CreateTransaction(ctx, models.Transaction{
			ID:        uuid.New(),
			CreatedAt: e.now(),
			AccountID: p.AccountID,
			Type:      p.Type,
			Amount:    p.Amount,
		})
		return err
	})

	e.logResult(p, err)

	if err != nil {
		return models.Transaction{}, err
	}
	return created, nil
}

func validateParams(p Params) error {
	if !models.IsTransactionType(p.Type) {
		return apperrors.ErrInvalidTransactionType
	}

	if !models.IsValidAmount(p.Amount) {
		return apperrors.ErrInvalidAmount
	}

	return nil
}

// ClassifyError maps transfer error to its terminal state
func ClassifyError(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeCommitted
	case errors.Is(err, apperrors.ErrAccountNotFound),
		errors.Is(err, apperrors.ErrAccountFrozen),
		errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrInvalidTransactionType):
		return OutcomeRejected
	default:
		return OutcomeAborted
	}
}

func (e *Engine) logResult(p Params, err error) {
	args := []any{
		"account_id", p.AccountID,
		"type", p.Type,
		"amount", p.Amount.String(),
	}

	switch ClassifyError(err) {
	case OutcomeCommitted:
		e.logger.Info("Transfer committed", args...)
	case OutcomeRejected:
		e.logger.Debug("Transfer rejected", append(args, "reason", err)...)
	default:
		if apperrors.IsRetryable(err) {
			e.logger.Warn("Transfer aborted on conflict", append(args, "error", err)...)
			return
		}
		e.logger.Error("Transfer aborted", append(args, "error", err)...)
	}
}
