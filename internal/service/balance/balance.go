package balance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ledger/internal/models"
	"github.com/nkiryanov/ledger/internal/repository"
)

// Calculator derives account balance from its transactions
// It never checks the account exists: it's the caller responsibility
type Calculator struct{}

// Balance folds account transactions visible to the passed repository
// Pass repository got within unit of work to read the unit snapshot
func (Calculator) Balance(ctx context.Context, repo repository.TransactionRepo, accountID uuid.UUID) (decimal.Decimal, error) {
	balance, err := repo.SumBalance(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("can't calculate balance. Err: %w", err)
	}

	return balance, nil
}

// Fold sums already loaded transactions the same way storage does
func Fold(transactions []models.Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range transactions {
		balance = balance.Add(t.Signed())
	}
	return balance
}
