package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionTypeDeposit  = "deposit"
	TransactionTypeWithdraw = "withdraw"
)

// Amount bounds for a single transaction, the maximum fits NUMERIC(20,2)
var (
	MinTransactionAmount = decimal.New(1, -2)
	MaxTransactionAmount = decimal.RequireFromString("999999999999999999.99")
)

// IsValidAmount reports whether amount is within bounds and has at most two decimal places
func IsValidAmount(amount decimal.Decimal) bool {
	return !amount.LessThan(MinTransactionAmount) &&
		!amount.GreaterThan(MaxTransactionAmount) &&
		amount.Equal(amount.Round(2))
}

// Transaction is an append-only ledger record.
// Amount is always positive, direction is carried by Type.
type Transaction struct {
	ID        uuid.UUID
	CreatedAt time.Time
	AccountID uuid.UUID
	Type      string
	Amount    decimal.Decimal
}

// Signed returns the amount with the sign of its direction: deposits add, withdrawals subtract
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeWithdraw {
		return t.Amount.Neg()
	}
	return t.Amount
}

func IsTransactionType(value string) bool {
	return value == TransactionTypeDeposit || value == TransactionTypeWithdraw
}
