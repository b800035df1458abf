package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AccountStatusActive = "active"
	AccountStatusFrozen = "frozen"
)

const (
	AccountTypeSavings  = "savings"
	AccountTypeChecking = "checking"
	AccountTypeBusiness = "business"
)

// Account holds the owner metadata and the active/frozen flag.
// There is no balance field: balance is always derived from the account transactions.
type Account struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FullName    string
	Email       string
	Phone       string
	Nationality string
	Religion    string
	Address     *string // nil if not provided
	Type        string
	Status      string
}

func (a Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// Status value for the active flag
func StatusFromActive(active bool) string {
	if active {
		return AccountStatusActive
	}
	return AccountStatusFrozen
}
