package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/ledger/internal/apperrors"
	"github.com/nkiryanov/ledger/internal/handlers/render"
	"github.com/nkiryanov/ledger/internal/logger"
)

// renderError maps service errors to responses
// Unknown errors are logged and hidden behind 500
func renderError(w http.ResponseWriter, l logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound):
		render.ServiceError(w, "Account does not exist", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrAccountFrozen):
		render.ServiceError(w, "Account is frozen", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		render.ServiceError(w, "Insufficient funds", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrInvalidAmount):
		render.ServiceError(w, "Invalid amount", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrInvalidTransactionType):
		render.ServiceError(w, "Invalid transaction type", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrAccountAlreadyExists):
		render.ServiceError(w, "Account with this email already exists", http.StatusConflict)
	case errors.Is(err, apperrors.ErrConflict):
		render.RetryableError(w, "Account was changed concurrently, try again", http.StatusConflict)
	default:
		l.Error("Request failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// accountID parses account id from the path, renders error if it's malformed
func accountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Invalid account id", http.StatusBadRequest)
		return id, false
	}
	return id, true
}
