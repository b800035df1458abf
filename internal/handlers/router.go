package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ledger/internal/handlers/middleware"
	"github.com/nkiryanov/ledger/internal/handlers/render"
	"github.com/nkiryanov/ledger/internal/logger"
	"github.com/nkiryanov/ledger/internal/models"
	"github.com/nkiryanov/ledger/internal/repository"
	"github.com/nkiryanov/ledger/internal/service/account"
	"github.com/nkiryanov/ledger/internal/service/transfer"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type RouterConfig struct {
	// Allowed CORS origin, "*" for any, empty disables CORS headers
	CORSOrigin string
}

func NewRouter(
	accountService accountService,
	transferService transferService,
	logger logger.Logger,
	config RouterConfig,
) http.Handler {
	api := http.NewServeMux()

	api.Handle("POST /accounts", handleCreateAccount(accountService, logger))
	api.Handle("GET /accounts/{id}", handleGetAccount(accountService, logger))
	api.Handle("GET /accounts/{id}/balance", handleGetBalance(accountService, logger))
	api.Handle("GET /accounts/{id}/transactions", handleListTransactions(accountService, logger))
	api.Handle("PATCH /accounts/{id}/freeze", handleSetActive(accountService, false, logger))
	api.Handle("PATCH /accounts/{id}/unfreeze", handleSetActive(accountService, true, logger))
	api.Handle("POST /transactions", handleTransfer(transferService, logger))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("GET /health", handleHealth())

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
		middleware.CORSMiddleware(config.CORSOrigin),
	)

	return handler
}

func handleHealth() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, map[string]string{"status": "ok"})
	})
}

type accountService interface {
	// Open account
	// Has to return apperrors.ErrAccountAlreadyExists if email is taken
	CreateAccount(ctx context.Context, params repository.CreateAccountParams) (models.Account, error)

	// Get account
	// Has to return apperrors.ErrAccountNotFound if account not exists
	GetAccount(ctx context.Context, id uuid.UUID) (models.Account, error)

	// Freeze or unfreeze account, idempotent
	SetActive(ctx context.Context, id uuid.UUID, active bool) (models.Account, error)

	GetBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
	GetStatement(ctx context.Context, id uuid.UUID) (account.Statement, error)
}

type transferService interface {
	// Deposit or withdraw
	// Rejects with apperrors.ErrAccountNotFound, apperrors.ErrAccountFrozen, apperrors.ErrInsufficientFunds
	// Fails with apperrors.ErrConflict if concurrent transfer won, the request may be retried
	Transfer(ctx context.Context, p transfer.Params) (models.Transaction, error)
}
