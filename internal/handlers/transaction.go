package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ledger/internal/handlers/render"
	"github.com/nkiryanov/ledger/internal/logger"
	"github.com/nkiryanov/ledger/internal/models"
	"github.com/nkiryanov/ledger/internal/service/transfer"
)

type transactionResponse struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	Type      string    `json:"type"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

func newTransactionResponse(t models.Transaction) transactionResponse {
	return transactionResponse{
		ID:        t.ID,
		AccountID: t.AccountID,
		Type:      t.Type,
		Amount:    t.Amount.StringFixed(2),
		CreatedAt: t.CreatedAt,
	}
}

func handleTransfer(transferService transferService, l logger.Logger) http.Handler {
	type request struct {
		AccountID string          `json:"account_id" validate:"required,uuid"`
		Type      string          `json:"type" validate:"required,oneof=deposit withdraw"`
		Amount    decimal.Decimal `json:"amount" validate:"required,money"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		created, err := transferService.Transfer(r.Context(), transfer.Params{
			AccountID: uuid.MustParse(req.AccountID), // validated already
			Type:      req.Type,
			Amount:    req.Amount,
		})
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, newTransactionResponse(created), http.StatusCreated)
	})
}
