package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/ledger/internal/handlers/render"
	"github.com/nkiryanov/ledger/internal/logger"
	"github.com/nkiryanov/ledger/internal/models"
	"github.com/nkiryanov/ledger/internal/repository"
)

type accountResponse struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Nationality string    `json:"nationality"`
	Religion    string    `json:"religion"`
	Address     *string   `json:"address,omitempty"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newAccountResponse(a models.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		FullName:    a.FullName,
		Email:       a.Email,
		Phone:       a.Phone,
		Nationality: a.Nationality,
		Religion:    a.Religion,
		Address:     a.Address,
		Type:        a.Type,
		Status:      a.Status,
		IsActive:    a.IsActive(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func handleCreateAccount(accountService accountService, l logger.Logger) http.Handler {
	type request struct {
		FullName    string  `json:"full_name" validate:"required"`
		Email       string  `json:"email" validate:"required,email"`
		Phone       string  `json:"phone" validate:"required"`
		Nationality string  `json:"nationality" validate:"required"`
		Religion    string  `json:"religion" validate:"required"`
		Address     *string `json:"address,omitempty"`
		Type        string  `json:"type" validate:"required,oneof=savings checking business"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		account, err := accountService.CreateAccount(r.Context(), repository.CreateAccountParams{
			FullName:    req.FullName,
			Email:       req.Email,
			Phone:       req.Phone,
			Nationality: req.Nationality,
			Religion:    req.Religion,
			Address:     req.Address,
			Type:        req.Type,
		})
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, newAccountResponse(account), http.StatusCreated)
	})
}

func handleGetAccount(accountService accountService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := accountID(w, r)
		if !ok {
			return
		}

		account, err := accountService.GetAccount(r.Context(), id)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newAccountResponse(account))
	})
}

func handleSetActive(accountService accountService, active bool, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := accountID(w, r)
		if !ok {
			return
		}

		account, err := accountService.SetActive(r.Context(), id, active)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newAccountResponse(account))
	})
}

func handleGetBalance(accountService accountService, l logger.Logger) http.Handler {
	type response struct {
		AccountID uuid.UUID `json:"account_id"`
		Balance   string    `json:"balance"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := accountID(w, r)
		if !ok {
			return
		}

		balance, err := accountService.GetBalance(r.Context(), id)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, response{AccountID: id, Balance: balance.StringFixed(2)})
	})
}

func handleListTransactions(accountService accountService, l logger.Logger) http.Handler {
	type response struct {
		AccountID    uuid.UUID             `json:"account_id"`
		Balance      string                `json:"balance"`
		Transactions []transactionResponse `json:"transactions"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := accountID(w, r)
		if !ok {
			return
		}

		st, err := accountService.GetStatement(r.Context(), id)
		if err != nil {
			renderError(w, l, err)
			return
		}

		transactions := make([]transactionResponse, 0, len(st.Transactions))
		for _, t := range st.Transactions {
			transactions = append(transactions, newTransactionResponse(t))
		}

		render.JSON(w, response{
			AccountID:    id,
			Balance:      st.Balance.StringFixed(2),
			Transactions: transactions,
		})
	})
}
