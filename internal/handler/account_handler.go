package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	"github.com/shopspring/decimal"
)

type moneyRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	Counterparty string          `json:"counterparty"`
	Description  string          `json:"description"`
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	view, err := h.accounts.GetAccount(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.moneyMovement(w, r, func(ctx context.Context, userID uuid.UUID, req moneyRequest) (*models.Transaction, error) {
		return h.accounts.Deposit(ctx, userID, req.Amount, req.Description)
	})
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.moneyMovement(w, r, func(ctx context.Context, userID uuid.UUID, req moneyRequest) (*models.Transaction, error) {
		return h.accounts.Withdraw(ctx, userID, req.Amount, req.Description)
	})
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	h.moneyMovement(w, r, func(ctx context.Context, userID uuid.UUID, req moneyRequest) (*models.Transaction, error) {
		return h.accounts.Transfer(ctx, userID, req.Amount, req.Counterparty, req.Description)
	})
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	h.moneyMovement(w, r, func(ctx context.Context, userID uuid.UUID, req moneyRequest) (*models.Transaction, error) {
		return h.accounts.Pay(ctx, userID, req.Amount, req.Counterparty, req.Description)
	})
}

func (h *Handler) moneyMovement(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID, moneyRequest) (*models.Transaction, error)) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req moneyRequest
	if !h.decode(w, r, &req) {
		return
	}
	tx, err := op(r.Context(), userID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) RequestLoan(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount  decimal.Decimal `json:"amount"`
		Purpose string          `json:"purpose"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	loan, err := h.accounts.RequestLoan(r.Context(), userID, req.Amount, req.Purpose)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, loan)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	list, err := h.notifications.List(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) UnreadAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	list, err := h.notifications.UnreadAlerts(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.notifications.MarkOwnRead(r.Context(), userID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) ListBeneficiaries(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	list, err := h.accounts.ListBeneficiaries(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) AddBeneficiary(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Name        string `json:"name"`
		IBAN        string `json:"iban"`
		Institution string `json:"institution"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	b, err := h.accounts.AddBeneficiary(r.Context(), userID, req.Name, req.IBAN, req.Institution)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, b)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
