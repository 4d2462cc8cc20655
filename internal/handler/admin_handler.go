package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	service "github.com/honeynil/BankBackOffice/internal/services"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
	"github.com/shopspring/decimal"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(users))
}

func (h *Handler) SetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Balance *decimal.Decimal `json:"balance"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Balance == nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("balance is required: %w", pkgerrors.ErrInvalidInput))
		return
	}
	user, err := h.admin.SetExactBalance(r.Context(), id, *req.Balance)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	overrides, err := h.admin.Overrides(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(overrides))
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status models.UserStatus `json:"status"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.admin.SetStatus(r.Context(), id, req.Status); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount      decimal.Decimal        `json:"amount"`
		Type        models.TransactionType `json:"type"`
		Description string                 `json:"description"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	tx, err := h.admin.AdjustByDelta(r.Context(), id, req.Amount, req.Type, req.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilter(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	list, err := h.ledger.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(list))
}

func transactionFilter(r *http.Request) (models.TransactionFilter, error) {
	q := r.URL.Query()
	filter := models.TransactionFilter{
		Status: models.TransactionStatus(q.Get("status")),
		Type:   models.TransactionType(q.Get("type")),
	}
	if raw := q.Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid user_id: %w", err)
		}
		filter.UserID = id
	}
	for key, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("invalid %s %q", key, raw)
		}
		*dst = n
	}
	return filter, nil
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       uuid.UUID              `json:"user_id"`
		Amount       decimal.Decimal        `json:"amount"`
		Type         models.TransactionType `json:"type"`
		Description  string                 `json:"description"`
		Counterparty string                 `json:"counterparty"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	tx, err := h.ledger.Create(r.Context(), service.CreateTransactionRequest{
		UserID:       req.UserID,
		Amount:       req.Amount,
		Type:         req.Type,
		Description:  req.Description,
		Counterparty: req.Counterparty,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) DecideTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status      models.TransactionStatus `json:"status"`
		AdminReason string                   `json:"admin_reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.ledger.Decide(r.Context(), id, req.Status, req.AdminReason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*models.DecisionResult
	}{true, res})
}

func (h *Handler) AttachInstructions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		PaymentLink  string `json:"payment_link"`
		AdminMessage string `json:"admin_message"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	tx, err := h.ledger.AttachDepositInstructions(r.Context(), id, req.PaymentLink, req.AdminMessage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	filter := models.LoanFilter{Status: models.LoanStatus(r.URL.Query().Get("status"))}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid user_id: %w", err))
			return
		}
		filter.UserID = id
	}
	list, err := h.loans.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) DecideLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status      models.LoanStatus `json:"status"`
		AdminReason string            `json:"admin_reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Status != models.LoanApproved && req.Status != models.LoanRejected {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("status must be APPROVED or REJECTED: %w", pkgerrors.ErrInvalidInput))
		return
	}
	res, err := h.loans.Decide(r.Context(), id, req.Status == models.LoanApproved, req.AdminReason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) SendNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  uuid.UUID               `json:"user_id"`
		Title   string                  `json:"title"`
		Message string                  `json:"message"`
		Type    models.NotificationType `json:"type"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	n, err := h.notifications.Send(r.Context(), req.UserID, req.Title, req.Message, req.Type)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, n)
}

func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string                  `json:"title"`
		Message string                  `json:"message"`
		Type    models.NotificationType `json:"type"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	count, err := h.notifications.Broadcast(r.Context(), req.Title, req.Message, req.Type)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"recipients": count})
}
