package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/honeynil/BankBackOffice/internal/infrastructure/auth"
	service "github.com/honeynil/BankBackOffice/internal/services"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
)

type Handler struct {
	auth          service.AuthService
	accounts      service.AccountService
	ledger        service.LedgerService
	loans         service.LoanService
	notifications service.NotificationService
	admin         service.AdminService
}

type Services struct {
	Auth          service.AuthService
	Accounts      service.AccountService
	Ledger        service.LedgerService
	Loans         service.LoanService
	Notifications service.NotificationService
	Admin         service.AdminService
}

func NewHandler(s Services) *Handler {
	return &Handler{
		auth:          s.Auth,
		accounts:      s.Accounts,
		ledger:        s.Ledger,
		loans:         s.Loans,
		notifications: s.Notifications,
		admin:         s.Admin,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
}

func (h *Handler) RegisterAccountRoutes(r *mux.Router) {
	r.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)
	r.HandleFunc("/account", h.GetAccount).Methods(http.MethodGet)
	r.HandleFunc("/deposits", h.Deposit).Methods(http.MethodPost)
	r.HandleFunc("/withdrawals", h.Withdraw).Methods(http.MethodPost)
	r.HandleFunc("/transfers", h.Transfer).Methods(http.MethodPost)
	r.HandleFunc("/payments", h.Pay).Methods(http.MethodPost)
	r.HandleFunc("/loans", h.RequestLoan).Methods(http.MethodPost)
	r.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet)
	r.HandleFunc("/notifications/alerts", h.UnreadAlerts).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods(http.MethodPost)
	r.HandleFunc("/beneficiaries", h.ListBeneficiaries).Methods(http.MethodGet)
	r.HandleFunc("/beneficiaries", h.AddBeneficiary).Methods(http.MethodPost)
}

func (h *Handler) RegisterAdminRoutes(r *mux.Router) {
	r.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/balance", h.SetBalance).Methods(http.MethodPut)
	r.HandleFunc("/users/{id}/status", h.SetStatus).Methods(http.MethodPut)
	r.HandleFunc("/users/{id}/overrides", h.ListOverrides).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/adjustments", h.Adjust).Methods(http.MethodPost)
	r.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet)
	r.HandleFunc("/transactions", h.CreateTransaction).Methods(http.MethodPost)
	r.HandleFunc("/transactions/{id}/decision", h.DecideTransaction).Methods(http.MethodPost)
	r.HandleFunc("/transactions/{id}/instructions", h.AttachInstructions).Methods(http.MethodPost)
	r.HandleFunc("/loans", h.ListLoans).Methods(http.MethodGet)
	r.HandleFunc("/loans/{id}/decision", h.DecideLoan).Methods(http.MethodPost)
	r.HandleFunc("/notifications", h.SendNotification).Methods(http.MethodPost)
	r.HandleFunc("/notifications/broadcast", h.Broadcast).Methods(http.MethodPost)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// fail maps a service error onto its HTTP status. Storage failures are logged and hidden.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		h.writeError(w, status, errors.New("internal error"))
		return
	}
	h.writeError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pkgerrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, pkgerrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, pkgerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, pkgerrors.ErrUserBlocked), errors.Is(err, pkgerrors.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid id: %w", err))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := auth.UserIDFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return uuid.Nil, false
	}
	return id, true
}
