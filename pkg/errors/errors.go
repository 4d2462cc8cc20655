package errors

import (
	"errors"
	"fmt"
)

// Category roots. Entity errors wrap one of them so callers can branch with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrTransactionNotFound  = fmt.Errorf("transaction %w", ErrNotFound)
	ErrLoanNotFound         = fmt.Errorf("loan %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)

	ErrTransactionAlreadyDecided = fmt.Errorf("transaction already decided: %w", ErrConflict)
	ErrLoanAlreadyDecided        = fmt.Errorf("loan already decided: %w", ErrConflict)
	ErrUserAlreadyExists         = fmt.Errorf("user already exists: %w", ErrConflict)

	ErrNilUser                  = fmt.Errorf("user is nil: %w", ErrInvalidInput)
	ErrNilTransaction           = fmt.Errorf("transaction is nil: %w", ErrInvalidInput)
	ErrNilLoan                  = fmt.Errorf("loan is nil: %w", ErrInvalidInput)
	ErrNilNotification          = fmt.Errorf("notification is nil: %w", ErrInvalidInput)
	ErrInvalidTransactionType   = fmt.Errorf("invalid transaction type: %w", ErrInvalidInput)
	ErrInvalidTransactionStatus = fmt.Errorf("invalid transaction status: %w", ErrInvalidInput)
	ErrInvalidNotificationType  = fmt.Errorf("invalid notification type: %w", ErrInvalidInput)
	ErrInvalidUserStatus        = fmt.Errorf("invalid user status: %w", ErrInvalidInput)
	ErrInvalidAmount            = fmt.Errorf("invalid amount: %w", ErrInvalidInput)
	ErrNotDepositTransaction    = fmt.Errorf("transaction is not a deposit: %w", ErrInvalidInput)
	ErrInsufficientFunds        = fmt.Errorf("insufficient funds: %w", ErrInvalidInput)

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserBlocked        = errors.New("user is blocked")
	ErrForbidden          = errors.New("forbidden")
)
