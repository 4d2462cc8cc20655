package repository

import "context"

// Store is the Ledger Store. Repositories obtained from the Store passed to an InTx callback
// share one unit of work: either everything the callback wrote commits, or nothing does.
type Store interface {
	Users() UserRepository
	Transactions() TransactionRepository
	Loans() LoanRepository
	Notifications() NotificationRepository
	Beneficiaries() BeneficiaryRepository
	Overrides() OverrideRepository

	// InTx runs fn inside a unit of work. A non-nil error from fn rolls the unit back.
	// Calling InTx on a Store that is already inside a unit of work reuses it.
	InTx(ctx context.Context, fn func(ctx context.Context, st Store) error) error

	// InReadTx runs fn against one consistent snapshot. Writes made through st are discarded.
	InReadTx(ctx context.Context, fn func(ctx context.Context, st Store) error) error
}
