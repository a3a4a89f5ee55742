package repository

import (
	"context"

	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/google/uuid"
)

// Tx is the atomic scope. Every write the engine performs goes through a Tx;
// rows read with ...ForUpdate stay locked until the scope ends.
type Tx interface {
	GetBookingForUpdate(ctx context.Context, id uuid.UUID) (models.Booking, error)
	InsertBooking(ctx context.Context, b models.Booking) error
	// UpdateBooking writes b if the stored version equals b.Version-1.
	UpdateBooking(ctx context.Context, b models.Booking) error

	// GetAccountForUpdate creates a zero account with the given role when
	// none exists yet.
	GetAccountForUpdate(ctx context.Context, id uuid.UUID, role models.Role) (models.Account, error)
	UpdateAccount(ctx context.Context, a models.Account) error
	AppendEntry(ctx context.Context, e models.LedgerEntry) error
	// FindEntryByReference returns the account's entry carrying reference, or
	// a NotFoundError. The account must already be locked by the scope.
	FindEntryByReference(ctx context.Context, accountID uuid.UUID, reference string) (models.LedgerEntry, error)
}

// Store opens atomic scopes and serves read-only queries outside them.
type Store interface {
	// WithTx runs fn in one atomic scope: commit when fn returns nil,
	// roll back everything otherwise.
	WithTx(ctx context.Context, fn func(Tx) error) error

	GetBooking(ctx context.Context, id uuid.UUID) (models.Booking, error)
	ListBookingsByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Booking, error)
	GetAccount(ctx context.Context, id uuid.UUID) (models.Account, error)
	// ListEntries returns history oldest first.
	ListEntries(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.LedgerEntry, error)
}
