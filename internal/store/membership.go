package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/google/uuid"
)

// MembershipStore defines the interface for membership persistence.
type MembershipStore interface {
	Create(ctx context.Context, membership *domain.Membership) error

	// GetByID returns ErrMembershipNotFound if the membership does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Membership, error)

	// GetByIDForUpdate locks the membership row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Membership, error)

	// FindActiveAt returns the user's active membership at gymID whose validity
	// window contains at, or ErrMembershipNotFound.
	FindActiveAt(ctx context.Context, userID, gymID uuid.UUID, at time.Time) (*domain.Membership, error)

	// HasOpen reports whether the user holds a pending or active membership at gymID.
	HasOpen(ctx context.Context, userID, gymID uuid.UUID) (bool, error)

	// ListByUser returns the user's memberships, newest first, with plan and gym names.
	ListByUser(ctx context.Context, userID uuid.UUID, page Page) ([]domain.Membership, int, error)

	// ListActiveByGym returns a gym's active memberships with member name and email.
	ListActiveByGym(ctx context.Context, gymID uuid.UUID, page Page) ([]domain.Membership, int, error)

	// Update persists status and validity dates.
	Update(ctx context.Context, membership *domain.Membership) error

	// ExpireDue marks active memberships whose end date is not after now as
	// expired and returns them.
	ExpireDue(ctx context.Context, now time.Time) ([]domain.Membership, error)

	WithTx(tx *sql.Tx) MembershipStore
}

// PaymentStore defines the interface for payment persistence.
type PaymentStore interface {
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID returns ErrPaymentNotFound if the payment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// GetByProviderRefForUpdate locks the payment created for a provider
	// reference, or returns ErrPaymentNotFound.
	GetByProviderRefForUpdate(ctx context.Context, provider, ref string) (*domain.Payment, error)

	// GetByIDForUpdate locks the payment row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	ListByUser(ctx context.Context, userID uuid.UUID, page Page) ([]domain.Payment, int, error)

	// Update persists status and provider reference.
	Update(ctx context.Context, payment *domain.Payment) error

	WithTx(tx *sql.Tx) PaymentStore
}
