package store

import (
	"context"
	"database/sql"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/google/uuid"
)

// GymFilter narrows gym listings.
type GymFilter struct {
	// Search matches name or address, case-insensitively.
	Search  string
	OwnerID *uuid.UUID
}

// GymStore defines the interface for gym persistence.
type GymStore interface {
	Create(ctx context.Context, gym *domain.Gym) error

	// GetByID returns ErrGymNotFound if the gym does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Gym, error)

	// GetByIDForUpdate locks the gym row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Gym, error)

	// List returns one page of gyms ordered by name, and the total match count.
	List(ctx context.Context, filter GymFilter, page Page) ([]domain.Gym, int, error)

	Update(ctx context.Context, gym *domain.Gym) error

	// Delete removes the gym and, through cascading keys, everything it owns.
	Delete(ctx context.Context, id uuid.UUID) error

	// AdjustMemberCount adds delta to the gym's member_count.
	AdjustMemberCount(ctx context.Context, id uuid.UUID, delta int) error

	WithTx(tx *sql.Tx) GymStore
}

// PlanStore defines the interface for membership plan persistence.
type PlanStore interface {
	Create(ctx context.Context, plan *domain.MembershipPlan) error

	// GetByID returns ErrPlanNotFound if the plan does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MembershipPlan, error)

	// ListByGym returns the gym's plans ordered by price. Inactive plans are
	// only included when includeInactive is set.
	ListByGym(ctx context.Context, gymID uuid.UUID, includeInactive bool) ([]domain.MembershipPlan, error)

	Update(ctx context.Context, plan *domain.MembershipPlan) error
	Delete(ctx context.Context, id uuid.UUID) error

	// InUse reports whether any membership references the plan.
	InUse(ctx context.Context, id uuid.UUID) (bool, error)

	WithTx(tx *sql.Tx) PlanStore
}
