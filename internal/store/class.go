package store

import (
	"context"
	"database/sql"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/google/uuid"
)

// ClassStore defines the interface for gym class persistence.
type ClassStore interface {
	Create(ctx context.Context, class *domain.GymClass) error

	// GetByID returns ErrClassNotFound if the class does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GymClass, error)

	ListByGym(ctx context.Context, gymID uuid.UUID) ([]domain.GymClass, error)
	Update(ctx context.Context, class *domain.GymClass) error
	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) ClassStore
}

// ScheduleStore defines the interface for class schedule persistence.
type ScheduleStore interface {
	Create(ctx context.Context, schedule *domain.ClassSchedule) error

	// GetByID returns ErrScheduleNotFound if the schedule does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ClassSchedule, error)

	// GetByIDForUpdate locks the schedule row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.ClassSchedule, error)

	// ListByClass returns schedules of a class starting within window, ordered by start.
	ListByClass(ctx context.Context, classID uuid.UUID, window TimeRange) ([]domain.ClassSchedule, error)

	// MarkCancelled flags the schedule as cancelled and resets its booked count.
	MarkCancelled(ctx context.Context, id uuid.UUID) error

	// AdjustBookedCount adds delta to booked_count. The database rejects a
	// result outside [0, capacity].
	AdjustBookedCount(ctx context.Context, id uuid.UUID, delta int) error

	WithTx(tx *sql.Tx) ScheduleStore
}
