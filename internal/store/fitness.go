package store

import (
	"context"
	"database/sql"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/google/uuid"
)

// ExerciseFilter narrows catalog listings.
type ExerciseFilter struct {
	Search      string
	MuscleGroup domain.MuscleGroup
}

// ExerciseStore defines the interface for the exercise catalog.
type ExerciseStore interface {
	// Create returns ErrExerciseNameExists when the name is taken.
	Create(ctx context.Context, exercise *domain.Exercise) error

	// GetByID returns ErrExerciseNotFound if the exercise does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Exercise, error)

	// CountExisting returns how many of ids exist in the catalog.
	CountExisting(ctx context.Context, ids []uuid.UUID) (int, error)

	List(ctx context.Context, filter ExerciseFilter, page Page) ([]domain.Exercise, int, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) ExerciseStore
}

// PlannedWorkoutStore defines the interface for planned workout persistence.
// Workouts are always read and written together with their exercise lines.
type PlannedWorkoutStore interface {
	Create(ctx context.Context, workout *domain.PlannedWorkout) error

	// GetByID returns ErrWorkoutNotFound if the workout does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PlannedWorkout, error)

	// ListByUser returns workouts scheduled within window, soonest first.
	ListByUser(ctx context.Context, userID uuid.UUID, window TimeRange, page Page) ([]domain.PlannedWorkout, int, error)

	// Update replaces the workout's fields and exercise lines.
	Update(ctx context.Context, workout *domain.PlannedWorkout) error

	MarkCompleted(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error

	// CountInRange returns how many workouts are scheduled within window and how many of them are completed.
	CountInRange(ctx context.Context, userID uuid.UUID, window TimeRange) (total int, completed int, err error)

	WithTx(tx *sql.Tx) PlannedWorkoutStore
}

// ActualWorkoutStore defines the interface for logged workout persistence.
type ActualWorkoutStore interface {
	Create(ctx context.Context, workout *domain.ActualWorkout) error

	// GetByID returns ErrWorkoutNotFound if the workout does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ActualWorkout, error)

	// ListByUser returns workouts performed within window, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, window TimeRange, page Page) ([]domain.ActualWorkout, int, error)

	// ListInRange returns every workout performed within window, oldest first.
	ListInRange(ctx context.Context, userID uuid.UUID, window TimeRange) ([]domain.ActualWorkout, error)

	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) ActualWorkoutStore
}

// DietStore defines the interface for diet entry persistence.
type DietStore interface {
	Create(ctx context.Context, entry *domain.DietEntry) error

	// GetByID returns ErrDietEntryNotFound if the entry does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DietEntry, error)

	// ListByUser returns entries consumed within window, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, window TimeRange, page Page) ([]domain.DietEntry, int, error)

	// ListInRange returns every entry consumed within window, oldest first.
	ListInRange(ctx context.Context, userID uuid.UUID, window TimeRange) ([]domain.DietEntry, error)

	Update(ctx context.Context, entry *domain.DietEntry) error
	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) DietStore
}
