package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/google/uuid"
)

// CompetitionFilter narrows competition listings.
type CompetitionFilter struct {
	GymID  *uuid.UUID
	Status domain.CompetitionStatus
	// Now anchors the date-derived status filter.
	Now time.Time
}

// CompetitionStore defines the interface for competitions and their tasks.
type CompetitionStore interface {
	Create(ctx context.Context, competition *domain.Competition) error

	// GetByID returns ErrCompetitionNotFound if the competition does not exist.
	// Tasks are not loaded.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Competition, error)

	// GetByIDForUpdate locks the competition row. Progress updates take this
	// lock so that re-ranking of one competition is serialized.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Competition, error)

	// List returns one page of competitions ordered by start date.
	List(ctx context.Context, filter CompetitionFilter, page Page) ([]domain.Competition, int, error)

	Update(ctx context.Context, competition *domain.Competition) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateTask(ctx context.Context, task *domain.CompetitionTask) error

	// GetTask returns ErrCompTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.CompetitionTask, error)

	ListTasks(ctx context.Context, competitionID uuid.UUID) ([]domain.CompetitionTask, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) CompetitionStore
}

// ParticipantStore defines the interface for competition participants and their task progress.
type ParticipantStore interface {
	// Add returns ErrAlreadyParticipant when the user already joined.
	Add(ctx context.Context, participant *domain.CompetitionParticipant) error

	// Get returns ErrParticipantNotFound if the user has not joined.
	Get(ctx context.Context, competitionID, userID uuid.UUID) (*domain.CompetitionParticipant, error)

	Remove(ctx context.Context, competitionID, userID uuid.UUID) error

	// List returns every participant with their user name, ordered by rank.
	List(ctx context.Context, competitionID uuid.UUID) ([]domain.CompetitionParticipant, error)

	// GetProgress returns ErrProgressNotFound when no progress is recorded yet.
	GetProgress(ctx context.Context, participantID, taskID uuid.UUID) (*domain.TaskProgress, error)

	// UpsertProgress inserts or replaces the progress row of (participant, task).
	UpsertProgress(ctx context.Context, progress *domain.TaskProgress) error

	// ListProgress returns the participant's progress joined with task details.
	ListProgress(ctx context.Context, participantID uuid.UUID) ([]domain.TaskProgress, error)

	// UpdateTotal stores a participant's total points.
	UpdateTotal(ctx context.Context, participantID uuid.UUID, total int) error

	// RecalculateTotals resets every participant's total to the sum of their progress rows.
	RecalculateTotals(ctx context.Context, competitionID uuid.UUID) error

	// UpdateRanks stores the Rank of each given participant.
	UpdateRanks(ctx context.Context, participants []domain.CompetitionParticipant) error

	WithTx(tx *sql.Tx) ParticipantStore
}
