package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
)

// PostgresParticipantStore implements store.ParticipantStore.
type PostgresParticipantStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresParticipantStore creates a new PostgresParticipantStore.
func NewPostgresParticipantStore(db store.DBTX, logger *slog.Logger) *PostgresParticipantStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresParticipantStore{db: db, logger: logger.With(slog.String("component", "participant_store"))}
}

var _ store.ParticipantStore = (*PostgresParticipantStore)(nil)

const participantSelect = `
	SELECT p.id, p.competition_id, p.user_id, p.total_points, p.rank, p.joined_at, p.updated_at, u.name,
		(SELECT COUNT(*) FROM competition_task_progress tp WHERE tp.participant_id = p.id AND tp.completed)
	FROM competition_participants p
	JOIN users u ON u.id = p.user_id`

func scanParticipant(row rowScanner) (*domain.CompetitionParticipant, error) {
	var p domain.CompetitionParticipant
	if err := row.Scan(&p.ID, &p.CompetitionID, &p.UserID, &p.TotalPoints, &p.Rank, &p.JoinedAt,
		&p.UpdatedAt, &p.UserName, &p.CompletedTasks); err != nil {
		return nil, err
	}
	return &p, nil
}

// Add implements store.ParticipantStore.Add
func (s *PostgresParticipantStore) Add(ctx context.Context, participant *domain.CompetitionParticipant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO competition_participants (id, competition_id, user_id, total_points, rank, joined_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		participant.ID, participant.CompetitionID, participant.UserID, participant.TotalPoints,
		participant.Rank, participant.JoinedAt, participant.UpdatedAt,
	)
	if err != nil {
		if !IsUniqueViolation(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to add participant",
				slog.String("error", err.Error()),
				slog.String("competition_id", participant.CompetitionID.String()))
		}
		return MapUniqueViolation(err, store.ErrAlreadyParticipant)
	}
	return nil
}

// Get implements store.ParticipantStore.Get
func (s *PostgresParticipantStore) Get(ctx context.Context, competitionID, userID uuid.UUID) (*domain.CompetitionParticipant, error) {
	p, err := scanParticipant(s.db.QueryRowContext(ctx,
		participantSelect+` WHERE p.competition_id = $1 AND p.user_id = $2`, competitionID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrParticipantNotFound
		}
		return nil, MapError(err)
	}
	return p, nil
}

// Remove implements store.ParticipantStore.Remove
func (s *PostgresParticipantStore) Remove(ctx context.Context, competitionID, userID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM competition_participants WHERE competition_id = $1 AND user_id = $2`, competitionID, userID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrParticipantNotFound)
}

// List implements store.ParticipantStore.List
func (s *PostgresParticipantStore) List(ctx context.Context, competitionID uuid.UUID) ([]domain.CompetitionParticipant, error) {
	rows, err := s.db.QueryContext(ctx, participantSelect+`
		WHERE p.competition_id = $1
		ORDER BY p.rank = 0, p.rank, p.joined_at, p.id`, competitionID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list participants",
			slog.String("error", err.Error()), slog.String("competition_id", competitionID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	participants := []domain.CompetitionParticipant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, MapError(err)
		}
		participants = append(participants, *p)
	}
	return participants, MapError(rows.Err())
}

const progressSelect = `
	SELECT tp.id, tp.participant_id, tp.task_id, tp.value, tp.points_earned, tp.completed, tp.updated_at,
		t.name, t.target_value, t.unit, t.points
	FROM competition_task_progress tp
	JOIN competition_tasks t ON t.id = tp.task_id`

func scanProgress(row rowScanner) (*domain.TaskProgress, error) {
	var tp domain.TaskProgress
	if err := row.Scan(&tp.ID, &tp.ParticipantID, &tp.TaskID, &tp.Value, &tp.PointsEarned, &tp.Completed,
		&tp.UpdatedAt, &tp.TaskName, &tp.TargetValue, &tp.Unit, &tp.Points); err != nil {
		return nil, err
	}
	return &tp, nil
}

// GetProgress implements store.ParticipantStore.GetProgress
func (s *PostgresParticipantStore) GetProgress(ctx context.Context, participantID, taskID uuid.UUID) (*domain.TaskProgress, error) {
	tp, err := scanProgress(s.db.QueryRowContext(ctx,
		progressSelect+` WHERE tp.participant_id = $1 AND tp.task_id = $2`, participantID, taskID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		return nil, MapError(err)
	}
	return tp, nil
}

// UpsertProgress implements store.ParticipantStore.UpsertProgress
func (s *PostgresParticipantStore) UpsertProgress(ctx context.Context, progress *domain.TaskProgress) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO competition_task_progress (id, participant_id, task_id, value, points_earned, completed, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (participant_id, task_id) DO UPDATE
		SET value = EXCLUDED.value,
			points_earned = EXCLUDED.points_earned,
			completed = EXCLUDED.completed,
			updated_at = EXCLUDED.updated_at`,
		progress.ID, progress.ParticipantID, progress.TaskID, progress.Value, progress.PointsEarned,
		progress.Completed, progress.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to upsert progress",
			slog.String("error", err.Error()),
			slog.String("participant_id", progress.ParticipantID.String()),
			slog.String("task_id", progress.TaskID.String()))
		return MapError(err)
	}
	return nil
}

// ListProgress implements store.ParticipantStore.ListProgress
func (s *PostgresParticipantStore) ListProgress(ctx context.Context, participantID uuid.UUID) ([]domain.TaskProgress, error) {
	rows, err := s.db.QueryContext(ctx, progressSelect+`
		WHERE tp.participant_id = $1
		ORDER BY t.created_at, t.id`, participantID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	progress := []domain.TaskProgress{}
	for rows.Next() {
		tp, err := scanProgress(rows)
		if err != nil {
			return nil, MapError(err)
		}
		progress = append(progress, *tp)
	}
	return progress, MapError(rows.Err())
}

// UpdateTotal implements store.ParticipantStore.UpdateTotal
func (s *PostgresParticipantStore) UpdateTotal(ctx context.Context, participantID uuid.UUID, total int) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE competition_participants SET total_points = $1, updated_at = NOW() WHERE id = $2`,
		total, participantID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrParticipantNotFound)
}

// RecalculateTotals implements store.ParticipantStore.RecalculateTotals
func (s *PostgresParticipantStore) RecalculateTotals(ctx context.Context, competitionID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE competition_participants p
		SET total_points = COALESCE((
				SELECT SUM(tp.points_earned) FROM competition_task_progress tp WHERE tp.participant_id = p.id
			), 0),
			updated_at = NOW()
		WHERE p.competition_id = $1`, competitionID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to recalculate totals",
			slog.String("error", err.Error()), slog.String("competition_id", competitionID.String()))
		return MapError(err)
	}
	return nil
}

// UpdateRanks implements store.ParticipantStore.UpdateRanks
func (s *PostgresParticipantStore) UpdateRanks(ctx context.Context, participants []domain.CompetitionParticipant) error {
	for _, p := range participants {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE competition_participants SET rank = $1 WHERE id = $2`, p.Rank, p.ID); err != nil {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to update rank",
				slog.String("error", err.Error()), slog.String("participant_id", p.ID.String()))
			return MapError(err)
		}
	}
	return nil
}

// WithTx implements store.ParticipantStore.WithTx
func (s *PostgresParticipantStore) WithTx(tx *sql.Tx) store.ParticipantStore {
	return &PostgresParticipantStore{db: tx, logger: s.logger}
}
