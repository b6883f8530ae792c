package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
)

// PostgresCompetitionStore implements store.CompetitionStore.
type PostgresCompetitionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCompetitionStore creates a new PostgresCompetitionStore.
func NewPostgresCompetitionStore(db store.DBTX, logger *slog.Logger) *PostgresCompetitionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCompetitionStore{db: db, logger: logger.With(slog.String("component", "competition_store"))}
}

var _ store.CompetitionStore = (*PostgresCompetitionStore)(nil)

const competitionSelect = `
	SELECT c.id, c.gym_id, c.name, c.description, c.starts_at, c.ends_at, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM competition_participants p WHERE p.competition_id = c.id)
	FROM competitions c`

func scanCompetition(row rowScanner) (*domain.Competition, error) {
	var c domain.Competition
	if err := row.Scan(&c.ID, &c.GymID, &c.Name, &c.Description, &c.StartsAt, &c.EndsAt,
		&c.CreatedAt, &c.UpdatedAt, &c.ParticipantCount); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create implements store.CompetitionStore.Create
func (s *PostgresCompetitionStore) Create(ctx context.Context, competition *domain.Competition) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO competitions (id, gym_id, name, description, starts_at, ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		competition.ID, competition.GymID, competition.Name, competition.Description,
		competition.StartsAt, competition.EndsAt, competition.CreatedAt, competition.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create competition",
			slog.String("error", err.Error()), slog.String("gym_id", competition.GymID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.CompetitionStore.GetByID
func (s *PostgresCompetitionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Competition, error) {
	return s.get(ctx, competitionSelect+` WHERE c.id = $1`, id)
}

// GetByIDForUpdate implements store.CompetitionStore.GetByIDForUpdate
func (s *PostgresCompetitionStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Competition, error) {
	return s.get(ctx, competitionSelect+` WHERE c.id = $1 FOR UPDATE OF c`, id)
}

func (s *PostgresCompetitionStore) get(ctx context.Context, query string, id uuid.UUID) (*domain.Competition, error) {
	c, err := scanCompetition(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCompetitionNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get competition",
			slog.String("error", err.Error()), slog.String("competition_id", id.String()))
		return nil, MapError(err)
	}
	return c, nil
}

// List implements store.CompetitionStore.List
func (s *PostgresCompetitionStore) List(ctx context.Context, filter store.CompetitionFilter, page store.Page) ([]domain.Competition, int, error) {
	var conds []string
	var args []any
	if filter.GymID != nil {
		args = append(args, *filter.GymID)
		conds = append(conds, fmt.Sprintf("c.gym_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Now)
		n := len(args)
		switch filter.Status {
		case domain.CompetitionUpcoming:
			conds = append(conds, fmt.Sprintf("c.starts_at > $%d", n))
		case domain.CompetitionActive:
			conds = append(conds, fmt.Sprintf("c.starts_at <= $%d AND c.ends_at > $%d", n, n))
		case domain.CompetitionCompleted:
			conds = append(conds, fmt.Sprintf("c.ends_at <= $%d", n))
		default:
			return nil, 0, domain.NewValidationError("status", "unknown competition status", domain.ErrInvalidStatus)
		}
	}
	where := whereClause(conds)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM competitions c`+where, args...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	query := competitionSelect + where +
		fmt.Sprintf(` ORDER BY c.starts_at, c.id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list competitions", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	competitions := []domain.Competition{}
	for rows.Next() {
		c, err := scanCompetition(rows)
		if err != nil {
			return nil, 0, MapError(err)
		}
		competitions = append(competitions, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}
	return competitions, total, nil
}

// Update implements store.CompetitionStore.Update
func (s *PostgresCompetitionStore) Update(ctx context.Context, competition *domain.Competition) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE competitions SET name = $1, description = $2, starts_at = $3, ends_at = $4, updated_at = $5
		WHERE id = $6`,
		competition.Name, competition.Description, competition.StartsAt, competition.EndsAt,
		competition.UpdatedAt, competition.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCompetitionNotFound)
}

// Delete implements store.CompetitionStore.Delete
func (s *PostgresCompetitionStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM competitions WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCompetitionNotFound)
}

const taskColumns = `id, competition_id, name, description, target_value, unit, points, created_at`

func scanCompetitionTask(row rowScanner) (*domain.CompetitionTask, error) {
	var t domain.CompetitionTask
	if err := row.Scan(&t.ID, &t.CompetitionID, &t.Name, &t.Description, &t.TargetValue, &t.Unit,
		&t.Points, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask implements store.CompetitionStore.CreateTask
func (s *PostgresCompetitionStore) CreateTask(ctx context.Context, task *domain.CompetitionTask) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO competition_tasks (id, competition_id, name, description, target_value, unit, points, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		task.ID, task.CompetitionID, task.Name, task.Description, task.TargetValue, task.Unit,
		task.Points, task.CreatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create competition task",
			slog.String("error", err.Error()), slog.String("competition_id", task.CompetitionID.String()))
		return MapError(err)
	}
	return nil
}

// GetTask implements store.CompetitionStore.GetTask
func (s *PostgresCompetitionStore) GetTask(ctx context.Context, id uuid.UUID) (*domain.CompetitionTask, error) {
	t, err := scanCompetitionTask(s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM competition_tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCompTaskNotFound
		}
		return nil, MapError(err)
	}
	return t, nil
}

// ListTasks implements store.CompetitionStore.ListTasks
func (s *PostgresCompetitionStore) ListTasks(ctx context.Context, competitionID uuid.UUID) ([]domain.CompetitionTask, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM competition_tasks
		WHERE competition_id = $1
		ORDER BY created_at, id`, competitionID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []domain.CompetitionTask{}
	for rows.Next() {
		t, err := scanCompetitionTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, MapError(rows.Err())
}

// DeleteTask implements store.CompetitionStore.DeleteTask
func (s *PostgresCompetitionStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM competition_tasks WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCompTaskNotFound)
}

// WithTx implements store.CompetitionStore.WithTx
func (s *PostgresCompetitionStore) WithTx(tx *sql.Tx) store.CompetitionStore {
	return &PostgresCompetitionStore{db: tx, logger: s.logger}
}
