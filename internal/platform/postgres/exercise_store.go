package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
)

// PostgresExerciseStore implements store.ExerciseStore.
type PostgresExerciseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresExerciseStore creates a new PostgresExerciseStore.
func NewPostgresExerciseStore(db store.DBTX, logger *slog.Logger) *PostgresExerciseStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresExerciseStore{db: db, logger: logger.With(slog.String("component", "exercise_store"))}
}

var _ store.ExerciseStore = (*PostgresExerciseStore)(nil)

const exerciseColumns = `id, name, muscle_group, equipment, description, created_at, updated_at`

func scanExercise(row rowScanner) (*domain.Exercise, error) {
	var e domain.Exercise
	var group string
	if err := row.Scan(&e.ID, &e.Name, &group, &e.Equipment, &e.Description, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.MuscleGroup = domain.MuscleGroup(group)
	return &e, nil
}

// uuidStrings renders ids for a $n::uuid[] parameter.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// Create implements store.ExerciseStore.Create
func (s *PostgresExerciseStore) Create(ctx context.Context, exercise *domain.Exercise) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exercises (id, name, muscle_group, equipment, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		exercise.ID, exercise.Name, exercise.MuscleGroup, exercise.Equipment, exercise.Description,
		exercise.CreatedAt, exercise.UpdatedAt,
	)
	if err != nil {
		if !IsUniqueViolation(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to create exercise", slog.String("error", err.Error()))
		}
		return MapUniqueViolation(err, store.ErrExerciseNameExists)
	}
	return nil
}

// GetByID implements store.ExerciseStore.GetByID
func (s *PostgresExerciseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Exercise, error) {
	e, err := scanExercise(s.db.QueryRowContext(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrExerciseNotFound
		}
		return nil, MapError(err)
	}
	return e, nil
}

// CountExisting implements store.ExerciseStore.CountExisting
func (s *PostgresExerciseStore) CountExisting(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT id) FROM exercises WHERE id = ANY($1::uuid[])`, uuidStrings(ids)).Scan(&count)
	return count, MapError(err)
}

// List implements store.ExerciseStore.List
func (s *PostgresExerciseStore) List(ctx context.Context, filter store.ExerciseFilter, page store.Page) ([]domain.Exercise, int, error) {
	var conds []string
	var args []any
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.MuscleGroup != "" {
		args = append(args, filter.MuscleGroup)
		conds = append(conds, fmt.Sprintf("muscle_group = $%d", len(args)))
	}
	where := whereClause(conds)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exercises`+where, args...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	query := `SELECT ` + exerciseColumns + ` FROM exercises` + where +
		fmt.Sprintf(` ORDER BY name, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list exercises", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	exercises := []domain.Exercise{}
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, 0, MapError(err)
		}
		exercises = append(exercises, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}
	return exercises, total, nil
}

// Update implements store.ExerciseStore.Update
func (s *PostgresExerciseStore) Update(ctx context.Context, exercise *domain.Exercise) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE exercises SET name = $1, muscle_group = $2, equipment = $3, description = $4, updated_at = $5
		WHERE id = $6`,
		exercise.Name, exercise.MuscleGroup, exercise.Equipment, exercise.Description, exercise.UpdatedAt, exercise.ID,
	)
	if err != nil {
		return MapUniqueViolation(err, store.ErrExerciseNameExists)
	}
	return CheckRowsAffected(result, store.ErrExerciseNotFound)
}

// Delete implements store.ExerciseStore.Delete. Exercises referenced by a
// workout cannot be deleted and yield store.ErrInvalidEntity.
func (s *PostgresExerciseStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM exercises WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrExerciseNotFound)
}

// WithTx implements store.ExerciseStore.WithTx
func (s *PostgresExerciseStore) WithTx(tx *sql.Tx) store.ExerciseStore {
	return &PostgresExerciseStore{db: tx, logger: s.logger}
}
