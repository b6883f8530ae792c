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

// PostgresPlannedWorkoutStore implements store.PlannedWorkoutStore.
// Create and Update write several rows and should run inside a transaction.
type PostgresPlannedWorkoutStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPlannedWorkoutStore creates a new PostgresPlannedWorkoutStore.
func NewPostgresPlannedWorkoutStore(db store.DBTX, logger *slog.Logger) *PostgresPlannedWorkoutStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPlannedWorkoutStore{db: db, logger: logger.With(slog.String("component", "planned_workout_store"))}
}

var _ store.PlannedWorkoutStore = (*PostgresPlannedWorkoutStore)(nil)

const plannedColumns = `id, user_id, name, scheduled_for, notes, completed, created_at, updated_at`

func scanPlanned(row rowScanner) (*domain.PlannedWorkout, error) {
	var w domain.PlannedWorkout
	if err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.ScheduledFor, &w.Notes, &w.Completed,
		&w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.Exercises = []domain.PlannedExercise{}
	return &w, nil
}

// Create implements store.PlannedWorkoutStore.Create
func (s *PostgresPlannedWorkoutStore) Create(ctx context.Context, workout *domain.PlannedWorkout) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO planned_workouts (id, user_id, name, scheduled_for, notes, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		workout.ID, workout.UserID, workout.Name, workout.ScheduledFor, workout.Notes, workout.Completed,
		workout.CreatedAt, workout.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create planned workout",
			slog.String("error", err.Error()), slog.String("user_id", workout.UserID.String()))
		return MapError(err)
	}
	return s.insertLines(ctx, workout)
}

func (s *PostgresPlannedWorkoutStore) insertLines(ctx context.Context, workout *domain.PlannedWorkout) error {
	for _, ex := range workout.Exercises {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO planned_workout_exercises (id, workout_id, exercise_id, position, target_sets,
				target_reps, target_weight, target_duration_seconds)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			ex.ID, workout.ID, ex.ExerciseID, ex.Position, ex.TargetSets,
			ex.TargetReps, ex.TargetWeight, ex.TargetDurationSeconds,
		)
		if err != nil {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert planned exercise",
				slog.String("error", err.Error()), slog.String("workout_id", workout.ID.String()))
			return MapError(err)
		}
	}
	return nil
}

// GetByID implements store.PlannedWorkoutStore.GetByID
func (s *PostgresPlannedWorkoutStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.PlannedWorkout, error) {
	w, err := scanPlanned(s.db.QueryRowContext(ctx, `SELECT `+plannedColumns+` FROM planned_workouts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrWorkoutNotFound
		}
		return nil, MapError(err)
	}
	workouts := []domain.PlannedWorkout{*w}
	if err := s.loadLines(ctx, workouts); err != nil {
		return nil, err
	}
	return &workouts[0], nil
}

func (s *PostgresPlannedWorkoutStore) loadLines(ctx context.Context, workouts []domain.PlannedWorkout) error {
	if len(workouts) == 0 {
		return nil
	}
	index := make(map[uuid.UUID]int, len(workouts))
	ids := make([]uuid.UUID, len(workouts))
	for i, w := range workouts {
		index[w.ID] = i
		ids[i] = w.ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pe.workout_id, pe.id, pe.exercise_id, e.name, pe.position, pe.target_sets,
			pe.target_reps, pe.target_weight, pe.target_duration_seconds
		FROM planned_workout_exercises pe
		JOIN exercises e ON e.id = pe.exercise_id
		WHERE pe.workout_id = ANY($1::uuid[])
		ORDER BY pe.workout_id, pe.position`, uuidStrings(ids))
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var workoutID uuid.UUID
		var ex domain.PlannedExercise
		var reps, duration sql.NullInt32
		if err := rows.Scan(&workoutID, &ex.ID, &ex.ExerciseID, &ex.ExerciseName, &ex.Position, &ex.TargetSets,
			&reps, &ex.TargetWeight, &duration); err != nil {
			return MapError(err)
		}
		ex.TargetReps = intPtr(reps)
		ex.TargetDurationSeconds = intPtr(duration)
		i := index[workoutID]
		workouts[i].Exercises = append(workouts[i].Exercises, ex)
	}
	return MapError(rows.Err())
}

// ListByUser implements store.PlannedWorkoutStore.ListByUser
func (s *PostgresPlannedWorkoutStore) ListByUser(ctx context.Context, userID uuid.UUID, window store.TimeRange, page store.Page) ([]domain.PlannedWorkout, int, error) {
	from, to := windowBounds(window)
	const filter = `
		WHERE user_id = $1
			AND ($2::timestamptz IS NULL OR scheduled_for >= $2)
			AND ($3::timestamptz IS NULL OR scheduled_for < $3)`

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM planned_workouts`+filter,
		userID, from, to).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+plannedColumns+` FROM planned_workouts`+filter+`
		ORDER BY scheduled_for, id
		LIMIT $4 OFFSET $5`, userID, from, to, page.Limit, page.Offset())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list planned workouts",
			slog.String("error", err.Error()), slog.String("user_id", userID.String()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	workouts := []domain.PlannedWorkout{}
	for rows.Next() {
		w, err := scanPlanned(rows)
		if err != nil {
			return nil, 0, MapError(err)
		}
		workouts = append(workouts, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}
	_ = rows.Close()

	if err := s.loadLines(ctx, workouts); err != nil {
		return nil, 0, err
	}
	return workouts, total, nil
}

// Update implements store.PlannedWorkoutStore.Update
func (s *PostgresPlannedWorkoutStore) Update(ctx context.Context, workout *domain.PlannedWorkout) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE planned_workouts SET name = $1, scheduled_for = $2, notes = $3, completed = $4, updated_at = $5
		WHERE id = $6`,
		workout.Name, workout.ScheduledFor, workout.Notes, workout.Completed, workout.UpdatedAt, workout.ID,
	)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrWorkoutNotFound); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM planned_workout_exercises WHERE workout_id = $1`, workout.ID); err != nil {
		return MapError(err)
	}
	return s.insertLines(ctx, workout)
}

// MarkCompleted implements store.PlannedWorkoutStore.MarkCompleted
func (s *PostgresPlannedWorkoutStore) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE planned_workouts SET completed = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrWorkoutNotFound)
}

// Delete implements store.PlannedWorkoutStore.Delete
func (s *PostgresPlannedWorkoutStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM planned_workouts WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrWorkoutNotFound)
}

// CountInRange implements store.PlannedWorkoutStore.CountInRange
func (s *PostgresPlannedWorkoutStore) CountInRange(ctx context.Context, userID uuid.UUID, window store.TimeRange) (int, int, error) {
	from, to := windowBounds(window)
	var total, completed int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE completed)
		FROM planned_workouts
		WHERE user_id = $1
			AND ($2::timestamptz IS NULL OR scheduled_for >= $2)
			AND ($3::timestamptz IS NULL OR scheduled_for < $3)`,
		userID, from, to).Scan(&total, &completed)
	if err != nil {
		return 0, 0, MapError(err)
	}
	return total, completed, nil
}

// WithTx implements store.PlannedWorkoutStore.WithTx
func (s *PostgresPlannedWorkoutStore) WithTx(tx *sql.Tx) store.PlannedWorkoutStore {
	return &PostgresPlannedWorkoutStore{db: tx, logger: s.logger}
}

// PostgresActualWorkoutStore implements store.ActualWorkoutStore.
type PostgresActualWorkoutStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActualWorkoutStore creates a new PostgresActualWorkoutStore.
func NewPostgresActualWorkoutStore(db store.DBTX, logger *slog.Logger) *PostgresActualWorkoutStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresActualWorkoutStore{db: db, logger: logger.With(slog.String("component", "actual_workout_store"))}
}

var _ store.ActualWorkoutStore = (*PostgresActualWorkoutStore)(nil)

const actualColumns = `id, user_id, planned_workout_id, name, performed_at, duration_minutes, notes, created_at`

func scanActual(row rowScanner) (*domain.ActualWorkout, error) {
	var w domain.ActualWorkout
	var planned uuid.NullUUID
	if err := row.Scan(&w.ID, &w.UserID, &planned, &w.Name, &w.PerformedAt, &w.DurationMinutes,
		&w.Notes, &w.CreatedAt); err != nil {
		return nil, err
	}
	if planned.Valid {
		id := planned.UUID
		w.PlannedWorkoutID = &id
	}
	w.Exercises = []domain.ActualExercise{}
	return &w, nil
}

// Create implements store.ActualWorkoutStore.Create
func (s *PostgresActualWorkoutStore) Create(ctx context.Context, workout *domain.ActualWorkout) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actual_workouts (id, user_id, planned_workout_id, name, performed_at, duration_minutes, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		workout.ID, workout.UserID, workout.PlannedWorkoutID, workout.Name, workout.PerformedAt,
		workout.DurationMinutes, workout.Notes, workout.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create actual workout",
			slog.String("error", err.Error()), slog.String("user_id", workout.UserID.String()))
		return MapError(err)
	}

	for _, ex := range workout.Exercises {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO actual_workout_exercises (id, workout_id, exercise_id, position, sets, reps, weight, duration_seconds)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			ex.ID, workout.ID, ex.ExerciseID, ex.Position, ex.Sets, ex.Reps, ex.Weight, ex.DurationSeconds,
		)
		if err != nil {
			log.Error("failed to insert actual exercise",
				slog.String("error", err.Error()), slog.String("workout_id", workout.ID.String()))
			return MapError(err)
		}
	}
	return nil
}

// GetByID implements store.ActualWorkoutStore.GetByID
func (s *PostgresActualWorkoutStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ActualWorkout, error) {
	w, err := scanActual(s.db.QueryRowContext(ctx, `SELECT `+actualColumns+` FROM actual_workouts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrWorkoutNotFound
		}
		return nil, MapError(err)
	}
	workouts := []domain.ActualWorkout{*w}
	if err := s.loadLines(ctx, workouts); err != nil {
		return nil, err
	}
	return &workouts[0], nil
}

func (s *PostgresActualWorkoutStore) loadLines(ctx context.Context, workouts []domain.ActualWorkout) error {
	if len(workouts) == 0 {
		return nil
	}
	index := make(map[uuid.UUID]int, len(workouts))
	ids := make([]uuid.UUID, len(workouts))
	for i, w := range workouts {
		index[w.ID] = i
		ids[i] = w.ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ae.workout_id, ae.id, ae.exercise_id, e.name, ae.position, ae.sets, ae.reps, ae.weight, ae.duration_seconds
		FROM actual_workout_exercises ae
		JOIN exercises e ON e.id = ae.exercise_id
		WHERE ae.workout_id = ANY($1::uuid[])
		ORDER BY ae.workout_id, ae.position`, uuidStrings(ids))
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var workoutID uuid.UUID
		var ex domain.ActualExercise
		var reps, duration sql.NullInt32
		if err := rows.Scan(&workoutID, &ex.ID, &ex.ExerciseID, &ex.ExerciseName, &ex.Position, &ex.Sets,
			&reps, &ex.Weight, &duration); err != nil {
			return MapError(err)
		}
		ex.Reps = intPtr(reps)
		ex.DurationSeconds = intPtr(duration)
		i := index[workoutID]
		workouts[i].Exercises = append(workouts[i].Exercises, ex)
	}
	return MapError(rows.Err())
}

func (s *PostgresActualWorkoutStore) query(ctx context.Context, query string, args ...any) ([]domain.ActualWorkout, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list actual workouts", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	workouts := []domain.ActualWorkout{}
	for rows.Next() {
		w, err := scanActual(rows)
		if err != nil {
			return nil, MapError(err)
		}
		workouts = append(workouts, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	_ = rows.Close()

	if err := s.loadLines(ctx, workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

const actualWindowFilter = `
	WHERE user_id = $1
		AND ($2::timestamptz IS NULL OR performed_at >= $2)
		AND ($3::timestamptz IS NULL OR performed_at < $3)`

// ListByUser implements store.ActualWorkoutStore.ListByUser
func (s *PostgresActualWorkoutStore) ListByUser(ctx context.Context, userID uuid.UUID, window store.TimeRange, page store.Page) ([]domain.ActualWorkout, int, error) {
	from, to := windowBounds(window)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM actual_workouts`+actualWindowFilter,
		userID, from, to).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	workouts, err := s.query(ctx, `SELECT `+actualColumns+` FROM actual_workouts`+actualWindowFilter+`
		ORDER BY performed_at DESC, id
		LIMIT $4 OFFSET $5`, userID, from, to, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return workouts, total, nil
}

// ListInRange implements store.ActualWorkoutStore.ListInRange
func (s *PostgresActualWorkoutStore) ListInRange(ctx context.Context, userID uuid.UUID, window store.TimeRange) ([]domain.ActualWorkout, error) {
	from, to := windowBounds(window)
	return s.query(ctx, `SELECT `+actualColumns+` FROM actual_workouts`+actualWindowFilter+`
		ORDER BY performed_at, id`, userID, from, to)
}

// Delete implements store.ActualWorkoutStore.Delete
func (s *PostgresActualWorkoutStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM actual_workouts WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrWorkoutNotFound)
}

// WithTx implements store.ActualWorkoutStore.WithTx
func (s *PostgresActualWorkoutStore) WithTx(tx *sql.Tx) store.ActualWorkoutStore {
	return &PostgresActualWorkoutStore{db: tx, logger: s.logger}
}
