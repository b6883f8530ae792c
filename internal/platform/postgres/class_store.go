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

// PostgresClassStore implements store.ClassStore.
type PostgresClassStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresClassStore creates a new PostgresClassStore.
func NewPostgresClassStore(db store.DBTX, logger *slog.Logger) *PostgresClassStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresClassStore{db: db, logger: logger.With(slog.String("component", "class_store"))}
}

var _ store.ClassStore = (*PostgresClassStore)(nil)

const classColumns = `id, gym_id, name, description, instructor, capacity, duration_minutes, created_at, updated_at`

func scanClass(row rowScanner) (*domain.GymClass, error) {
	var c domain.GymClass
	err := row.Scan(&c.ID, &c.GymID, &c.Name, &c.Description, &c.Instructor,
		&c.Capacity, &c.DurationMinutes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create implements store.ClassStore.Create
func (s *PostgresClassStore) Create(ctx context.Context, class *domain.GymClass) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gym_classes (id, gym_id, name, description, instructor, capacity, duration_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		class.ID, class.GymID, class.Name, class.Description, class.Instructor,
		class.Capacity, class.DurationMinutes, class.CreatedAt, class.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create class",
			slog.String("error", err.Error()), slog.String("gym_id", class.GymID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.ClassStore.GetByID
func (s *PostgresClassStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GymClass, error) {
	c, err := scanClass(s.db.QueryRowContext(ctx, `SELECT `+classColumns+` FROM gym_classes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrClassNotFound
		}
		return nil, MapError(err)
	}
	return c, nil
}

// ListByGym implements store.ClassStore.ListByGym
func (s *PostgresClassStore) ListByGym(ctx context.Context, gymID uuid.UUID) ([]domain.GymClass, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+classColumns+` FROM gym_classes WHERE gym_id = $1 ORDER BY name, id`, gymID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list classes",
			slog.String("error", err.Error()), slog.String("gym_id", gymID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	classes := []domain.GymClass{}
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, MapError(err)
		}
		classes = append(classes, *c)
	}
	return classes, MapError(rows.Err())
}

// Update implements store.ClassStore.Update
func (s *PostgresClassStore) Update(ctx context.Context, class *domain.GymClass) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE gym_classes
		SET name = $1, description = $2, instructor = $3, capacity = $4, duration_minutes = $5, updated_at = $6
		WHERE id = $7`,
		class.Name, class.Description, class.Instructor, class.Capacity, class.DurationMinutes,
		class.UpdatedAt, class.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrClassNotFound)
}

// Delete implements store.ClassStore.Delete
func (s *PostgresClassStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM gym_classes WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrClassNotFound)
}

// WithTx implements store.ClassStore.WithTx
func (s *PostgresClassStore) WithTx(tx *sql.Tx) store.ClassStore {
	return &PostgresClassStore{db: tx, logger: s.logger}
}

// PostgresScheduleStore implements store.ScheduleStore.
type PostgresScheduleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresScheduleStore creates a new PostgresScheduleStore.
func NewPostgresScheduleStore(db store.DBTX, logger *slog.Logger) *PostgresScheduleStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresScheduleStore{db: db, logger: logger.With(slog.String("component", "schedule_store"))}
}

var _ store.ScheduleStore = (*PostgresScheduleStore)(nil)

const scheduleSelect = `
	SELECT s.id, s.class_id, s.gym_id, s.starts_at, s.ends_at, s.capacity, s.booked_count,
		s.cancelled, s.created_at, c.name
	FROM class_schedules s
	JOIN gym_classes c ON c.id = s.class_id`

func scanSchedule(row rowScanner) (*domain.ClassSchedule, error) {
	var cs domain.ClassSchedule
	err := row.Scan(&cs.ID, &cs.ClassID, &cs.GymID, &cs.StartsAt, &cs.EndsAt, &cs.Capacity,
		&cs.BookedCount, &cs.Cancelled, &cs.CreatedAt, &cs.ClassName)
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

// Create implements store.ScheduleStore.Create
func (s *PostgresScheduleStore) Create(ctx context.Context, schedule *domain.ClassSchedule) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO class_schedules (id, class_id, gym_id, starts_at, ends_at, capacity, booked_count, cancelled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schedule.ID, schedule.ClassID, schedule.GymID, schedule.StartsAt, schedule.EndsAt,
		schedule.Capacity, schedule.BookedCount, schedule.Cancelled, schedule.CreatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create schedule",
			slog.String("error", err.Error()), slog.String("class_id", schedule.ClassID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.ScheduleStore.GetByID
func (s *PostgresScheduleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClassSchedule, error) {
	return s.get(ctx, scheduleSelect+` WHERE s.id = $1`, id)
}

// GetByIDForUpdate implements store.ScheduleStore.GetByIDForUpdate
func (s *PostgresScheduleStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.ClassSchedule, error) {
	return s.get(ctx, scheduleSelect+` WHERE s.id = $1 FOR UPDATE OF s`, id)
}

func (s *PostgresScheduleStore) get(ctx context.Context, query string, id uuid.UUID) (*domain.ClassSchedule, error) {
	cs, err := scanSchedule(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrScheduleNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get schedule",
			slog.String("error", err.Error()), slog.String("schedule_id", id.String()))
		return nil, MapError(err)
	}
	return cs, nil
}

// ListByClass implements store.ScheduleStore.ListByClass
func (s *PostgresScheduleStore) ListByClass(ctx context.Context, classID uuid.UUID, window store.TimeRange) ([]domain.ClassSchedule, error) {
	from, to := windowBounds(window)
	rows, err := s.db.QueryContext(ctx, scheduleSelect+`
		WHERE s.class_id = $1
			AND ($2::timestamptz IS NULL OR s.starts_at >= $2)
			AND ($3::timestamptz IS NULL OR s.starts_at < $3)
		ORDER BY s.starts_at, s.id`, classID, from, to)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list schedules",
			slog.String("error", err.Error()), slog.String("class_id", classID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	schedules := []domain.ClassSchedule{}
	for rows.Next() {
		cs, err := scanSchedule(rows)
		if err != nil {
			return nil, MapError(err)
		}
		schedules = append(schedules, *cs)
	}
	return schedules, MapError(rows.Err())
}

// MarkCancelled implements store.ScheduleStore.MarkCancelled
func (s *PostgresScheduleStore) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE class_schedules SET cancelled = TRUE, booked_count = 0 WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrScheduleNotFound)
}

// AdjustBookedCount implements store.ScheduleStore.AdjustBookedCount
func (s *PostgresScheduleStore) AdjustBookedCount(ctx context.Context, id uuid.UUID, delta int) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE class_schedules SET booked_count = booked_count + $1 WHERE id = $2`, delta, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to adjust booked count",
			slog.String("error", err.Error()), slog.String("schedule_id", id.String()), slog.Int("delta", delta))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrScheduleNotFound)
}

// WithTx implements store.ScheduleStore.WithTx
func (s *PostgresScheduleStore) WithTx(tx *sql.Tx) store.ScheduleStore {
	return &PostgresScheduleStore{db: tx, logger: s.logger}
}
