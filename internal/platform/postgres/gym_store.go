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

// PostgresGymStore implements store.GymStore.
type PostgresGymStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGymStore creates a new PostgresGymStore.
func NewPostgresGymStore(db store.DBTX, logger *slog.Logger) *PostgresGymStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGymStore{db: db, logger: logger.With(slog.String("component", "gym_store"))}
}

var _ store.GymStore = (*PostgresGymStore)(nil)

const gymColumns = `id, owner_id, name, address, description, max_members, member_count, created_at, updated_at`

func scanGym(row rowScanner) (*domain.Gym, error) {
	var g domain.Gym
	var maxMembers sql.NullInt32
	if err := row.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Address, &g.Description,
		&maxMembers, &g.MemberCount, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	if maxMembers.Valid {
		v := int(maxMembers.Int32)
		g.MaxMembers = &v
	}
	return &g, nil
}

// Create implements store.GymStore.Create
func (s *PostgresGymStore) Create(ctx context.Context, gym *domain.Gym) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gyms (id, owner_id, name, address, description, max_members, member_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		gym.ID, gym.OwnerID, gym.Name, gym.Address, gym.Description, gym.MaxMembers,
		gym.MemberCount, gym.CreatedAt, gym.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create gym", slog.String("error", err.Error()), slog.String("gym_id", gym.ID.String()))
		return MapError(err)
	}

	log.Info("gym created", slog.String("gym_id", gym.ID.String()), slog.String("owner_id", gym.OwnerID.String()))
	return nil
}

// GetByID implements store.GymStore.GetByID
func (s *PostgresGymStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Gym, error) {
	return s.get(ctx, `SELECT `+gymColumns+` FROM gyms WHERE id = $1`, id)
}

// GetByIDForUpdate implements store.GymStore.GetByIDForUpdate
func (s *PostgresGymStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Gym, error) {
	return s.get(ctx, `SELECT `+gymColumns+` FROM gyms WHERE id = $1 FOR UPDATE`, id)
}

func (s *PostgresGymStore) get(ctx context.Context, query string, id uuid.UUID) (*domain.Gym, error) {
	g, err := scanGym(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGymNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get gym",
			slog.String("error", err.Error()), slog.String("gym_id", id.String()))
		return nil, MapError(err)
	}
	return g, nil
}

// List implements store.GymStore.List
func (s *PostgresGymStore) List(ctx context.Context, filter store.GymFilter, page store.Page) ([]domain.Gym, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var conds []string
	var args []any
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR address ILIKE $%d)", len(args), len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conds = append(conds, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	where := whereClause(conds)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gyms`+where, args...).Scan(&total); err != nil {
		log.Error("failed to count gyms", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	query := `SELECT ` + gymColumns + ` FROM gyms` + where +
		fmt.Sprintf(` ORDER BY name, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		log.Error("failed to list gyms", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	gyms := []domain.Gym{}
	for rows.Next() {
		g, err := scanGym(rows)
		if err != nil {
			return nil, 0, MapError(err)
		}
		gyms = append(gyms, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}

	return gyms, total, nil
}

// Update implements store.GymStore.Update
func (s *PostgresGymStore) Update(ctx context.Context, gym *domain.Gym) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE gyms SET name = $1, address = $2, description = $3, max_members = $4, updated_at = $5
		WHERE id = $6`,
		gym.Name, gym.Address, gym.Description, gym.MaxMembers, gym.UpdatedAt, gym.ID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update gym",
			slog.String("error", err.Error()), slog.String("gym_id", gym.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrGymNotFound)
}

// Delete implements store.GymStore.Delete
func (s *PostgresGymStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM gyms WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete gym",
			slog.String("error", err.Error()), slog.String("gym_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrGymNotFound)
}

// AdjustMemberCount implements store.GymStore.AdjustMemberCount
func (s *PostgresGymStore) AdjustMemberCount(ctx context.Context, id uuid.UUID, delta int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE gyms SET member_count = member_count + $1, updated_at = NOW()
		WHERE id = $2`, delta, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to adjust member count",
			slog.String("error", err.Error()), slog.String("gym_id", id.String()), slog.Int("delta", delta))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrGymNotFound)
}

// WithTx implements store.GymStore.WithTx
func (s *PostgresGymStore) WithTx(tx *sql.Tx) store.GymStore {
	return &PostgresGymStore{db: tx, logger: s.logger}
}

// PostgresPlanStore implements store.PlanStore.
type PostgresPlanStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPlanStore creates a new PostgresPlanStore.
func NewPostgresPlanStore(db store.DBTX, logger *slog.Logger) *PostgresPlanStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPlanStore{db: db, logger: logger.With(slog.String("component", "plan_store"))}
}

var _ store.PlanStore = (*PostgresPlanStore)(nil)

const planColumns = `id, gym_id, name, description, price, currency, duration_days,
	weekly_booking_limit, active, created_at, updated_at`

func scanPlan(row rowScanner) (*domain.MembershipPlan, error) {
	var p domain.MembershipPlan
	if err := row.Scan(&p.ID, &p.GymID, &p.Name, &p.Description, &p.Price, &p.Currency,
		&p.DurationDays, &p.WeeklyBookingLimit, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Currency = strings.TrimSpace(p.Currency)
	return &p, nil
}

// Create implements store.PlanStore.Create
func (s *PostgresPlanStore) Create(ctx context.Context, plan *domain.MembershipPlan) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO membership_plans (id, gym_id, name, description, price, currency, duration_days,
			weekly_booking_limit, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		plan.ID, plan.GymID, plan.Name, plan.Description, plan.Price, plan.Currency, plan.DurationDays,
		plan.WeeklyBookingLimit, plan.Active, plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create plan",
			slog.String("error", err.Error()), slog.String("plan_id", plan.ID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.PlanStore.GetByID
func (s *PostgresPlanStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.MembershipPlan, error) {
	p, err := scanPlan(s.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM membership_plans WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPlanNotFound
		}
		return nil, MapError(err)
	}
	return p, nil
}

// ListByGym implements store.PlanStore.ListByGym
func (s *PostgresPlanStore) ListByGym(ctx context.Context, gymID uuid.UUID, includeInactive bool) ([]domain.MembershipPlan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+planColumns+` FROM membership_plans
		WHERE gym_id = $1 AND (active OR $2)
		ORDER BY price, name`, gymID, includeInactive)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list plans",
			slog.String("error", err.Error()), slog.String("gym_id", gymID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	plans := []domain.MembershipPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, MapError(err)
		}
		plans = append(plans, *p)
	}
	return plans, MapError(rows.Err())
}

// Update implements store.PlanStore.Update
func (s *PostgresPlanStore) Update(ctx context.Context, plan *domain.MembershipPlan) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE membership_plans
		SET name = $1, description = $2, price = $3, currency = $4, duration_days = $5,
			weekly_booking_limit = $6, active = $7, updated_at = $8
		WHERE id = $9`,
		plan.Name, plan.Description, plan.Price, plan.Currency, plan.DurationDays,
		plan.WeeklyBookingLimit, plan.Active, plan.UpdatedAt, plan.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPlanNotFound)
}

// Delete implements store.PlanStore.Delete
func (s *PostgresPlanStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM membership_plans WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPlanNotFound)
}

// InUse implements store.PlanStore.InUse
func (s *PostgresPlanStore) InUse(ctx context.Context, id uuid.UUID) (bool, error) {
	var used bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM memberships WHERE plan_id = $1)`, id).Scan(&used)
	return used, MapError(err)
}

// WithTx implements store.PlanStore.WithTx
func (s *PostgresPlanStore) WithTx(tx *sql.Tx) store.PlanStore {
	return &PostgresPlanStore{db: tx, logger: s.logger}
}
