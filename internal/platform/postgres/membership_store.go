package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
)

// PostgresMembershipStore implements store.MembershipStore.
type PostgresMembershipStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMembershipStore creates a new PostgresMembershipStore.
func NewPostgresMembershipStore(db store.DBTX, logger *slog.Logger) *PostgresMembershipStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresMembershipStore{db: db, logger: logger.With(slog.String("component", "membership_store"))}
}

var _ store.MembershipStore = (*PostgresMembershipStore)(nil)

const membershipColumns = `m.id, m.user_id, m.gym_id, m.plan_id, m.status, m.start_date, m.end_date,
	m.created_at, m.updated_at`

const membershipSelect = `
	SELECT ` + membershipColumns + `, p.name, g.name, u.name, u.email
	FROM memberships m
	JOIN membership_plans p ON p.id = m.plan_id
	JOIN gyms g ON g.id = m.gym_id
	JOIN users u ON u.id = m.user_id`

func scanMembership(row rowScanner) (*domain.Membership, error) {
	var m domain.Membership
	var status string
	var start, end sql.NullTime
	err := row.Scan(&m.ID, &m.UserID, &m.GymID, &m.PlanID, &status, &start, &end, &m.CreatedAt, &m.UpdatedAt,
		&m.PlanName, &m.GymName, &m.UserName, &m.UserEmail)
	if err != nil {
		return nil, err
	}
	m.Status = domain.MembershipStatus(status)
	m.StartDate = timePtr(start)
	m.EndDate = timePtr(end)
	return &m, nil
}

func collectMemberships(rows *sql.Rows) ([]domain.Membership, error) {
	defer func() { _ = rows.Close() }()

	memberships := []domain.Membership{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, MapError(err)
		}
		memberships = append(memberships, *m)
	}
	return memberships, MapError(rows.Err())
}

// Create implements store.MembershipStore.Create
func (s *PostgresMembershipStore) Create(ctx context.Context, membership *domain.Membership) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memberships (id, user_id, gym_id, plan_id, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		membership.ID, membership.UserID, membership.GymID, membership.PlanID, membership.Status,
		membership.StartDate, membership.EndDate, membership.CreatedAt, membership.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create membership",
			slog.String("error", err.Error()),
			slog.String("user_id", membership.UserID.String()),
			slog.String("gym_id", membership.GymID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.MembershipStore.GetByID
func (s *PostgresMembershipStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Membership, error) {
	return s.get(ctx, membershipSelect+` WHERE m.id = $1`, id)
}

// GetByIDForUpdate implements store.MembershipStore.GetByIDForUpdate
func (s *PostgresMembershipStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Membership, error) {
	return s.get(ctx, membershipSelect+` WHERE m.id = $1 FOR UPDATE OF m`, id)
}

// FindActiveAt implements store.MembershipStore.FindActiveAt
func (s *PostgresMembershipStore) FindActiveAt(ctx context.Context, userID, gymID uuid.UUID, at time.Time) (*domain.Membership, error) {
	return s.get(ctx, membershipSelect+`
		WHERE m.user_id = $1 AND m.gym_id = $2 AND m.status = 'active'
			AND m.start_date <= $3 AND m.end_date > $3
		ORDER BY m.end_date DESC
		LIMIT 1`, userID, gymID, at)
}

func (s *PostgresMembershipStore) get(ctx context.Context, query string, args ...any) (*domain.Membership, error) {
	m, err := scanMembership(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMembershipNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get membership", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return m, nil
}

// HasOpen implements store.MembershipStore.HasOpen
func (s *PostgresMembershipStore) HasOpen(ctx context.Context, userID, gymID uuid.UUID) (bool, error) {
	var open bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM memberships
			WHERE user_id = $1 AND gym_id = $2 AND status IN ('pending', 'active')
		)`, userID, gymID).Scan(&open)
	return open, MapError(err)
}

// ListByUser implements store.MembershipStore.ListByUser
func (s *PostgresMembershipStore) ListByUser(ctx context.Context, userID uuid.UUID, page store.Page) ([]domain.Membership, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx, membershipSelect+`
		WHERE m.user_id = $1
		ORDER BY m.created_at DESC, m.id
		LIMIT $2 OFFSET $3`, userID, page.Limit, page.Offset())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list memberships",
			slog.String("error", err.Error()), slog.String("user_id", userID.String()))
		return nil, 0, MapError(err)
	}

	memberships, err := collectMemberships(rows)
	if err != nil {
		return nil, 0, err
	}
	return memberships, total, nil
}

// ListActiveByGym implements store.MembershipStore.ListActiveByGym
func (s *PostgresMembershipStore) ListActiveByGym(ctx context.Context, gymID uuid.UUID, page store.Page) ([]domain.Membership, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships WHERE gym_id = $1 AND status = 'active'`, gymID).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx, membershipSelect+`
		WHERE m.gym_id = $1 AND m.status = 'active'
		ORDER BY u.name, m.id
		LIMIT $2 OFFSET $3`, gymID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, MapError(err)
	}

	memberships, err := collectMemberships(rows)
	if err != nil {
		return nil, 0, err
	}
	return memberships, total, nil
}

// Update implements store.MembershipStore.Update
func (s *PostgresMembershipStore) Update(ctx context.Context, membership *domain.Membership) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE memberships SET status = $1, start_date = $2, end_date = $3, updated_at = $4
		WHERE id = $5`,
		membership.Status, membership.StartDate, membership.EndDate, membership.UpdatedAt, membership.ID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update membership",
			slog.String("error", err.Error()), slog.String("membership_id", membership.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrMembershipNotFound)
}

// ExpireDue implements store.MembershipStore.ExpireDue
func (s *PostgresMembershipStore) ExpireDue(ctx context.Context, now time.Time) ([]domain.Membership, error) {
	rows, err := s.db.QueryContext(ctx, `
		UPDATE memberships m SET status = 'expired', updated_at = $1
		WHERE m.status = 'active' AND m.end_date <= $1
		RETURNING `+membershipColumns, now)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to expire memberships", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var expired []domain.Membership
	for rows.Next() {
		var m domain.Membership
		var status string
		var start, end sql.NullTime
		if err := rows.Scan(&m.ID, &m.UserID, &m.GymID, &m.PlanID, &status, &start, &end,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		m.Status = domain.MembershipStatus(status)
		m.StartDate = timePtr(start)
		m.EndDate = timePtr(end)
		expired = append(expired, m)
	}
	return expired, MapError(rows.Err())
}

// WithTx implements store.MembershipStore.WithTx
func (s *PostgresMembershipStore) WithTx(tx *sql.Tx) store.MembershipStore {
	return &PostgresMembershipStore{db: tx, logger: s.logger}
}

// PostgresPaymentStore implements store.PaymentStore.
type PostgresPaymentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPaymentStore creates a new PostgresPaymentStore.
func NewPostgresPaymentStore(db store.DBTX, logger *slog.Logger) *PostgresPaymentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPaymentStore{db: db, logger: logger.With(slog.String("component", "payment_store"))}
}

var _ store.PaymentStore = (*PostgresPaymentStore)(nil)

const paymentColumns = `id, user_id, membership_id, amount, currency, status, provider, provider_ref, created_at, updated_at`

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var p domain.Payment
	var status string
	var ref sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &p.MembershipID, &p.Amount, &p.Currency, &status, &p.Provider,
		&ref, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = domain.PaymentStatus(status)
	p.Currency = strings.TrimSpace(p.Currency)
	p.ProviderRef = ref.String
	return &p, nil
}

// Create implements store.PaymentStore.Create
func (s *PostgresPaymentStore) Create(ctx context.Context, payment *domain.Payment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, user_id, membership_id, amount, currency, status, provider, provider_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		payment.ID, payment.UserID, payment.MembershipID, payment.Amount, payment.Currency, payment.Status,
		payment.Provider, nullableString(payment.ProviderRef), payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create payment",
			slog.String("error", err.Error()), slog.String("membership_id", payment.MembershipID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.PaymentStore.GetByID
func (s *PostgresPaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return s.get(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

// GetByIDForUpdate implements store.PaymentStore.GetByIDForUpdate
func (s *PostgresPaymentStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return s.get(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
}

// GetByProviderRefForUpdate implements store.PaymentStore.GetByProviderRefForUpdate
func (s *PostgresPaymentStore) GetByProviderRefForUpdate(ctx context.Context, provider, ref string) (*domain.Payment, error) {
	return s.get(ctx, `SELECT `+paymentColumns+` FROM payments
		WHERE provider = $1 AND provider_ref = $2 FOR UPDATE`, provider, ref)
}

func (s *PostgresPaymentStore) get(ctx context.Context, query string, args ...any) (*domain.Payment, error) {
	p, err := scanPayment(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPaymentNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get payment", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return p, nil
}

// ListByUser implements store.PaymentStore.ListByUser
func (s *PostgresPaymentStore) ListByUser(ctx context.Context, userID uuid.UUID, page store.Page) ([]domain.Payment, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	payments := []domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, MapError(err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}
	return payments, total, nil
}

// Update implements store.PaymentStore.Update
func (s *PostgresPaymentStore) Update(ctx context.Context, payment *domain.Payment) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE payments SET status = $1, provider_ref = $2, updated_at = $3
		WHERE id = $4`,
		payment.Status, nullableString(payment.ProviderRef), payment.UpdatedAt, payment.ID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update payment",
			slog.String("error", err.Error()), slog.String("payment_id", payment.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPaymentNotFound)
}

// WithTx implements store.PaymentStore.WithTx
func (s *PostgresPaymentStore) WithTx(tx *sql.Tx) store.PaymentStore {
	return &PostgresPaymentStore{db: tx, logger: s.logger}
}
