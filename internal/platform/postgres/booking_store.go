package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
)

// PostgresBookingStore implements store.BookingStore.
type PostgresBookingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBookingStore creates a new PostgresBookingStore.
func NewPostgresBookingStore(db store.DBTX, logger *slog.Logger) *PostgresBookingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBookingStore{db: db, logger: logger.With(slog.String("component", "booking_store"))}
}

var _ store.BookingStore = (*PostgresBookingStore)(nil)

const bookingSelect = `
	SELECT b.id, b.user_id, b.schedule_id, b.membership_id, b.status, b.created_at, b.updated_at,
		c.name, s.gym_id, s.starts_at, s.ends_at, u.name
	FROM bookings b
	JOIN class_schedules s ON s.id = b.schedule_id
	JOIN gym_classes c ON c.id = s.class_id
	JOIN users u ON u.id = b.user_id`

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var status string
	var startsAt, endsAt sql.NullTime
	err := row.Scan(&b.ID, &b.UserID, &b.ScheduleID, &b.MembershipID, &status, &b.CreatedAt, &b.UpdatedAt,
		&b.ClassName, &b.GymID, &startsAt, &endsAt, &b.UserName)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	b.StartsAt = timePtr(startsAt)
	b.EndsAt = timePtr(endsAt)
	return &b, nil
}

func collectBookings(rows *sql.Rows) ([]domain.Booking, error) {
	defer func() { _ = rows.Close() }()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, MapError(err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, MapError(rows.Err())
}

// Create implements store.BookingStore.Create
func (s *PostgresBookingStore) Create(ctx context.Context, booking *domain.Booking) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings (id, user_id, schedule_id, membership_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		booking.ID, booking.UserID, booking.ScheduleID, booking.MembershipID,
		booking.Status, booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create booking",
			slog.String("error", err.Error()),
			slog.String("user_id", booking.UserID.String()),
			slog.String("schedule_id", booking.ScheduleID.String()))
		return MapError(err)
	}

	log.Debug("booking created", slog.String("booking_id", booking.ID.String()))
	return nil
}

// GetByID implements store.BookingStore.GetByID
func (s *PostgresBookingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, err := scanBooking(s.db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBookingNotFound
		}
		return nil, MapError(err)
	}
	return b, nil
}

// FindActive implements store.BookingStore.FindActive
func (s *PostgresBookingStore) FindActive(ctx context.Context, userID, scheduleID uuid.UUID) (*domain.Booking, error) {
	b, err := scanBooking(s.db.QueryRowContext(ctx,
		bookingSelect+` WHERE b.user_id = $1 AND b.schedule_id = $2 AND b.status = 'active'`,
		userID, scheduleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBookingNotFound
		}
		return nil, MapError(err)
	}
	return b, nil
}

// CountForWeek implements store.BookingStore.CountForWeek
func (s *PostgresBookingStore) CountForWeek(ctx context.Context, membershipID uuid.UUID, window store.TimeRange) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM bookings b
		JOIN class_schedules s ON s.id = b.schedule_id
		WHERE b.membership_id = $1
			AND b.status IN ('active', 'attended')
			AND s.starts_at >= $2 AND s.starts_at < $3`,
		membershipID, window.From, window.To,
	).Scan(&count)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count weekly bookings",
			slog.String("error", err.Error()), slog.String("membership_id", membershipID.String()))
		return 0, MapError(err)
	}
	return count, nil
}

// ListByUser implements store.BookingStore.ListByUser
func (s *PostgresBookingStore) ListByUser(ctx context.Context, userID uuid.UUID, status *domain.BookingStatus, page store.Page) ([]domain.Booking, int, error) {
	var statusArg sql.NullString
	if status != nil {
		statusArg = nullableString(string(*status))
	}

	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)`, userID, statusArg).Scan(&total)
	if err != nil {
		return nil, 0, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx, bookingSelect+`
		WHERE b.user_id = $1 AND ($2::text IS NULL OR b.status = $2)
		ORDER BY s.starts_at DESC, b.id
		LIMIT $3 OFFSET $4`, userID, statusArg, page.Limit, page.Offset())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list bookings",
			slog.String("error", err.Error()), slog.String("user_id", userID.String()))
		return nil, 0, MapError(err)
	}

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// ListBySchedule implements store.BookingStore.ListBySchedule
func (s *PostgresBookingStore) ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]domain.Booking, error) {
	rows, err := s.db.QueryContext(ctx, bookingSelect+`
		WHERE b.schedule_id = $1
		ORDER BY b.created_at, b.id`, scheduleID)
	if err != nil {
		return nil, MapError(err)
	}
	return collectBookings(rows)
}

// UpdateStatus implements store.BookingStore.UpdateStatus
func (s *PostgresBookingStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = 'active'`, status, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update booking status",
			slog.String("error", err.Error()), slog.String("booking_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrBookingNotFound)
}

// CancelBySchedule implements store.BookingStore.CancelBySchedule
func (s *PostgresBookingStore) CancelBySchedule(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bookings SET status = 'cancelled', updated_at = NOW()
		WHERE schedule_id = $1 AND status = 'active'`, scheduleID)
	if err != nil {
		return 0, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}
	return int(n), nil
}

// CancelUpcomingForMembership implements store.BookingStore.CancelUpcomingForMembership
func (s *PostgresBookingStore) CancelUpcomingForMembership(ctx context.Context, membershipID uuid.UUID, after time.Time) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `
		UPDATE bookings b SET status = 'cancelled', updated_at = NOW()
		FROM class_schedules s
		WHERE s.id = b.schedule_id
			AND b.membership_id = $1
			AND b.status = 'active'
			AND s.starts_at > $2
		RETURNING b.schedule_id`, membershipID, after)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to cancel membership bookings",
			slog.String("error", err.Error()), slog.String("membership_id", membershipID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var scheduleIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		scheduleIDs = append(scheduleIDs, id)
	}
	return scheduleIDs, MapError(rows.Err())
}

// WithTx implements store.BookingStore.WithTx
func (s *PostgresBookingStore) WithTx(tx *sql.Tx) store.BookingStore {
	return &PostgresBookingStore{db: tx, logger: s.logger}
}
