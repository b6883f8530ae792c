package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/platform/metrics"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
)

// BookingService books members onto class schedules.
type BookingService interface {
	// Book reserves a place on a schedule for actor. The capacity, membership
	// and weekly limit checks and the counter increment run in one transaction.
	Book(ctx context.Context, actor Actor, scheduleID uuid.UUID) (*domain.Booking, error)

	// ListMine returns actor's bookings. A nil status lists every booking.
	ListMine(ctx context.Context, actor Actor, status *domain.BookingStatus, page store.Page) ([]domain.Booking, int, error)

	// Cancel cancels one of actor's active bookings before the class starts.
	Cancel(ctx context.Context, actor Actor, bookingID uuid.UUID) (*domain.Booking, error)

	// MarkAttended records attendance. Only the gym's owner may do this.
	MarkAttended(ctx context.Context, actor Actor, bookingID uuid.UUID) (*domain.Booking, error)
}

type bookingServiceImpl struct {
	tx          store.TxRunner
	gyms        store.GymStore
	plans       store.PlanStore
	schedules   store.ScheduleStore
	bookings    store.BookingStore
	memberships store.MembershipStore
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// NewBookingService creates a BookingService. m may be nil.
func NewBookingService(
	tx store.TxRunner,
	gyms store.GymStore,
	plans store.PlanStore,
	schedules store.ScheduleStore,
	bookings store.BookingStore,
	memberships store.MembershipStore,
	m *metrics.Metrics,
	logger *slog.Logger,
) (BookingService, error) {
	if tx == nil || gyms == nil || plans == nil || schedules == nil || bookings == nil || memberships == nil {
		return nil, domain.NewValidationError("dependencies", "booking service dependencies cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &bookingServiceImpl{
		tx:          tx,
		gyms:        gyms,
		plans:       plans,
		schedules:   schedules,
		bookings:    bookings,
		memberships: memberships,
		metrics:     m,
		logger:      logger.With(slog.String("component", "booking_service")),
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *bookingServiceImpl) Book(ctx context.Context, actor Actor, scheduleID uuid.UUID) (*domain.Booking, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	var booking *domain.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		schedules := s.schedules.WithTx(tx)
		bookings := s.bookings.WithTx(tx)

		target, err := schedules.GetByID(ctx, scheduleID)
		if err != nil {
			return err
		}
		if !target.Bookable(now) {
			return ErrScheduleUnavailable
		}

		memberships := s.memberships.WithTx(tx)
		found, err := memberships.FindActiveAt(ctx, actor.UserID, target.GymID, target.StartsAt)
		if err != nil {
			if errors.Is(err, store.ErrMembershipNotFound) {
				return ErrNoActiveMembership
			}
			return err
		}

		// Locks are taken membership first, then schedule, the same order
		// membership cancellation uses. The membership lock serializes this
		// member's bookings so the weekly count cannot race.
		membership, err := memberships.GetByIDForUpdate(ctx, found.ID)
		if err != nil {
			return err
		}
		schedule, err := schedules.GetByIDForUpdate(ctx, scheduleID)
		if err != nil {
			return err
		}
		if !schedule.Bookable(now) {
			return ErrScheduleUnavailable
		}
		if schedule.GymID != membership.GymID || !membership.CoversTime(schedule.StartsAt) {
			return ErrNoActiveMembership
		}

		_, err = bookings.FindActive(ctx, actor.UserID, scheduleID)
		switch {
		case err == nil:
			return ErrAlreadyBooked
		case !errors.Is(err, store.ErrBookingNotFound):
			return err
		}

		if schedule.SpotsLeft() == 0 {
			return ErrClassFull
		}

		plan, err := s.plans.WithTx(tx).GetByID(ctx, membership.PlanID)
		if err != nil {
			return err
		}
		if plan.WeeklyBookingLimit > 0 {
			from, to := domain.WeekBounds(schedule.StartsAt)
			count, err := bookings.CountForWeek(ctx, membership.ID, store.TimeRange{From: from, To: to})
			if err != nil {
				return err
			}
			if count >= plan.WeeklyBookingLimit {
				return ErrWeeklyLimitReached
			}
		}

		b := domain.NewBooking(actor.UserID, schedule, membership.ID, now)
		if err := bookings.Create(ctx, b); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrAlreadyBooked
			}
			return err
		}
		if err := schedules.AdjustBookedCount(ctx, scheduleID, 1); err != nil {
			return err
		}

		booking = b
		return nil
	})

	s.metrics.BookingOutcome(bookingOutcome(err))
	if err != nil {
		log.Debug("booking rejected",
			slog.String("schedule_id", scheduleID.String()),
			slog.String("user_id", actor.UserID.String()),
			slog.String("reason", err.Error()))
		return nil, err
	}

	log.Info("class booked",
		slog.String("booking_id", booking.ID.String()),
		slog.String("schedule_id", scheduleID.String()),
		slog.String("user_id", actor.UserID.String()))
	return booking, nil
}

// bookingOutcome labels the result of a booking attempt for metrics.
func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeBooked
	case errors.Is(err, ErrClassFull):
		return metrics.OutcomeClassFull
	case errors.Is(err, ErrWeeklyLimitReached):
		return metrics.OutcomeWeeklyLimit
	case errors.Is(err, ErrNoActiveMembership):
		return metrics.OutcomeNoMembership
	case errors.Is(err, ErrAlreadyBooked):
		return metrics.OutcomeAlreadyBooked
	case errors.Is(err, ErrScheduleUnavailable), errors.Is(err, store.ErrScheduleNotFound):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeBookingError
	}
}

func (s *bookingServiceImpl) ListMine(
	ctx context.Context,
	actor Actor,
	status *domain.BookingStatus,
	page store.Page,
) ([]domain.Booking, int, error) {
	if status != nil && !status.Valid() {
		return nil, 0, domain.NewValidationError("status", "unknown booking status", domain.ErrInvalidStatus)
	}
	return s.bookings.ListByUser(ctx, actor.UserID, status, page)
}

func (s *bookingServiceImpl) Cancel(ctx context.Context, actor Actor, bookingID uuid.UUID) (*domain.Booking, error) {
	now := s.now()

	var booking *domain.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		bookings := s.bookings.WithTx(tx)
		schedules := s.schedules.WithTx(tx)

		b, err := bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != actor.UserID {
			return store.ErrBookingNotFound
		}

		// The schedule lock serializes this with bookings and other cancellations,
		// so the status is re-read once it is held.
		schedule, err := schedules.GetByIDForUpdate(ctx, b.ScheduleID)
		if err != nil {
			return err
		}
		if b, err = bookings.GetByID(ctx, bookingID); err != nil {
			return err
		}
		if b.Status != domain.BookingActive {
			return ErrBookingNotActive
		}
		if !schedule.StartsAt.After(now) {
			return ErrBookingNotCancellable
		}

		if err := bookings.UpdateStatus(ctx, bookingID, domain.BookingCancelled); err != nil {
			return err
		}
		if err := schedules.AdjustBookedCount(ctx, schedule.ID, -1); err != nil {
			return err
		}

		b.Status = domain.BookingCancelled
		b.UpdatedAt = now
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.BookingOutcome(metrics.OutcomeBookingCancelled)
	logger.FromContextOrDefault(ctx, s.logger).Info("booking cancelled",
		slog.String("booking_id", bookingID.String()),
		slog.String("user_id", actor.UserID.String()))
	return booking, nil
}

func (s *bookingServiceImpl) MarkAttended(ctx context.Context, actor Actor, bookingID uuid.UUID) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		bookings := s.bookings.WithTx(tx)

		b, err := bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if _, err := ownedGym(ctx, s.gyms, actor, b.GymID); err != nil {
			return err
		}

		// Same lock as Cancel, so a booking is never both cancelled and attended.
		if _, err := s.schedules.WithTx(tx).GetByIDForUpdate(ctx, b.ScheduleID); err != nil {
			return err
		}
		if b, err = bookings.GetByID(ctx, bookingID); err != nil {
			return err
		}
		if b.Status != domain.BookingActive {
			return ErrBookingNotActive
		}

		if err := bookings.UpdateStatus(ctx, bookingID, domain.BookingAttended); err != nil {
			if errors.Is(err, store.ErrBookingNotFound) {
				return ErrBookingNotActive
			}
			return err
		}
		b.Status = domain.BookingAttended
		b.UpdatedAt = s.now()
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("booking attended",
		slog.String("booking_id", bookingID.String()),
		slog.String("actor_id", actor.UserID.String()))
	return booking, nil
}
