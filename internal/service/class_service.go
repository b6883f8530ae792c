package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
)

// DefaultScheduleWindow is the look-ahead used when a schedule listing has no upper bound.
const DefaultScheduleWindow = 14 * 24 * time.Hour

// ClassInput carries the fields of a new class.
type ClassInput struct {
	Name            string
	Description     string
	Instructor      string
	Capacity        int
	DurationMinutes int
}

// ClassUpdate carries the optional fields of a class change.
type ClassUpdate struct {
	Name            *string
	Description     *string
	Instructor      *string
	Capacity        *int
	DurationMinutes *int
}

// ClassService manages gym classes and their dated schedules.
type ClassService interface {
	ListClasses(ctx context.Context, gymID uuid.UUID) ([]domain.GymClass, error)
	GetClass(ctx context.Context, id uuid.UUID) (*domain.GymClass, error)
	CreateClass(ctx context.Context, actor Actor, gymID uuid.UUID, in ClassInput) (*domain.GymClass, error)
	UpdateClass(ctx context.Context, actor Actor, id uuid.UUID, in ClassUpdate) (*domain.GymClass, error)
	DeleteClass(ctx context.Context, actor Actor, id uuid.UUID) error

	// ListSchedules returns the schedules of a class within window. A zero
	// From means now; a zero To means From plus DefaultScheduleWindow.
	ListSchedules(ctx context.Context, classID uuid.UUID, window store.TimeRange) ([]domain.ClassSchedule, error)

	// CreateSchedule schedules a class. A zero capacity inherits the class capacity.
	CreateSchedule(ctx context.Context, actor Actor, classID uuid.UUID, startsAt time.Time, capacity int) (*domain.ClassSchedule, error)

	// CancelSchedule marks a schedule cancelled and cancels its active bookings.
	// It returns how many bookings were cancelled.
	CancelSchedule(ctx context.Context, actor Actor, scheduleID uuid.UUID) (int, error)

	// ListScheduleBookings returns the bookings of a schedule to the gym's owner.
	ListScheduleBookings(ctx context.Context, actor Actor, scheduleID uuid.UUID) ([]domain.Booking, error)
}

type classServiceImpl struct {
	tx        store.TxRunner
	gyms      store.GymStore
	classes   store.ClassStore
	schedules store.ScheduleStore
	bookings  store.BookingStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewClassService creates a ClassService.
func NewClassService(
	tx store.TxRunner,
	gyms store.GymStore,
	classes store.ClassStore,
	schedules store.ScheduleStore,
	bookings store.BookingStore,
	logger *slog.Logger,
) (ClassService, error) {
	if tx == nil || gyms == nil || classes == nil || schedules == nil || bookings == nil {
		return nil, domain.NewValidationError("dependencies", "class service dependencies cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &classServiceImpl{
		tx:        tx,
		gyms:      gyms,
		classes:   classes,
		schedules: schedules,
		bookings:  bookings,
		logger:    logger.With(slog.String("component", "class_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *classServiceImpl) ListClasses(ctx context.Context, gymID uuid.UUID) ([]domain.GymClass, error) {
	if _, err := s.gyms.GetByID(ctx, gymID); err != nil {
		return nil, err
	}
	return s.classes.ListByGym(ctx, gymID)
}

func (s *classServiceImpl) GetClass(ctx context.Context, id uuid.UUID) (*domain.GymClass, error) {
	return s.classes.GetByID(ctx, id)
}

func (s *classServiceImpl) CreateClass(ctx context.Context, actor Actor, gymID uuid.UUID, in ClassInput) (*domain.GymClass, error) {
	if _, err := ownedGym(ctx, s.gyms, actor, gymID); err != nil {
		return nil, err
	}

	class, err := domain.NewGymClass(gymID, in.Name, in.Description, in.Instructor, in.Capacity, in.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("class created",
		slog.String("class_id", class.ID.String()),
		slog.String("gym_id", gymID.String()))
	return class, nil
}

// ownedClass loads a class and checks that actor manages its gym.
func (s *classServiceImpl) ownedClass(ctx context.Context, actor Actor, id uuid.UUID) (*domain.GymClass, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := ownedGym(ctx, s.gyms, actor, class.GymID); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *classServiceImpl) UpdateClass(ctx context.Context, actor Actor, id uuid.UUID, in ClassUpdate) (*domain.GymClass, error) {
	class, err := s.ownedClass(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		class.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		class.Description = *in.Description
	}
	if in.Instructor != nil {
		class.Instructor = strings.TrimSpace(*in.Instructor)
	}
	if in.Capacity != nil {
		class.Capacity = *in.Capacity
	}
	if in.DurationMinutes != nil {
		class.DurationMinutes = *in.DurationMinutes
	}
	if err := class.Validate(); err != nil {
		return nil, err
	}

	if err := s.classes.Update(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *classServiceImpl) DeleteClass(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.ownedClass(ctx, actor, id); err != nil {
		return err
	}
	return s.classes.Delete(ctx, id)
}

func (s *classServiceImpl) ListSchedules(ctx context.Context, classID uuid.UUID, window store.TimeRange) ([]domain.ClassSchedule, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		return nil, err
	}
	if window.From.IsZero() {
		window.From = s.now()
	}
	if window.To.IsZero() {
		window.To = window.From.Add(DefaultScheduleWindow)
	}
	if !window.To.After(window.From) {
		return nil, domain.NewValidationError("to", "to must be after from", domain.ErrValidation)
	}
	return s.schedules.ListByClass(ctx, classID, window)
}

func (s *classServiceImpl) CreateSchedule(
	ctx context.Context,
	actor Actor,
	classID uuid.UUID,
	startsAt time.Time,
	capacity int,
) (*domain.ClassSchedule, error) {
	class, err := s.ownedClass(ctx, actor, classID)
	if err != nil {
		return nil, err
	}

	schedule, err := domain.NewClassSchedule(class, startsAt, capacity, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("class scheduled",
		slog.String("schedule_id", schedule.ID.String()),
		slog.String("class_id", classID.String()),
		slog.Time("starts_at", schedule.StartsAt))
	return schedule, nil
}

func (s *classServiceImpl) CancelSchedule(ctx context.Context, actor Actor, scheduleID uuid.UUID) (int, error) {
	cancelled := 0
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		schedules := s.schedules.WithTx(tx)

		schedule, err := schedules.GetByIDForUpdate(ctx, scheduleID)
		if err != nil {
			return err
		}
		if _, err := ownedGym(ctx, s.gyms.WithTx(tx), actor, schedule.GymID); err != nil {
			return err
		}
		if schedule.Cancelled {
			return nil
		}

		n, err := s.bookings.WithTx(tx).CancelBySchedule(ctx, scheduleID)
		if err != nil {
			return err
		}
		cancelled = n
		return schedules.MarkCancelled(ctx, scheduleID)
	})
	if err != nil {
		return 0, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("class schedule cancelled",
		slog.String("schedule_id", scheduleID.String()),
		slog.Int("bookings_cancelled", cancelled))
	return cancelled, nil
}

func (s *classServiceImpl) ListScheduleBookings(ctx context.Context, actor Actor, scheduleID uuid.UUID) ([]domain.Booking, error) {
	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if _, err := ownedGym(ctx, s.gyms, actor, schedule.GymID); err != nil {
		return nil, err
	}
	return s.bookings.ListBySchedule(ctx, scheduleID)
}
