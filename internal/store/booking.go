package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/google/uuid"
)

// BookingStore defines the interface for booking persistence.
type BookingStore interface {
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID returns ErrBookingNotFound if the booking does not exist.
	// The returned booking includes its schedule's class name and times.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)

	// FindActive returns the user's active booking for a schedule, or ErrBookingNotFound.
	FindActive(ctx context.Context, userID, scheduleID uuid.UUID) (*domain.Booking, error)

	// CountForWeek counts the membership's active and attended bookings whose
	// class starts inside window.
	CountForWeek(ctx context.Context, membershipID uuid.UUID, window TimeRange) (int, error)

	// ListByUser returns the user's bookings, newest class first. A nil status lists all.
	ListByUser(ctx context.Context, userID uuid.UUID, status *domain.BookingStatus, page Page) ([]domain.Booking, int, error)

	// ListBySchedule returns the bookings of a schedule with the booker's name.
	ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]domain.Booking, error)

	// UpdateStatus moves an active booking to status. It returns
	// ErrBookingNotFound when no active booking has that id.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error

	// CancelBySchedule cancels every active booking of a schedule and returns how many changed.
	CancelBySchedule(ctx context.Context, scheduleID uuid.UUID) (int, error)

	// CancelUpcomingForMembership cancels the membership's active bookings for
	// classes starting after the given time and returns the affected schedule IDs,
	// one entry per cancelled booking.
	CancelUpcomingForMembership(ctx context.Context, membershipID uuid.UUID, after time.Time) ([]uuid.UUID, error)

	WithTx(tx *sql.Tx) BookingStore
}
