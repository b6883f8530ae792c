package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

// Booking statuses.
const (
	BookingActive    BookingStatus = "active"
	BookingCancelled BookingStatus = "cancelled"
	BookingAttended  BookingStatus = "attended"
)

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingActive, BookingCancelled, BookingAttended:
		return true
	}
	return false
}

// Booking reserves a place on a class schedule under a membership.
type Booking struct {
	ID           uuid.UUID     `json:"id"`
	UserID       uuid.UUID     `json:"user_id"`
	ScheduleID   uuid.UUID     `json:"schedule_id"`
	MembershipID uuid.UUID     `json:"membership_id"`
	Status       BookingStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// Populated by list queries.
	ClassName string     `json:"class_name,omitempty"`
	GymID     uuid.UUID  `json:"gym_id"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	UserName  string     `json:"user_name,omitempty"`
}

// NewBooking creates an active booking.
func NewBooking(userID uuid.UUID, schedule *ClassSchedule, membershipID uuid.UUID, now time.Time) *Booking {
	start, end := schedule.StartsAt, schedule.EndsAt
	return &Booking{
		ID:           uuid.New(),
		UserID:       userID,
		ScheduleID:   schedule.ID,
		MembershipID: membershipID,
		Status:       BookingActive,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
		ClassName:    schedule.ClassName,
		GymID:        schedule.GymID,
		StartsAt:     &start,
		EndsAt:       &end,
	}
}

// WeekBounds returns the Monday 00:00 UTC that starts the week containing t
// and the Monday that follows it.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	// time.Weekday has Sunday = 0; shift so Monday = 0.
	offset := (int(t.Weekday()) + 6) % 7
	start := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 7)
}
