package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyClassName       = errors.New("class name cannot be empty")
	ErrInvalidCapacity      = errors.New("capacity must be positive")
	ErrInvalidClassDuration = errors.New("class duration must be positive")
	ErrScheduleInPast       = errors.New("schedule must start in the future")
)

// GymClass is a recurring class offered by a gym (e.g. "Morning BJJ").
type GymClass struct {
	ID              uuid.UUID `json:"id"`
	GymID           uuid.UUID `json:"gym_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Instructor      string    `json:"instructor"`
	Capacity        int       `json:"capacity"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewGymClass creates a class for gymID.
func NewGymClass(gymID uuid.UUID, name, description, instructor string, capacity, durationMinutes int) (*GymClass, error) {
	now := time.Now().UTC()
	c := &GymClass{
		ID:              uuid.New(),
		GymID:           gymID,
		Name:            strings.TrimSpace(name),
		Description:     description,
		Instructor:      strings.TrimSpace(instructor),
		Capacity:        capacity,
		DurationMinutes: durationMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks if the GymClass has valid data.
func (c *GymClass) Validate() error {
	if c.ID == uuid.Nil || c.GymID == uuid.Nil {
		return NewValidationError("id", "class and gym IDs cannot be empty", ErrInvalidID)
	}
	if c.Name == "" {
		return NewValidationError("name", ErrEmptyClassName.Error(), ErrEmptyClassName)
	}
	if c.Capacity <= 0 {
		return NewValidationError("capacity", ErrInvalidCapacity.Error(), ErrInvalidCapacity)
	}
	if c.DurationMinutes <= 0 {
		return NewValidationError("duration_minutes", ErrInvalidClassDuration.Error(), ErrInvalidClassDuration)
	}
	return nil
}

// ClassSchedule is one dated occurrence of a class. BookedCount counts active bookings.
type ClassSchedule struct {
	ID          uuid.UUID `json:"id"`
	ClassID     uuid.UUID `json:"class_id"`
	GymID       uuid.UUID `json:"gym_id"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Capacity    int       `json:"capacity"`
	BookedCount int       `json:"booked_count"`
	Cancelled   bool      `json:"cancelled"`
	CreatedAt   time.Time `json:"created_at"`

	ClassName string `json:"class_name,omitempty"`
}

// NewClassSchedule schedules class at startsAt. A zero capacity inherits the class capacity.
func NewClassSchedule(class *GymClass, startsAt time.Time, capacity int, now time.Time) (*ClassSchedule, error) {
	if capacity == 0 {
		capacity = class.Capacity
	}
	if capacity < 0 {
		return nil, NewValidationError("capacity", ErrInvalidCapacity.Error(), ErrInvalidCapacity)
	}
	if !startsAt.After(now) {
		return nil, NewValidationError("starts_at", ErrScheduleInPast.Error(), ErrScheduleInPast)
	}
	start := startsAt.UTC()
	return &ClassSchedule{
		ID:        uuid.New(),
		ClassID:   class.ID,
		GymID:     class.GymID,
		StartsAt:  start,
		EndsAt:    start.Add(time.Duration(class.DurationMinutes) * time.Minute),
		Capacity:  capacity,
		CreatedAt: now.UTC(),
		ClassName: class.Name,
	}, nil
}

// SpotsLeft returns the number of free places.
func (s *ClassSchedule) SpotsLeft() int {
	if s.BookedCount >= s.Capacity {
		return 0
	}
	return s.Capacity - s.BookedCount
}

// Bookable reports whether the schedule accepts bookings at now.
func (s *ClassSchedule) Bookable(now time.Time) bool {
	return !s.Cancelled && s.StartsAt.After(now)
}
