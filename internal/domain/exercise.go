package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyExerciseName  = errors.New("exercise name cannot be empty")
	ErrInvalidMuscleGroup = errors.New("invalid muscle group")
)

// MuscleGroup is the primary body area an exercise trains.
type MuscleGroup string

// Known muscle groups.
const (
	MuscleChest     MuscleGroup = "chest"
	MuscleBack      MuscleGroup = "back"
	MuscleShoulders MuscleGroup = "shoulders"
	MuscleBiceps    MuscleGroup = "biceps"
	MuscleTriceps   MuscleGroup = "triceps"
	MuscleLegs      MuscleGroup = "legs"
	MuscleGlutes    MuscleGroup = "glutes"
	MuscleCore      MuscleGroup = "core"
	MuscleCardio    MuscleGroup = "cardio"
	MuscleFullBody  MuscleGroup = "full_body"
)

// Valid reports whether g is a known muscle group.
func (g MuscleGroup) Valid() bool {
	switch g {
	case MuscleChest, MuscleBack, MuscleShoulders, MuscleBiceps, MuscleTriceps,
		MuscleLegs, MuscleGlutes, MuscleCore, MuscleCardio, MuscleFullBody:
		return true
	}
	return false
}

// Exercise is an entry of the shared exercise catalog.
type Exercise struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	MuscleGroup MuscleGroup `json:"muscle_group"`
	Equipment   string      `json:"equipment"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewExercise creates a catalog exercise.
func NewExercise(name string, group MuscleGroup, equipment, description string) (*Exercise, error) {
	now := time.Now().UTC()
	e := &Exercise{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		MuscleGroup: group,
		Equipment:   strings.TrimSpace(equipment),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks if the Exercise has valid data.
func (e *Exercise) Validate() error {
	if e.ID == uuid.Nil {
		return NewValidationError("id", "exercise ID cannot be empty", ErrInvalidID)
	}
	if e.Name == "" {
		return NewValidationError("name", ErrEmptyExerciseName.Error(), ErrEmptyExerciseName)
	}
	if !e.MuscleGroup.Valid() {
		return NewValidationError("muscle_group", ErrInvalidMuscleGroup.Error(), ErrInvalidMuscleGroup)
	}
	return nil
}
