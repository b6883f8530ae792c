package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyWorkoutName     = errors.New("workout name cannot be empty")
	ErrNoWorkoutExercises   = errors.New("workout must contain at least one exercise")
	ErrInvalidSets          = errors.New("sets must be positive")
	ErrInvalidReps          = errors.New("reps must be positive")
	ErrInvalidWeight        = errors.New("weight must not be negative")
	ErrInvalidWorkoutLength = errors.New("duration must not be negative")
)

// PlannedWorkout is a user-scheduled future workout with target exercises.
type PlannedWorkout struct {
	ID           uuid.UUID         `json:"id"`
	UserID       uuid.UUID         `json:"user_id"`
	Name         string            `json:"name"`
	ScheduledFor time.Time         `json:"scheduled_for"`
	Notes        string            `json:"notes"`
	Completed    bool              `json:"completed"`
	Exercises    []PlannedExercise `json:"exercises"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// PlannedExercise is one target line of a planned workout.
type PlannedExercise struct {
	ID                    uuid.UUID           `json:"id"`
	ExerciseID            uuid.UUID           `json:"exercise_id"`
	ExerciseName          string              `json:"exercise_name,omitempty"`
	Position              int                 `json:"position"`
	TargetSets            int                 `json:"target_sets"`
	TargetReps            *int                `json:"target_reps"`
	TargetWeight          decimal.NullDecimal `json:"target_weight"`
	TargetDurationSeconds *int                `json:"target_duration_seconds"`
}

// NewPlannedWorkout creates a planned workout for userID.
func NewPlannedWorkout(userID uuid.UUID, name string, scheduledFor time.Time, notes string, exercises []PlannedExercise) (*PlannedWorkout, error) {
	now := time.Now().UTC()
	w := &PlannedWorkout{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         strings.TrimSpace(name),
		ScheduledFor: scheduledFor.UTC(),
		Notes:        notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	w.SetExercises(exercises)
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// SetExercises replaces the exercise lines, assigning IDs and positions.
func (w *PlannedWorkout) SetExercises(exercises []PlannedExercise) {
	w.Exercises = make([]PlannedExercise, len(exercises))
	for i, e := range exercises {
		e.ID = uuid.New()
		e.Position = i + 1
		w.Exercises[i] = e
	}
}

// Validate checks if the PlannedWorkout has valid data.
func (w *PlannedWorkout) Validate() error {
	if w.ID == uuid.Nil || w.UserID == uuid.Nil {
		return NewValidationError("id", "workout and user IDs cannot be empty", ErrInvalidID)
	}
	if w.Name == "" {
		return NewValidationError("name", ErrEmptyWorkoutName.Error(), ErrEmptyWorkoutName)
	}
	if len(w.Exercises) == 0 {
		return NewValidationError("exercises", ErrNoWorkoutExercises.Error(), ErrNoWorkoutExercises)
	}
	for _, e := range w.Exercises {
		if e.ExerciseID == uuid.Nil {
			return NewValidationError("exercises.exercise_id", "exercise ID cannot be empty", ErrInvalidID)
		}
		if e.TargetSets <= 0 {
			return NewValidationError("exercises.target_sets", ErrInvalidSets.Error(), ErrInvalidSets)
		}
		if e.TargetReps != nil && *e.TargetReps <= 0 {
			return NewValidationError("exercises.target_reps", ErrInvalidReps.Error(), ErrInvalidReps)
		}
		if e.TargetWeight.Valid && e.TargetWeight.Decimal.IsNegative() {
			return NewValidationError("exercises.target_weight", ErrInvalidWeight.Error(), ErrInvalidWeight)
		}
	}
	return nil
}

// ActualWorkout is a logged, completed workout.
type ActualWorkout struct {
	ID               uuid.UUID        `json:"id"`
	UserID           uuid.UUID        `json:"user_id"`
	PlannedWorkoutID *uuid.UUID       `json:"planned_workout_id"`
	Name             string           `json:"name"`
	PerformedAt      time.Time        `json:"performed_at"`
	DurationMinutes  int              `json:"duration_minutes"`
	Notes            string           `json:"notes"`
	Exercises        []ActualExercise `json:"exercises"`
	CreatedAt        time.Time        `json:"created_at"`
}

// ActualExercise is one performed line of an actual workout.
type ActualExercise struct {
	ID              uuid.UUID           `json:"id"`
	ExerciseID      uuid.UUID           `json:"exercise_id"`
	ExerciseName    string              `json:"exercise_name,omitempty"`
	Position        int                 `json:"position"`
	Sets            int                 `json:"sets"`
	Reps            *int                `json:"reps"`
	Weight          decimal.NullDecimal `json:"weight"`
	DurationSeconds *int                `json:"duration_seconds"`
}

// Volume returns sets x reps x weight, or zero when reps or weight are absent.
func (e ActualExercise) Volume() decimal.Decimal {
	if e.Reps == nil || !e.Weight.Valid {
		return decimal.Zero
	}
	return e.Weight.Decimal.Mul(decimal.NewFromInt(int64(e.Sets * *e.Reps)))
}

// NewActualWorkout creates a logged workout for userID.
func NewActualWorkout(
	userID uuid.UUID,
	plannedID *uuid.UUID,
	name string,
	performedAt time.Time,
	durationMinutes int,
	notes string,
	exercises []ActualExercise,
) (*ActualWorkout, error) {
	w := &ActualWorkout{
		ID:               uuid.New(),
		UserID:           userID,
		PlannedWorkoutID: plannedID,
		Name:             strings.TrimSpace(name),
		PerformedAt:      performedAt.UTC(),
		DurationMinutes:  durationMinutes,
		Notes:            notes,
		Exercises:        make([]ActualExercise, len(exercises)),
		CreatedAt:        time.Now().UTC(),
	}
	for i, e := range exercises {
		e.ID = uuid.New()
		e.Position = i + 1
		w.Exercises[i] = e
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate checks if the ActualWorkout has valid data.
func (w *ActualWorkout) Validate() error {
	if w.ID == uuid.Nil || w.UserID == uuid.Nil {
		return NewValidationError("id", "workout and user IDs cannot be empty", ErrInvalidID)
	}
	if w.Name == "" {
		return NewValidationError("name", ErrEmptyWorkoutName.Error(), ErrEmptyWorkoutName)
	}
	if w.DurationMinutes < 0 {
		return NewValidationError("duration_minutes", ErrInvalidWorkoutLength.Error(), ErrInvalidWorkoutLength)
	}
	if len(w.Exercises) == 0 {
		return NewValidationError("exercises", ErrNoWorkoutExercises.Error(), ErrNoWorkoutExercises)
	}
	for _, e := range w.Exercises {
		if e.ExerciseID == uuid.Nil {
			return NewValidationError("exercises.exercise_id", "exercise ID cannot be empty", ErrInvalidID)
		}
		if e.Sets <= 0 {
			return NewValidationError("exercises.sets", ErrInvalidSets.Error(), ErrInvalidSets)
		}
		if e.Reps != nil && *e.Reps <= 0 {
			return NewValidationError("exercises.reps", ErrInvalidReps.Error(), ErrInvalidReps)
		}
		if e.Weight.Valid && e.Weight.Decimal.IsNegative() {
			return NewValidationError("exercises.weight", ErrInvalidWeight.Error(), ErrInvalidWeight)
		}
	}
	return nil
}

// Volume returns the summed volume of every exercise line.
func (w *ActualWorkout) Volume() decimal.Decimal {
	total := decimal.Zero
	for _, e := range w.Exercises {
		total = total.Add(e.Volume())
	}
	return total
}

// WorkoutSummary aggregates actual workouts over a date range.
type WorkoutSummary struct {
	From          time.Time        `json:"from"`
	To            time.Time        `json:"to"`
	TotalWorkouts int              `json:"total_workouts"`
	TotalMinutes  int              `json:"total_minutes"`
	TotalVolume   decimal.Decimal  `json:"total_volume"`
	PlannedTotal  int              `json:"planned_total"`
	PlannedDone   int              `json:"planned_completed"`
	Days          []WorkoutDayStat `json:"days"`
}

// WorkoutDayStat is one per-day bucket of a WorkoutSummary.
type WorkoutDayStat struct {
	Date     string          `json:"date"` // YYYY-MM-DD, UTC
	Workouts int             `json:"workouts"`
	Minutes  int             `json:"minutes"`
	Volume   decimal.Decimal `json:"volume"`
}

// SummarizeWorkouts builds a WorkoutSummary from fully loaded workouts.
// Days are ordered by date and only days with workouts are present.
func SummarizeWorkouts(from, to time.Time, workouts []ActualWorkout) WorkoutSummary {
	summary := WorkoutSummary{From: from, To: to, TotalVolume: decimal.Zero, Days: []WorkoutDayStat{}}
	index := make(map[string]int)

	for i := range workouts {
		w := &workouts[i]
		volume := w.Volume()
		summary.TotalWorkouts++
		summary.TotalMinutes += w.DurationMinutes
		summary.TotalVolume = summary.TotalVolume.Add(volume)

		day := w.PerformedAt.UTC().Format(time.DateOnly)
		pos, ok := index[day]
		if !ok {
			pos = len(summary.Days)
			index[day] = pos
			summary.Days = append(summary.Days, WorkoutDayStat{Date: day, Volume: decimal.Zero})
		}
		summary.Days[pos].Workouts++
		summary.Days[pos].Minutes += w.DurationMinutes
		summary.Days[pos].Volume = summary.Days[pos].Volume.Add(volume)
	}

	sortDays(summary.Days, func(d WorkoutDayStat) string { return d.Date })
	return summary
}
