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

// PlannedWorkoutInput carries a planned workout and its exercise lines.
type PlannedWorkoutInput struct {
	Name         string
	ScheduledFor time.Time
	Notes        string
	Exercises    []domain.PlannedExercise
}

// ActualWorkoutInput carries a logged workout and its exercise lines.
type ActualWorkoutInput struct {
	Name             string
	PerformedAt      time.Time
	DurationMinutes  int
	PlannedWorkoutID *uuid.UUID
	Notes            string
	Exercises        []domain.ActualExercise
}

// WorkoutService manages a user's planned and logged workouts. Every
// operation is scoped to the actor: other users' workouts read as not found.
type WorkoutService interface {
	ListPlanned(ctx context.Context, actor Actor, window store.TimeRange, page store.Page) ([]domain.PlannedWorkout, int, error)
	GetPlanned(ctx context.Context, actor Actor, id uuid.UUID) (*domain.PlannedWorkout, error)
	CreatePlanned(ctx context.Context, actor Actor, in PlannedWorkoutInput) (*domain.PlannedWorkout, error)
	// ReplacePlanned overwrites the workout and its exercise lines.
	ReplacePlanned(ctx context.Context, actor Actor, id uuid.UUID, in PlannedWorkoutInput) (*domain.PlannedWorkout, error)
	DeletePlanned(ctx context.Context, actor Actor, id uuid.UUID) error

	ListActual(ctx context.Context, actor Actor, window store.TimeRange, page store.Page) ([]domain.ActualWorkout, int, error)
	GetActual(ctx context.Context, actor Actor, id uuid.UUID) (*domain.ActualWorkout, error)
	// LogActual records a workout. A linked planned workout is marked completed.
	LogActual(ctx context.Context, actor Actor, in ActualWorkoutInput) (*domain.ActualWorkout, error)
	DeleteActual(ctx context.Context, actor Actor, id uuid.UUID) error

	// Summary aggregates the actor's logged workouts within window.
	Summary(ctx context.Context, actor Actor, window store.TimeRange) (*domain.WorkoutSummary, error)
}

type workoutServiceImpl struct {
	tx        store.TxRunner
	exercises store.ExerciseStore
	planned   store.PlannedWorkoutStore
	actual    store.ActualWorkoutStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewWorkoutService creates a WorkoutService.
func NewWorkoutService(
	tx store.TxRunner,
	exercises store.ExerciseStore,
	planned store.PlannedWorkoutStore,
	actual store.ActualWorkoutStore,
	logger *slog.Logger,
) (WorkoutService, error) {
	if tx == nil || exercises == nil || planned == nil || actual == nil {
		return nil, domain.NewValidationError("dependencies", "workout service dependencies cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &workoutServiceImpl{
		tx:        tx,
		exercises: exercises,
		planned:   planned,
		actual:    actual,
		logger:    logger.With(slog.String("component", "workout_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// resolveWindow fills an open-ended date window. Without bounds it covers the
// 30 days before now; a missing end defaults to 30 days after the start.
func resolveWindow(window store.TimeRange, now time.Time) (store.TimeRange, error) {
	const span = 30 * 24 * time.Hour
	switch {
	case window.From.IsZero() && window.To.IsZero():
		window.To = now
		window.From = now.Add(-span)
	case window.From.IsZero():
		window.From = window.To.Add(-span)
	case window.To.IsZero():
		window.To = window.From.Add(span)
	}
	if !window.To.After(window.From) {
		return window, domain.NewValidationError("to", "to must be after from", domain.ErrValidation)
	}
	return window, nil
}

// checkExercises verifies that every referenced exercise exists in the catalog.
func checkExercises(ctx context.Context, exercises store.ExerciseStore, ids []uuid.UUID) error {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	n, err := exercises.CountExisting(ctx, unique)
	if err != nil {
		return err
	}
	if n != len(unique) {
		return ErrUnknownExercise
	}
	return nil
}

func plannedExerciseIDs(lines []domain.PlannedExercise) []uuid.UUID {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ExerciseID
	}
	return ids
}

func (s *workoutServiceImpl) ListPlanned(
	ctx context.Context,
	actor Actor,
	window store.TimeRange,
	page store.Page,
) ([]domain.PlannedWorkout, int, error) {
	// Planned workouts look ahead by default.
	if window.From.IsZero() && window.To.IsZero() {
		window.From = s.now().Truncate(24 * time.Hour)
	}
	window, err := resolveWindow(window, s.now())
	if err != nil {
		return nil, 0, err
	}
	return s.planned.ListByUser(ctx, actor.UserID, window, page)
}

// ownPlanned loads a planned workout of actor from ws.
func ownPlanned(ctx context.Context, ws store.PlannedWorkoutStore, actor Actor, id uuid.UUID) (*domain.PlannedWorkout, error) {
	w, err := ws.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != actor.UserID {
		return nil, store.ErrWorkoutNotFound
	}
	return w, nil
}

func (s *workoutServiceImpl) GetPlanned(ctx context.Context, actor Actor, id uuid.UUID) (*domain.PlannedWorkout, error) {
	return ownPlanned(ctx, s.planned, actor, id)
}

func (s *workoutServiceImpl) CreatePlanned(ctx context.Context, actor Actor, in PlannedWorkoutInput) (*domain.PlannedWorkout, error) {
	w, err := domain.NewPlannedWorkout(actor.UserID, in.Name, in.ScheduledFor, in.Notes, in.Exercises)
	if err != nil {
		return nil, err
	}
	if err := checkExercises(ctx, s.exercises, plannedExerciseIDs(w.Exercises)); err != nil {
		return nil, err
	}
	if err := s.planned.Create(ctx, w); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("planned workout created",
		slog.String("workout_id", w.ID.String()),
		slog.Int("exercises", len(w.Exercises)))
	return w, nil
}

func (s *workoutServiceImpl) ReplacePlanned(
	ctx context.Context,
	actor Actor,
	id uuid.UUID,
	in PlannedWorkoutInput,
) (*domain.PlannedWorkout, error) {
	var workout *domain.PlannedWorkout
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		planned := s.planned.WithTx(tx)

		w, err := ownPlanned(ctx, planned, actor, id)
		if err != nil {
			return err
		}
		w.Name = strings.TrimSpace(in.Name)
		w.ScheduledFor = in.ScheduledFor.UTC()
		w.Notes = in.Notes
		w.SetExercises(in.Exercises)
		w.UpdatedAt = s.now()
		if err := w.Validate(); err != nil {
			return err
		}
		if err := checkExercises(ctx, s.exercises.WithTx(tx), plannedExerciseIDs(w.Exercises)); err != nil {
			return err
		}

		if err := planned.Update(ctx, w); err != nil {
			return err
		}
		workout = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *workoutServiceImpl) DeletePlanned(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := ownPlanned(ctx, s.planned, actor, id); err != nil {
		return err
	}
	return s.planned.Delete(ctx, id)
}

func (s *workoutServiceImpl) ListActual(
	ctx context.Context,
	actor Actor,
	window store.TimeRange,
	page store.Page,
) ([]domain.ActualWorkout, int, error) {
	window, err := resolveWindow(window, s.now())
	if err != nil {
		return nil, 0, err
	}
	return s.actual.ListByUser(ctx, actor.UserID, window, page)
}

func (s *workoutServiceImpl) GetActual(ctx context.Context, actor Actor, id uuid.UUID) (*domain.ActualWorkout, error) {
	w, err := s.actual.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != actor.UserID {
		return nil, store.ErrWorkoutNotFound
	}
	return w, nil
}

func (s *workoutServiceImpl) LogActual(ctx context.Context, actor Actor, in ActualWorkoutInput) (*domain.ActualWorkout, error) {
	w, err := domain.NewActualWorkout(actor.UserID, in.PlannedWorkoutID, in.Name, in.PerformedAt,
		in.DurationMinutes, in.Notes, in.Exercises)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(w.Exercises))
	for i, e := range w.Exercises {
		ids[i] = e.ExerciseID
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := checkExercises(ctx, s.exercises.WithTx(tx), ids); err != nil {
			return err
		}

		if w.PlannedWorkoutID != nil {
			planned := s.planned.WithTx(tx)
			if _, err := ownPlanned(ctx, planned, actor, *w.PlannedWorkoutID); err != nil {
				return err
			}
			if err := planned.MarkCompleted(ctx, *w.PlannedWorkoutID); err != nil {
				return err
			}
		}

		return s.actual.WithTx(tx).Create(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("workout logged",
		slog.String("workout_id", w.ID.String()),
		slog.Bool("planned", w.PlannedWorkoutID != nil))
	return w, nil
}

func (s *workoutServiceImpl) DeleteActual(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.GetActual(ctx, actor, id); err != nil {
		return err
	}
	return s.actual.Delete(ctx, id)
}

func (s *workoutServiceImpl) Summary(ctx context.Context, actor Actor, window store.TimeRange) (*domain.WorkoutSummary, error) {
	window, err := resolveWindow(window, s.now())
	if err != nil {
		return nil, err
	}

	workouts, err := s.actual.ListInRange(ctx, actor.UserID, window)
	if err != nil {
		return nil, err
	}
	total, completed, err := s.planned.CountInRange(ctx, actor.UserID, window)
	if err != nil {
		return nil, err
	}

	summary := domain.SummarizeWorkouts(window.From, window.To, workouts)
	summary.PlannedTotal = total
	summary.PlannedDone = completed
	return &summary, nil
}
