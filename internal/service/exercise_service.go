package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
)

// ExerciseInput carries the fields of a catalog exercise.
type ExerciseInput struct {
	Name        string
	MuscleGroup domain.MuscleGroup
	Equipment   string
	Description string
}

// ExerciseService manages the shared exercise catalog. Writes are admin-only.
type ExerciseService interface {
	List(ctx context.Context, filter store.ExerciseFilter, page store.Page) ([]domain.Exercise, int, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Exercise, error)
	Create(ctx context.Context, actor Actor, in ExerciseInput) (*domain.Exercise, error)
	// Update replaces every field of the exercise.
	Update(ctx context.Context, actor Actor, id uuid.UUID, in ExerciseInput) (*domain.Exercise, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type exerciseServiceImpl struct {
	exercises store.ExerciseStore
	logger    *slog.Logger
}

// NewExerciseService creates an ExerciseService.
func NewExerciseService(exercises store.ExerciseStore, logger *slog.Logger) (ExerciseService, error) {
	if exercises == nil {
		return nil, domain.NewValidationError("exercises", "exercise store cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &exerciseServiceImpl{
		exercises: exercises,
		logger:    logger.With(slog.String("component", "exercise_service")),
	}, nil
}

func (s *exerciseServiceImpl) List(ctx context.Context, filter store.ExerciseFilter, page store.Page) ([]domain.Exercise, int, error) {
	if filter.MuscleGroup != "" && !filter.MuscleGroup.Valid() {
		return nil, 0, domain.NewValidationError("muscle_group", domain.ErrInvalidMuscleGroup.Error(), domain.ErrInvalidMuscleGroup)
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.exercises.List(ctx, filter, page)
}

func (s *exerciseServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Exercise, error) {
	return s.exercises.GetByID(ctx, id)
}

func (s *exerciseServiceImpl) Create(ctx context.Context, actor Actor, in ExerciseInput) (*domain.Exercise, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	exercise, err := domain.NewExercise(in.Name, in.MuscleGroup, in.Equipment, in.Description)
	if err != nil {
		return nil, err
	}
	if err := s.exercises.Create(ctx, exercise); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("exercise created",
		slog.String("exercise_id", exercise.ID.String()),
		slog.String("name", exercise.Name))
	return exercise, nil
}

func (s *exerciseServiceImpl) Update(ctx context.Context, actor Actor, id uuid.UUID, in ExerciseInput) (*domain.Exercise, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	exercise, err := s.exercises.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	exercise.Name = strings.TrimSpace(in.Name)
	exercise.MuscleGroup = in.MuscleGroup
	exercise.Equipment = strings.TrimSpace(in.Equipment)
	exercise.Description = in.Description
	if err := exercise.Validate(); err != nil {
		return nil, err
	}

	if err := s.exercises.Update(ctx, exercise); err != nil {
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseServiceImpl) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.exercises.Delete(ctx, id)
}
