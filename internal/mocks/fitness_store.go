package mocks

import (
	"context"
	"database/sql"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockExerciseStore is a mock of store.ExerciseStore.
type MockExerciseStore struct {
	mock.Mock
}

var _ store.ExerciseStore = (*MockExerciseStore)(nil)

func (m *MockExerciseStore) Create(ctx context.Context, exercise *domain.Exercise) error {
	return m.Called(ctx, exercise).Error(0)
}

func (m *MockExerciseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Exercise, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*domain.Exercise); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockExerciseStore) CountExisting(ctx context.Context, ids []uuid.UUID) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

func (m *MockExerciseStore) List(ctx context.Context, filter store.ExerciseFilter, page store.Page) ([]domain.Exercise, int, error) {
	args := m.Called(ctx, filter, page)
	list, _ := args.Get(0).([]domain.Exercise)
	return list, args.Int(1), args.Error(2)
}

func (m *MockExerciseStore) Update(ctx context.Context, exercise *domain.Exercise) error {
	return m.Called(ctx, exercise).Error(0)
}

func (m *MockExerciseStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockExerciseStore) WithTx(*sql.Tx) store.ExerciseStore { return m }

// MockPlannedWorkoutStore is a mock of store.PlannedWorkoutStore.
type MockPlannedWorkoutStore struct {
	mock.Mock
}

var _ store.PlannedWorkoutStore = (*MockPlannedWorkoutStore)(nil)

func (m *MockPlannedWorkoutStore) Create(ctx context.Context, workout *domain.PlannedWorkout) error {
	return m.Called(ctx, workout).Error(0)
}

func (m *MockPlannedWorkoutStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.PlannedWorkout, error) {
	args := m.Called(ctx, id)
	if w, ok := args.Get(0).(*domain.PlannedWorkout); ok {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPlannedWorkoutStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	window store.TimeRange,
	page store.Page,
) ([]domain.PlannedWorkout, int, error) {
	args := m.Called(ctx, userID, window, page)
	list, _ := args.Get(0).([]domain.PlannedWorkout)
	return list, args.Int(1), args.Error(2)
}

func (m *MockPlannedWorkoutStore) Update(ctx context.Context, workout *domain.PlannedWorkout) error {
	return m.Called(ctx, workout).Error(0)
}

func (m *MockPlannedWorkoutStore) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPlannedWorkoutStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPlannedWorkoutStore) CountInRange(ctx context.Context, userID uuid.UUID, window store.TimeRange) (int, int, error) {
	args := m.Called(ctx, userID, window)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockPlannedWorkoutStore) WithTx(*sql.Tx) store.PlannedWorkoutStore { return m }

// MockActualWorkoutStore is a mock of store.ActualWorkoutStore.
type MockActualWorkoutStore struct {
	mock.Mock
}

var _ store.ActualWorkoutStore = (*MockActualWorkoutStore)(nil)

func (m *MockActualWorkoutStore) Create(ctx context.Context, workout *domain.ActualWorkout) error {
	return m.Called(ctx, workout).Error(0)
}

func (m *MockActualWorkoutStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ActualWorkout, error) {
	args := m.Called(ctx, id)
	if w, ok := args.Get(0).(*domain.ActualWorkout); ok {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockActualWorkoutStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	window store.TimeRange,
	page store.Page,
) ([]domain.ActualWorkout, int, error) {
	args := m.Called(ctx, userID, window, page)
	list, _ := args.Get(0).([]domain.ActualWorkout)
	return list, args.Int(1), args.Error(2)
}

func (m *MockActualWorkoutStore) ListInRange(ctx context.Context, userID uuid.UUID, window store.TimeRange) ([]domain.ActualWorkout, error) {
	args := m.Called(ctx, userID, window)
	list, _ := args.Get(0).([]domain.ActualWorkout)
	return list, args.Error(1)
}

func (m *MockActualWorkoutStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockActualWorkoutStore) WithTx(*sql.Tx) store.ActualWorkoutStore { return m }

// MockDietStore is a mock of store.DietStore.
type MockDietStore struct {
	mock.Mock
}

var _ store.DietStore = (*MockDietStore)(nil)

func (m *MockDietStore) Create(ctx context.Context, entry *domain.DietEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockDietStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.DietEntry, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*domain.DietEntry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDietStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	window store.TimeRange,
	page store.Page,
) ([]domain.DietEntry, int, error) {
	args := m.Called(ctx, userID, window, page)
	list, _ := args.Get(0).([]domain.DietEntry)
	return list, args.Int(1), args.Error(2)
}

func (m *MockDietStore) ListInRange(ctx context.Context, userID uuid.UUID, window store.TimeRange) ([]domain.DietEntry, error) {
	args := m.Called(ctx, userID, window)
	list, _ := args.Get(0).([]domain.DietEntry)
	return list, args.Error(1)
}

func (m *MockDietStore) Update(ctx context.Context, entry *domain.DietEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockDietStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDietStore) WithTx(*sql.Tx) store.DietStore { return m }
