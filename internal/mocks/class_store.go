package mocks

import (
	"context"
	"database/sql"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockClassStore is a mock of store.ClassStore.
type MockClassStore struct {
	mock.Mock
}

var _ store.ClassStore = (*MockClassStore)(nil)

func (m *MockClassStore) Create(ctx context.Context, class *domain.GymClass) error {
	return m.Called(ctx, class).Error(0)
}

func (m *MockClassStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GymClass, error) {
	args := m.Called(ctx, id)
	if class, ok := args.Get(0).(*domain.GymClass); ok {
		return class, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClassStore) ListByGym(ctx context.Context, gymID uuid.UUID) ([]domain.GymClass, error) {
	args := m.Called(ctx, gymID)
	classes, _ := args.Get(0).([]domain.GymClass)
	return classes, args.Error(1)
}

func (m *MockClassStore) Update(ctx context.Context, class *domain.GymClass) error {
	return m.Called(ctx, class).Error(0)
}

func (m *MockClassStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockClassStore) WithTx(*sql.Tx) store.ClassStore { return m }

// MockScheduleStore is a mock of store.ScheduleStore.
type MockScheduleStore struct {
	mock.Mock
}

var _ store.ScheduleStore = (*MockScheduleStore)(nil)

func (m *MockScheduleStore) Create(ctx context.Context, schedule *domain.ClassSchedule) error {
	return m.Called(ctx, schedule).Error(0)
}

func (m *MockScheduleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClassSchedule, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*domain.ClassSchedule); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockScheduleStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.ClassSchedule, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*domain.ClassSchedule); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockScheduleStore) ListByClass(ctx context.Context, classID uuid.UUID, window store.TimeRange) ([]domain.ClassSchedule, error) {
	args := m.Called(ctx, classID, window)
	schedules, _ := args.Get(0).([]domain.ClassSchedule)
	return schedules, args.Error(1)
}

func (m *MockScheduleStore) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockScheduleStore) AdjustBookedCount(ctx context.Context, id uuid.UUID, delta int) error {
	return m.Called(ctx, id, delta).Error(0)
}

func (m *MockScheduleStore) WithTx(*sql.Tx) store.ScheduleStore { return m }
