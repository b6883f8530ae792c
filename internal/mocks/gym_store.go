package mocks

import (
	"context"
	"database/sql"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockGymStore is a mock of store.GymStore.
type MockGymStore struct {
	mock.Mock
}

var _ store.GymStore = (*MockGymStore)(nil)

func (m *MockGymStore) Create(ctx context.Context, gym *domain.Gym) error {
	return m.Called(ctx, gym).Error(0)
}

func (m *MockGymStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Gym, error) {
	args := m.Called(ctx, id)
	if gym, ok := args.Get(0).(*domain.Gym); ok {
		return gym, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGymStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Gym, error) {
	args := m.Called(ctx, id)
	if gym, ok := args.Get(0).(*domain.Gym); ok {
		return gym, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGymStore) List(ctx context.Context, filter store.GymFilter, page store.Page) ([]domain.Gym, int, error) {
	args := m.Called(ctx, filter, page)
	gyms, _ := args.Get(0).([]domain.Gym)
	return gyms, args.Int(1), args.Error(2)
}

func (m *MockGymStore) Update(ctx context.Context, gym *domain.Gym) error {
	return m.Called(ctx, gym).Error(0)
}

func (m *MockGymStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGymStore) AdjustMemberCount(ctx context.Context, id uuid.UUID, delta int) error {
	return m.Called(ctx, id, delta).Error(0)
}

func (m *MockGymStore) WithTx(*sql.Tx) store.GymStore { return m }

// MockPlanStore is a mock of store.PlanStore.
type MockPlanStore struct {
	mock.Mock
}

var _ store.PlanStore = (*MockPlanStore)(nil)

func (m *MockPlanStore) Create(ctx context.Context, plan *domain.MembershipPlan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *MockPlanStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.MembershipPlan, error) {
	args := m.Called(ctx, id)
	if plan, ok := args.Get(0).(*domain.MembershipPlan); ok {
		return plan, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPlanStore) ListByGym(ctx context.Context, gymID uuid.UUID, includeInactive bool) ([]domain.MembershipPlan, error) {
	args := m.Called(ctx, gymID, includeInactive)
	plans, _ := args.Get(0).([]domain.MembershipPlan)
	return plans, args.Error(1)
}

func (m *MockPlanStore) Update(ctx context.Context, plan *domain.MembershipPlan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *MockPlanStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPlanStore) InUse(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPlanStore) WithTx(*sql.Tx) store.PlanStore { return m }
