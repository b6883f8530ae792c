package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockMembershipStore is a mock of store.MembershipStore.
type MockMembershipStore struct {
	mock.Mock
}

var _ store.MembershipStore = (*MockMembershipStore)(nil)

func (m *MockMembershipStore) Create(ctx context.Context, membership *domain.Membership) error {
	return m.Called(ctx, membership).Error(0)
}

func (m *MockMembershipStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Membership, error) {
	args := m.Called(ctx, id)
	if ms, ok := args.Get(0).(*domain.Membership); ok {
		return ms, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMembershipStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Membership, error) {
	args := m.Called(ctx, id)
	if ms, ok := args.Get(0).(*domain.Membership); ok {
		return ms, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMembershipStore) FindActiveAt(ctx context.Context, userID, gymID uuid.UUID, at time.Time) (*domain.Membership, error) {
	args := m.Called(ctx, userID, gymID, at)
	if ms, ok := args.Get(0).(*domain.Membership); ok {
		return ms, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMembershipStore) HasOpen(ctx context.Context, userID, gymID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, gymID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipStore) ListByUser(ctx context.Context, userID uuid.UUID, page store.Page) ([]domain.Membership, int, error) {
	args := m.Called(ctx, userID, page)
	list, _ := args.Get(0).([]domain.Membership)
	return list, args.Int(1), args.Error(2)
}

func (m *MockMembershipStore) ListActiveByGym(ctx context.Context, gymID uuid.UUID, page store.Page) ([]domain.Membership, int, error) {
	args := m.Called(ctx, gymID, page)
	list, _ := args.Get(0).([]domain.Membership)
	return list, args.Int(1), args.Error(2)
}

func (m *MockMembershipStore) Update(ctx context.Context, membership *domain.Membership) error {
	return m.Called(ctx, membership).Error(0)
}

func (m *MockMembershipStore) ExpireDue(ctx context.Context, now time.Time) ([]domain.Membership, error) {
	args := m.Called(ctx, now)
	list, _ := args.Get(0).([]domain.Membership)
	return list, args.Error(1)
}

func (m *MockMembershipStore) WithTx(*sql.Tx) store.MembershipStore { return m }

// MockPaymentStore is a mock of store.PaymentStore.
type MockPaymentStore struct {
	mock.Mock
}

var _ store.PaymentStore = (*MockPaymentStore)(nil)

func (m *MockPaymentStore) Create(ctx context.Context, payment *domain.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*domain.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentStore) GetByProviderRefForUpdate(ctx context.Context, provider, ref string) (*domain.Payment, error) {
	args := m.Called(ctx, provider, ref)
	if p, ok := args.Get(0).(*domain.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*domain.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentStore) ListByUser(ctx context.Context, userID uuid.UUID, page store.Page) ([]domain.Payment, int, error) {
	args := m.Called(ctx, userID, page)
	list, _ := args.Get(0).([]domain.Payment)
	return list, args.Int(1), args.Error(2)
}

func (m *MockPaymentStore) Update(ctx context.Context, payment *domain.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentStore) WithTx(*sql.Tx) store.PaymentStore { return m }
