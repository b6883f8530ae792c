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

// MockBookingStore is a mock of store.BookingStore.
type MockBookingStore struct {
	mock.Mock
}

var _ store.BookingStore = (*MockBookingStore)(nil)

func (m *MockBookingStore) Create(ctx context.Context, booking *domain.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockBookingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*domain.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookingStore) FindActive(ctx context.Context, userID, scheduleID uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, userID, scheduleID)
	if b, ok := args.Get(0).(*domain.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookingStore) CountForWeek(ctx context.Context, membershipID uuid.UUID, window store.TimeRange) (int, error) {
	args := m.Called(ctx, membershipID, window)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	status *domain.BookingStatus,
	page store.Page,
) ([]domain.Booking, int, error) {
	args := m.Called(ctx, userID, status, page)
	bookings, _ := args.Get(0).([]domain.Booking)
	return bookings, args.Int(1), args.Error(2)
}

func (m *MockBookingStore) ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]domain.Booking, error) {
	args := m.Called(ctx, scheduleID)
	bookings, _ := args.Get(0).([]domain.Booking)
	return bookings, args.Error(1)
}

func (m *MockBookingStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockBookingStore) CancelBySchedule(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	args := m.Called(ctx, scheduleID)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingStore) CancelUpcomingForMembership(ctx context.Context, membershipID uuid.UUID, after time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, membershipID, after)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

func (m *MockBookingStore) WithTx(*sql.Tx) store.BookingStore { return m }
