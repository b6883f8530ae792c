package service

import (
	"context"
	"testing"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/mocks"
	"github.com/fitdash/fitdash-api/internal/platform/metrics"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	actor       Actor
	gym         *domain.Gym
	plan        *domain.MembershipPlan
	schedule    *domain.ClassSchedule
	membership  *domain.Membership
	tx          *mocks.TxRunner
	gyms        *mocks.MockGymStore
	plans       *mocks.MockPlanStore
	schedules   *mocks.MockScheduleStore
	bookings    *mocks.MockBookingStore
	memberships *mocks.MockMembershipStore
	svc         *bookingServiceImpl
}

func newBookingFixture(t *testing.T, weeklyLimit int) *bookingFixture {
	t.Helper()

	f := &bookingFixture{
		actor:       member(),
		tx:          mocks.NewTxRunner(),
		gyms:        &mocks.MockGymStore{},
		plans:       &mocks.MockPlanStore{},
		schedules:   &mocks.MockScheduleStore{},
		bookings:    &mocks.MockBookingStore{},
		memberships: &mocks.MockMembershipStore{},
	}
	f.gym = gymOf(uuid.New())
	f.plan = planOf(f.gym.ID, weeklyLimit)
	f.schedule = &domain.ClassSchedule{
		ID:          uuid.New(),
		ClassID:     uuid.New(),
		GymID:       f.gym.ID,
		StartsAt:    testNow.Add(48 * time.Hour),
		EndsAt:      testNow.Add(49 * time.Hour),
		Capacity:    10,
		BookedCount: 3,
		ClassName:   "Morning BJJ",
	}
	start, end := testNow.Add(-24*time.Hour), testNow.Add(29*24*time.Hour)
	f.membership = &domain.Membership{
		ID:        uuid.New(),
		UserID:    f.actor.UserID,
		GymID:     f.gym.ID,
		PlanID:    f.plan.ID,
		Status:    domain.MembershipActive,
		StartDate: &start,
		EndDate:   &end,
	}

	svc, err := NewBookingService(f.tx, f.gyms, f.plans, f.schedules, f.bookings, f.memberships, metrics.New(), discardLogger())
	require.NoError(t, err)
	f.svc = svc.(*bookingServiceImpl)
	f.svc.now = clock
	return f
}

func (f *bookingFixture) expectLocks() {
	f.schedules.On("GetByID", mock.Anything, f.schedule.ID).Return(f.schedule, nil)
	f.memberships.On("FindActiveAt", mock.Anything, f.actor.UserID, f.gym.ID, f.schedule.StartsAt).Return(f.membership, nil)
	f.memberships.On("GetByIDForUpdate", mock.Anything, f.membership.ID).Return(f.membership, nil)
	f.schedules.On("GetByIDForUpdate", mock.Anything, f.schedule.ID).Return(f.schedule, nil)
}

func (f *bookingFixture) expectLookups() {
	f.expectLocks()
	f.bookings.On("FindActive", mock.Anything, f.actor.UserID, f.schedule.ID).Return(nil, store.ErrBookingNotFound)
	f.plans.On("GetByID", mock.Anything, f.plan.ID).Return(f.plan, nil)
}

func TestBookingService_Book(t *testing.T) {
	t.Parallel()

	t.Run("books and increments the counter", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 3)
		f.expectLookups()

		from, to := domain.WeekBounds(f.schedule.StartsAt)
		f.bookings.On("CountForWeek", mock.Anything, f.membership.ID, store.TimeRange{From: from, To: to}).Return(2, nil)
		f.bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil)
		f.schedules.On("AdjustBookedCount", mock.Anything, f.schedule.ID, 1).Return(nil)

		booking, err := f.svc.Book(context.Background(), f.actor, f.schedule.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingActive, booking.Status)
		assert.Equal(t, f.membership.ID, booking.MembershipID)
		assert.Equal(t, "Morning BJJ", booking.ClassName)
		assert.Equal(t, 1, f.tx.Calls)

		f.bookings.AssertExpectations(t)
		f.schedules.AssertExpectations(t)
	})

	t.Run("unlimited plan skips the weekly count", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 0)
		f.expectLookups()
		f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.schedules.On("AdjustBookedCount", mock.Anything, f.schedule.ID, 1).Return(nil)

		_, err := f.svc.Book(context.Background(), f.actor, f.schedule.ID)
		require.NoError(t, err)
		f.bookings.AssertNotCalled(t, "CountForWeek", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("weekly limit reached", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 2)
		f.expectLookups()
		f.bookings.On("CountForWeek", mock.Anything, f.membership.ID, mock.Anything).Return(2, nil)

		_, err := f.svc.Book(context.Background(), f.actor, f.schedule.ID)
		assert.ErrorIs(t, err, ErrWeeklyLimitReached)
		f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("class full", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 0)
		f.schedule.BookedCount = f.schedule.Capacity
		f.expectLookups()

		_, err := f.svc.Book(context.Background(), f.actor, f.schedule.ID)
		assert.ErrorIs(t, err, ErrClassFull)
		f.schedules.AssertNotCalled(t, "AdjustBookedCount", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("membership is locked before the weekly count", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 3)

		var calls []string
		f.schedules.On("GetByID", mock.Anything, f.schedule.ID).Return(f.schedule, nil)
		f.memberships.On("FindActiveAt", mock.Anything, f.actor.UserID, f.gym.ID, f.schedule.StartsAt).Return(f.membership, nil)
		f.memberships.On("GetByIDForUpdate", mock.Anything, f.membership.ID).
			Run(func(mock.Arguments) { calls = append(calls, "lock membership") }).
			Return(f.membership, nil)
		f.schedules.On("GetByIDForUpdate", mock.Anything, f.schedule.ID).
			Run(func(mock.Arguments) { calls = append(calls, "lock schedule") }).
			Return(f.schedule, nil)
		f.bookings.On("FindActive", mock.Anything, f.actor.UserID, f.schedule.ID).Return(nil, store.ErrBookingNotFound)
		f.plans.On("GetByID", mock.Anything, f.plan.ID).Return(f.plan, nil)
		f.bookings.On("CountForWeek", mock.Anything, f.membership.ID, mock.Anything).
			Run(func(mock.Arguments) { calls = append(calls, "count") }).
			Return(2, nil)
		f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.schedules.On("AdjustBookedCount", mock.Anything, f.schedule.ID, 1).Return(nil)

		_, err := f.svc.Book(context.Background(), f.actor, f.schedule.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"lock membership", "lock schedule", "count"}, calls)
		f.memberships.AssertExpectations(t)
	})

	t.Run("membership lapsed while waiting for the lock", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 0)
		cancelled := *f.membership
		cancelled.Status = domain.MembershipCancelled
		f.schedules.On("GetByID", mock.Anything, f.schedule.ID).Return(f.schedule, nil)
		f.memberships.On("FindActiveAt", mock.Anything, f.actor.UserID, f.gym.ID, f.schedule.StartsAt).Return(f.membership, nil)
		f.memberships.On("GetByIDForUpdate", mock.Anything, f.membership.ID).Return(&cancelled, nil)
		f.schedules.On("GetByIDForUpdate", mock.Anything, f.schedule.ID).Return(f.schedule, nil)

		_, err := f.svc.Book(context.Background(), f.actor, f.schedule.ID)
		assert.ErrorIs(t, err, ErrNoActiveMembership)
		f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("cancelled schedule", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 0)
		f.schedule.Cancelled = true
		f.schedules.On("GetByID", mock.Anything, f.schedule.ID).Return(f.schedule, nil)

		_, err := f.svc.Book(context.Background(), f.actor, f.schedule.ID)
		assert.ErrorIs(t, err, ErrScheduleUnavailable)
	})

	t.Run("class already started", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 0)
		f.schedule.StartsAt = testNow.Add(-time.Minute)
		f.schedules.On("GetByID", mock.Anything, f.schedule.ID).Return(f.schedule, nil)

		_, err := f.svc.Book(context.Background(), f.actor, f.schedule.ID)
		assert.ErrorIs(t, err, ErrScheduleUnavailable)
	})

	t.Run("no membership", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 0)
		f.schedules.On("GetByID", mock.Anything, f.schedule.ID).Return(f.schedule, nil)
		f.memberships.On("FindActiveAt", mock.Anything, f.actor.UserID, f.gym.ID, f.schedule.StartsAt).
			Return(nil, store.ErrMembershipNotFound)

		_, err := f.svc.Book(context.Background(), f.actor, f.schedule.ID)
		assert.ErrorIs(t, err, ErrNoActiveMembership)
	})

	t.Run("already booked", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 0)
		f.expectLocks()
		f.bookings.On("FindActive", mock.Anything, f.actor.UserID, f.schedule.ID).Return(&domain.Booking{ID: uuid.New()}, nil)

		_, err := f.svc.Book(context.Background(), f.actor, f.schedule.ID)
		assert.ErrorIs(t, err, ErrAlreadyBooked)
	})

	t.Run("concurrent duplicate insert", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 0)
		f.expectLookups()
		f.bookings.On("Create", mock.Anything, mock.Anything).Return(store.ErrDuplicate)

		_, err := f.svc.Book(context.Background(), f.actor, f.schedule.ID)
		assert.ErrorIs(t, err, ErrAlreadyBooked)
	})

	t.Run("unknown schedule", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 0)
		f.schedules.On("GetByID", mock.Anything, mock.Anything).Return(nil, store.ErrScheduleNotFound)

		_, err := f.svc.Book(context.Background(), f.actor, uuid.New())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestBookingOutcome(t *testing.T) {
	t.Parallel()

	assert.Equal(t, metrics.OutcomeBooked, bookingOutcome(nil))
	assert.Equal(t, metrics.OutcomeClassFull, bookingOutcome(ErrClassFull))
	assert.Equal(t, metrics.OutcomeWeeklyLimit, bookingOutcome(ErrWeeklyLimitReached))
	assert.Equal(t, metrics.OutcomeUnavailable, bookingOutcome(store.ErrScheduleNotFound))
	assert.Equal(t, metrics.OutcomeBookingError, bookingOutcome(assert.AnError))
}

func TestBookingService_Cancel(t *testing.T) {
	t.Parallel()

	newBooking := func(f *bookingFixture, status domain.BookingStatus) *domain.Booking {
		return &domain.Booking{
			ID:           uuid.New(),
			UserID:       f.actor.UserID,
			ScheduleID:   f.schedule.ID,
			MembershipID: f.membership.ID,
			GymID:        f.gym.ID,
			Status:       status,
		}
	}

	t.Run("cancels and decrements", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 0)
		b := newBooking(f, domain.BookingActive)
		f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
		f.schedules.On("GetByIDForUpdate", mock.Anything, f.schedule.ID).Return(f.schedule, nil)
		f.bookings.On("UpdateStatus", mock.Anything, b.ID, domain.BookingCancelled).Return(nil)
		f.schedules.On("AdjustBookedCount", mock.Anything, f.schedule.ID, -1).Return(nil)

		got, err := f.svc.Cancel(context.Background(), f.actor, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingCancelled, got.Status)
		f.schedules.AssertExpectations(t)
	})

	t.Run("someone else's booking reads as missing", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 0)
		b := newBooking(f, domain.BookingActive)
		b.UserID = uuid.New()
		f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)

		_, err := f.svc.Cancel(context.Background(), f.actor, b.ID)
		assert.ErrorIs(t, err, store.ErrBookingNotFound)
	})

	t.Run("class already started", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 0)
		f.schedule.StartsAt = testNow.Add(-time.Hour)
		b := newBooking(f, domain.BookingActive)
		f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
		f.schedules.On("GetByIDForUpdate", mock.Anything, f.schedule.ID).Return(f.schedule, nil)

		_, err := f.svc.Cancel(context.Background(), f.actor, b.ID)
		assert.ErrorIs(t, err, ErrBookingNotCancellable)
	})

	t.Run("not active", func(t *testing.T) {
		t.Parallel()
		f := newBookingFixture(t, 0)
		b := newBooking(f, domain.BookingCancelled)
		f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
		f.schedules.On("GetByIDForUpdate", mock.Anything, f.schedule.ID).Return(f.schedule, nil)

		_, err := f.svc.Cancel(context.Background(), f.actor, b.ID)
		assert.ErrorIs(t, err, ErrBookingNotActive)
	})
}

func TestBookingService_MarkAttended(t *testing.T) {
	t.Parallel()

	newFixture := func(t *testing.T, status domain.BookingStatus) (*bookingFixture, Actor, *domain.Booking) {
		f := newBookingFixture(t, 0)
		gymOwner := Actor{UserID: f.gym.OwnerID, Role: domain.RoleGymOwner}
		b := &domain.Booking{ID: uuid.New(), ScheduleID: f.schedule.ID, GymID: f.gym.ID, Status: status}
		f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
		f.gyms.On("GetByID", mock.Anything, f.gym.ID).Return(f.gym, nil)
		return f, gymOwner, b
	}

	t.Run("marks attended under the schedule lock", func(t *testing.T) {
		t.Parallel()
		f, gymOwner, b := newFixture(t, domain.BookingActive)
		f.schedules.On("GetByIDForUpdate", mock.Anything, f.schedule.ID).Return(f.schedule, nil)
		f.bookings.On("UpdateStatus", mock.Anything, b.ID, domain.BookingAttended).Return(nil)

		got, err := f.svc.MarkAttended(context.Background(), gymOwner, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingAttended, got.Status)
		assert.Equal(t, 1, f.tx.Calls)
		f.schedules.AssertExpectations(t)

		// The stored booking is now attended and cannot be marked again.
		_, err = f.svc.MarkAttended(context.Background(), gymOwner, b.ID)
		assert.ErrorIs(t, err, ErrBookingNotActive)
		f.bookings.AssertNumberOfCalls(t, "UpdateStatus", 1)
	})

	t.Run("only the gym owner", func(t *testing.T) {
		t.Parallel()
		f, _, b := newFixture(t, domain.BookingActive)

		_, err := f.svc.MarkAttended(context.Background(), f.actor, b.ID)
		assert.ErrorIs(t, err, ErrForbidden)
		f.bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancelled booking", func(t *testing.T) {
		t.Parallel()
		f, gymOwner, b := newFixture(t, domain.BookingCancelled)
		f.schedules.On("GetByIDForUpdate", mock.Anything, f.schedule.ID).Return(f.schedule, nil)

		_, err := f.svc.MarkAttended(context.Background(), gymOwner, b.ID)
		assert.ErrorIs(t, err, ErrBookingNotActive)
		f.bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("status changed before the update", func(t *testing.T) {
		t.Parallel()
		f, gymOwner, b := newFixture(t, domain.BookingActive)
		f.schedules.On("GetByIDForUpdate", mock.Anything, f.schedule.ID).Return(f.schedule, nil)
		f.bookings.On("UpdateStatus", mock.Anything, b.ID, domain.BookingAttended).Return(store.ErrBookingNotFound)

		_, err := f.svc.MarkAttended(context.Background(), gymOwner, b.ID)
		assert.ErrorIs(t, err, ErrBookingNotActive)
	})
}

func TestBookingService_ListMine(t *testing.T) {
	t.Parallel()

	f := newBookingFixture(t, 0)
	bad := domain.BookingStatus("lost")
	_, _, err := f.svc.ListMine(context.Background(), f.actor, &bad, store.NewPage(1, 20))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	status := domain.BookingActive
	f.bookings.On("ListByUser", mock.Anything, f.actor.UserID, &status, store.NewPage(1, 20)).
		Return([]domain.Booking{{ID: uuid.New()}}, 1, nil)
	list, total, err := f.svc.ListMine(context.Background(), f.actor, &status, store.NewPage(1, 20))
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
}
