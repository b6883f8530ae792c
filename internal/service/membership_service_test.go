package service

import (
	"context"
	"testing"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/mocks"
	"github.com/fitdash/fitdash-api/internal/platform/payment"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSettler struct {
	mock.Mock
}

func (m *mockSettler) Settle(ctx context.Context, provider, ref string, status domain.PaymentStatus) error {
	return m.Called(ctx, provider, ref, status).Error(0)
}

type membershipFixture struct {
	actor       Actor
	gym         *domain.Gym
	plan        *domain.MembershipPlan
	tx          *mocks.TxRunner
	gyms        *mocks.MockGymStore
	plans       *mocks.MockPlanStore
	memberships *mocks.MockMembershipStore
	payments    *mocks.MockPaymentStore
	bookings    *mocks.MockBookingStore
	schedules   *mocks.MockScheduleStore
	provider    *stubProvider
	settler     *mockSettler
	svc         *membershipServiceImpl
}

func newMembershipFixture(t *testing.T) *membershipFixture {
	t.Helper()

	f := &membershipFixture{
		actor:       member(),
		tx:          mocks.NewTxRunner(),
		gyms:        &mocks.MockGymStore{},
		plans:       &mocks.MockPlanStore{},
		memberships: &mocks.MockMembershipStore{},
		payments:    &mocks.MockPaymentStore{},
		bookings:    &mocks.MockBookingStore{},
		schedules:   &mocks.MockScheduleStore{},
		provider:    &stubProvider{},
		settler:     &mockSettler{},
	}
	f.gym = gymOf(uuid.New())
	f.plan = planOf(f.gym.ID, 0)

	svc, err := NewMembershipService(f.tx, MembershipStores{
		Gyms:        f.gyms,
		Plans:       f.plans,
		Memberships: f.memberships,
		Payments:    f.payments,
		Bookings:    f.bookings,
		Schedules:   f.schedules,
	}, f.provider, f.settler, discardLogger())
	require.NoError(t, err)
	f.svc = svc.(*membershipServiceImpl)
	f.svc.now = clock
	return f
}

func (f *membershipFixture) expectCreate() {
	f.plans.On("GetByID", mock.Anything, f.plan.ID).Return(f.plan, nil)
	f.gyms.On("GetByID", mock.Anything, f.gym.ID).Return(f.gym, nil)
	f.memberships.On("HasOpen", mock.Anything, f.actor.UserID, f.gym.ID).Return(false, nil)
	f.memberships.On("Create", mock.Anything, mock.AnythingOfType("*domain.Membership")).Return(nil)
	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil)
}

func TestMembershipService_Purchase(t *testing.T) {
	t.Parallel()

	t.Run("pending intent returns client secret", func(t *testing.T) {
		t.Parallel()
		f := newMembershipFixture(t)
		f.expectCreate()
		f.provider.intent = &payment.Intent{Ref: "pi_1", ClientSecret: "pi_1_secret", Status: domain.PaymentPending}
		f.payments.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
			return p.ProviderRef == "pi_1"
		})).Return(nil)

		got, err := f.svc.Purchase(context.Background(), f.actor, f.plan.ID)
		require.NoError(t, err)
		assert.Equal(t, "pi_1_secret", got.ClientSecret)
		assert.Equal(t, domain.MembershipPending, got.Membership.Status)
		assert.Equal(t, domain.PaymentPending, got.Payment.Status)

		require.Len(t, f.provider.requests, 1)
		assert.Equal(t, int64(4990), f.provider.requests[0].Amount)
		assert.Equal(t, "eur", f.provider.requests[0].Currency)
		assert.Equal(t, got.Payment.ID, f.provider.requests[0].PaymentID)
		f.settler.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("synchronous settlement reloads state", func(t *testing.T) {
		t.Parallel()
		f := newMembershipFixture(t)
		f.expectCreate()
		f.provider.intent = &payment.Intent{Ref: "manual_1", Status: domain.PaymentSucceeded}
		f.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
		f.settler.On("Settle", mock.Anything, payment.ProviderStripe, "manual_1", domain.PaymentSucceeded).Return(nil)

		active := &domain.Membership{ID: uuid.New(), Status: domain.MembershipActive}
		settled := &domain.Payment{ID: uuid.New(), Status: domain.PaymentSucceeded}
		f.memberships.On("GetByID", mock.Anything, mock.Anything).Return(active, nil)
		f.payments.On("GetByID", mock.Anything, mock.Anything).Return(settled, nil)

		got, err := f.svc.Purchase(context.Background(), f.actor, f.plan.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.MembershipActive, got.Membership.Status)
		assert.Equal(t, domain.PaymentSucceeded, got.Payment.Status)
		f.settler.AssertExpectations(t)
	})

	t.Run("gym filled before settlement", func(t *testing.T) {
		t.Parallel()
		f := newMembershipFixture(t)
		f.expectCreate()
		f.provider.intent = &payment.Intent{Ref: "manual_1", Status: domain.PaymentSucceeded}
		f.payments.On("Update", mock.Anything, mock.Anything).Return(nil)
		f.settler.On("Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(ErrGymFull)

		_, err := f.svc.Purchase(context.Background(), f.actor, f.plan.ID)
		assert.ErrorIs(t, err, ErrGymFull)
	})

	t.Run("inactive plan", func(t *testing.T) {
		t.Parallel()
		f := newMembershipFixture(t)
		f.plan.Active = false
		f.plans.On("GetByID", mock.Anything, f.plan.ID).Return(f.plan, nil)

		_, err := f.svc.Purchase(context.Background(), f.actor, f.plan.ID)
		assert.ErrorIs(t, err, ErrPlanInactive)
	})

	t.Run("full gym", func(t *testing.T) {
		t.Parallel()
		f := newMembershipFixture(t)
		limit := 1
		f.gym.MaxMembers, f.gym.MemberCount = &limit, 1
		f.plans.On("GetByID", mock.Anything, f.plan.ID).Return(f.plan, nil)
		f.gyms.On("GetByID", mock.Anything, f.gym.ID).Return(f.gym, nil)

		_, err := f.svc.Purchase(context.Background(), f.actor, f.plan.ID)
		assert.ErrorIs(t, err, ErrGymFull)
		assert.Empty(t, f.provider.requests)
	})

	t.Run("existing membership", func(t *testing.T) {
		t.Parallel()
		f := newMembershipFixture(t)
		f.plans.On("GetByID", mock.Anything, f.plan.ID).Return(f.plan, nil)
		f.gyms.On("GetByID", mock.Anything, f.gym.ID).Return(f.gym, nil)
		f.memberships.On("HasOpen", mock.Anything, f.actor.UserID, f.gym.ID).Return(true, nil)

		_, err := f.svc.Purchase(context.Background(), f.actor, f.plan.ID)
		assert.ErrorIs(t, err, ErrMembershipExists)
	})

	t.Run("provider failure abandons the purchase", func(t *testing.T) {
		t.Parallel()
		f := newMembershipFixture(t)
		f.expectCreate()
		f.provider.intentErr = payment.ErrProvider
		f.payments.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
			return p.Status == domain.PaymentFailed
		})).Return(nil)
		f.memberships.On("Update", mock.Anything, mock.MatchedBy(func(m *domain.Membership) bool {
			return m.Status == domain.MembershipCancelled
		})).Return(nil)

		_, err := f.svc.Purchase(context.Background(), f.actor, f.plan.ID)
		assert.ErrorIs(t, err, payment.ErrProvider)
		f.payments.AssertExpectations(t)
		f.memberships.AssertExpectations(t)
		assert.Equal(t, 2, f.tx.Calls)
	})

	t.Run("failure to store the intent abandons the purchase", func(t *testing.T) {
		t.Parallel()
		f := newMembershipFixture(t)
		f.expectCreate()
		f.provider.intent = &payment.Intent{Ref: "pi_1", ClientSecret: "pi_1_secret", Status: domain.PaymentPending}
		f.payments.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
			return p.Status == domain.PaymentPending
		})).Return(store.ErrInvalidEntity).Once()
		f.payments.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
			return p.Status == domain.PaymentFailed && p.ProviderRef == "pi_1"
		})).Return(nil).Once()
		f.memberships.On("Update", mock.Anything, mock.MatchedBy(func(m *domain.Membership) bool {
			return m.Status == domain.MembershipCancelled
		})).Return(nil)

		got, err := f.svc.Purchase(context.Background(), f.actor, f.plan.ID)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.Nil(t, got)
		f.payments.AssertExpectations(t)
		f.memberships.AssertExpectations(t)
		assert.Equal(t, 2, f.tx.Calls)
	})
}

func TestMembershipService_Cancel(t *testing.T) {
	t.Parallel()

	activeMembership := func(f *membershipFixture) *domain.Membership {
		start, end := testNow.Add(-time.Hour), testNow.Add(24*time.Hour)
		return &domain.Membership{
			ID:        uuid.New(),
			UserID:    f.actor.UserID,
			GymID:     f.gym.ID,
			PlanID:    f.plan.ID,
			Status:    domain.MembershipActive,
			StartDate: &start,
			EndDate:   &end,
		}
	}

	t.Run("cascades to bookings and counters", func(t *testing.T) {
		t.Parallel()
		f := newMembershipFixture(t)
		m := activeMembership(f)
		s1, s2 := uuid.New(), uuid.New()

		f.memberships.On("GetByIDForUpdate", mock.Anything, m.ID).Return(m, nil)
		f.memberships.On("Update", mock.Anything, m).Return(nil)
		f.gyms.On("AdjustMemberCount", mock.Anything, f.gym.ID, -1).Return(nil)
		f.bookings.On("CancelUpcomingForMembership", mock.Anything, m.ID, testNow).Return([]uuid.UUID{s1, s2}, nil)
		f.schedules.On("AdjustBookedCount", mock.Anything, s1, -1).Return(nil)
		f.schedules.On("AdjustBookedCount", mock.Anything, s2, -1).Return(nil)

		got, err := f.svc.Cancel(context.Background(), f.actor, m.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.MembershipCancelled, got.Status)
		f.gyms.AssertExpectations(t)
		f.schedules.AssertExpectations(t)
	})

	t.Run("pending membership leaves the counter alone", func(t *testing.T) {
		t.Parallel()
		f := newMembershipFixture(t)
		m := domain.NewMembership(f.actor.UserID, f.plan)

		f.memberships.On("GetByIDForUpdate", mock.Anything, m.ID).Return(m, nil)
		f.memberships.On("Update", mock.Anything, m).Return(nil)
		f.bookings.On("CancelUpcomingForMembership", mock.Anything, m.ID, testNow).Return(nil, nil)

		_, err := f.svc.Cancel(context.Background(), f.actor, m.ID)
		require.NoError(t, err)
		f.gyms.AssertNotCalled(t, "AdjustMemberCount", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("other user's membership", func(t *testing.T) {
		t.Parallel()
		f := newMembershipFixture(t)
		m := activeMembership(f)
		m.UserID = uuid.New()
		f.memberships.On("GetByIDForUpdate", mock.Anything, m.ID).Return(m, nil)

		_, err := f.svc.Cancel(context.Background(), f.actor, m.ID)
		assert.ErrorIs(t, err, store.ErrMembershipNotFound)
	})

	t.Run("already expired", func(t *testing.T) {
		t.Parallel()
		f := newMembershipFixture(t)
		m := activeMembership(f)
		m.Status = domain.MembershipExpired
		f.memberships.On("GetByIDForUpdate", mock.Anything, m.ID).Return(m, nil)

		_, err := f.svc.Cancel(context.Background(), f.actor, m.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestMembershipService_Get(t *testing.T) {
	t.Parallel()

	f := newMembershipFixture(t)
	m := domain.NewMembership(f.actor.UserID, f.plan)
	f.memberships.On("GetByID", mock.Anything, m.ID).Return(m, nil)
	f.gyms.On("GetByID", mock.Anything, f.gym.ID).Return(f.gym, nil)

	got, err := f.svc.Get(context.Background(), f.actor, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	_, err = f.svc.Get(context.Background(), Actor{UserID: f.gym.OwnerID, Role: domain.RoleGymOwner}, m.ID)
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), member(), m.ID)
	assert.ErrorIs(t, err, store.ErrMembershipNotFound)
}

func TestMembershipService_ExpireDue(t *testing.T) {
	t.Parallel()

	f := newMembershipFixture(t)
	otherGym := uuid.New()
	f.memberships.On("ExpireDue", mock.Anything, testNow).Return([]domain.Membership{
		{ID: uuid.New(), GymID: f.gym.ID},
		{ID: uuid.New(), GymID: otherGym},
	}, nil)
	f.gyms.On("AdjustMemberCount", mock.Anything, f.gym.ID, -1).Return(nil)
	f.gyms.On("AdjustMemberCount", mock.Anything, otherGym, -1).Return(nil)

	n, err := f.svc.ExpireDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	f.gyms.AssertExpectations(t)
}

func TestMembershipService_ListGymMembers(t *testing.T) {
	t.Parallel()

	f := newMembershipFixture(t)
	f.gyms.On("GetByID", mock.Anything, f.gym.ID).Return(f.gym, nil)
	page := store.NewPage(1, 20)
	f.memberships.On("ListActiveByGym", mock.Anything, f.gym.ID, page).Return([]domain.Membership{{ID: uuid.New()}}, 1, nil)

	_, _, err := f.svc.ListGymMembers(context.Background(), f.actor, f.gym.ID, page)
	assert.ErrorIs(t, err, ErrForbidden)

	list, total, err := f.svc.ListGymMembers(context.Background(), admin(), f.gym.ID, page)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
}
