package service

import (
	"context"
	"testing"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/mocks"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newGymService(t *testing.T) (*gymServiceImpl, *mocks.MockGymStore, *mocks.MockPlanStore) {
	t.Helper()
	gyms, plans := &mocks.MockGymStore{}, &mocks.MockPlanStore{}
	svc, err := NewGymService(mocks.NewTxRunner(), gyms, plans, "EUR", discardLogger())
	require.NoError(t, err)
	return svc.(*gymServiceImpl), gyms, plans
}

func TestGymService_CreateGym(t *testing.T) {
	t.Parallel()

	svc, gyms, _ := newGymService(t)
	gyms.On("Create", mock.Anything, mock.AnythingOfType("*domain.Gym")).Return(nil)

	_, err := svc.CreateGym(context.Background(), member(), GymInput{Name: "Gym", Address: "Street"})
	assert.ErrorIs(t, err, ErrForbidden)

	o := owner()
	gym, err := svc.CreateGym(context.Background(), o, GymInput{Name: " Gym ", Address: "Street"})
	require.NoError(t, err)
	assert.Equal(t, o.UserID, gym.OwnerID)
	assert.Equal(t, "Gym", gym.Name)
	assert.Nil(t, gym.MaxMembers)

	zero := 0
	_, err = svc.CreateGym(context.Background(), o, GymInput{Name: "Gym", Address: "Street", MaxMembers: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidMaxMembers)
}

func TestGymService_UpdateGym(t *testing.T) {
	t.Parallel()

	t.Run("owner updates cap", func(t *testing.T) {
		t.Parallel()
		svc, gyms, _ := newGymService(t)
		o := owner()
		gym := gymOf(o.UserID)
		gym.MemberCount = 4
		gyms.On("GetByIDForUpdate", mock.Anything, gym.ID).Return(gym, nil)
		gyms.On("Update", mock.Anything, gym).Return(nil)

		limit := 10
		got, err := svc.UpdateGym(context.Background(), o, gym.ID, GymUpdate{MaxMembers: &limit})
		require.NoError(t, err)
		assert.Equal(t, 10, *got.MaxMembers)

		got, err = svc.UpdateGym(context.Background(), o, gym.ID, GymUpdate{Unlimited: true})
		require.NoError(t, err)
		assert.Nil(t, got.MaxMembers)
	})

	t.Run("cap below member count", func(t *testing.T) {
		t.Parallel()
		svc, gyms, _ := newGymService(t)
		o := owner()
		gym := gymOf(o.UserID)
		gym.MemberCount = 4
		gyms.On("GetByIDForUpdate", mock.Anything, gym.ID).Return(gym, nil)

		limit := 3
		_, err := svc.UpdateGym(context.Background(), o, gym.ID, GymUpdate{MaxMembers: &limit})
		assert.ErrorIs(t, err, domain.ErrInvalidMaxMembers)
	})

	t.Run("not the owner", func(t *testing.T) {
		t.Parallel()
		svc, gyms, _ := newGymService(t)
		gym := gymOf(uuid.New())
		gyms.On("GetByIDForUpdate", mock.Anything, gym.ID).Return(gym, nil)

		_, err := svc.UpdateGym(context.Background(), owner(), gym.ID, GymUpdate{})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestGymService_ListPlans(t *testing.T) {
	t.Parallel()

	svc, gyms, plans := newGymService(t)
	o := owner()
	gym := gymOf(o.UserID)
	gyms.On("GetByID", mock.Anything, gym.ID).Return(gym, nil)
	plans.On("ListByGym", mock.Anything, gym.ID, false).Return([]domain.MembershipPlan{}, nil)
	plans.On("ListByGym", mock.Anything, gym.ID, true).Return([]domain.MembershipPlan{{}, {}}, nil)

	// Anonymous and non-owner callers never see inactive plans.
	list, err := svc.ListPlans(context.Background(), nil, gym.ID, true)
	require.NoError(t, err)
	assert.Empty(t, list)

	stranger := member()
	list, err = svc.ListPlans(context.Background(), &stranger, gym.ID, true)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = svc.ListPlans(context.Background(), &o, gym.ID, true)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestGymService_CreatePlan(t *testing.T) {
	t.Parallel()

	svc, gyms, plans := newGymService(t)
	o := owner()
	gym := gymOf(o.UserID)
	gyms.On("GetByID", mock.Anything, gym.ID).Return(gym, nil)
	plans.On("Create", mock.Anything, mock.AnythingOfType("*domain.MembershipPlan")).Return(nil)

	plan, err := svc.CreatePlan(context.Background(), o, gym.ID, PlanInput{
		Name:         "Monthly",
		Price:        decimal.RequireFromString("49.90"),
		DurationDays: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "eur", plan.Currency)
	assert.True(t, plan.Active)

	_, err = svc.CreatePlan(context.Background(), o, gym.ID, PlanInput{
		Name:         "Broken",
		Price:        decimal.NewFromInt(-1),
		DurationDays: 30,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestGymService_DeletePlan(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T, inUse bool) (*gymServiceImpl, *mocks.MockPlanStore, Actor, *domain.MembershipPlan) {
		svc, gyms, plans := newGymService(t)
		o := owner()
		gym := gymOf(o.UserID)
		plan := planOf(gym.ID, 0)
		gyms.On("GetByID", mock.Anything, gym.ID).Return(gym, nil)
		plans.On("GetByID", mock.Anything, plan.ID).Return(plan, nil)
		plans.On("InUse", mock.Anything, plan.ID).Return(inUse, nil)
		return svc, plans, o, plan
	}

	t.Run("unused plan is deleted", func(t *testing.T) {
		t.Parallel()
		svc, plans, o, plan := setup(t, false)
		plans.On("Delete", mock.Anything, plan.ID).Return(nil)

		deactivated, err := svc.DeletePlan(context.Background(), o, plan.ID)
		require.NoError(t, err)
		assert.False(t, deactivated)
		plans.AssertExpectations(t)
	})

	t.Run("referenced plan is deactivated", func(t *testing.T) {
		t.Parallel()
		svc, plans, o, plan := setup(t, true)
		plans.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.MembershipPlan) bool { return !p.Active })).Return(nil)

		deactivated, err := svc.DeletePlan(context.Background(), o, plan.ID)
		require.NoError(t, err)
		assert.True(t, deactivated)
		plans.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestGymService_ListGyms(t *testing.T) {
	t.Parallel()

	svc, gyms, _ := newGymService(t)
	page := store.NewPage(2, 5)
	gyms.On("List", mock.Anything, store.GymFilter{Search: "iron"}, page).Return([]domain.Gym{{}}, 6, nil)

	list, total, err := svc.ListGyms(context.Background(), store.GymFilter{Search: "  iron "}, page)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 6, total)
}
