package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/service"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGymService struct {
	service.GymService
	mock.Mock
}

func (m *mockGymService) ListGyms(ctx context.Context, filter store.GymFilter, page store.Page) ([]domain.Gym, int, error) {
	args := m.Called(ctx, filter, page)
	list, _ := args.Get(0).([]domain.Gym)
	return list, args.Int(1), args.Error(2)
}

func (m *mockGymService) CreateGym(ctx context.Context, actor service.Actor, in service.GymInput) (*domain.Gym, error) {
	args := m.Called(ctx, actor, in)
	g, _ := args.Get(0).(*domain.Gym)
	return g, args.Error(1)
}

func (m *mockGymService) UpdateGym(ctx context.Context, actor service.Actor, id uuid.UUID, in service.GymUpdate) (*domain.Gym, error) {
	args := m.Called(ctx, actor, id, in)
	g, _ := args.Get(0).(*domain.Gym)
	return g, args.Error(1)
}

func (m *mockGymService) ListPlans(
	ctx context.Context,
	actor *service.Actor,
	gymID uuid.UUID,
	includeInactive bool,
) ([]domain.MembershipPlan, error) {
	args := m.Called(ctx, actor, gymID, includeInactive)
	list, _ := args.Get(0).([]domain.MembershipPlan)
	return list, args.Error(1)
}

func (m *mockGymService) CreatePlan(
	ctx context.Context,
	actor service.Actor,
	gymID uuid.UUID,
	in service.PlanInput,
) (*domain.MembershipPlan, error) {
	args := m.Called(ctx, actor, gymID, in)
	p, _ := args.Get(0).(*domain.MembershipPlan)
	return p, args.Error(1)
}

func (m *mockGymService) DeletePlan(ctx context.Context, actor service.Actor, planID uuid.UUID) (bool, error) {
	args := m.Called(ctx, actor, planID)
	return args.Bool(0), args.Error(1)
}

type mockMembershipService struct {
	service.MembershipService
	mock.Mock
}

func (m *mockMembershipService) Purchase(ctx context.Context, actor service.Actor, planID uuid.UUID) (*service.Purchase, error) {
	args := m.Called(ctx, actor, planID)
	p, _ := args.Get(0).(*service.Purchase)
	return p, args.Error(1)
}

func (m *mockMembershipService) ListGymMembers(
	ctx context.Context,
	actor service.Actor,
	gymID uuid.UUID,
	page store.Page,
) ([]domain.Membership, int, error) {
	args := m.Called(ctx, actor, gymID, page)
	list, _ := args.Get(0).([]domain.Membership)
	return list, args.Int(1), args.Error(2)
}

func gymRouter(gyms *mockGymService, memberships *mockMembershipService, actor *service.Actor) http.Handler {
	h := NewGymHandler(gyms, memberships)
	mh := NewMembershipHandler(memberships)
	return newTestRouter(actor, func(r chi.Router) {
		r.Get("/gyms", h.ListGyms)
		r.Post("/gyms", h.CreateGym)
		r.Patch("/gyms/{id}", h.UpdateGym)
		r.Get("/gyms/{id}/plans", h.ListPlans)
		r.Post("/gyms/{id}/plans", h.CreatePlan)
		r.Delete("/plans/{id}", h.DeletePlan)
		r.Get("/gyms/{id}/members", h.ListMembers)
		r.Post("/memberships", mh.Purchase)
	})
}

func TestGymHandler_Gyms(t *testing.T) {
	t.Parallel()

	t.Run("list passes search", func(t *testing.T) {
		gyms := &mockGymService{}
		gyms.On("ListGyms", mock.Anything, store.GymFilter{Search: "iron"}, store.NewPage(1, 10)).
			Return([]domain.Gym{{Name: "Iron Temple"}}, 1, nil)

		rec, env := do(t, gymRouter(gyms, &mockMembershipService{}, nil), http.MethodGet, "/gyms?search=iron&limit=10", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 10, env.Pagination.Limit)
		gyms.AssertExpectations(t)
	})

	t.Run("create with member cap", func(t *testing.T) {
		actor := ownerActor()
		gyms := &mockGymService{}
		gyms.On("CreateGym", mock.Anything, *actor, mock.MatchedBy(func(in service.GymInput) bool {
			return in.Name == "Iron Temple" && in.MaxMembers != nil && *in.MaxMembers == 150
		})).Return(&domain.Gym{ID: uuid.New(), OwnerID: actor.UserID, Name: "Iron Temple"}, nil)

		rec, _ := do(t, gymRouter(gyms, &mockMembershipService{}, actor), http.MethodPost, "/gyms",
			map[string]any{"name": "Iron Temple", "address": "1 Main St", "max_members": 150})
		assert.Equal(t, http.StatusCreated, rec.Code)
		gyms.AssertExpectations(t)
	})

	t.Run("create with zero cap is rejected", func(t *testing.T) {
		rec, env := do(t, gymRouter(&mockGymService{}, &mockMembershipService{}, ownerActor()), http.MethodPost, "/gyms",
			map[string]any{"name": "Iron Temple", "address": "1 Main St", "max_members": 0})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, env.Details, 1)
		assert.Equal(t, "max_members", env.Details[0].Field)
	})

	t.Run("member creating a gym", func(t *testing.T) {
		actor := memberActor()
		gyms := &mockGymService{}
		gyms.On("CreateGym", mock.Anything, *actor, mock.Anything).Return(nil, service.ErrForbidden)

		rec, _ := do(t, gymRouter(gyms, &mockMembershipService{}, actor), http.MethodPost, "/gyms",
			map[string]any{"name": "Iron Temple", "address": "1 Main St"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("remove member cap", func(t *testing.T) {
		actor := ownerActor()
		id := uuid.New()
		gyms := &mockGymService{}
		gyms.On("UpdateGym", mock.Anything, *actor, id, service.GymUpdate{Unlimited: true}).
			Return(&domain.Gym{ID: id}, nil)

		rec, _ := do(t, gymRouter(gyms, &mockMembershipService{}, actor), http.MethodPatch, "/gyms/"+id.String(),
			map[string]any{"unlimited_members": true})
		assert.Equal(t, http.StatusOK, rec.Code)
		gyms.AssertExpectations(t)
	})
}

func TestGymHandler_Plans(t *testing.T) {
	t.Parallel()

	gymID := uuid.New()

	t.Run("anonymous listing", func(t *testing.T) {
		gyms := &mockGymService{}
		gyms.On("ListPlans", mock.Anything, (*service.Actor)(nil), gymID, false).Return([]domain.MembershipPlan{}, nil)

		rec, _ := do(t, gymRouter(gyms, &mockMembershipService{}, nil), http.MethodGet, "/gyms/"+gymID.String()+"/plans", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		gyms.AssertExpectations(t)
	})

	t.Run("owner includes inactive", func(t *testing.T) {
		actor := ownerActor()
		gyms := &mockGymService{}
		gyms.On("ListPlans", mock.Anything, actor, gymID, true).Return([]domain.MembershipPlan{}, nil)

		rec, _ := do(t, gymRouter(gyms, &mockMembershipService{}, actor), http.MethodGet,
			"/gyms/"+gymID.String()+"/plans?include_inactive=true", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		gyms.AssertExpectations(t)
	})

	t.Run("create decodes price", func(t *testing.T) {
		actor := ownerActor()
		gyms := &mockGymService{}
		gyms.On("CreatePlan", mock.Anything, *actor, gymID, mock.MatchedBy(func(in service.PlanInput) bool {
			return in.Price.Equal(decimal.RequireFromString("49.90")) && in.DurationDays == 30 && in.WeeklyBookingLimit == 3
		})).Return(&domain.MembershipPlan{ID: uuid.New()}, nil)

		rec, _ := do(t, gymRouter(gyms, &mockMembershipService{}, actor), http.MethodPost, "/gyms/"+gymID.String()+"/plans",
			map[string]any{"name": "Monthly", "price": "49.90", "duration_days": 30, "weekly_booking_limit": 3})
		assert.Equal(t, http.StatusCreated, rec.Code)
		gyms.AssertExpectations(t)
	})

	t.Run("delete reports deactivation", func(t *testing.T) {
		actor := ownerActor()
		planID := uuid.New()
		gyms := &mockGymService{}
		gyms.On("DeletePlan", mock.Anything, *actor, planID).Return(true, nil)

		rec, env := do(t, gymRouter(gyms, &mockMembershipService{}, actor), http.MethodDelete, "/plans/"+planID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"deactivated":true}`, string(env.Data))
	})
}

func TestGymHandler_MembersAndPurchase(t *testing.T) {
	t.Parallel()

	t.Run("members are paginated", func(t *testing.T) {
		actor := ownerActor()
		gymID := uuid.New()
		memberships := &mockMembershipService{}
		memberships.On("ListGymMembers", mock.Anything, *actor, gymID, store.NewPage(3, 20)).
			Return([]domain.Membership{{ID: uuid.New()}}, 41, nil)

		rec, env := do(t, gymRouter(&mockGymService{}, memberships, actor), http.MethodGet,
			"/gyms/"+gymID.String()+"/members?page=3", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 3, env.Pagination.TotalPages)
	})

	t.Run("purchase returns client secret", func(t *testing.T) {
		actor := memberActor()
		planID := uuid.New()
		memberships := &mockMembershipService{}
		memberships.On("Purchase", mock.Anything, *actor, planID).Return(&service.Purchase{
			Membership:   &domain.Membership{ID: uuid.New(), Status: domain.MembershipPending},
			Payment:      &domain.Payment{ID: uuid.New(), Status: domain.PaymentPending},
			ClientSecret: "pi_1_secret_2",
		}, nil)

		rec, env := do(t, gymRouter(&mockGymService{}, memberships, actor), http.MethodPost, "/memberships",
			map[string]string{"plan_id": planID.String()})
		require.Equal(t, http.StatusCreated, rec.Code)
		var purchase service.Purchase
		decodeData(t, env, &purchase)
		assert.Equal(t, "pi_1_secret_2", purchase.ClientSecret)
		assert.Equal(t, domain.MembershipPending, purchase.Membership.Status)
	})

	t.Run("gym full", func(t *testing.T) {
		actor := memberActor()
		memberships := &mockMembershipService{}
		memberships.On("Purchase", mock.Anything, *actor, mock.Anything).Return(nil, service.ErrGymFull)

		rec, env := do(t, gymRouter(&mockGymService{}, memberships, actor), http.MethodPost, "/memberships",
			map[string]string{"plan_id": uuid.NewString()})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "This gym has reached its member limit", env.Error)
	})
}
