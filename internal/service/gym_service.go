package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GymInput carries the fields of a new gym.
type GymInput struct {
	Name        string
	Address     string
	Description string
	MaxMembers  *int
}

// GymUpdate carries the optional fields of a gym change.
type GymUpdate struct {
	Name        *string
	Address     *string
	Description *string
	MaxMembers  *int
	// Unlimited removes the member cap. It wins over MaxMembers.
	Unlimited bool
}

// PlanInput carries the fields of a new membership plan.
type PlanInput struct {
	Name               string
	Description        string
	Price              decimal.Decimal
	Currency           string
	DurationDays       int
	WeeklyBookingLimit int
}

// PlanUpdate carries the optional fields of a plan change.
type PlanUpdate struct {
	Name               *string
	Description        *string
	Price              *decimal.Decimal
	DurationDays       *int
	WeeklyBookingLimit *int
	Active             *bool
}

// GymService manages gyms and their membership plans.
type GymService interface {
	ListGyms(ctx context.Context, filter store.GymFilter, page store.Page) ([]domain.Gym, int, error)
	GetGym(ctx context.Context, id uuid.UUID) (*domain.Gym, error)
	CreateGym(ctx context.Context, actor Actor, in GymInput) (*domain.Gym, error)
	UpdateGym(ctx context.Context, actor Actor, id uuid.UUID, in GymUpdate) (*domain.Gym, error)
	DeleteGym(ctx context.Context, actor Actor, id uuid.UUID) error

	// ListPlans returns the gym's active plans. Inactive plans are included
	// only when includeInactive is set and actor manages the gym.
	ListPlans(ctx context.Context, actor *Actor, gymID uuid.UUID, includeInactive bool) ([]domain.MembershipPlan, error)
	CreatePlan(ctx context.Context, actor Actor, gymID uuid.UUID, in PlanInput) (*domain.MembershipPlan, error)
	UpdatePlan(ctx context.Context, actor Actor, planID uuid.UUID, in PlanUpdate) (*domain.MembershipPlan, error)

	// DeletePlan removes a plan, or deactivates it when memberships reference it.
	// deactivated reports which of the two happened.
	DeletePlan(ctx context.Context, actor Actor, planID uuid.UUID) (deactivated bool, err error)
}

type gymServiceImpl struct {
	tx              store.TxRunner
	gyms            store.GymStore
	plans           store.PlanStore
	defaultCurrency string
	logger          *slog.Logger
}

// NewGymService creates a GymService. defaultCurrency is used for plans
// created without a currency.
func NewGymService(
	tx store.TxRunner,
	gyms store.GymStore,
	plans store.PlanStore,
	defaultCurrency string,
	logger *slog.Logger,
) (GymService, error) {
	if tx == nil || gyms == nil || plans == nil {
		return nil, domain.NewValidationError("dependencies", "gym service dependencies cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &gymServiceImpl{
		tx:              tx,
		gyms:            gyms,
		plans:           plans,
		defaultCurrency: strings.ToLower(defaultCurrency),
		logger:          logger.With(slog.String("component", "gym_service")),
	}, nil
}

func (s *gymServiceImpl) ListGyms(ctx context.Context, filter store.GymFilter, page store.Page) ([]domain.Gym, int, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.gyms.List(ctx, filter, page)
}

func (s *gymServiceImpl) GetGym(ctx context.Context, id uuid.UUID) (*domain.Gym, error) {
	return s.gyms.GetByID(ctx, id)
}

func (s *gymServiceImpl) CreateGym(ctx context.Context, actor Actor, in GymInput) (*domain.Gym, error) {
	if !actor.HasRole(domain.RoleGymOwner) {
		return nil, ErrForbidden
	}

	gym, err := domain.NewGym(actor.UserID, in.Name, in.Address, in.Description, in.MaxMembers)
	if err != nil {
		return nil, err
	}
	if err := s.gyms.Create(ctx, gym); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("gym created",
		slog.String("gym_id", gym.ID.String()),
		slog.String("owner_id", actor.UserID.String()))
	return gym, nil
}

func (s *gymServiceImpl) UpdateGym(ctx context.Context, actor Actor, id uuid.UUID, in GymUpdate) (*domain.Gym, error) {
	var gym *domain.Gym
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		gyms := s.gyms.WithTx(tx)

		current, err := gyms.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanManage(current.OwnerID) {
			return ErrForbidden
		}

		if in.Name != nil {
			current.Name = strings.TrimSpace(*in.Name)
		}
		if in.Address != nil {
			current.Address = strings.TrimSpace(*in.Address)
		}
		if in.Description != nil {
			current.Description = *in.Description
		}
		switch {
		case in.Unlimited:
			current.MaxMembers = nil
		case in.MaxMembers != nil:
			if *in.MaxMembers < current.MemberCount {
				return domain.NewValidationError("max_members",
					"max members cannot be below the current member count", domain.ErrInvalidMaxMembers)
			}
			current.MaxMembers = in.MaxMembers
		}
		if err := current.Validate(); err != nil {
			return err
		}

		if err := gyms.Update(ctx, current); err != nil {
			return err
		}
		gym = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return gym, nil
}

func (s *gymServiceImpl) DeleteGym(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := ownedGym(ctx, s.gyms, actor, id); err != nil {
		return err
	}
	if err := s.gyms.Delete(ctx, id); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("gym deleted",
		slog.String("gym_id", id.String()),
		slog.String("actor_id", actor.UserID.String()))
	return nil
}

func (s *gymServiceImpl) ListPlans(
	ctx context.Context,
	actor *Actor,
	gymID uuid.UUID,
	includeInactive bool,
) ([]domain.MembershipPlan, error) {
	gym, err := s.gyms.GetByID(ctx, gymID)
	if err != nil {
		return nil, err
	}
	if includeInactive && (actor == nil || !actor.CanManage(gym.OwnerID)) {
		includeInactive = false
	}
	return s.plans.ListByGym(ctx, gymID, includeInactive)
}

func (s *gymServiceImpl) CreatePlan(ctx context.Context, actor Actor, gymID uuid.UUID, in PlanInput) (*domain.MembershipPlan, error) {
	if _, err := ownedGym(ctx, s.gyms, actor, gymID); err != nil {
		return nil, err
	}

	currency := in.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	plan, err := domain.NewMembershipPlan(gymID, in.Name, in.Description, in.Price, currency, in.DurationDays, in.WeeklyBookingLimit)
	if err != nil {
		return nil, err
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("membership plan created",
		slog.String("plan_id", plan.ID.String()),
		slog.String("gym_id", gymID.String()))
	return plan, nil
}

// planForOwner loads a plan and checks that actor manages its gym.
func (s *gymServiceImpl) planForOwner(
	ctx context.Context,
	gyms store.GymStore,
	plans store.PlanStore,
	actor Actor,
	planID uuid.UUID,
) (*domain.MembershipPlan, error) {
	plan, err := plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if _, err := ownedGym(ctx, gyms, actor, plan.GymID); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *gymServiceImpl) UpdatePlan(ctx context.Context, actor Actor, planID uuid.UUID, in PlanUpdate) (*domain.MembershipPlan, error) {
	plan, err := s.planForOwner(ctx, s.gyms, s.plans, actor, planID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		plan.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		plan.Description = *in.Description
	}
	if in.Price != nil {
		plan.Price = *in.Price
	}
	if in.DurationDays != nil {
		plan.DurationDays = *in.DurationDays
	}
	if in.WeeklyBookingLimit != nil {
		plan.WeeklyBookingLimit = *in.WeeklyBookingLimit
	}
	if in.Active != nil {
		plan.Active = *in.Active
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *gymServiceImpl) DeletePlan(ctx context.Context, actor Actor, planID uuid.UUID) (bool, error) {
	deactivated := false
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		plans := s.plans.WithTx(tx)

		plan, err := s.planForOwner(ctx, s.gyms.WithTx(tx), plans, actor, planID)
		if err != nil {
			return err
		}

		inUse, err := plans.InUse(ctx, planID)
		if err != nil {
			return err
		}
		if !inUse {
			return plans.Delete(ctx, planID)
		}

		plan.Active = false
		deactivated = true
		return plans.Update(ctx, plan)
	})
	if err != nil {
		return false, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("membership plan removed",
		slog.String("plan_id", planID.String()),
		slog.Bool("deactivated", deactivated))
	return deactivated, nil
}
