package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/platform/payment"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/fitdash/fitdash-api/internal/task"
	"github.com/google/uuid"
)

// Purchase is the result of buying a membership plan.
type Purchase struct {
	Membership *domain.Membership `json:"membership"`
	Payment    *domain.Payment    `json:"payment"`
	// ClientSecret lets the client confirm the payment with the provider.
	// It is empty when the provider settled the payment synchronously.
	ClientSecret string `json:"client_secret,omitempty"`
}

// MembershipService sells, lists and cancels memberships.
type MembershipService interface {
	// Purchase creates a pending membership and payment for plan and asks the
	// payment provider for an intent.
	Purchase(ctx context.Context, actor Actor, planID uuid.UUID) (*Purchase, error)

	// Get returns a membership to its holder or to the gym's owner.
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*domain.Membership, error)
	ListMine(ctx context.Context, actor Actor, page store.Page) ([]domain.Membership, int, error)

	// Cancel cancels a membership and the holder's upcoming bookings under it.
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*domain.Membership, error)

	// ListGymMembers returns a gym's active memberships to its owner.
	ListGymMembers(ctx context.Context, actor Actor, gymID uuid.UUID, page store.Page) ([]domain.Membership, int, error)

	// ExpireDue expires active memberships past their end date and returns
	// how many changed.
	ExpireDue(ctx context.Context) (int, error)
}

type membershipServiceImpl struct {
	tx          store.TxRunner
	gyms        store.GymStore
	plans       store.PlanStore
	memberships store.MembershipStore
	payments    store.PaymentStore
	bookings    store.BookingStore
	schedules   store.ScheduleStore
	provider    payment.Provider
	settler     task.PaymentSettler
	logger      *slog.Logger
	now         func() time.Time
}

// MembershipStores groups the stores a MembershipService works on.
type MembershipStores struct {
	Gyms        store.GymStore
	Plans       store.PlanStore
	Memberships store.MembershipStore
	Payments    store.PaymentStore
	Bookings    store.BookingStore
	Schedules   store.ScheduleStore
}

func (s MembershipStores) complete() bool {
	return s.Gyms != nil && s.Plans != nil && s.Memberships != nil &&
		s.Payments != nil && s.Bookings != nil && s.Schedules != nil
}

// NewMembershipService creates a MembershipService. settler applies outcomes
// the provider reports synchronously.
func NewMembershipService(
	tx store.TxRunner,
	stores MembershipStores,
	provider payment.Provider,
	settler task.PaymentSettler,
	logger *slog.Logger,
) (MembershipService, error) {
	if tx == nil || !stores.complete() {
		return nil, domain.NewValidationError("dependencies", "membership service stores cannot be nil", domain.ErrValidation)
	}
	if provider == nil || settler == nil {
		return nil, domain.NewValidationError("dependencies", "payment provider and settler cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &membershipServiceImpl{
		tx:          tx,
		gyms:        stores.Gyms,
		plans:       stores.Plans,
		memberships: stores.Memberships,
		payments:    stores.Payments,
		bookings:    stores.Bookings,
		schedules:   stores.Schedules,
		provider:    provider,
		settler:     settler,
		logger:      logger.With(slog.String("component", "membership_service")),
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *membershipServiceImpl) Purchase(ctx context.Context, actor Actor, planID uuid.UUID) (*Purchase, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		plan       *domain.MembershipPlan
		membership *domain.Membership
		pay        *domain.Payment
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		memberships := s.memberships.WithTx(tx)

		p, err := s.plans.WithTx(tx).GetByID(ctx, planID)
		if err != nil {
			return err
		}
		if !p.Active {
			return ErrPlanInactive
		}

		gym, err := s.gyms.WithTx(tx).GetByID(ctx, p.GymID)
		if err != nil {
			return err
		}
		if gym.IsFull() {
			return ErrGymFull
		}

		open, err := memberships.HasOpen(ctx, actor.UserID, p.GymID)
		if err != nil {
			return err
		}
		if open {
			return ErrMembershipExists
		}

		m := domain.NewMembership(actor.UserID, p)
		if err := memberships.Create(ctx, m); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrMembershipExists
			}
			return err
		}
		py := domain.NewPayment(actor.UserID, m.ID, p, s.provider.Name())
		if err := s.payments.WithTx(tx).Create(ctx, py); err != nil {
			return err
		}

		plan, membership, pay = p, m, py
		return nil
	})
	if err != nil {
		return nil, err
	}

	intent, err := s.provider.CreateIntent(ctx, payment.IntentRequest{
		PaymentID:   pay.ID,
		UserID:      actor.UserID,
		Amount:      plan.PriceMinorUnits(),
		Currency:    plan.Currency,
		Description: plan.Name,
	})
	if err != nil {
		log.Error("failed to create payment intent",
			slog.String("payment_id", pay.ID.String()),
			slog.String("error", err.Error()))
		s.abandon(ctx, log, membership, pay)
		return nil, NewServiceError("membership", "Purchase", "failed to create payment intent", err)
	}

	pay.ProviderRef = intent.Ref
	if err := s.payments.Update(ctx, pay); err != nil {
		log.Error("failed to store payment intent",
			slog.String("payment_id", pay.ID.String()),
			slog.String("provider_ref", intent.Ref),
			slog.String("error", err.Error()))
		s.abandon(ctx, log, membership, pay)
		return nil, err
	}

	if intent.Status.Terminal() {
		if err := s.settler.Settle(ctx, s.provider.Name(), intent.Ref, intent.Status); err != nil {
			return nil, err
		}
		if membership, err = s.memberships.GetByID(ctx, membership.ID); err != nil {
			return nil, err
		}
		if pay, err = s.payments.GetByID(ctx, pay.ID); err != nil {
			return nil, err
		}
	}

	log.Info("membership purchased",
		slog.String("membership_id", membership.ID.String()),
		slog.String("payment_id", pay.ID.String()),
		slog.String("status", string(membership.Status)))
	return &Purchase{Membership: membership, Payment: pay, ClientSecret: intent.ClientSecret}, nil
}

// abandon fails the payment and cancels the membership of a purchase that
// could not be completed, so the member is free to buy again. Errors are
// logged only.
func (s *membershipServiceImpl) abandon(ctx context.Context, log *slog.Logger, membership *domain.Membership, pay *domain.Payment) {
	now := s.now()
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := pay.Settle(domain.PaymentFailed, now); err != nil {
			return err
		}
		if err := s.payments.WithTx(tx).Update(ctx, pay); err != nil {
			return err
		}
		if err := membership.Cancel(now); err != nil {
			return err
		}
		return s.memberships.WithTx(tx).Update(ctx, membership)
	})
	if err != nil {
		log.Error("failed to abandon purchase",
			slog.String("membership_id", membership.ID.String()),
			slog.String("error", err.Error()))
	}
}

func (s *membershipServiceImpl) Get(ctx context.Context, actor Actor, id uuid.UUID) (*domain.Membership, error) {
	m, err := s.memberships.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID == actor.UserID {
		return m, nil
	}
	if _, err := ownedGym(ctx, s.gyms, actor, m.GymID); err != nil {
		if errors.Is(err, ErrForbidden) {
			return nil, store.ErrMembershipNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *membershipServiceImpl) ListMine(ctx context.Context, actor Actor, page store.Page) ([]domain.Membership, int, error) {
	return s.memberships.ListByUser(ctx, actor.UserID, page)
}

func (s *membershipServiceImpl) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*domain.Membership, error) {
	now := s.now()

	var (
		membership *domain.Membership
		released   int
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		memberships := s.memberships.WithTx(tx)

		m, err := memberships.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if m.UserID != actor.UserID && !actor.IsAdmin() {
			return store.ErrMembershipNotFound
		}

		wasActive := m.Status == domain.MembershipActive
		if err := m.Cancel(now); err != nil {
			return err
		}
		if err := memberships.Update(ctx, m); err != nil {
			return err
		}
		if wasActive {
			if err := s.gyms.WithTx(tx).AdjustMemberCount(ctx, m.GymID, -1); err != nil {
				return err
			}
		}

		scheduleIDs, err := s.bookings.WithTx(tx).CancelUpcomingForMembership(ctx, m.ID, now)
		if err != nil {
			return err
		}
		schedules := s.schedules.WithTx(tx)
		for _, scheduleID := range scheduleIDs {
			if err := schedules.AdjustBookedCount(ctx, scheduleID, -1); err != nil {
				return err
			}
		}

		membership = m
		released = len(scheduleIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("membership cancelled",
		slog.String("membership_id", id.String()),
		slog.String("actor_id", actor.UserID.String()),
		slog.Int("bookings_cancelled", released))
	return membership, nil
}

func (s *membershipServiceImpl) ListGymMembers(
	ctx context.Context,
	actor Actor,
	gymID uuid.UUID,
	page store.Page,
) ([]domain.Membership, int, error) {
	if _, err := ownedGym(ctx, s.gyms, actor, gymID); err != nil {
		return nil, 0, err
	}
	return s.memberships.ListActiveByGym(ctx, gymID, page)
}

func (s *membershipServiceImpl) ExpireDue(ctx context.Context) (int, error) {
	now := s.now()

	var expired []domain.Membership
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		expired, err = s.memberships.WithTx(tx).ExpireDue(ctx, now)
		if err != nil {
			return err
		}

		gyms := s.gyms.WithTx(tx)
		for _, m := range expired {
			if err := gyms.AdjustMemberCount(ctx, m.GymID, -1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, NewServiceError("membership", "ExpireDue", "failed to expire memberships", err)
	}

	if len(expired) > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Info("memberships expired", slog.Int("count", len(expired)))
	}
	return len(expired), nil
}
