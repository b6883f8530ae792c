package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/events"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/platform/metrics"
	"github.com/fitdash/fitdash-api/internal/platform/payment"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/fitdash/fitdash-api/internal/task"
)

// PaymentService lists payments and settles them once the provider reports an outcome.
type PaymentService interface {
	ListMine(ctx context.Context, actor Actor, page store.Page) ([]domain.Payment, int, error)

	// HandleWebhook verifies a provider webhook and queues the settlement it
	// reports. Deliveries that do not settle a payment are ignored.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error

	// Settle applies a terminal outcome to the payment created for
	// (provider, providerRef). A successful payment activates its membership;
	// a failed one cancels it. Settling an already settled payment is a no-op.
	// It returns ErrGymFull when the gym filled up before activation, in which
	// case the payment is recorded as failed.
	Settle(ctx context.Context, provider, providerRef string, status domain.PaymentStatus) error
}

type paymentServiceImpl struct {
	tx          store.TxRunner
	payments    store.PaymentStore
	memberships store.MembershipStore
	plans       store.PlanStore
	gyms        store.GymStore
	provider    payment.Provider
	emitter     events.EventEmitter
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

var _ task.PaymentSettler = (*paymentServiceImpl)(nil)

// NewPaymentService creates a PaymentService. m may be nil.
func NewPaymentService(
	tx store.TxRunner,
	payments store.PaymentStore,
	memberships store.MembershipStore,
	plans store.PlanStore,
	gyms store.GymStore,
	provider payment.Provider,
	emitter events.EventEmitter,
	m *metrics.Metrics,
	logger *slog.Logger,
) (PaymentService, error) {
	if tx == nil || payments == nil || memberships == nil || plans == nil || gyms == nil {
		return nil, domain.NewValidationError("dependencies", "payment service stores cannot be nil", domain.ErrValidation)
	}
	if provider == nil || emitter == nil {
		return nil, domain.NewValidationError("dependencies", "payment provider and event emitter cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &paymentServiceImpl{
		tx:          tx,
		payments:    payments,
		memberships: memberships,
		plans:       plans,
		gyms:        gyms,
		provider:    provider,
		emitter:     emitter,
		metrics:     m,
		logger:      logger.With(slog.String("component", "payment_service")),
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *paymentServiceImpl) ListMine(ctx context.Context, actor Actor, page store.Page) ([]domain.Payment, int, error) {
	return s.payments.ListByUser(ctx, actor.UserID, page)
}

func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	outcome, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		log.Warn("rejected payment webhook",
			slog.String("provider", s.provider.Name()),
			slog.String("error", err.Error()))
		return err
	}
	if outcome == nil {
		return nil
	}

	event, err := events.NewTaskRequestEvent(events.TypePaymentSettlement, outcome)
	if err != nil {
		return NewServiceError("payment", "HandleWebhook", "failed to build settlement event", err)
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		return NewServiceError("payment", "HandleWebhook", "failed to queue settlement", err)
	}

	log.Info("payment settlement queued",
		slog.String("provider_ref", outcome.ProviderRef),
		slog.String("status", outcome.Status),
		slog.String("provider_event_id", outcome.EventID))
	return nil
}

func (s *paymentServiceImpl) Settle(ctx context.Context, provider, providerRef string, status domain.PaymentStatus) error {
	if !status.Terminal() {
		return domain.NewValidationError("status", "settlement status must be terminal", domain.ErrInvalidStatus)
	}

	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("provider", provider),
		slog.String("provider_ref", providerRef))
	now := s.now()

	var (
		settled  bool
		final    domain.PaymentStatus
		rejected error
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		payments := s.payments.WithTx(tx)
		memberships := s.memberships.WithTx(tx)

		p, err := payments.GetByProviderRefForUpdate(ctx, provider, providerRef)
		if err != nil {
			return err
		}
		if p.Status.Terminal() {
			log.Debug("payment already settled", slog.String("status", string(p.Status)))
			return nil
		}

		m, err := memberships.GetByIDForUpdate(ctx, p.MembershipID)
		if err != nil {
			return err
		}

		if status == domain.PaymentSucceeded && m.Status == domain.MembershipPending {
			gyms := s.gyms.WithTx(tx)
			gym, err := gyms.GetByIDForUpdate(ctx, m.GymID)
			if err != nil {
				return err
			}
			if gym.IsFull() {
				rejected = ErrGymFull
				status = domain.PaymentFailed
			} else {
				plan, err := s.plans.WithTx(tx).GetByID(ctx, m.PlanID)
				if err != nil {
					return err
				}
				if err := m.Activate(now, plan.DurationDays); err != nil {
					return err
				}
				if err := memberships.Update(ctx, m); err != nil {
					return err
				}
				if err := gyms.AdjustMemberCount(ctx, gym.ID, 1); err != nil {
					return err
				}
			}
		} else if status == domain.PaymentSucceeded {
			log.Warn("payment succeeded for a membership that is no longer pending",
				slog.String("membership_id", m.ID.String()),
				slog.String("membership_status", string(m.Status)))
		}

		if status == domain.PaymentFailed && m.Status == domain.MembershipPending {
			if err := m.Cancel(now); err != nil {
				return err
			}
			if err := memberships.Update(ctx, m); err != nil {
				return err
			}
		}

		if err := p.Settle(status, now); err != nil {
			return err
		}
		if err := payments.Update(ctx, p); err != nil {
			return err
		}

		settled = true
		final = status
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("settlement for unknown payment")
		}
		return err
	}
	if !settled {
		return nil
	}

	s.metrics.PaymentSettled(string(final))
	log.Info("payment settled", slog.String("status", string(final)))
	return rejected
}
