package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/events"
	"github.com/google/uuid"
)

var (
	ErrNilSettler       = errors.New("payment settler cannot be nil")
	ErrEmptyProviderRef = errors.New("provider reference cannot be empty")
	ErrInvalidOutcome   = errors.New("payment outcome must be succeeded or failed")
)

// PaymentSettler applies a provider's verdict to the matching payment.
type PaymentSettler interface {
	Settle(ctx context.Context, provider, providerRef string, status domain.PaymentStatus) error
}

// PaymentSettlementTask settles one payment from a provider notification.
type PaymentSettlementTask struct {
	id      uuid.UUID
	outcome events.PaymentOutcome
	payload []byte
	settler PaymentSettler
	logger  *slog.Logger
	status  TaskStatus
}

// NewPaymentSettlementTask decodes payload into a settlement task.
func NewPaymentSettlementTask(id uuid.UUID, payload []byte, settler PaymentSettler, logger *slog.Logger) (*PaymentSettlementTask, error) {
	if settler == nil {
		return nil, ErrNilSettler
	}
	if logger == nil {
		logger = slog.Default()
	}

	var outcome events.PaymentOutcome
	if err := json.Unmarshal(payload, &outcome); err != nil {
		return nil, fmt.Errorf("invalid settlement payload: %w", err)
	}
	if outcome.ProviderRef == "" {
		return nil, ErrEmptyProviderRef
	}
	if s := domain.PaymentStatus(outcome.Status); !s.Terminal() {
		return nil, ErrInvalidOutcome
	}

	return &PaymentSettlementTask{
		id:      id,
		outcome: outcome,
		payload: payload,
		settler: settler,
		logger: logger.With(
			slog.String("task_type", TaskTypePaymentSettlement),
			slog.String("provider_ref", outcome.ProviderRef),
		),
		status: TaskStatusPending,
	}, nil
}

// NewPaymentSettlementFactory returns the Factory registered for TaskTypePaymentSettlement.
func NewPaymentSettlementFactory(settler PaymentSettler, logger *slog.Logger) Factory {
	return func(id uuid.UUID, payload []byte) (Task, error) {
		return NewPaymentSettlementTask(id, payload, settler, logger)
	}
}

// ID implements Task.
func (t *PaymentSettlementTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *PaymentSettlementTask) Type() string { return TaskTypePaymentSettlement }

// Payload implements Task.
func (t *PaymentSettlementTask) Payload() []byte { return t.payload }

// Status implements Task.
func (t *PaymentSettlementTask) Status() TaskStatus { return t.status }

// Execute settles the payment. Settling an already settled payment is not an error.
func (t *PaymentSettlementTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("settling payment", slog.String("outcome", t.outcome.Status))

	err := t.settler.Settle(ctx, t.outcome.Provider, t.outcome.ProviderRef, domain.PaymentStatus(t.outcome.Status))
	if err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("settle payment %s: %w", t.outcome.ProviderRef, err)
	}

	t.status = TaskStatusCompleted
	return nil
}
