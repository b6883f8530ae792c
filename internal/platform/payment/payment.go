// Package payment integrates payment providers. A Provider creates payment
// intents for pending payments and turns provider webhooks into settlement
// outcomes.
package payment

import (
	"context"
	"errors"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/events"
	"github.com/google/uuid"
)

// Provider names.
const (
	ProviderStripe = "stripe"
	ProviderManual = "manual"
)

var (
	// ErrWebhookUnsupported is returned by providers that do not receive webhooks.
	ErrWebhookUnsupported = errors.New("provider does not accept webhooks")

	// ErrInvalidSignature is returned when a webhook signature does not verify.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrProvider wraps failures reported by the provider API.
	ErrProvider = errors.New("payment provider error")
)

// IntentRequest describes the charge for one pending payment.
type IntentRequest struct {
	PaymentID uuid.UUID
	UserID    uuid.UUID
	// Amount is in the currency's minor unit.
	Amount      int64
	Currency    string
	Description string
}

// Intent is the provider's handle on a charge.
type Intent struct {
	Ref          string
	ClientSecret string
	// Status is terminal when the provider settled the charge synchronously.
	Status domain.PaymentStatus
}

// Provider abstracts a payment provider.
type Provider interface {
	Name() string

	// CreateIntent asks the provider to collect req. The payment ID is used
	// as idempotency key.
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)

	// ParseWebhook verifies and decodes a webhook delivery. It returns nil
	// without error for event types that do not settle a payment.
	ParseWebhook(payload []byte, signature string) (*events.PaymentOutcome, error)
}
