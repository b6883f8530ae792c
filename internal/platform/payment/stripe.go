package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/events"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"github.com/stripe/stripe-go/v75/webhook"
)

// Stripe webhook event types that settle a payment.
const (
	eventIntentSucceeded = "payment_intent.succeeded"
	eventIntentFailed    = "payment_intent.payment_failed"
)

// StripeProvider collects payments with Stripe payment intents.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
	logger        *slog.Logger
}

// NewStripeProvider creates a provider for the given secret key. backends may
// be nil to use Stripe's default endpoints.
func NewStripeProvider(secretKey, webhookSecret string, backends *stripe.Backends, logger *slog.Logger) *StripeProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &StripeProvider{
		api:           client.New(secretKey, backends),
		webhookSecret: webhookSecret,
		logger:        logger.With(slog.String("component", "stripe_payments")),
	}
}

var _ Provider = (*StripeProvider)(nil)

// Name implements Provider.
func (p *StripeProvider) Name() string { return ProviderStripe }

// CreateIntent implements Provider.
func (p *StripeProvider) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.PaymentID.String())
	params.AddMetadata("payment_id", req.PaymentID.String())
	params.AddMetadata("user_id", req.UserID.String())

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		log.Error("failed to create payment intent",
			slog.String("payment_id", req.PaymentID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: create payment intent: %v", ErrProvider, err)
	}

	log.Debug("payment intent created",
		slog.String("payment_id", req.PaymentID.String()),
		slog.String("intent_id", pi.ID),
		slog.String("intent_status", string(pi.Status)))

	return &Intent{
		Ref:          pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       intentStatus(pi.Status),
	}, nil
}

// ParseWebhook implements Provider.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*events.PaymentOutcome, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		p.logger.Warn("stripe webhook verification failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var status domain.PaymentStatus
	switch string(event.Type) {
	case eventIntentSucceeded:
		status = domain.PaymentSucceeded
	case eventIntentFailed:
		status = domain.PaymentFailed
	default:
		p.logger.Debug("ignoring stripe event", slog.String("event_type", string(event.Type)))
		return nil, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent of event %s: %w", event.ID, err)
	}
	if pi.ID == "" {
		return nil, fmt.Errorf("event %s carries no payment intent id", event.ID)
	}

	return &events.PaymentOutcome{
		Provider:    ProviderStripe,
		ProviderRef: pi.ID,
		Status:      string(status),
		EventID:     event.ID,
	}, nil
}

func intentStatus(s stripe.PaymentIntentStatus) domain.PaymentStatus {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.PaymentSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return domain.PaymentFailed
	default:
		return domain.PaymentPending
	}
}
