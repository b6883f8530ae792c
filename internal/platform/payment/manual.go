package payment

import (
	"context"
	"log/slog"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/events"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
)

// ManualProvider settles every payment immediately. It is meant for local
// development and for gyms that collect payment at the front desk.
type ManualProvider struct {
	logger *slog.Logger
}

// NewManualProvider creates a ManualProvider.
func NewManualProvider(logger *slog.Logger) *ManualProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ManualProvider{logger: logger.With(slog.String("component", "manual_payments"))}
}

var _ Provider = (*ManualProvider)(nil)

// Name implements Provider.
func (p *ManualProvider) Name() string { return ProviderManual }

// CreateIntent implements Provider. The returned intent is already succeeded.
func (p *ManualProvider) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	logger.FromContextOrDefault(ctx, p.logger).Info("settling payment manually",
		slog.String("payment_id", req.PaymentID.String()),
		slog.Int64("amount", req.Amount),
		slog.String("currency", req.Currency))

	return &Intent{
		Ref:    "manual_" + req.PaymentID.String(),
		Status: domain.PaymentSucceeded,
	}, nil
}

// ParseWebhook implements Provider.
func (p *ManualProvider) ParseWebhook([]byte, string) (*events.PaymentOutcome, error) {
	return nil, ErrWebhookUnsupported
}
