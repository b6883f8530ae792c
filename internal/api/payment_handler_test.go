package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fitdash/fitdash-api/internal/platform/payment"
	"github.com/fitdash/fitdash-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPaymentService struct {
	service.PaymentService
	mock.Mock
}

func (m *mockPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, string(payload), signature).Error(0)
}

func TestPaymentHandler_Webhook(t *testing.T) {
	t.Parallel()

	const body = `{"id":"evt_1","type":"payment_intent.succeeded"}`

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"accepted", nil, http.StatusOK},
		{"bad signature", payment.ErrInvalidSignature, http.StatusBadRequest},
		{"provider without webhooks", payment.ErrWebhookUnsupported, http.StatusBadRequest},
		{"settlement could not be queued", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments := &mockPaymentService{}
			payments.On("HandleWebhook", mock.Anything, body, "t=1,v1=abc").Return(tt.err)

			req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(body))
			req.Header.Set(SignatureHeader, "t=1,v1=abc")
			rec := httptest.NewRecorder()
			NewPaymentHandler(payments).Webhook(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			payments.AssertExpectations(t)
		})
	}

	t.Run("oversized payload", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(strings.Repeat("x", maxWebhookBytes+1)))
		rec := httptest.NewRecorder()
		NewPaymentHandler(&mockPaymentService{}).Webhook(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
