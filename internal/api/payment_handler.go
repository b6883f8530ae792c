package api

import (
	"io"
	"net/http"

	"github.com/fitdash/fitdash-api/internal/api/shared"
	"github.com/fitdash/fitdash-api/internal/service"
)

const (
	// SignatureHeader carries the provider's webhook signature.
	SignatureHeader = "Stripe-Signature"

	maxWebhookBytes = 64 << 10
)

// PaymentHandler serves payment history and the provider webhook.
type PaymentHandler struct {
	payments service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// ListMine handles GET /payments.
func (h *PaymentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var q PageQuery
	if !decodeQuery(w, r, &q) {
		return
	}

	page := q.page()
	payments, total, err := h.payments.ListMine(r.Context(), actor, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list payments")
		return
	}
	listResponse(w, r, payments, page, total)
}

// Webhook handles POST /payments/webhook. The raw body is passed through
// untouched since the signature covers its exact bytes.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.payments.HandleWebhook(r.Context(), payload, r.Header.Get(SignatureHeader)); err != nil {
		HandleAPIError(w, r, err, "Failed to process webhook")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, map[string]bool{"received": true})
}
