package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

// Payment statuses. Succeeded and failed are terminal.
const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentSucceeded || s == PaymentFailed
}

// Payment records a charge for a membership.
type Payment struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	MembershipID uuid.UUID       `json:"membership_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Status       PaymentStatus   `json:"status"`
	Provider     string          `json:"provider"`
	ProviderRef  string          `json:"provider_ref,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewPayment creates a pending payment for a membership under plan.
func NewPayment(userID uuid.UUID, membershipID uuid.UUID, plan *MembershipPlan, provider string) *Payment {
	now := time.Now().UTC()
	return &Payment{
		ID:           uuid.New(),
		UserID:       userID,
		MembershipID: membershipID,
		Amount:       plan.Price,
		Currency:     plan.Currency,
		Status:       PaymentPending,
		Provider:     provider,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Settle moves a pending payment to a terminal status.
func (p *Payment) Settle(status PaymentStatus, now time.Time) error {
	if p.Status.Terminal() {
		return NewValidationError("status", "payment already settled", ErrInvalidTransition)
	}
	if !status.Terminal() {
		return NewValidationError("status", "settlement status must be terminal", ErrInvalidStatus)
	}
	p.Status = status
	p.UpdatedAt = now.UTC()
	return nil
}
