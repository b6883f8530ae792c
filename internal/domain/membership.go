package domain

import (
	"time"

	"github.com/google/uuid"
)

// MembershipStatus is the lifecycle state of a membership.
type MembershipStatus string

// Membership statuses. A membership starts pending until its payment settles.
const (
	MembershipPending   MembershipStatus = "pending"
	MembershipActive    MembershipStatus = "active"
	MembershipCancelled MembershipStatus = "cancelled"
	MembershipExpired   MembershipStatus = "expired"
)

// Membership is a user's paid, time-bounded relationship to a gym under a plan.
type Membership struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	GymID     uuid.UUID        `json:"gym_id"`
	PlanID    uuid.UUID        `json:"plan_id"`
	Status    MembershipStatus `json:"status"`
	StartDate *time.Time       `json:"start_date"`
	EndDate   *time.Time       `json:"end_date"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	// Populated by list queries.
	PlanName  string `json:"plan_name,omitempty"`
	GymName   string `json:"gym_name,omitempty"`
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// NewMembership creates a pending membership for userID under plan.
func NewMembership(userID uuid.UUID, plan *MembershipPlan) *Membership {
	now := time.Now().UTC()
	return &Membership{
		ID:        uuid.New(),
		UserID:    userID,
		GymID:     plan.GymID,
		PlanID:    plan.ID,
		Status:    MembershipPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Activate moves a pending membership to active, valid for durationDays from now.
func (m *Membership) Activate(now time.Time, durationDays int) error {
	if m.Status != MembershipPending {
		return NewValidationError("status", "only pending memberships can be activated", ErrInvalidTransition)
	}
	start := now.UTC()
	end := start.AddDate(0, 0, durationDays)
	m.Status = MembershipActive
	m.StartDate = &start
	m.EndDate = &end
	m.UpdatedAt = start
	return nil
}

// Cancel moves a pending or active membership to cancelled.
func (m *Membership) Cancel(now time.Time) error {
	if m.Status != MembershipPending && m.Status != MembershipActive {
		return NewValidationError("status", "membership is not cancellable", ErrInvalidTransition)
	}
	m.Status = MembershipCancelled
	m.UpdatedAt = now.UTC()
	return nil
}

// CoversTime reports whether the membership is active and t falls inside [start, end).
func (m *Membership) CoversTime(t time.Time) bool {
	if m.Status != MembershipActive || m.StartDate == nil || m.EndDate == nil {
		return false
	}
	return !t.Before(*m.StartDate) && t.Before(*m.EndDate)
}
