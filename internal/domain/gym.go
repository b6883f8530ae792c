package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyGymName      = errors.New("gym name cannot be empty")
	ErrEmptyGymAddress   = errors.New("gym address cannot be empty")
	ErrInvalidMaxMembers = errors.New("max members must be positive")
	ErrEmptyPlanName     = errors.New("plan name cannot be empty")
	ErrInvalidPrice      = errors.New("price must not be negative")
	ErrInvalidDuration   = errors.New("duration must be positive")
	ErrInvalidLimit      = errors.New("weekly booking limit must not be negative")
	ErrInvalidCurrency   = errors.New("currency must be a three letter code")
)

// Gym is a venue owned by a gym owner. MemberCount tracks active memberships.
type Gym struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	// MaxMembers caps active memberships. Nil means unlimited.
	MaxMembers  *int      `json:"max_members"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewGym creates a gym owned by ownerID.
func NewGym(ownerID uuid.UUID, name, address, description string, maxMembers *int) (*Gym, error) {
	now := time.Now().UTC()
	g := &Gym{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(name),
		Address:     strings.TrimSpace(address),
		Description: description,
		MaxMembers:  maxMembers,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks if the Gym has valid data.
func (g *Gym) Validate() error {
	if g.ID == uuid.Nil {
		return NewValidationError("id", "gym ID cannot be empty", ErrInvalidID)
	}
	if g.OwnerID == uuid.Nil {
		return NewValidationError("owner_id", "owner ID cannot be empty", ErrInvalidID)
	}
	if g.Name == "" {
		return NewValidationError("name", ErrEmptyGymName.Error(), ErrEmptyGymName)
	}
	if g.Address == "" {
		return NewValidationError("address", ErrEmptyGymAddress.Error(), ErrEmptyGymAddress)
	}
	if g.MaxMembers != nil && *g.MaxMembers <= 0 {
		return NewValidationError("max_members", ErrInvalidMaxMembers.Error(), ErrInvalidMaxMembers)
	}
	return nil
}

// IsFull reports whether no further membership can be activated.
func (g *Gym) IsFull() bool {
	return g.MaxMembers != nil && g.MemberCount >= *g.MaxMembers
}

// MembershipPlan is a purchasable plan offered by a gym.
type MembershipPlan struct {
	ID           uuid.UUID       `json:"id"`
	GymID        uuid.UUID       `json:"gym_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	DurationDays int             `json:"duration_days"`
	// WeeklyBookingLimit caps bookings per calendar week. 0 means unlimited.
	WeeklyBookingLimit int       `json:"weekly_booking_limit"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewMembershipPlan creates an active plan for gymID.
func NewMembershipPlan(
	gymID uuid.UUID,
	name, description string,
	price decimal.Decimal,
	currency string,
	durationDays, weeklyLimit int,
) (*MembershipPlan, error) {
	now := time.Now().UTC()
	p := &MembershipPlan{
		ID:                 uuid.New(),
		GymID:              gymID,
		Name:               strings.TrimSpace(name),
		Description:        description,
		Price:              price,
		Currency:           strings.ToLower(currency),
		DurationDays:       durationDays,
		WeeklyBookingLimit: weeklyLimit,
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks if the MembershipPlan has valid data.
func (p *MembershipPlan) Validate() error {
	if p.ID == uuid.Nil || p.GymID == uuid.Nil {
		return NewValidationError("id", "plan and gym IDs cannot be empty", ErrInvalidID)
	}
	if p.Name == "" {
		return NewValidationError("name", ErrEmptyPlanName.Error(), ErrEmptyPlanName)
	}
	if p.Price.IsNegative() {
		return NewValidationError("price", ErrInvalidPrice.Error(), ErrInvalidPrice)
	}
	if len(p.Currency) != 3 {
		return NewValidationError("currency", ErrInvalidCurrency.Error(), ErrInvalidCurrency)
	}
	if p.DurationDays <= 0 {
		return NewValidationError("duration_days", ErrInvalidDuration.Error(), ErrInvalidDuration)
	}
	if p.WeeklyBookingLimit < 0 {
		return NewValidationError("weekly_booking_limit", ErrInvalidLimit.Error(), ErrInvalidLimit)
	}
	return nil
}

// PriceMinorUnits converts the plan price to the smallest currency unit (cents).
func (p *MembershipPlan) PriceMinorUnits() int64 {
	return p.Price.Shift(2).Round(0).IntPart()
}
