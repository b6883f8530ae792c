package service

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// testNow is a Monday, so week bounds in tests are easy to reason about.
var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func member() Actor {
	return Actor{UserID: uuid.New(), Role: domain.RoleMember}
}

func owner() Actor {
	return Actor{UserID: uuid.New(), Role: domain.RoleGymOwner}
}

func admin() Actor {
	return Actor{UserID: uuid.New(), Role: domain.RoleAdmin}
}

func gymOf(ownerID uuid.UUID) *domain.Gym {
	return &domain.Gym{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      "Iron Temple",
		Address:   "1 Main St",
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}

func planOf(gymID uuid.UUID, weeklyLimit int) *domain.MembershipPlan {
	return &domain.MembershipPlan{
		ID:                 uuid.New(),
		GymID:              gymID,
		Name:               "Monthly",
		Price:              decimal.RequireFromString("49.90"),
		Currency:           "eur",
		DurationDays:       30,
		WeeklyBookingLimit: weeklyLimit,
		Active:             true,
	}
}

// fakeHasher "hashes" by prefixing, so tests need no bcrypt rounds.
type fakeHasher struct {
	err error
}

func (h fakeHasher) Hash(password string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + password, nil
}

func (h fakeHasher) Compare(hashed, password string) error {
	if hashed != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}
