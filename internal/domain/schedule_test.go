package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		name      string
		at        time.Time
		wantStart time.Time
	}{
		{
			name:      "monday morning",
			at:        time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC),
			wantStart: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "sunday night",
			at:        time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC),
			wantStart: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "week crossing a month",
			at:        time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
			wantStart: time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "non utc input",
			at:        time.Date(2026, 3, 9, 1, 0, 0, 0, time.FixedZone("CET", 3600)),
			wantStart: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekBounds(tt.at)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantStart.AddDate(0, 0, 7), end)
		})
	}
}

func TestNewClassSchedule(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	class, err := NewGymClass(uuid.New(), "Morning BJJ", "", "Coach Sam", 12, 90)
	require.NoError(t, err)

	s, err := NewClassSchedule(class, now.Add(24*time.Hour), 0, now)
	require.NoError(t, err)
	assert.Equal(t, 12, s.Capacity)
	assert.Equal(t, class.GymID, s.GymID)
	assert.Equal(t, s.StartsAt.Add(90*time.Minute), s.EndsAt)
	assert.True(t, s.Bookable(now))
	assert.Equal(t, 12, s.SpotsLeft())

	s.BookedCount = 12
	assert.Equal(t, 0, s.SpotsLeft())

	_, err = NewClassSchedule(class, now.Add(-time.Hour), 0, now)
	assert.True(t, errors.Is(err, ErrScheduleInPast))

	_, err = NewClassSchedule(class, now.Add(time.Hour), -1, now)
	assert.True(t, errors.Is(err, ErrInvalidCapacity))
}

func TestMembershipLifecycle(t *testing.T) {
	plan, err := NewMembershipPlan(uuid.New(), "Monthly", "", decimal.RequireFromString("49.90"), "USD", 30, 3)
	require.NoError(t, err)
	assert.Equal(t, "usd", plan.Currency)
	assert.Equal(t, int64(4990), plan.PriceMinorUnits())

	m := NewMembership(uuid.New(), plan)
	assert.Equal(t, MembershipPending, m.Status)
	assert.Equal(t, plan.GymID, m.GymID)

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	assert.False(t, m.CoversTime(now))

	require.NoError(t, m.Activate(now, plan.DurationDays))
	assert.Equal(t, MembershipActive, m.Status)
	assert.Equal(t, now.AddDate(0, 0, 30), *m.EndDate)
	assert.True(t, m.CoversTime(now))
	assert.True(t, m.CoversTime(now.AddDate(0, 0, 29)))
	assert.False(t, m.CoversTime(now.AddDate(0, 0, 30)))

	assert.ErrorIs(t, m.Activate(now, 30), ErrInvalidTransition)

	require.NoError(t, m.Cancel(now))
	assert.Equal(t, MembershipCancelled, m.Status)
	assert.ErrorIs(t, m.Cancel(now), ErrInvalidTransition)
}

func TestGymIsFull(t *testing.T) {
	limit := 2
	g, err := NewGym(uuid.New(), "Iron Temple", "1 Main St", "", &limit)
	require.NoError(t, err)
	assert.False(t, g.IsFull())

	g.MemberCount = 2
	assert.True(t, g.IsFull())

	g.MaxMembers = nil
	assert.False(t, g.IsFull())

	zero := 0
	_, err = NewGym(uuid.New(), "Iron Temple", "1 Main St", "", &zero)
	assert.ErrorIs(t, err, ErrInvalidMaxMembers)
}

func TestPaymentSettle(t *testing.T) {
	plan, err := NewMembershipPlan(uuid.New(), "Drop-in", "", decimal.NewFromInt(15), "eur", 1, 0)
	require.NoError(t, err)

	p := NewPayment(uuid.New(), uuid.New(), plan, "manual")
	assert.Equal(t, PaymentPending, p.Status)
	assert.ErrorIs(t, p.Settle(PaymentPending, time.Now()), ErrInvalidStatus)

	require.NoError(t, p.Settle(PaymentSucceeded, time.Now()))
	assert.ErrorIs(t, p.Settle(PaymentFailed, time.Now()), ErrInvalidTransition)
}

func TestCompetitionStatusAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c, err := NewCompetition(uuid.New(), "March Madness", "", start, start.AddDate(0, 1, 0))
	require.NoError(t, err)

	assert.Equal(t, CompetitionUpcoming, c.StatusAt(start.Add(-time.Second)))
	assert.Equal(t, CompetitionActive, c.StatusAt(start))
	assert.Equal(t, CompetitionCompleted, c.StatusAt(start.AddDate(0, 1, 0)))

	_, err = NewCompetition(uuid.New(), "Backwards", "", start, start)
	assert.ErrorIs(t, err, ErrInvalidCompetitionEnd)

	_, err = NewCompetitionTask(c.ID, "Run", "", decimal.Zero, "km", 10)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = NewCompetitionTask(c.ID, "Run", "", decimal.RequireFromString("10000000000"), "km", 10)
	assert.ErrorIs(t, err, ErrValueOutOfRange)

	// Rounds to 0.00, which is not a positive target.
	_, err = NewCompetitionTask(c.ID, "Run", "", decimal.RequireFromString("0.004"), "km", 10)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	task, err := NewCompetitionTask(c.ID, "Run", "", decimal.RequireFromString("5.005"), "km", 10)
	require.NoError(t, err)
	assert.Equal(t, "5.01", task.TargetValue.StringFixed(2))
}
