package ranking

import (
	"testing"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPointsFor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		points        int
		target        string
		value         string
		wantEarned    int
		wantCompleted bool
	}{
		{name: "no progress", points: 100, target: "50", value: "0", wantEarned: 0},
		{name: "half way", points: 100, target: "50", value: "25", wantEarned: 50},
		{name: "partial credit floors", points: 10, target: "3", value: "2", wantEarned: 6},
		{name: "exact decimal ratio", points: 100, target: "1", value: "0.29", wantEarned: 29},
		{name: "target reached", points: 100, target: "50", value: "50", wantEarned: 100, wantCompleted: true},
		{name: "overshoot is capped", points: 100, target: "50", value: "80.5", wantEarned: 100, wantCompleted: true},
		{name: "negative value earns nothing", points: 100, target: "50", value: "-5", wantEarned: 0},
		{name: "zero target earns nothing", points: 100, target: "0", value: "5", wantEarned: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			earned, completed := PointsFor(tc.points, dec(tc.target), dec(tc.value))
			assert.Equal(t, tc.wantEarned, earned)
			assert.Equal(t, tc.wantCompleted, completed)
		})
	}
}

func TestApplyProgress(t *testing.T) {
	t.Parallel()

	assert.True(t, dec("7").Equal(ApplyProgress(dec("5"), dec("7"), domain.ProgressSet)))
	assert.True(t, dec("12").Equal(ApplyProgress(dec("5"), dec("7"), domain.ProgressIncrement)))
	assert.True(t, decimal.Zero.Equal(ApplyProgress(dec("5"), dec("-9"), domain.ProgressIncrement)))
	assert.True(t, decimal.Zero.Equal(ApplyProgress(dec("5"), dec("-1"), domain.ProgressSet)))
	assert.True(t, dec("1.00").Equal(ApplyProgress(decimal.Zero, dec("0.999"), domain.ProgressSet)))
	assert.True(t, dec("2.35").Equal(ApplyProgress(dec("1.2"), dec("1.149"), domain.ProgressIncrement)))
	assert.True(t, decimal.Zero.Equal(ApplyProgress(decimal.Zero, dec("0.004"), domain.ProgressSet)))
}

func TestApplyProgress_ScoresStoredValue(t *testing.T) {
	t.Parallel()

	// 0.999 is stored as 1.00, so the task must be completed.
	value := ApplyProgress(decimal.Zero, dec("0.999"), domain.ProgressSet)
	earned, completed := PointsFor(10, dec("1"), value)
	assert.Equal(t, 10, earned)
	assert.True(t, completed)

	value = ApplyProgress(decimal.Zero, dec("0.994"), domain.ProgressSet)
	earned, completed = PointsFor(10, dec("1"), value)
	assert.Equal(t, 9, earned)
	assert.False(t, completed)
}

func TestTotal(t *testing.T) {
	t.Parallel()

	progress := []domain.TaskProgress{{PointsEarned: 10}, {PointsEarned: 35}, {PointsEarned: 0}}
	assert.Equal(t, 45, Total(progress))
	assert.Equal(t, 0, Total(nil))
}

func TestRank(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	p := func(name string, points int, joinedOffset time.Duration) domain.CompetitionParticipant {
		return domain.CompetitionParticipant{
			ID:          uuid.New(),
			UserName:    name,
			TotalPoints: points,
			JoinedAt:    base.Add(joinedOffset),
		}
	}

	t.Run("orders by points then join time with shared ranks", func(t *testing.T) {
		participants := []domain.CompetitionParticipant{
			p("dana", 40, 3*time.Hour),
			p("ana", 90, 2*time.Hour),
			p("carl", 70, time.Hour),
			p("bea", 70, 0),
			p("eli", 0, 0),
		}

		ranked := Rank(participants)

		names := make([]string, len(ranked))
		ranks := make([]int, len(ranked))
		for i, r := range ranked {
			names[i] = r.UserName
			ranks[i] = r.Rank
		}
		assert.Equal(t, []string{"ana", "bea", "carl", "dana", "eli"}, names)
		assert.Equal(t, []int{1, 2, 2, 4, 5}, ranks)
	})

	t.Run("everyone tied shares first place", func(t *testing.T) {
		ranked := Rank([]domain.CompetitionParticipant{p("a", 0, 0), p("b", 0, time.Minute), p("c", 0, 2*time.Minute)})
		for _, r := range ranked {
			assert.Equal(t, 1, r.Rank)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Rank(nil))
	})
}

func TestChanged(t *testing.T) {
	t.Parallel()

	a := domain.CompetitionParticipant{ID: uuid.New(), Rank: 1}
	b := domain.CompetitionParticipant{ID: uuid.New(), Rank: 2}
	c := domain.CompetitionParticipant{ID: uuid.New(), Rank: 3}

	before := map[uuid.UUID]int{a.ID: 1, b.ID: 3}
	changed := Changed(before, []domain.CompetitionParticipant{a, b, c})

	assert.Len(t, changed, 2)
	assert.Equal(t, b.ID, changed[0].ID)
	assert.Equal(t, c.ID, changed[1].ID)
}
