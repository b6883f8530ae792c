// Package ranking scores competition task progress and ranks participants.
package ranking

import (
	"slices"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplyProgress combines an update with the stored progress value.
//
// Parameters:
//   - current: the value stored for the task so far (zero for a new row)
//   - update: the value submitted by the participant
//   - mode: ProgressSet replaces current, ProgressIncrement adds to it
//
// Returns the new value rounded to domain.ValueScale places, never below
// zero. Scoring must use this rounded value since it is what gets stored.
func ApplyProgress(current, update decimal.Decimal, mode domain.ProgressMode) decimal.Decimal {
	next := update
	if mode == domain.ProgressIncrement {
		next = current.Add(update)
	}
	next = next.Round(domain.ValueScale)
	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}

// PointsFor computes the credit a progress value earns on a task.
//
// Parameters:
//   - points: the task's full point value
//   - target: the task's target value, must be positive
//   - value: the participant's current progress
//
// Returns:
//   - earned: floor(points * min(value/target, 1)), so partial progress earns
//     partial credit and overshooting the target never earns more than points
//   - completed: true once value reaches target
//
// The product is formed before dividing so that exact ratios (e.g. 29/100 of
// 100 points) never lose a point to rounding.
func PointsFor(points int, target, value decimal.Decimal) (earned int, completed bool) {
	if points <= 0 || !target.IsPositive() || !value.IsPositive() {
		return 0, false
	}
	if value.GreaterThanOrEqual(target) {
		return points, true
	}

	share := decimal.NewFromInt(int64(points)).Mul(value).Div(target).Floor()
	return int(share.IntPart()), false
}

// Total sums the points earned across a participant's progress rows.
func Total(progress []domain.TaskProgress) int {
	total := 0
	for _, p := range progress {
		total += p.PointsEarned
	}
	return total
}

// Rank orders participants and assigns competition ranks in place.
//
// Participants are ordered by TotalPoints descending, then by JoinedAt
// ascending, then by ID for a stable order. Participants with equal totals
// share a rank and the next distinct total skips the shared places
// ("1224" ranking). The sorted slice is returned for convenience.
func Rank(participants []domain.CompetitionParticipant) []domain.CompetitionParticipant {
	slices.SortStableFunc(participants, func(a, b domain.CompetitionParticipant) int {
		if a.TotalPoints != b.TotalPoints {
			if a.TotalPoints > b.TotalPoints {
				return -1
			}
			return 1
		}
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})

	for i := range participants {
		if i > 0 && participants[i].TotalPoints == participants[i-1].TotalPoints {
			participants[i].Rank = participants[i-1].Rank
			continue
		}
		participants[i].Rank = i + 1
	}

	return participants
}

// Changed returns the participants whose rank differs from before, which is
// keyed by participant ID.
func Changed(before map[uuid.UUID]int, after []domain.CompetitionParticipant) []domain.CompetitionParticipant {
	var changed []domain.CompetitionParticipant
	for _, p := range after {
		if prev, ok := before[p.ID]; !ok || prev != p.Rank {
			changed = append(changed, p)
		}
	}
	return changed
}
