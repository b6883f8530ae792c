package domain

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyFoodName   = errors.New("food name cannot be empty")
	ErrInvalidMealType = errors.New("invalid meal type")
	ErrInvalidCalories = errors.New("calories must not be negative")
	ErrInvalidMacro    = errors.New("macronutrients must not be negative")
)

// MealType groups diet entries within a day.
type MealType string

// Known meal types.
const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// Valid reports whether m is a known meal type.
func (m MealType) Valid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// DietEntry records one food item a user consumed.
type DietEntry struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	ConsumedAt time.Time       `json:"consumed_at"`
	MealType   MealType        `json:"meal_type"`
	FoodName   string          `json:"food_name"`
	Calories   int             `json:"calories"`
	ProteinG   decimal.Decimal `json:"protein_g"`
	CarbsG     decimal.Decimal `json:"carbs_g"`
	FatG       decimal.Decimal `json:"fat_g"`
	Notes      string          `json:"notes"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewDietEntry creates a diet entry for userID.
func NewDietEntry(
	userID uuid.UUID,
	consumedAt time.Time,
	meal MealType,
	food string,
	calories int,
	protein, carbs, fat decimal.Decimal,
	notes string,
) (*DietEntry, error) {
	now := time.Now().UTC()
	e := &DietEntry{
		ID:         uuid.New(),
		UserID:     userID,
		ConsumedAt: consumedAt.UTC(),
		MealType:   meal,
		FoodName:   strings.TrimSpace(food),
		Calories:   calories,
		ProteinG:   protein,
		CarbsG:     carbs,
		FatG:       fat,
		Notes:      notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks if the DietEntry has valid data.
func (e *DietEntry) Validate() error {
	if e.ID == uuid.Nil || e.UserID == uuid.Nil {
		return NewValidationError("id", "entry and user IDs cannot be empty", ErrInvalidID)
	}
	if e.FoodName == "" {
		return NewValidationError("food_name", ErrEmptyFoodName.Error(), ErrEmptyFoodName)
	}
	if !e.MealType.Valid() {
		return NewValidationError("meal_type", ErrInvalidMealType.Error(), ErrInvalidMealType)
	}
	if e.Calories < 0 {
		return NewValidationError("calories", ErrInvalidCalories.Error(), ErrInvalidCalories)
	}
	if e.ProteinG.IsNegative() || e.CarbsG.IsNegative() || e.FatG.IsNegative() {
		return NewValidationError("macros", ErrInvalidMacro.Error(), ErrInvalidMacro)
	}
	return nil
}

// DietDayStat totals one day of diet entries.
type DietDayStat struct {
	Date     string          `json:"date"` // YYYY-MM-DD, UTC
	Entries  int             `json:"entries"`
	Calories int             `json:"calories"`
	ProteinG decimal.Decimal `json:"protein_g"`
	CarbsG   decimal.Decimal `json:"carbs_g"`
	FatG     decimal.Decimal `json:"fat_g"`
}

// SummarizeDiet totals entries per UTC day, ordered by date.
func SummarizeDiet(entries []DietEntry) []DietDayStat {
	days := []DietDayStat{}
	index := make(map[string]int)

	for _, e := range entries {
		day := e.ConsumedAt.UTC().Format(time.DateOnly)
		pos, ok := index[day]
		if !ok {
			pos = len(days)
			index[day] = pos
			days = append(days, DietDayStat{
				Date:     day,
				ProteinG: decimal.Zero,
				CarbsG:   decimal.Zero,
				FatG:     decimal.Zero,
			})
		}
		d := &days[pos]
		d.Entries++
		d.Calories += e.Calories
		d.ProteinG = d.ProteinG.Add(e.ProteinG)
		d.CarbsG = d.CarbsG.Add(e.CarbsG)
		d.FatG = d.FatG.Add(e.FatG)
	}

	sortDays(days, func(d DietDayStat) string { return d.Date })
	return days
}

func sortDays[T any](days []T, key func(T) string) {
	slices.SortFunc(days, func(a, b T) int {
		return strings.Compare(key(a), key(b))
	})
}
