package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DietInput carries the fields of a diet entry.
type DietInput struct {
	ConsumedAt time.Time
	MealType   domain.MealType
	FoodName   string
	Calories   int
	ProteinG   decimal.Decimal
	CarbsG     decimal.Decimal
	FatG       decimal.Decimal
	Notes      string
}

// DietSummary totals diet entries per day within a window.
type DietSummary struct {
	From          time.Time            `json:"from"`
	To            time.Time            `json:"to"`
	TotalCalories int                  `json:"total_calories"`
	Days          []domain.DietDayStat `json:"days"`
}

// DietService manages a user's diet log.
type DietService interface {
	List(ctx context.Context, actor Actor, window store.TimeRange, page store.Page) ([]domain.DietEntry, int, error)
	Create(ctx context.Context, actor Actor, in DietInput) (*domain.DietEntry, error)
	Replace(ctx context.Context, actor Actor, id uuid.UUID, in DietInput) (*domain.DietEntry, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Summary(ctx context.Context, actor Actor, window store.TimeRange) (*DietSummary, error)
}

type dietServiceImpl struct {
	entries store.DietStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewDietService creates a DietService.
func NewDietService(entries store.DietStore, logger *slog.Logger) (DietService, error) {
	if entries == nil {
		return nil, domain.NewValidationError("entries", "diet store cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &dietServiceImpl{
		entries: entries,
		logger:  logger.With(slog.String("component", "diet_service")),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *dietServiceImpl) List(ctx context.Context, actor Actor, window store.TimeRange, page store.Page) ([]domain.DietEntry, int, error) {
	window, err := resolveWindow(window, s.now())
	if err != nil {
		return nil, 0, err
	}
	return s.entries.ListByUser(ctx, actor.UserID, window, page)
}

func (s *dietServiceImpl) Create(ctx context.Context, actor Actor, in DietInput) (*domain.DietEntry, error) {
	entry, err := domain.NewDietEntry(actor.UserID, in.ConsumedAt, in.MealType, in.FoodName, in.Calories,
		in.ProteinG, in.CarbsG, in.FatG, in.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *dietServiceImpl) own(ctx context.Context, actor Actor, id uuid.UUID) (*domain.DietEntry, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != actor.UserID {
		return nil, store.ErrDietEntryNotFound
	}
	return entry, nil
}

func (s *dietServiceImpl) Replace(ctx context.Context, actor Actor, id uuid.UUID, in DietInput) (*domain.DietEntry, error) {
	entry, err := s.own(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	entry.ConsumedAt = in.ConsumedAt.UTC()
	entry.MealType = in.MealType
	entry.FoodName = strings.TrimSpace(in.FoodName)
	entry.Calories = in.Calories
	entry.ProteinG = in.ProteinG
	entry.CarbsG = in.CarbsG
	entry.FatG = in.FatG
	entry.Notes = in.Notes
	entry.UpdatedAt = s.now()
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *dietServiceImpl) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.own(ctx, actor, id); err != nil {
		return err
	}
	return s.entries.Delete(ctx, id)
}

func (s *dietServiceImpl) Summary(ctx context.Context, actor Actor, window store.TimeRange) (*DietSummary, error) {
	window, err := resolveWindow(window, s.now())
	if err != nil {
		return nil, err
	}

	entries, err := s.entries.ListInRange(ctx, actor.UserID, window)
	if err != nil {
		return nil, err
	}

	summary := &DietSummary{From: window.From, To: window.To, Days: domain.SummarizeDiet(entries)}
	for _, d := range summary.Days {
		summary.TotalCalories += d.Calories
	}
	return summary, nil
}
