package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
)

// PostgresDietStore implements store.DietStore.
type PostgresDietStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDietStore creates a new PostgresDietStore.
func NewPostgresDietStore(db store.DBTX, logger *slog.Logger) *PostgresDietStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDietStore{db: db, logger: logger.With(slog.String("component", "diet_store"))}
}

var _ store.DietStore = (*PostgresDietStore)(nil)

const dietColumns = `id, user_id, consumed_at, meal_type, food_name, calories, protein_g, carbs_g, fat_g,
	notes, created_at, updated_at`

const dietWindowFilter = `
	WHERE user_id = $1
		AND ($2::timestamptz IS NULL OR consumed_at >= $2)
		AND ($3::timestamptz IS NULL OR consumed_at < $3)`

func scanDietEntry(row rowScanner) (*domain.DietEntry, error) {
	var e domain.DietEntry
	var meal string
	if err := row.Scan(&e.ID, &e.UserID, &e.ConsumedAt, &meal, &e.FoodName, &e.Calories,
		&e.ProteinG, &e.CarbsG, &e.FatG, &e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.MealType = domain.MealType(meal)
	return &e, nil
}

// Create implements store.DietStore.Create
func (s *PostgresDietStore) Create(ctx context.Context, entry *domain.DietEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diet_entries (id, user_id, consumed_at, meal_type, food_name, calories,
			protein_g, carbs_g, fat_g, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entry.ID, entry.UserID, entry.ConsumedAt, entry.MealType, entry.FoodName, entry.Calories,
		entry.ProteinG, entry.CarbsG, entry.FatG, entry.Notes, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create diet entry",
			slog.String("error", err.Error()), slog.String("user_id", entry.UserID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.DietStore.GetByID
func (s *PostgresDietStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.DietEntry, error) {
	e, err := scanDietEntry(s.db.QueryRowContext(ctx, `SELECT `+dietColumns+` FROM diet_entries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDietEntryNotFound
		}
		return nil, MapError(err)
	}
	return e, nil
}

func (s *PostgresDietStore) query(ctx context.Context, query string, args ...any) ([]domain.DietEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list diet entries", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	entries := []domain.DietEntry{}
	for rows.Next() {
		e, err := scanDietEntry(rows)
		if err != nil {
			return nil, MapError(err)
		}
		entries = append(entries, *e)
	}
	return entries, MapError(rows.Err())
}

// ListByUser implements store.DietStore.ListByUser
func (s *PostgresDietStore) ListByUser(ctx context.Context, userID uuid.UUID, window store.TimeRange, page store.Page) ([]domain.DietEntry, int, error) {
	from, to := windowBounds(window)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM diet_entries`+dietWindowFilter,
		userID, from, to).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	entries, err := s.query(ctx, `SELECT `+dietColumns+` FROM diet_entries`+dietWindowFilter+`
		ORDER BY consumed_at DESC, id
		LIMIT $4 OFFSET $5`, userID, from, to, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListInRange implements store.DietStore.ListInRange
func (s *PostgresDietStore) ListInRange(ctx context.Context, userID uuid.UUID, window store.TimeRange) ([]domain.DietEntry, error) {
	from, to := windowBounds(window)
	return s.query(ctx, `SELECT `+dietColumns+` FROM diet_entries`+dietWindowFilter+`
		ORDER BY consumed_at, id`, userID, from, to)
}

// Update implements store.DietStore.Update
func (s *PostgresDietStore) Update(ctx context.Context, entry *domain.DietEntry) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE diet_entries
		SET consumed_at = $1, meal_type = $2, food_name = $3, calories = $4,
			protein_g = $5, carbs_g = $6, fat_g = $7, notes = $8, updated_at = $9
		WHERE id = $10`,
		entry.ConsumedAt, entry.MealType, entry.FoodName, entry.Calories,
		entry.ProteinG, entry.CarbsG, entry.FatG, entry.Notes, entry.UpdatedAt, entry.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrDietEntryNotFound)
}

// Delete implements store.DietStore.Delete
func (s *PostgresDietStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM diet_entries WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrDietEntryNotFound)
}

// WithTx implements store.DietStore.WithTx
func (s *PostgresDietStore) WithTx(tx *sql.Tx) store.DietStore {
	return &PostgresDietStore{db: tx, logger: s.logger}
}
