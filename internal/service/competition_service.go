package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/domain/ranking"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/platform/metrics"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompetitionInput carries the fields of a new competition.
type CompetitionInput struct {
	Name        string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
}

// CompetitionUpdate carries the optional fields of a competition change.
type CompetitionUpdate struct {
	Name        *string
	Description *string
	StartsAt    *time.Time
	EndsAt      *time.Time
}

// TaskInput carries the fields of a competition task.
type TaskInput struct {
	Name        string
	Description string
	TargetValue decimal.Decimal
	Unit        string
	Points      int
}

// ProgressInput is a participant's progress report on one task.
type ProgressInput struct {
	TaskID uuid.UUID
	Value  decimal.Decimal
	Mode   domain.ProgressMode
}

// Standing is a participant's progress on a task and their place afterwards.
type Standing struct {
	Progress    *domain.TaskProgress           `json:"progress"`
	Participant *domain.CompetitionParticipant `json:"participant"`
}

// CompetitionService runs gym competitions and keeps their leaderboards ranked.
type CompetitionService interface {
	List(ctx context.Context, filter store.CompetitionFilter, page store.Page) ([]domain.Competition, int, error)
	// Get returns a competition with its tasks.
	Get(ctx context.Context, id uuid.UUID) (*domain.Competition, error)
	Create(ctx context.Context, actor Actor, gymID uuid.UUID, in CompetitionInput) (*domain.Competition, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, in CompetitionUpdate) (*domain.Competition, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error

	AddTask(ctx context.Context, actor Actor, competitionID uuid.UUID, in TaskInput) (*domain.CompetitionTask, error)
	// DeleteTask removes a task with its progress rows and re-ranks the competition.
	DeleteTask(ctx context.Context, actor Actor, competitionID, taskID uuid.UUID) error

	Join(ctx context.Context, actor Actor, competitionID uuid.UUID) (*domain.CompetitionParticipant, error)
	Leave(ctx context.Context, actor Actor, competitionID uuid.UUID) error

	// RecordProgress applies a progress report, recomputes the participant's
	// total and re-ranks every participant, all in one transaction.
	RecordProgress(ctx context.Context, actor Actor, competitionID uuid.UUID, in ProgressInput) (*Standing, error)

	Leaderboard(ctx context.Context, competitionID uuid.UUID) ([]domain.CompetitionParticipant, error)
	MyProgress(ctx context.Context, actor Actor, competitionID uuid.UUID) ([]domain.TaskProgress, error)
}

type competitionServiceImpl struct {
	tx           store.TxRunner
	gyms         store.GymStore
	competitions store.CompetitionStore
	participants store.ParticipantStore
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

// NewCompetitionService creates a CompetitionService. m may be nil.
func NewCompetitionService(
	tx store.TxRunner,
	gyms store.GymStore,
	competitions store.CompetitionStore,
	participants store.ParticipantStore,
	m *metrics.Metrics,
	logger *slog.Logger,
) (CompetitionService, error) {
	if tx == nil || gyms == nil || competitions == nil || participants == nil {
		return nil, domain.NewValidationError("dependencies", "competition service dependencies cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &competitionServiceImpl{
		tx:           tx,
		gyms:         gyms,
		competitions: competitions,
		participants: participants,
		metrics:      m,
		logger:       logger.With(slog.String("component", "competition_service")),
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *competitionServiceImpl) List(
	ctx context.Context,
	filter store.CompetitionFilter,
	page store.Page,
) ([]domain.Competition, int, error) {
	switch filter.Status {
	case "", domain.CompetitionUpcoming, domain.CompetitionActive, domain.CompetitionCompleted:
	default:
		return nil, 0, domain.NewValidationError("status", "unknown competition status", domain.ErrInvalidStatus)
	}
	filter.Now = s.now()

	list, total, err := s.competitions.List(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	for i := range list {
		list[i].RefreshStatus(filter.Now)
	}
	return list, total, nil
}

func (s *competitionServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Competition, error) {
	c, err := s.competitions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.competitions.ListTasks(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Tasks = tasks
	c.RefreshStatus(s.now())
	return c, nil
}

func (s *competitionServiceImpl) Create(ctx context.Context, actor Actor, gymID uuid.UUID, in CompetitionInput) (*domain.Competition, error) {
	if _, err := ownedGym(ctx, s.gyms, actor, gymID); err != nil {
		return nil, err
	}

	c, err := domain.NewCompetition(gymID, in.Name, in.Description, in.StartsAt, in.EndsAt)
	if err != nil {
		return nil, err
	}
	if err := s.competitions.Create(ctx, c); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("competition created",
		slog.String("competition_id", c.ID.String()),
		slog.String("gym_id", gymID.String()))
	return c, nil
}

// owned loads a competition and checks that actor manages its gym.
func (s *competitionServiceImpl) owned(
	ctx context.Context,
	competitions store.CompetitionStore,
	gyms store.GymStore,
	actor Actor,
	id uuid.UUID,
	lock bool,
) (*domain.Competition, error) {
	get := competitions.GetByID
	if lock {
		get = competitions.GetByIDForUpdate
	}
	c, err := get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := ownedGym(ctx, gyms, actor, c.GymID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *competitionServiceImpl) Update(ctx context.Context, actor Actor, id uuid.UUID, in CompetitionUpdate) (*domain.Competition, error) {
	c, err := s.owned(ctx, s.competitions, s.gyms, actor, id, false)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.StartsAt != nil {
		c.StartsAt = in.StartsAt.UTC()
	}
	if in.EndsAt != nil {
		c.EndsAt = in.EndsAt.UTC()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.UpdatedAt = s.now()
	c.RefreshStatus(c.UpdatedAt)

	if err := s.competitions.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *competitionServiceImpl) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.owned(ctx, s.competitions, s.gyms, actor, id, false); err != nil {
		return err
	}
	return s.competitions.Delete(ctx, id)
}

func (s *competitionServiceImpl) AddTask(
	ctx context.Context,
	actor Actor,
	competitionID uuid.UUID,
	in TaskInput,
) (*domain.CompetitionTask, error) {
	c, err := s.owned(ctx, s.competitions, s.gyms, actor, competitionID, false)
	if err != nil {
		return nil, err
	}
	if c.StatusAt(s.now()) == domain.CompetitionCompleted {
		return nil, ErrCompetitionClosed
	}

	t, err := domain.NewCompetitionTask(competitionID, in.Name, in.Description, in.TargetValue, in.Unit, in.Points)
	if err != nil {
		return nil, err
	}
	if err := s.competitions.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *competitionServiceImpl) DeleteTask(ctx context.Context, actor Actor, competitionID, taskID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		competitions := s.competitions.WithTx(tx)
		participants := s.participants.WithTx(tx)

		if _, err := s.owned(ctx, competitions, s.gyms.WithTx(tx), actor, competitionID, true); err != nil {
			return err
		}
		t, err := competitions.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if t.CompetitionID != competitionID {
			return store.ErrCompTaskNotFound
		}

		if err := competitions.DeleteTask(ctx, taskID); err != nil {
			return err
		}
		if err := participants.RecalculateTotals(ctx, competitionID); err != nil {
			return err
		}
		_, err = s.rerank(ctx, participants, competitionID)
		return err
	})
}

func (s *competitionServiceImpl) Join(ctx context.Context, actor Actor, competitionID uuid.UUID) (*domain.CompetitionParticipant, error) {
	now := s.now()

	var joined *domain.CompetitionParticipant
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		participants := s.participants.WithTx(tx)

		c, err := s.competitions.WithTx(tx).GetByIDForUpdate(ctx, competitionID)
		if err != nil {
			return err
		}
		if c.StatusAt(now) == domain.CompetitionCompleted {
			return ErrCompetitionClosed
		}

		p := domain.NewCompetitionParticipant(competitionID, actor.UserID, now)
		if err := participants.Add(ctx, p); err != nil {
			return err
		}

		ranked, err := s.rerank(ctx, participants, competitionID)
		if err != nil {
			return err
		}
		joined = standingOf(ranked, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("competition joined",
		slog.String("competition_id", competitionID.String()),
		slog.String("user_id", actor.UserID.String()))
	return joined, nil
}

func (s *competitionServiceImpl) Leave(ctx context.Context, actor Actor, competitionID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		participants := s.participants.WithTx(tx)

		if _, err := s.competitions.WithTx(tx).GetByIDForUpdate(ctx, competitionID); err != nil {
			return err
		}
		if _, err := participants.Get(ctx, competitionID, actor.UserID); err != nil {
			if errors.Is(err, store.ErrParticipantNotFound) {
				return ErrNotParticipant
			}
			return err
		}

		if err := participants.Remove(ctx, competitionID, actor.UserID); err != nil {
			return err
		}
		_, err := s.rerank(ctx, participants, competitionID)
		return err
	})
}

func (s *competitionServiceImpl) RecordProgress(
	ctx context.Context,
	actor Actor,
	competitionID uuid.UUID,
	in ProgressInput,
) (*Standing, error) {
	if in.Mode == "" {
		in.Mode = domain.ProgressSet
	}
	if !in.Mode.Valid() {
		return nil, domain.NewValidationError("mode", domain.ErrInvalidProgressMode.Error(), domain.ErrInvalidProgressMode)
	}
	now := s.now()

	var standing *Standing
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		competitions := s.competitions.WithTx(tx)
		participants := s.participants.WithTx(tx)

		// Locking the competition serializes re-ranking per competition.
		c, err := competitions.GetByIDForUpdate(ctx, competitionID)
		if err != nil {
			return err
		}
		if c.StatusAt(now) != domain.CompetitionActive {
			return ErrCompetitionNotActive
		}

		participant, err := participants.Get(ctx, competitionID, actor.UserID)
		if err != nil {
			if errors.Is(err, store.ErrParticipantNotFound) {
				return ErrNotParticipant
			}
			return err
		}

		t, err := competitions.GetTask(ctx, in.TaskID)
		if err != nil {
			return err
		}
		if t.CompetitionID != competitionID {
			return store.ErrCompTaskNotFound
		}

		progress, err := participants.GetProgress(ctx, participant.ID, t.ID)
		switch {
		case errors.Is(err, store.ErrProgressNotFound):
			progress = &domain.TaskProgress{
				ID:            uuid.New(),
				ParticipantID: participant.ID,
				TaskID:        t.ID,
				Value:         decimal.Zero,
			}
		case err != nil:
			return err
		}

		progress.Value = ranking.ApplyProgress(progress.Value, in.Value, in.Mode)
		if progress.Value.GreaterThan(domain.MaxValue) {
			return domain.NewValidationError("value", domain.ErrValueOutOfRange.Error(), domain.ErrValueOutOfRange)
		}
		progress.PointsEarned, progress.Completed = ranking.PointsFor(t.Points, t.TargetValue, progress.Value)
		progress.UpdatedAt = now
		progress.TaskName = t.Name
		progress.TargetValue = t.TargetValue
		progress.Unit = t.Unit
		progress.Points = t.Points
		if err := participants.UpsertProgress(ctx, progress); err != nil {
			return err
		}

		all, err := participants.ListProgress(ctx, participant.ID)
		if err != nil {
			return err
		}
		if err := participants.UpdateTotal(ctx, participant.ID, ranking.Total(all)); err != nil {
			return err
		}

		ranked, err := s.rerank(ctx, participants, competitionID)
		if err != nil {
			return err
		}
		standing = &Standing{Progress: progress, Participant: standingOf(ranked, participant)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ProgressRecorded()
	logger.FromContextOrDefault(ctx, s.logger).Debug("competition progress recorded",
		slog.String("competition_id", competitionID.String()),
		slog.String("task_id", in.TaskID.String()),
		slog.Int("points_earned", standing.Progress.PointsEarned),
		slog.Int("rank", standing.Participant.Rank))
	return standing, nil
}

// rerank ranks every participant of a competition and stores the ranks that changed.
func (s *competitionServiceImpl) rerank(
	ctx context.Context,
	participants store.ParticipantStore,
	competitionID uuid.UUID,
) ([]domain.CompetitionParticipant, error) {
	list, err := participants.List(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	before := make(map[uuid.UUID]int, len(list))
	for _, p := range list {
		before[p.ID] = p.Rank
	}
	ranking.Rank(list)

	if changed := ranking.Changed(before, list); len(changed) > 0 {
		if err := participants.UpdateRanks(ctx, changed); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// standingOf returns p's entry in ranked, falling back to p itself.
func standingOf(ranked []domain.CompetitionParticipant, p *domain.CompetitionParticipant) *domain.CompetitionParticipant {
	for i := range ranked {
		if ranked[i].ID == p.ID {
			return &ranked[i]
		}
	}
	return p
}

func (s *competitionServiceImpl) Leaderboard(ctx context.Context, competitionID uuid.UUID) ([]domain.CompetitionParticipant, error) {
	if _, err := s.competitions.GetByID(ctx, competitionID); err != nil {
		return nil, err
	}
	return s.participants.List(ctx, competitionID)
}

func (s *competitionServiceImpl) MyProgress(ctx context.Context, actor Actor, competitionID uuid.UUID) ([]domain.TaskProgress, error) {
	p, err := s.participants.Get(ctx, competitionID, actor.UserID)
	if err != nil {
		if errors.Is(err, store.ErrParticipantNotFound) {
			return nil, ErrNotParticipant
		}
		return nil, err
	}
	return s.participants.ListProgress(ctx, p.ID)
}
