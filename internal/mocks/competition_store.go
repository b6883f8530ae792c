package mocks

import (
	"context"
	"database/sql"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCompetitionStore is a mock of store.CompetitionStore.
type MockCompetitionStore struct {
	mock.Mock
}

var _ store.CompetitionStore = (*MockCompetitionStore)(nil)

func (m *MockCompetitionStore) Create(ctx context.Context, competition *domain.Competition) error {
	return m.Called(ctx, competition).Error(0)
}

func (m *MockCompetitionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Competition, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*domain.Competition); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCompetitionStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Competition, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*domain.Competition); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCompetitionStore) List(
	ctx context.Context,
	filter store.CompetitionFilter,
	page store.Page,
) ([]domain.Competition, int, error) {
	args := m.Called(ctx, filter, page)
	list, _ := args.Get(0).([]domain.Competition)
	return list, args.Int(1), args.Error(2)
}

func (m *MockCompetitionStore) Update(ctx context.Context, competition *domain.Competition) error {
	return m.Called(ctx, competition).Error(0)
}

func (m *MockCompetitionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCompetitionStore) CreateTask(ctx context.Context, task *domain.CompetitionTask) error {
	return m.Called(ctx, task).Error(0)
}

func (m *MockCompetitionStore) GetTask(ctx context.Context, id uuid.UUID) (*domain.CompetitionTask, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*domain.CompetitionTask); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCompetitionStore) ListTasks(ctx context.Context, competitionID uuid.UUID) ([]domain.CompetitionTask, error) {
	args := m.Called(ctx, competitionID)
	list, _ := args.Get(0).([]domain.CompetitionTask)
	return list, args.Error(1)
}

func (m *MockCompetitionStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCompetitionStore) WithTx(*sql.Tx) store.CompetitionStore { return m }

// MockParticipantStore is a mock of store.ParticipantStore.
type MockParticipantStore struct {
	mock.Mock
}

var _ store.ParticipantStore = (*MockParticipantStore)(nil)

func (m *MockParticipantStore) Add(ctx context.Context, participant *domain.CompetitionParticipant) error {
	return m.Called(ctx, participant).Error(0)
}

func (m *MockParticipantStore) Get(ctx context.Context, competitionID, userID uuid.UUID) (*domain.CompetitionParticipant, error) {
	args := m.Called(ctx, competitionID, userID)
	if p, ok := args.Get(0).(*domain.CompetitionParticipant); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockParticipantStore) Remove(ctx context.Context, competitionID, userID uuid.UUID) error {
	return m.Called(ctx, competitionID, userID).Error(0)
}

func (m *MockParticipantStore) List(ctx context.Context, competitionID uuid.UUID) ([]domain.CompetitionParticipant, error) {
	args := m.Called(ctx, competitionID)
	list, _ := args.Get(0).([]domain.CompetitionParticipant)
	return list, args.Error(1)
}

func (m *MockParticipantStore) GetProgress(ctx context.Context, participantID, taskID uuid.UUID) (*domain.TaskProgress, error) {
	args := m.Called(ctx, participantID, taskID)
	if p, ok := args.Get(0).(*domain.TaskProgress); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockParticipantStore) UpsertProgress(ctx context.Context, progress *domain.TaskProgress) error {
	return m.Called(ctx, progress).Error(0)
}

func (m *MockParticipantStore) ListProgress(ctx context.Context, participantID uuid.UUID) ([]domain.TaskProgress, error) {
	args := m.Called(ctx, participantID)
	list, _ := args.Get(0).([]domain.TaskProgress)
	return list, args.Error(1)
}

func (m *MockParticipantStore) UpdateTotal(ctx context.Context, participantID uuid.UUID, total int) error {
	return m.Called(ctx, participantID, total).Error(0)
}

func (m *MockParticipantStore) RecalculateTotals(ctx context.Context, competitionID uuid.UUID) error {
	return m.Called(ctx, competitionID).Error(0)
}

func (m *MockParticipantStore) UpdateRanks(ctx context.Context, participants []domain.CompetitionParticipant) error {
	return m.Called(ctx, participants).Error(0)
}

func (m *MockParticipantStore) WithTx(*sql.Tx) store.ParticipantStore { return m }
