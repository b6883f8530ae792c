package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/service"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCompetitionService struct {
	service.CompetitionService
	mock.Mock
}

func (m *mockCompetitionService) List(
	ctx context.Context,
	filter store.CompetitionFilter,
	page store.Page,
) ([]domain.Competition, int, error) {
	args := m.Called(ctx, filter, page)
	list, _ := args.Get(0).([]domain.Competition)
	return list, args.Int(1), args.Error(2)
}

func (m *mockCompetitionService) DeleteTask(ctx context.Context, actor service.Actor, competitionID, taskID uuid.UUID) error {
	return m.Called(ctx, actor, competitionID, taskID).Error(0)
}

func (m *mockCompetitionService) Join(
	ctx context.Context,
	actor service.Actor,
	competitionID uuid.UUID,
) (*domain.CompetitionParticipant, error) {
	args := m.Called(ctx, actor, competitionID)
	p, _ := args.Get(0).(*domain.CompetitionParticipant)
	return p, args.Error(1)
}

func (m *mockCompetitionService) RecordProgress(
	ctx context.Context,
	actor service.Actor,
	competitionID uuid.UUID,
	in service.ProgressInput,
) (*service.Standing, error) {
	args := m.Called(ctx, actor, competitionID, in)
	s, _ := args.Get(0).(*service.Standing)
	return s, args.Error(1)
}

func (m *mockCompetitionService) Leaderboard(ctx context.Context, competitionID uuid.UUID) ([]domain.CompetitionParticipant, error) {
	args := m.Called(ctx, competitionID)
	list, _ := args.Get(0).([]domain.CompetitionParticipant)
	return list, args.Error(1)
}

func competitionRouter(competitions *mockCompetitionService, actor *service.Actor) http.Handler {
	h := NewCompetitionHandler(competitions)
	return newTestRouter(actor, func(r chi.Router) {
		r.Get("/competitions", h.List)
		r.Post("/competitions/{id}/join", h.Join)
		r.Post("/competitions/{id}/progress", h.RecordProgress)
		r.Get("/competitions/{id}/leaderboard", h.Leaderboard)
		r.Delete("/competitions/{id}/tasks/{taskId}", h.DeleteTask)
	})
}

func TestCompetitionHandler_List(t *testing.T) {
	t.Parallel()

	t.Run("gym and status filters", func(t *testing.T) {
		gymID := uuid.New()
		competitions := &mockCompetitionService{}
		competitions.On("List", mock.Anything, mock.MatchedBy(func(f store.CompetitionFilter) bool {
			return f.GymID != nil && *f.GymID == gymID && f.Status == domain.CompetitionActive
		}), store.NewPage(1, 20)).Return([]domain.Competition{{ID: uuid.New()}}, 1, nil)

		rec, env := do(t, competitionRouter(competitions, nil), http.MethodGet,
			"/competitions?gym_id="+gymID.String()+"&status=active", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, env.Pagination.Total)
		competitions.AssertExpectations(t)
	})

	t.Run("no gym filter", func(t *testing.T) {
		competitions := &mockCompetitionService{}
		competitions.On("List", mock.Anything, mock.MatchedBy(func(f store.CompetitionFilter) bool {
			return f.GymID == nil && f.Status == ""
		}), mock.Anything).Return(nil, 0, nil)

		rec, _ := do(t, competitionRouter(competitions, nil), http.MethodGet, "/competitions", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("malformed gym id", func(t *testing.T) {
		rec, _ := do(t, competitionRouter(&mockCompetitionService{}, nil), http.MethodGet, "/competitions?gym_id=nope", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCompetitionHandler_RecordProgress(t *testing.T) {
	t.Parallel()

	competitionID, taskID := uuid.New(), uuid.New()
	target := "/competitions/" + competitionID.String() + "/progress"

	t.Run("returns the standing", func(t *testing.T) {
		actor := memberActor()
		competitions := &mockCompetitionService{}
		competitions.On("RecordProgress", mock.Anything, *actor, competitionID, mock.MatchedBy(func(in service.ProgressInput) bool {
			return in.TaskID == taskID && in.Value.Equal(decimal.RequireFromString("12.5")) && in.Mode == domain.ProgressIncrement
		})).Return(&service.Standing{
			Progress:    &domain.TaskProgress{TaskID: taskID, PointsEarned: 62},
			Participant: &domain.CompetitionParticipant{UserID: actor.UserID, TotalPoints: 62, Rank: 2},
		}, nil)

		rec, env := do(t, competitionRouter(competitions, actor), http.MethodPost, target,
			map[string]any{"task_id": taskID.String(), "value": "12.5", "mode": "increment"})

		require.Equal(t, http.StatusOK, rec.Code)
		var standing service.Standing
		decodeData(t, env, &standing)
		require.NotNil(t, standing.Participant)
		assert.Equal(t, 2, standing.Participant.Rank)
		assert.Equal(t, 62, standing.Progress.PointsEarned)
	})

	t.Run("numeric values are accepted", func(t *testing.T) {
		actor := memberActor()
		competitions := &mockCompetitionService{}
		competitions.On("RecordProgress", mock.Anything, *actor, competitionID, mock.MatchedBy(func(in service.ProgressInput) bool {
			return in.Value.Equal(decimal.NewFromInt(3)) && in.Mode == ""
		})).Return(&service.Standing{}, nil)

		rec, _ := do(t, competitionRouter(competitions, actor), http.MethodPost, target,
			map[string]any{"task_id": taskID.String(), "value": 3})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid mode", func(t *testing.T) {
		rec, env := do(t, competitionRouter(&mockCompetitionService{}, memberActor()), http.MethodPost, target,
			map[string]any{"task_id": taskID.String(), "value": "1", "mode": "double"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, env.Details, 1)
		assert.Equal(t, "mode", env.Details[0].Field)
		assert.Equal(t, "must be one of: set increment", env.Details[0].Message)
	})

	t.Run("value above storable range", func(t *testing.T) {
		rec, env := do(t, competitionRouter(&mockCompetitionService{}, memberActor()), http.MethodPost, target,
			map[string]any{"task_id": taskID.String(), "value": "10000000000"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, env.Details, 1)
		assert.Equal(t, "value", env.Details[0].Field)
		assert.Equal(t, "must be at most 9999999999.99", env.Details[0].Message)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not participant", service.ErrNotParticipant, http.StatusForbidden},
		{"not active", service.ErrCompetitionNotActive, http.StatusConflict},
		{"unknown task", store.ErrCompTaskNotFound, http.StatusNotFound},
		{"negative value", domain.NewValidationError("value", "must not be negative", nil), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := memberActor()
			competitions := &mockCompetitionService{}
			competitions.On("RecordProgress", mock.Anything, *actor, competitionID, mock.Anything).Return(nil, tt.err)

			rec, _ := do(t, competitionRouter(competitions, actor), http.MethodPost, target,
				map[string]any{"task_id": taskID.String(), "value": "1"})
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCompetitionHandler_JoinAndLeaderboard(t *testing.T) {
	t.Parallel()

	competitionID := uuid.New()

	t.Run("join twice", func(t *testing.T) {
		actor := memberActor()
		competitions := &mockCompetitionService{}
		competitions.On("Join", mock.Anything, *actor, competitionID).Return(nil, store.ErrAlreadyParticipant)

		rec, env := do(t, competitionRouter(competitions, actor), http.MethodPost,
			"/competitions/"+competitionID.String()+"/join", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "You have already joined this competition", env.Error)
	})

	t.Run("leaderboard is public", func(t *testing.T) {
		competitions := &mockCompetitionService{}
		competitions.On("Leaderboard", mock.Anything, competitionID).Return([]domain.CompetitionParticipant{
			{UserName: "Ana", TotalPoints: 30, Rank: 1},
			{UserName: "Ben", TotalPoints: 20, Rank: 2},
			{UserName: "Cy", TotalPoints: 20, Rank: 2},
			{UserName: "Di", TotalPoints: 10, Rank: 4},
		}, nil)

		rec, env := do(t, competitionRouter(competitions, nil), http.MethodGet,
			"/competitions/"+competitionID.String()+"/leaderboard", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var board []domain.CompetitionParticipant
		decodeData(t, env, &board)
		require.Len(t, board, 4)
		assert.Equal(t, []int{1, 2, 2, 4}, []int{board[0].Rank, board[1].Rank, board[2].Rank, board[3].Rank})
	})

	t.Run("delete task", func(t *testing.T) {
		actor := ownerActor()
		taskID := uuid.New()
		competitions := &mockCompetitionService{}
		competitions.On("DeleteTask", mock.Anything, *actor, competitionID, taskID).Return(nil)

		rec, _ := do(t, competitionRouter(competitions, actor), http.MethodDelete,
			"/competitions/"+competitionID.String()+"/tasks/"+taskID.String(), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		competitions.AssertExpectations(t)
	})
}
