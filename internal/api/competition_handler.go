package api

import (
	"net/http"

	"github.com/fitdash/fitdash-api/internal/api/shared"
	"github.com/fitdash/fitdash-api/internal/service"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
)

// CompetitionHandler serves competitions, their tasks, participation and
// the leaderboard.
type CompetitionHandler struct {
	competitions service.CompetitionService
}

// NewCompetitionHandler creates a new CompetitionHandler.
func NewCompetitionHandler(competitions service.CompetitionService) *CompetitionHandler {
	return &CompetitionHandler{competitions: competitions}
}

// List handles GET /competitions.
func (h *CompetitionHandler) List(w http.ResponseWriter, r *http.Request) {
	var q CompetitionListQuery
	if !decodeQuery(w, r, &q) {
		return
	}

	filter := store.CompetitionFilter{Status: q.Status}
	if q.GymID != uuid.Nil {
		filter.GymID = &q.GymID
	}

	page := q.page()
	competitions, total, err := h.competitions.List(r.Context(), filter, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list competitions")
		return
	}
	listResponse(w, r, competitions, page, total)
}

// Get handles GET /competitions/{id}.
func (h *CompetitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	competition, err := h.competitions.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get competition")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, competition)
}

// Create handles POST /gyms/{id}/competitions.
func (h *CompetitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	gymID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req CreateCompetitionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	competition, err := h.competitions.Create(r.Context(), actor, gymID, service.CompetitionInput{
		Name:        req.Name,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create competition")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, competition)
}

// Update handles PATCH /competitions/{id}.
func (h *CompetitionHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateCompetitionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	competition, err := h.competitions.Update(r.Context(), actor, id, service.CompetitionUpdate{
		Name:        req.Name,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update competition")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, competition)
}

// Delete handles DELETE /competitions/{id}.
func (h *CompetitionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.competitions.Delete(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete competition")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTask handles POST /competitions/{id}/tasks.
func (h *CompetitionHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	task, err := h.competitions.AddTask(r.Context(), actor, id, service.TaskInput{
		Name:        req.Name,
		Description: req.Description,
		TargetValue: req.TargetValue,
		Unit:        req.Unit,
		Points:      req.Points,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add task")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, task)
}

// DeleteTask handles DELETE /competitions/{id}/tasks/{taskId}.
func (h *CompetitionHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskId")
	if !ok {
		return
	}

	if err := h.competitions.DeleteTask(r.Context(), actor, id, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Join handles POST /competitions/{id}/join.
func (h *CompetitionHandler) Join(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	participant, err := h.competitions.Join(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to join competition")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, participant)
}

// Leave handles DELETE /competitions/{id}/join.
func (h *CompetitionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.competitions.Leave(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to leave competition")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordProgress handles POST /competitions/{id}/progress.
func (h *CompetitionHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req ProgressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	standing, err := h.competitions.RecordProgress(r.Context(), actor, id, service.ProgressInput{
		TaskID: req.TaskID,
		Value:  req.Value,
		Mode:   req.Mode,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record progress")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, standing)
}

// Leaderboard handles GET /competitions/{id}/leaderboard.
func (h *CompetitionHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	participants, err := h.competitions.Leaderboard(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load leaderboard")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, participants)
}

// MyProgress handles GET /competitions/{id}/progress.
func (h *CompetitionHandler) MyProgress(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	progress, err := h.competitions.MyProgress(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load progress")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, progress)
}
