package api

import (
	"net/http"

	"github.com/fitdash/fitdash-api/internal/api/shared"
	"github.com/fitdash/fitdash-api/internal/service"
	"github.com/fitdash/fitdash-api/internal/store"
)

// ExerciseHandler serves the exercise catalog.
type ExerciseHandler struct {
	exercises service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exercises service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exercises: exercises}
}

// List handles GET /exercises.
func (h *ExerciseHandler) List(w http.ResponseWriter, r *http.Request) {
	var q ExerciseListQuery
	if !decodeQuery(w, r, &q) {
		return
	}

	page := q.page()
	filter := store.ExerciseFilter{Search: q.Search, MuscleGroup: q.MuscleGroup}
	exercises, total, err := h.exercises.List(r.Context(), filter, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list exercises")
		return
	}
	listResponse(w, r, exercises, page, total)
}

// Get handles GET /exercises/{id}.
func (h *ExerciseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	exercise, err := h.exercises.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get exercise")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, exercise)
}

// Create handles POST /exercises.
func (h *ExerciseHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req ExerciseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	exercise, err := h.exercises.Create(r.Context(), actor, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create exercise")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, exercise)
}

// Update handles PATCH /exercises/{id}.
func (h *ExerciseHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req ExerciseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	exercise, err := h.exercises.Update(r.Context(), actor, id, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update exercise")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, exercise)
}

// Delete handles DELETE /exercises/{id}.
func (h *ExerciseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.exercises.Delete(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete exercise")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (req ExerciseRequest) input() service.ExerciseInput {
	return service.ExerciseInput{
		Name:        req.Name,
		MuscleGroup: req.MuscleGroup,
		Equipment:   req.Equipment,
		Description: req.Description,
	}
}
