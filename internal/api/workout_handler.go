package api

import (
	"net/http"

	"github.com/fitdash/fitdash-api/internal/api/shared"
	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/service"
	"github.com/fitdash/fitdash-api/internal/store"
)

// WorkoutHandler serves planned and logged workouts and the training summary.
type WorkoutHandler struct {
	workouts service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workouts service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workouts: workouts}
}

// ListPlanned handles GET /workouts/planned.
func (h *WorkoutHandler) ListPlanned(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var q WindowPageQuery
	if !decodeQuery(w, r, &q) {
		return
	}

	page := q.page()
	workouts, total, err := h.workouts.ListPlanned(r.Context(), actor, q.window(), page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list planned workouts")
		return
	}
	listResponse(w, r, workouts, page, total)
}

// GetPlanned handles GET /workouts/planned/{id}.
func (h *WorkoutHandler) GetPlanned(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	workout, err := h.workouts.GetPlanned(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get planned workout")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, workout)
}

// CreatePlanned handles POST /workouts/planned.
func (h *WorkoutHandler) CreatePlanned(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req PlannedWorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	workout, err := h.workouts.CreatePlanned(r.Context(), actor, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create planned workout")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, workout)
}

// ReplacePlanned handles PUT /workouts/planned/{id}.
func (h *WorkoutHandler) ReplacePlanned(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req PlannedWorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	workout, err := h.workouts.ReplacePlanned(r.Context(), actor, id, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update planned workout")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, workout)
}

// DeletePlanned handles DELETE /workouts/planned/{id}.
func (h *WorkoutHandler) DeletePlanned(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.workouts.DeletePlanned(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete planned workout")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListActual handles GET /workouts/actual.
func (h *WorkoutHandler) ListActual(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var q WindowPageQuery
	if !decodeQuery(w, r, &q) {
		return
	}

	page := q.page()
	workouts, total, err := h.workouts.ListActual(r.Context(), actor, q.window(), page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list workouts")
		return
	}
	listResponse(w, r, workouts, page, total)
}

// GetActual handles GET /workouts/actual/{id}.
func (h *WorkoutHandler) GetActual(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	workout, err := h.workouts.GetActual(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get workout")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, workout)
}

// LogActual handles POST /workouts/actual.
func (h *WorkoutHandler) LogActual(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req ActualWorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	workout, err := h.workouts.LogActual(r.Context(), actor, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to log workout")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, workout)
}

// DeleteActual handles DELETE /workouts/actual/{id}.
func (h *WorkoutHandler) DeleteActual(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.workouts.DeleteActual(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete workout")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /workouts/summary.
func (h *WorkoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var q WindowQuery
	if !decodeQuery(w, r, &q) {
		return
	}

	summary, err := h.workouts.Summary(r.Context(), actor, q.window())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build workout summary")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, summary)
}

func (q WindowQuery) window() store.TimeRange {
	return store.TimeRange{From: q.From, To: q.To}
}

func (req PlannedWorkoutRequest) input() service.PlannedWorkoutInput {
	exercises := make([]domain.PlannedExercise, len(req.Exercises))
	for i, e := range req.Exercises {
		exercises[i] = domain.PlannedExercise{
			ExerciseID:            e.ExerciseID,
			TargetSets:            e.TargetSets,
			TargetReps:            e.TargetReps,
			TargetWeight:          e.TargetWeight,
			TargetDurationSeconds: e.TargetDurationSeconds,
		}
	}
	return service.PlannedWorkoutInput{
		Name:         req.Name,
		ScheduledFor: req.ScheduledFor,
		Notes:        req.Notes,
		Exercises:    exercises,
	}
}

func (req ActualWorkoutRequest) input() service.ActualWorkoutInput {
	exercises := make([]domain.ActualExercise, len(req.Exercises))
	for i, e := range req.Exercises {
		exercises[i] = domain.ActualExercise{
			ExerciseID:      e.ExerciseID,
			Sets:            e.Sets,
			Reps:            e.Reps,
			Weight:          e.Weight,
			DurationSeconds: e.DurationSeconds,
		}
	}
	return service.ActualWorkoutInput{
		Name:             req.Name,
		PerformedAt:      req.PerformedAt,
		DurationMinutes:  req.DurationMinutes,
		PlannedWorkoutID: req.PlannedWorkoutID,
		Notes:            req.Notes,
		Exercises:        exercises,
	}
}
