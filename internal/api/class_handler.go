package api

import (
	"net/http"

	"github.com/fitdash/fitdash-api/internal/api/shared"
	"github.com/fitdash/fitdash-api/internal/service"
	"github.com/fitdash/fitdash-api/internal/store"
)

// ClassHandler serves gym classes and their scheduled occurrences.
type ClassHandler struct {
	classes service.ClassService
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classes service.ClassService) *ClassHandler {
	return &ClassHandler{classes: classes}
}

// ListClasses handles GET /gyms/{id}/classes.
func (h *ClassHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	gymID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	classes, err := h.classes.ListClasses(r.Context(), gymID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list classes")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, classes)
}

// GetClass handles GET /classes/{id}.
func (h *ClassHandler) GetClass(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	class, err := h.classes.GetClass(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get class")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, class)
}

// CreateClass handles POST /gyms/{id}/classes.
func (h *ClassHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	gymID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req CreateClassRequest
	if !decodeBody(w, r, &req) {
		return
	}

	class, err := h.classes.CreateClass(r.Context(), actor, gymID, service.ClassInput{
		Name:            req.Name,
		Description:     req.Description,
		Instructor:      req.Instructor,
		Capacity:        req.Capacity,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create class")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, class)
}

// UpdateClass handles PATCH /classes/{id}.
func (h *ClassHandler) UpdateClass(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateClassRequest
	if !decodeBody(w, r, &req) {
		return
	}

	class, err := h.classes.UpdateClass(r.Context(), actor, id, service.ClassUpdate{
		Name:            req.Name,
		Description:     req.Description,
		Instructor:      req.Instructor,
		Capacity:        req.Capacity,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update class")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, class)
}

// DeleteClass handles DELETE /classes/{id}.
func (h *ClassHandler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.classes.DeleteClass(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete class")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSchedules handles GET /classes/{id}/schedules.
func (h *ClassHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	classID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var q WindowQuery
	if !decodeQuery(w, r, &q) {
		return
	}

	schedules, err := h.classes.ListSchedules(r.Context(), classID, store.TimeRange{From: q.From, To: q.To})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list schedules")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, schedules)
}

// CreateSchedule handles POST /classes/{id}/schedules.
func (h *ClassHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	classID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req CreateScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	schedule, err := h.classes.CreateSchedule(r.Context(), actor, classID, req.StartsAt, req.Capacity)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create schedule")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, schedule)
}

// CancelSchedule handles DELETE /schedules/{id}.
func (h *ClassHandler) CancelSchedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	cancelled, err := h.classes.CancelSchedule(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to cancel schedule")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, CancelScheduleResponse{BookingsCancelled: cancelled})
}

// ListScheduleBookings handles GET /schedules/{id}/bookings.
func (h *ClassHandler) ListScheduleBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	bookings, err := h.classes.ListScheduleBookings(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list bookings")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, bookings)
}
