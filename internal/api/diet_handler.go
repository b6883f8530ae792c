package api

import (
	"net/http"

	"github.com/fitdash/fitdash-api/internal/api/shared"
	"github.com/fitdash/fitdash-api/internal/service"
)

// DietHandler serves the caller's diet log.
type DietHandler struct {
	diet service.DietService
}

// NewDietHandler creates a new DietHandler.
func NewDietHandler(diet service.DietService) *DietHandler {
	return &DietHandler{diet: diet}
}

// List handles GET /diet.
func (h *DietHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var q WindowPageQuery
	if !decodeQuery(w, r, &q) {
		return
	}

	page := q.page()
	entries, total, err := h.diet.List(r.Context(), actor, q.window(), page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list diet entries")
		return
	}
	listResponse(w, r, entries, page, total)
}

// Create handles POST /diet.
func (h *DietHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req DietRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entry, err := h.diet.Create(r.Context(), actor, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create diet entry")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, entry)
}

// Replace handles PUT /diet/{id}.
func (h *DietHandler) Replace(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req DietRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entry, err := h.diet.Replace(r.Context(), actor, id, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update diet entry")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, entry)
}

// Delete handles DELETE /diet/{id}.
func (h *DietHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.diet.Delete(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete diet entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /diet/summary.
func (h *DietHandler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var q WindowQuery
	if !decodeQuery(w, r, &q) {
		return
	}

	summary, err := h.diet.Summary(r.Context(), actor, q.window())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build diet summary")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, summary)
}

func (req DietRequest) input() service.DietInput {
	return service.DietInput{
		ConsumedAt: req.ConsumedAt,
		MealType:   req.MealType,
		FoodName:   req.FoodName,
		Calories:   req.Calories,
		ProteinG:   req.ProteinG,
		CarbsG:     req.CarbsG,
		FatG:       req.FatG,
		Notes:      req.Notes,
	}
}
