package api

import (
	"net/http"

	"github.com/fitdash/fitdash-api/internal/api/shared"
	"github.com/fitdash/fitdash-api/internal/service"
	"github.com/fitdash/fitdash-api/internal/store"
)

// GymHandler serves gyms, their membership plans and member rosters.
type GymHandler struct {
	gyms        service.GymService
	memberships service.MembershipService
}

// NewGymHandler creates a new GymHandler.
func NewGymHandler(gyms service.GymService, memberships service.MembershipService) *GymHandler {
	return &GymHandler{gyms: gyms, memberships: memberships}
}

// ListGyms handles GET /gyms.
func (h *GymHandler) ListGyms(w http.ResponseWriter, r *http.Request) {
	var q GymListQuery
	if !decodeQuery(w, r, &q) {
		return
	}

	page := q.page()
	gyms, total, err := h.gyms.ListGyms(r.Context(), store.GymFilter{Search: q.Search}, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list gyms")
		return
	}
	listResponse(w, r, gyms, page, total)
}

// GetGym handles GET /gyms/{id}.
func (h *GymHandler) GetGym(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	gym, err := h.gyms.GetGym(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get gym")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, gym)
}

// CreateGym handles POST /gyms.
func (h *GymHandler) CreateGym(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req CreateGymRequest
	if !decodeBody(w, r, &req) {
		return
	}

	gym, err := h.gyms.CreateGym(r.Context(), actor, service.GymInput{
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		MaxMembers:  req.MaxMembers,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create gym")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, gym)
}

// UpdateGym handles PATCH /gyms/{id}.
func (h *GymHandler) UpdateGym(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateGymRequest
	if !decodeBody(w, r, &req) {
		return
	}

	gym, err := h.gyms.UpdateGym(r.Context(), actor, id, service.GymUpdate{
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		MaxMembers:  req.MaxMembers,
		Unlimited:   req.UnlimitedMembers,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update gym")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, gym)
}

// DeleteGym handles DELETE /gyms/{id}.
func (h *GymHandler) DeleteGym(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.gyms.DeleteGym(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete gym")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPlans handles GET /gyms/{id}/plans. Inactive plans are only listed for
// the gym's owner.
func (h *GymHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	gymID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var q PlanListQuery
	if !decodeQuery(w, r, &q) {
		return
	}

	plans, err := h.gyms.ListPlans(r.Context(), optionalActor(r), gymID, q.IncludeInactive)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list plans")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, plans)
}

// CreatePlan handles POST /gyms/{id}/plans.
func (h *GymHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	gymID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req CreatePlanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	plan, err := h.gyms.CreatePlan(r.Context(), actor, gymID, service.PlanInput{
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		Currency:           req.Currency,
		DurationDays:       req.DurationDays,
		WeeklyBookingLimit: req.WeeklyBookingLimit,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create plan")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, plan)
}

// UpdatePlan handles PATCH /plans/{id}.
func (h *GymHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	planID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdatePlanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	plan, err := h.gyms.UpdatePlan(r.Context(), actor, planID, service.PlanUpdate{
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		DurationDays:       req.DurationDays,
		WeeklyBookingLimit: req.WeeklyBookingLimit,
		Active:             req.Active,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update plan")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, plan)
}

// DeletePlan handles DELETE /plans/{id}. Plans that were ever purchased are
// deactivated instead of deleted.
func (h *GymHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	planID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	deactivated, err := h.gyms.DeletePlan(r.Context(), actor, planID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete plan")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, DeletePlanResponse{Deactivated: deactivated})
}

// ListMembers handles GET /gyms/{id}/members.
func (h *GymHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	gymID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var q PageQuery
	if !decodeQuery(w, r, &q) {
		return
	}

	page := q.page()
	members, total, err := h.memberships.ListGymMembers(r.Context(), actor, gymID, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list members")
		return
	}
	listResponse(w, r, members, page, total)
}
