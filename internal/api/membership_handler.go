package api

import (
	"net/http"

	"github.com/fitdash/fitdash-api/internal/api/shared"
	"github.com/fitdash/fitdash-api/internal/service"
)

// MembershipHandler serves membership purchase and lifecycle endpoints.
type MembershipHandler struct {
	memberships service.MembershipService
}

// NewMembershipHandler creates a new MembershipHandler.
func NewMembershipHandler(memberships service.MembershipService) *MembershipHandler {
	return &MembershipHandler{memberships: memberships}
}

// Purchase handles POST /memberships. The response carries the client secret
// the dashboard needs to confirm the payment.
func (h *MembershipHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req PurchaseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	purchase, err := h.memberships.Purchase(r.Context(), actor, req.PlanID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to purchase membership")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, purchase)
}

// ListMine handles GET /memberships.
func (h *MembershipHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var q PageQuery
	if !decodeQuery(w, r, &q) {
		return
	}

	page := q.page()
	memberships, total, err := h.memberships.ListMine(r.Context(), actor, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list memberships")
		return
	}
	listResponse(w, r, memberships, page, total)
}

// Get handles GET /memberships/{id}.
func (h *MembershipHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	membership, err := h.memberships.Get(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get membership")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, membership)
}

// Cancel handles POST /memberships/{id}/cancel.
func (h *MembershipHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	membership, err := h.memberships.Cancel(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to cancel membership")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, membership)
}
