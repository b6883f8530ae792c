package api

import (
	"net/http"

	"github.com/fitdash/fitdash-api/internal/api/shared"
	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/service"
)

// BookingHandler serves class bookings.
type BookingHandler struct {
	bookings service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookings service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Book handles POST /bookings.
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req CreateBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	booking, err := h.bookings.Book(r.Context(), actor, req.ScheduleID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to book class")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, booking)
}

// ListMine handles GET /bookings.
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var q BookingListQuery
	if !decodeQuery(w, r, &q) {
		return
	}

	var status *domain.BookingStatus
	if q.Status != "" {
		status = &q.Status
	}

	page := q.page()
	bookings, total, err := h.bookings.ListMine(r.Context(), actor, status, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list bookings")
		return
	}
	listResponse(w, r, bookings, page, total)
}

// Cancel handles DELETE /bookings/{id}.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.Cancel(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to cancel booking")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, booking)
}

// Attend handles POST /bookings/{id}/attend.
func (h *BookingHandler) Attend(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.MarkAttended(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to mark attendance")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, booking)
}
