package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fitdash/fitdash-api/internal/api/shared"
	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/logger"
	"github.com/fitdash/fitdash-api/internal/service"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PageQuery holds the pagination parameters shared by list endpoints.
type PageQuery struct {
	Page  int `query:"page"  validate:"omitempty,gte=1"`
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=100"`
}

func (q PageQuery) page() store.Page {
	return store.NewPage(q.Page, q.Limit)
}

// listResponse writes a page of items with its pagination block.
func listResponse[T any](w http.ResponseWriter, r *http.Request, items []T, page store.Page, total int) {
	if items == nil {
		items = []T{}
	}
	shared.RespondWithList(w, r, items, shared.NewPagination(page.Number, page.Limit, total))
}

// actorFrom returns the authenticated caller, writing a 401 when the request
// carries none.
func actorFrom(w http.ResponseWriter, r *http.Request) (service.Actor, bool) {
	actor, ok := shared.ActorFrom(r.Context())
	if !ok || actor.UserID == uuid.Nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).Warn("actor missing from request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return service.Actor{}, false
	}
	return actor, true
}

// optionalActor returns the caller of a public route, if authenticated.
func optionalActor(r *http.Request) *service.Actor {
	actor, ok := shared.ActorFrom(r.Context())
	if !ok {
		return nil
	}
	return &actor
}

// pathUUID parses the named URL parameter, writing a 400 when it is not a UUID.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError(name, "must be a valid ID", domain.ErrInvalidID), "")
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes and validates a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err, "")
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}

// decodeQuery decodes and validates the URL query, writing a 400 on failure.
func decodeQuery(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeQuery(r.URL.Query(), v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid query parameters", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}
