package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitdash/fitdash-api/internal/api/shared"
	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status     string              `json:"status"`
	Data       json.RawMessage     `json:"data"`
	Pagination *shared.Pagination  `json:"pagination"`
	Error      string              `json:"error"`
	Details    []shared.FieldError `json:"details"`
}

// withActor authenticates every request as actor, or leaves it anonymous when nil.
func withActor(actor *service.Actor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor != nil {
				r = r.WithContext(shared.WithActor(r.Context(), *actor))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func memberActor() *service.Actor {
	return &service.Actor{UserID: uuid.New(), Role: domain.RoleMember}
}

func ownerActor() *service.Actor {
	return &service.Actor{UserID: uuid.New(), Role: domain.RoleGymOwner}
}

func newTestRouter(actor *service.Actor, mount func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(withActor(actor))
	mount(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}
