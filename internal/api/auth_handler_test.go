package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/service"
	"github.com/fitdash/fitdash-api/internal/service/auth"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserService struct {
	service.UserService
	mock.Mock
}

func (m *mockUserService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in service.ProfileUpdate) (*domain.User, error) {
	args := m.Called(ctx, userID, in)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID, role domain.Role) (string, time.Time, error) {
	args := m.Called(ctx, userID, role)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*auth.Claims)
	return claims, args.Error(1)
}

func (m *mockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID, role domain.Role) (string, error) {
	args := m.Called(ctx, userID, role)
	return args.String(0), args.Error(1)
}

func (m *mockJWTService) ValidateRefreshToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*auth.Claims)
	return claims, args.Error(1)
}

func authRouter(users *mockUserService, jwt *mockJWTService, actor *service.Actor) http.Handler {
	h := NewAuthHandler(users, jwt, nil)
	return newTestRouter(actor, func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/refresh", h.RefreshToken)
		r.Get("/users/me", h.Me)
		r.Patch("/users/me", h.UpdateMe)
	})
}

func expectTokens(jwt *mockJWTService, user *domain.User, expiresAt time.Time) {
	jwt.On("GenerateToken", mock.Anything, user.ID, user.Role).Return("access-token", expiresAt, nil)
	jwt.On("GenerateRefreshToken", mock.Anything, user.ID, user.Role).Return("refresh-token", nil)
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()

	expiresAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("creates user and returns token pair", func(t *testing.T) {
		users, jwt := &mockUserService{}, &mockJWTService{}
		user := &domain.User{ID: uuid.New(), Email: "ana@example.com", Name: "Ana", Role: domain.RoleGymOwner}
		users.On("Register", mock.Anything, service.RegisterInput{
			Email:    "ana@example.com",
			Password: "correct-horse-battery",
			Name:     "Ana",
			Role:     domain.RoleGymOwner,
		}).Return(user, nil)
		expectTokens(jwt, user, expiresAt)

		rec, env := do(t, authRouter(users, jwt, nil), http.MethodPost, "/auth/register", map[string]any{
			"email":    "ana@example.com",
			"password": "correct-horse-battery",
			"name":     "Ana",
			"role":     "gym_owner",
		})

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp AuthResponse
		decodeData(t, env, &resp)
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, "refresh-token", resp.RefreshToken)
		assert.True(t, expiresAt.Equal(resp.ExpiresAt))
		require.NotNil(t, resp.User)
		assert.Equal(t, user.ID, resp.User.ID)
		users.AssertExpectations(t)
		jwt.AssertExpectations(t)
	})

	t.Run("rejects short password with field details", func(t *testing.T) {
		users, jwt := &mockUserService{}, &mockJWTService{}

		rec, env := do(t, authRouter(users, jwt, nil), http.MethodPost, "/auth/register", map[string]any{
			"email":    "ana@example.com",
			"password": "short",
			"name":     "Ana",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Validation failed", env.Error)
		require.Len(t, env.Details, 1)
		assert.Equal(t, "password", env.Details[0].Field)
		assert.Equal(t, "must be at least 12", env.Details[0].Message)
		users.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("rejects admin self registration", func(t *testing.T) {
		users, jwt := &mockUserService{}, &mockJWTService{}

		rec, env := do(t, authRouter(users, jwt, nil), http.MethodPost, "/auth/register", map[string]any{
			"email":    "ana@example.com",
			"password": "correct-horse-battery",
			"name":     "Ana",
			"role":     "admin",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, env.Details, 1)
		assert.Equal(t, "role", env.Details[0].Field)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		users, jwt := &mockUserService{}, &mockJWTService{}
		users.On("Register", mock.Anything, mock.Anything).Return(nil, store.ErrEmailExists)

		rec, env := do(t, authRouter(users, jwt, nil), http.MethodPost, "/auth/register", map[string]any{
			"email":    "ana@example.com",
			"password": "correct-horse-battery",
			"name":     "Ana",
		})

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Email already exists", env.Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec, env := do(t, authRouter(&mockUserService{}, &mockJWTService{}, nil), http.MethodPost, "/auth/register", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request format", env.Error)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		rec, _ := do(t, authRouter(&mockUserService{}, &mockJWTService{}, nil), http.MethodPost, "/auth/register",
			`{"email":"a@b.co","password":"correct-horse-battery","name":"A","is_admin":true}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials", func(t *testing.T) {
		users, jwt := &mockUserService{}, &mockJWTService{}
		user := &domain.User{ID: uuid.New(), Email: "ana@example.com", Role: domain.RoleMember}
		users.On("Authenticate", mock.Anything, "ana@example.com", "correct-horse-battery").Return(user, nil)
		expectTokens(jwt, user, time.Now().Add(time.Hour))

		rec, _ := do(t, authRouter(users, jwt, nil), http.MethodPost, "/auth/login", LoginRequest{
			Email:    "ana@example.com",
			Password: "correct-horse-battery",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		users, jwt := &mockUserService{}, &mockJWTService{}
		users.On("Authenticate", mock.Anything, "ana@example.com", "wrong").Return(nil, service.ErrInvalidCredentials)

		rec, env := do(t, authRouter(users, jwt, nil), http.MethodPost, "/auth/login", LoginRequest{
			Email:    "ana@example.com",
			Password: "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid email or password", env.Error)
		jwt.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("token generation failure", func(t *testing.T) {
		users, jwt := &mockUserService{}, &mockJWTService{}
		user := &domain.User{ID: uuid.New(), Role: domain.RoleMember}
		users.On("Authenticate", mock.Anything, "ana@example.com", "pw").Return(user, nil)
		jwt.On("GenerateToken", mock.Anything, user.ID, user.Role).Return("", time.Time{}, assert.AnError)

		rec, env := do(t, authRouter(users, jwt, nil), http.MethodPost, "/auth/login", LoginRequest{
			Email:    "ana@example.com",
			Password: "pw",
		})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to generate authentication token", env.Error)
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("issues a new pair with the current role", func(t *testing.T) {
		users, jwt := &mockUserService{}, &mockJWTService{}
		user := &domain.User{ID: uuid.New(), Role: domain.RoleGymOwner}
		jwt.On("ValidateRefreshToken", mock.Anything, "refresh-1").
			Return(&auth.Claims{UserID: user.ID, Role: domain.RoleMember, TokenType: auth.TokenTypeRefresh}, nil)
		users.On("GetUser", mock.Anything, user.ID).Return(user, nil)
		expectTokens(jwt, user, time.Now().Add(time.Hour))

		rec, _ := do(t, authRouter(users, jwt, nil), http.MethodPost, "/auth/refresh", RefreshTokenRequest{RefreshToken: "refresh-1"})
		assert.Equal(t, http.StatusOK, rec.Code)
		jwt.AssertCalled(t, "GenerateToken", mock.Anything, user.ID, domain.RoleGymOwner)
	})

	t.Run("access token is rejected", func(t *testing.T) {
		users, jwt := &mockUserService{}, &mockJWTService{}
		jwt.On("ValidateRefreshToken", mock.Anything, "access-1").Return(nil, auth.ErrWrongTokenType)

		rec, env := do(t, authRouter(users, jwt, nil), http.MethodPost, "/auth/refresh", RefreshTokenRequest{RefreshToken: "access-1"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid refresh token", env.Error)
	})

	t.Run("deleted user", func(t *testing.T) {
		users, jwt := &mockUserService{}, &mockJWTService{}
		uid := uuid.New()
		jwt.On("ValidateRefreshToken", mock.Anything, "refresh-1").Return(&auth.Claims{UserID: uid}, nil)
		users.On("GetUser", mock.Anything, uid).Return(nil, store.ErrUserNotFound)

		rec, _ := do(t, authRouter(users, jwt, nil), http.MethodPost, "/auth/refresh", RefreshTokenRequest{RefreshToken: "refresh-1"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAuthHandler_Profile(t *testing.T) {
	t.Parallel()

	t.Run("me requires authentication", func(t *testing.T) {
		rec, env := do(t, authRouter(&mockUserService{}, &mockJWTService{}, nil), http.MethodGet, "/users/me", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Authentication required", env.Error)
	})

	t.Run("me returns the profile without password", func(t *testing.T) {
		actor := memberActor()
		users := &mockUserService{}
		users.On("GetUser", mock.Anything, actor.UserID).
			Return(&domain.User{ID: actor.UserID, Name: "Ana", HashedPassword: "$2a$10$secret"}, nil)

		rec, env := do(t, authRouter(users, &mockJWTService{}, actor), http.MethodGet, "/users/me", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, string(env.Data), "secret")
		assert.Contains(t, string(env.Data), `"name":"Ana"`)
	})

	t.Run("update passes only provided fields", func(t *testing.T) {
		actor := memberActor()
		users := &mockUserService{}
		users.On("UpdateProfile", mock.Anything, actor.UserID, mock.MatchedBy(func(in service.ProfileUpdate) bool {
			return in.Name != nil && *in.Name == "Ana B" && in.Password == nil
		})).Return(&domain.User{ID: actor.UserID, Name: "Ana B"}, nil)

		rec, _ := do(t, authRouter(users, &mockJWTService{}, actor), http.MethodPatch, "/users/me", map[string]any{"name": "Ana B"})
		assert.Equal(t, http.StatusOK, rec.Code)
		users.AssertExpectations(t)
	})
}
