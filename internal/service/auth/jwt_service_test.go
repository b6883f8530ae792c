package auth

import (
	"context"
	"testing"
	"time"

	"github.com/fitdash/fitdash-api/internal/config"
	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

func newTestJWTService(t *testing.T, secret string, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(config.AuthConfig{
		JWTSecret:                   secret,
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}, now)
	require.NoError(t, err)
	return svc
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 1, RefreshTokenLifetimeMinutes: 1})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 1, RefreshTokenLifetimeMinutes: 1})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWTService(t, testSecret, fixedClock(fixedTime))
	userID := uuid.New()

	token, expiresAt, err := svc.GenerateToken(context.Background(), userID, domain.RoleGymOwner)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, fixedTime.Add(time.Hour), expiresAt)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, domain.RoleGymOwner, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	gen := newTestJWTService(t, testSecret, fixedClock(fixedTime))

	access, _, err := gen.GenerateToken(context.Background(), userID, domain.RoleMember)
	require.NoError(t, err)
	refresh, err := gen.GenerateRefreshToken(context.Background(), userID, domain.RoleMember)
	require.NoError(t, err)

	tests := []struct {
		name    string
		svc     JWTService
		token   string
		wantErr error
	}{
		{name: "valid token", svc: gen, token: access},
		{
			name:    "within clock skew",
			svc:     newTestJWTService(t, testSecret, fixedClock(fixedTime.Add(time.Hour+time.Minute))),
			token:   access,
			wantErr: nil,
		},
		{
			name:    "expired token",
			svc:     newTestJWTService(t, testSecret, fixedClock(fixedTime.Add(2*time.Hour))),
			token:   access,
			wantErr: ErrExpiredToken,
		},
		{
			name:    "invalid signature",
			svc:     newTestJWTService(t, wrongSecret, fixedClock(fixedTime)),
			token:   access,
			wantErr: ErrInvalidToken,
		},
		{name: "malformed token", svc: gen, token: "this.is.not.a.valid.jwt.token", wantErr: ErrInvalidToken},
		{name: "refresh token used as access", svc: gen, token: refresh, wantErr: ErrWrongTokenType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := tt.svc.ValidateToken(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	gen := newTestJWTService(t, testSecret, fixedClock(fixedTime))

	refresh, err := gen.GenerateRefreshToken(context.Background(), userID, domain.RoleAdmin)
	require.NoError(t, err)
	access, _, err := gen.GenerateToken(context.Background(), userID, domain.RoleAdmin)
	require.NoError(t, err)

	claims, err := gen.ValidateRefreshToken(context.Background(), refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	_, err = gen.ValidateRefreshToken(context.Background(), access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	late := newTestJWTService(t, testSecret, fixedClock(fixedTime.Add(48*time.Hour)))
	_, err = late.ValidateRefreshToken(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)

	other := newTestJWTService(t, wrongSecret, fixedClock(fixedTime))
	_, err = other.ValidateRefreshToken(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(4)
	hash, err := h.Hash("correct-horse-battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery", hash)

	assert.NoError(t, h.Compare(hash, "correct-horse-battery"))
	assert.Error(t, h.Compare(hash, "wrong-password-value"))

	assert.Equal(t, 10, NewBcryptHasher(0).cost)
}
