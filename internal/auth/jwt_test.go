package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickline/lead-api/internal/auth"
	"github.com/brickline/lead-api/internal/config"
	"github.com/brickline/lead-api/internal/domain"
)

func newValidator() *auth.JWTValidator {
	return auth.NewJWTValidator(&config.AuthConfig{
		JWTSecret:     "test-secret-key",
		Issuer:        "brickline-lead-api",
		TokenTTLHours: 1,
	})
}

func testUser() *auth.UserContext {
	return &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Test Agent",
		Email:       "agent@example.com",
		Roles:       []domain.UserRoleType{domain.RoleAgent, domain.RoleManager},
	}
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	v := newValidator()
	user := testUser()

	token, err := v.IssueToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, got.UserID)
	assert.Equal(t, user.DisplayName, got.DisplayName)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, user.Roles, got.Roles)
}

func TestJWTValidator_RejectsTamperedToken(t *testing.T) {
	v := newValidator()

	token, err := v.IssueToken(testUser())
	require.NoError(t, err)

	_, err = v.ValidateToken(token + "x")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_RejectsWrongSecret(t *testing.T) {
	other := auth.NewJWTValidator(&config.AuthConfig{
		JWTSecret: "a-different-secret",
		Issuer:    "brickline-lead-api",
	})
	token, err := other.IssueToken(testUser())
	require.NoError(t, err)

	_, err = newValidator().ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_RejectsWrongIssuer(t *testing.T) {
	other := auth.NewJWTValidator(&config.AuthConfig{
		JWTSecret: "test-secret-key",
		Issuer:    "someone-else",
	})
	token, err := other.IssueToken(testUser())
	require.NoError(t, err)

	_, err = newValidator().ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_RejectsExpiredToken(t *testing.T) {
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			Issuer:    "brickline-lead-api",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	_, err = newValidator().ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestJWTValidator_RejectsNonUUIDSubject(t *testing.T) {
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			Issuer:    "brickline-lead-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	_, err = newValidator().ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestUserContext_Roles(t *testing.T) {
	user := &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleViewer}}
	assert.True(t, user.HasRole(domain.RoleViewer))
	assert.False(t, user.HasRole(domain.RoleAdmin))
	assert.False(t, user.CanWrite())

	user.Roles = append(user.Roles, domain.RoleAgent)
	assert.True(t, user.HasAnyRole(domain.RoleAdmin, domain.RoleAgent))
	assert.True(t, user.CanWrite())
}
