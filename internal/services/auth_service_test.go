package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralblueprint/backend/internal/config"
	"github.com/viralblueprint/backend/internal/models"
)

func TestGenerateAccessToken(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:       "test-secret",
		JWTAccessExpiry: 15 * time.Minute,
	}
	svc := &AuthService{cfg: cfg}

	user := &models.User{ID: uuid.New(), Email: "user@example.com"}
	signed, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, user.Email, claims["email"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(cfg.JWTAccessExpiry), exp.Time, 5*time.Second)
}

func TestGenerateAccessTokenWrongSecretRejected(t *testing.T) {
	svc := &AuthService{cfg: &config.Config{
		JWTSecret:       "test-secret",
		JWTAccessExpiry: 15 * time.Minute,
	}}

	signed, err := svc.generateAccessToken(&models.User{ID: uuid.New(), Email: "user@example.com"})
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("a-different-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	assert.Error(t, err)
}

func TestHashTokenDeterministic(t *testing.T) {
	a := hashToken("token-a")
	assert.Equal(t, a, hashToken("token-a"))
	assert.NotEqual(t, a, hashToken("token-b"))
	assert.Len(t, a, 64)
}
