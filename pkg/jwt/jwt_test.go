package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes"

func TestNewService(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	assert.NotNil(t, service)
	assert.Equal(t, testSecret, service.secret)
	assert.Equal(t, time.Hour, service.tokenExpiry)
}

func TestGenerateToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	userID := uuid.New()
	roles := []string{"customer"}

	token, err := service.GenerateToken(userID, roles)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Validate the generated token
	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, roles, claims.Roles)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	userID := uuid.New()
	roles := []string{"customer", "admin"}

	token, err := service.GenerateToken(userID, roles)
	require.NoError(t, err)

	// Test valid token
	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, roles, claims.Roles)

	// Test invalid token
	_, err = service.ValidateToken("invalid.token.here")
	assert.Error(t, err)

	// Test token with wrong secret
	wrongService := NewService("wrong-secret", time.Hour)
	_, err = wrongService.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	service := NewService(testSecret, -time.Minute)
	userID := uuid.New()

	token, err := service.GenerateToken(userID, []string{"customer"})
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}

func TestHasRole(t *testing.T) {
	claims := &Claims{Roles: []string{"customer", "admin"}}

	assert.True(t, claims.HasRole("admin"))
	assert.True(t, claims.HasRole("customer"))
	assert.False(t, claims.HasRole("operator"))
}

func TestGetTokenExpiry(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	userID := uuid.New()

	token, err := service.GenerateToken(userID, []string{"customer"})
	require.NoError(t, err)

	expiry, err := service.GetTokenExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	_, err = service.GetTokenExpiry("not-a-token")
	assert.Error(t, err)
}
