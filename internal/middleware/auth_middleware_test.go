package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayanth-org1/Green-Bus-Server/pkg/jwt"
)

func setupRouter(jwtService *jwt.Service, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := append([]gin.HandlerFunc{AuthMiddleware(jwtService)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		userCtx, _ := GetUserContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userCtx.UserID})
	})

	router.GET("/protected", handlers...)
	return router
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := jwt.NewService("test-secret", time.Hour)
	router := setupRouter(jwtService)

	t.Run("Valid Token", func(t *testing.T) {
		userID := uuid.New()
		token, err := jwtService.GenerateToken(userID, []string{"customer"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})

	t.Run("Missing Header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "MISSING_AUTH_HEADER")
	})

	t.Run("Malformed Header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic abc123")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
	})

	t.Run("Invalid Token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
	})

	t.Run("Expired Token", func(t *testing.T) {
		expiredService := jwt.NewService("test-secret", -time.Minute)
		token, err := expiredService.GenerateToken(uuid.New(), []string{"customer"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	jwtService := jwt.NewService("test-secret", time.Hour)
	router := setupRouter(jwtService, RequireRole("admin"))

	t.Run("Has Role", func(t *testing.T) {
		token, err := jwtService.GenerateToken(uuid.New(), []string{"customer", "admin"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Missing Role", func(t *testing.T) {
		token, err := jwtService.GenerateToken(uuid.New(), []string{"customer"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "INSUFFICIENT_PERMISSIONS")
	})
}
