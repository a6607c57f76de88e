package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/safargo/safar-backend/internal/models"
	"github.com/safargo/safar-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(200, gin.H{"userId": c.GetUint("userId")})
	})
	return r
}

func issueToken(t *testing.T, userID uint) string {
	t.Helper()
	user := models.User{Model: gorm.Model{ID: userID}, Email: "user@example.com"}
	token, err := utils.GenerateToken(&user)
	require.NoError(t, err)
	return token
}

func TestAuthMiddlewareBearerHeader(t *testing.T) {
	r := setupAuthRouter(t)
	token := issueToken(t, 7)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"userId":7}`, w.Body.String())
}

func TestAuthMiddlewareQueryToken(t *testing.T) {
	r := setupAuthRouter(t)
	token := issueToken(t, 3)

	req := httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"userId":3}`, w.Body.String())
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	r := setupAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	r := setupAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
}
