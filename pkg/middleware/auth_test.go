package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"streamhub/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestCodec() *token.Codec {
	return token.NewCodec("access-secret", "refresh-secret", 15*time.Minute, 240*time.Hour)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestAuthMiddleware_BearerHeader(t *testing.T) {
	codec := newTestCodec()
	accessToken, _ := codec.SignAccess("user-123", "alice@example.com", "alice")

	router := setupTestRouter()
	router.Use(AuthMiddleware(codec))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-123")
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	codec := newTestCodec()
	accessToken, _ := codec.SignAccess("user-123", "alice@example.com", "alice")

	router := setupTestRouter()
	router.Use(AuthMiddleware(codec))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString("username")})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: accessToken})

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestAuthMiddleware_NoCredentials(t *testing.T) {
	router := setupTestRouter()
	router.Use(AuthMiddleware(newTestCodec()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidFormat(t *testing.T) {
	router := setupTestRouter()
	router.Use(AuthMiddleware(newTestCodec()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "InvalidFormat token")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := setupTestRouter()
	router.Use(AuthMiddleware(newTestCodec()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	expired := token.NewCodec("access-secret", "refresh-secret", -time.Minute, 240*time.Hour)
	accessToken, _ := expired.SignAccess("user-123", "alice@example.com", "alice")

	router := setupTestRouter()
	router.Use(AuthMiddleware(newTestCodec()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
