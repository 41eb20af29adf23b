package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropship/backend/internal/infrastructure/config"
)

func jwtTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                "test-secret",
		AccessTokenExpiration: time.Hour,
		Issuer:                "dropship-test",
	}
}

func jwtTestRouter(cfg config.JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	admin := router.Group("/admin", JWTAuth(cfg))
	admin.GET("/ping", func(c *gin.Context) {
		claims := GetAdminClaims(c)
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject})
	})
	return router
}

func TestJWTAuth_ValidToken(t *testing.T) {
	cfg := jwtTestConfig()
	router := jwtTestRouter(cfg)

	token, err := IssueAdminToken(cfg, "ops@example.com", "admin")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ops@example.com")
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	router := jwtTestRouter(jwtTestConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	cfg := jwtTestConfig()
	router := jwtTestRouter(cfg)

	otherCfg := cfg
	otherCfg.Secret = "other-secret"
	token, err := IssueAdminToken(otherCfg, "ops@example.com", "admin")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	cfg := jwtTestConfig()
	router := jwtTestRouter(cfg)

	expiredCfg := cfg
	expiredCfg.AccessTokenExpiration = -time.Minute
	token, err := IssueAdminToken(expiredCfg, "ops@example.com", "admin")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_WrongIssuer(t *testing.T) {
	cfg := jwtTestConfig()
	router := jwtTestRouter(cfg)

	otherCfg := cfg
	otherCfg.Issuer = "someone-else"
	token, err := IssueAdminToken(otherCfg, "ops@example.com", "admin")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
