package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Register(RegistrarFunc(func(rg *gin.RouterGroup) {}))

	assert.Len(t, r.registrars, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	r.Register(RegistrarFunc(func(rg *gin.RouterGroup) {
		rg.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})
	}))
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterAdminGroup(t *testing.T) {
	t.Run("mounts admin routes under /admin", func(t *testing.T) {
		engine := gin.New()
		r := NewRouter(engine)

		r.RegisterAdmin(RegistrarFunc(func(rg *gin.RouterGroup) {
			rg.GET("/orders", func(c *gin.Context) {
				c.String(http.StatusOK, "orders")
			})
		}))
		r.Setup()

		req := httptest.NewRequest("GET", "/api/v1/admin/orders", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("applies admin middleware to admin routes only", func(t *testing.T) {
		engine := gin.New()
		deny := func(c *gin.Context) {
			c.AbortWithStatus(http.StatusUnauthorized)
		}
		r := NewRouter(engine, WithAdminMiddleware(deny))

		r.Register(RegistrarFunc(func(rg *gin.RouterGroup) {
			rg.GET("/public", func(c *gin.Context) {
				c.String(http.StatusOK, "ok")
			})
		}))
		r.RegisterAdmin(RegistrarFunc(func(rg *gin.RouterGroup) {
			rg.GET("/secret", func(c *gin.Context) {
				c.String(http.StatusOK, "secret")
			})
		}))
		r.Setup()

		adminReq := httptest.NewRequest("GET", "/api/v1/admin/secret", nil)
		adminW := httptest.NewRecorder()
		engine.ServeHTTP(adminW, adminReq)
		assert.Equal(t, http.StatusUnauthorized, adminW.Code)

		publicReq := httptest.NewRequest("GET", "/api/v1/public", nil)
		publicW := httptest.NewRecorder()
		engine.ServeHTTP(publicW, publicReq)
		assert.Equal(t, http.StatusOK, publicW.Code)
	})

	t.Run("skips admin group when nothing registered", func(t *testing.T) {
		engine := gin.New()
		r := NewRouter(engine)
		r.Setup()

		req := httptest.NewRequest("GET", "/api/v1/admin/anything", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
