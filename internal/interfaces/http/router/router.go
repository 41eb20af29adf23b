package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RegistrarFunc adapts a plain function to the RouteRegistrar interface
type RegistrarFunc func(rg *gin.RouterGroup)

// RegisterRoutes implements RouteRegistrar
func (f RegistrarFunc) RegisterRoutes(rg *gin.RouterGroup) {
	f(rg)
}

// Router manages HTTP route registration. Public registrars mount directly
// under the versioned API group; admin registrars mount under /admin behind
// the admin middleware chain.
type Router struct {
	engine          *gin.Engine
	apiVersion      string
	registrars      []RouteRegistrar
	adminRegistrars []RouteRegistrar
	adminMiddleware []gin.HandlerFunc
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAdminMiddleware sets the middleware chain for the admin group
func WithAdminMiddleware(middleware ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.adminMiddleware = middleware
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar for the public API group
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// RegisterAdmin adds a RouteRegistrar for the admin group
func (r *Router) RegisterAdmin(registrar RouteRegistrar) *Router {
	r.adminRegistrars = append(r.adminRegistrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}

	if len(r.adminRegistrars) == 0 {
		return
	}

	admin := api.Group("/admin")
	if len(r.adminMiddleware) > 0 {
		admin.Use(r.adminMiddleware...)
	}
	for _, registrar := range r.adminRegistrars {
		registrar.RegisterRoutes(admin)
	}
}
