package server

import (
	"github.com/gin-gonic/gin"

	"hippo-backend/internal/access"
	"hippo-backend/internal/applications"
	googleauth "hippo-backend/internal/auth"
	"hippo-backend/internal/candidates"
	"hippo-backend/internal/documents"
	"hippo-backend/internal/exports"
	"hippo-backend/internal/files"
	"hippo-backend/internal/regions"
	"hippo-backend/internal/services/health"
	"hippo-backend/internal/shared/config"
	"hippo-backend/internal/shared/metrics"
	"hippo-backend/internal/shared/server/middleware"
	"hippo-backend/internal/users"
)

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config             config.Config
	Access             *access.Service
	AccessHandler      *access.Handler
	ApplicationHandler *applications.Handler
	CandidateHandler   *candidates.Handler
	DocumentHandler    *documents.Handler
	ExportHandler      *exports.Handler
	FileHandler        *files.Handler
	RegionHandler      *regions.Handler
	UserHandler        *users.Handler
	Health             *health.Service
	GoogleAuth         *googleauth.GoogleService
	RateLimiter        middleware.Limiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		deps.Access.Middleware(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    middleware.DefaultRules(),
			GroupFor: middleware.GroupForRoute,
			Limiter:  deps.RateLimiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	if deps.Health != nil {
		deps.Health.RegisterRoutes(api)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	deps.UserHandler.RegisterRoutes(api)
	deps.RegionHandler.RegisterRoutes(api)
	deps.CandidateHandler.RegisterRoutes(api)
	deps.DocumentHandler.RegisterRoutes(api)
	deps.ApplicationHandler.RegisterRoutes(api)
	deps.FileHandler.RegisterRoutes(api)

	admin := api.Group("/admin", access.RequireAdmin())
	deps.AccessHandler.RegisterAdminRoutes(admin)
	deps.RegionHandler.RegisterAdminRoutes(admin)
	deps.ApplicationHandler.RegisterAdminRoutes(admin)
	deps.ExportHandler.RegisterAdminRoutes(admin)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
