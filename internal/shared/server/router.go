package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mailsplit-backend/internal/companies"
	"mailsplit-backend/internal/emails"
	"mailsplit-backend/internal/parsedoc"
	"mailsplit-backend/internal/search"
	"mailsplit-backend/internal/services/health"
	"mailsplit-backend/internal/shared/config"
	"mailsplit-backend/internal/shared/metrics"
	"mailsplit-backend/internal/shared/server/middleware"
	"mailsplit-backend/internal/shared/server/respond"
	"mailsplit-backend/internal/teams"
)

const uploadRateGroup = "UPLOAD"

// RouterDeps carries the handlers registered on the engine.
type RouterDeps struct {
	Config           config.Config
	Health           *health.Service
	CompanyService   *companies.Service
	CompanyHandler   *companies.Handler
	TeamHandler      *teams.Handler
	EmailHandler     *emails.Handler
	SearchHandler    *search.Handler
	ParseDocHandler  *parsedoc.Handler
	RateLimiter      *middleware.RateLimiter
	DisableRateLimit bool
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		metrics.Middleware(),
	)

	r.GET("/metrics", metrics.Handler())

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil)
	}
	healthHandler := func(c *gin.Context) {
		st := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	}
	r.GET("/healthz", healthHandler)

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler)

	if !deps.DisableRateLimit {
		api.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				uploadRateGroup: {Rate: deps.Config.RateLimitRPS, Burst: deps.Config.RateLimitBurst},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/parse-document" {
					return uploadRateGroup
				}
				return ""
			},
			Limiter: deps.RateLimiter,
		}))
	}

	if deps.ParseDocHandler != nil {
		deps.ParseDocHandler.RegisterRoutes(api)
	}
	if deps.CompanyHandler != nil {
		deps.CompanyHandler.RegisterRoutes(api)
	}

	if deps.CompanyService != nil {
		scoped := api.Group("", companies.Middleware(deps.CompanyService))
		if deps.TeamHandler != nil {
			deps.TeamHandler.RegisterRoutes(scoped)
		}
		if deps.EmailHandler != nil {
			deps.EmailHandler.RegisterRoutes(scoped)
		}
		if deps.SearchHandler != nil {
			deps.SearchHandler.RegisterRoutes(scoped)
		}
	}

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
