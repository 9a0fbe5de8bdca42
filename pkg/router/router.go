package router

import (
	"net/http"
	"strings"

	"team-dashboard/backend/internal/api"
	"team-dashboard/backend/internal/view"
	"team-dashboard/backend/pkg/config"
	"team-dashboard/backend/pkg/di"
	"team-dashboard/backend/pkg/errors"
	"team-dashboard/backend/pkg/logger"
	"team-dashboard/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine      *gin.Engine
	Container   *di.Container
	Logger      *logger.Logger
	Config      *config.Config
	RateLimiter *middleware.RateLimiter
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)
	cfg := container.Config

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		container.Logger.Warn("Invalid trusted proxies, trusting none", "error", err.Error())
		_ = engine.SetTrustedProxies(nil)
	}
	engine.SetHTMLTemplate(view.Templates())

	// Use the logger middleware first to capture all requests
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())
	engine.Use(corsMiddleware(cfg.Security.AllowedOrigins))
	engine.Use(middleware.ProfileMiddleware(middleware.ProfileOptions{Secure: cfg.Security.CookieSecure}))

	// Rate limiting keys on the profile, so it runs after the profile middleware
	options := middleware.DefaultRateLimiterOptions()
	options.Limit = rate.Limit(cfg.Security.RateLimit)
	options.Burst = cfg.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, options)
	engine.Use(rateLimiter.Middleware())

	engine.Use(middleware.BodyLimit(cfg.Security.MaxBodySize))

	return &Router{
		Engine:      engine,
		Container:   container,
		Logger:      container.Logger,
		Config:      cfg,
		RateLimiter: rateLimiter,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	c := r.Container

	r.Engine.StaticFS("/static", http.FS(view.Static()))
	r.setupHealthRoutes()

	pageController := api.NewPageController(
		c.IdentityService,
		c.MessageService,
		c.ResourceService,
		c.Project,
		r.Config.Board.TimeLayout,
	)
	pageController.RegisterRoutes(r.Engine)

	// API version 1 routes, validated against the OpenAPI schema
	v1 := r.Engine.Group("/api/v1")
	r.addOpenAPIValidation(v1)

	api.NewIdentityController(c.IdentityService).RegisterRoutesV1(v1)
	api.NewMessageController(c.MessageService, c.IdentityService).RegisterRoutesV1(v1)
	api.NewResourceController(c.ResourceService, c.IdentityService, r.Config.Board.TimeLayout).RegisterRoutesV1(v1)
	api.NewNavController().RegisterRoutesV1(v1)

	// WebSocket route
	r.Engine.GET("/ws", c.Hub.Handler())
}

// corsMiddleware allows the configured origins, "*" allowing any
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok || allowAll {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
				c.Writer.Header().Add("Vary", "Origin")
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, Origin, Upgrade, Connection, Cache-Control, X-Page-ID, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Upgrade, Connection, X-Request-ID, Content-Disposition")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
