package router

import (
	"os"

	"team-dashboard/backend/internal/api"

	"github.com/gin-gonic/gin"
)

// setupHealthRoutes registers the health and metrics endpoints
func (r *Router) setupHealthRoutes() {
	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = r.Config.Server.Env
	}

	handler := api.NewHealthHandler(r.Container.Health, version)
	handler.RegisterHealthRoutes(r.Engine)
	handler.RegisterHealthRoutes(r.Engine.Group("/api"))

	if r.Container.MetricsHandler != nil {
		r.Engine.GET("/metrics", gin.WrapH(r.Container.MetricsHandler))
		r.Logger.Info("Prometheus metrics available at", "url", "/metrics")
	}
}
