package api

import (
	"net/http"
	"time"

	"team-dashboard/backend/pkg/health"

	"github.com/gin-gonic/gin"
)

// Handler handles health check endpoints
type Handler struct {
	checker *health.Checker
	version string
}

// HealthResponse represents the liveness response structure
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// NewHealthHandler creates the health endpoints around checker
func NewHealthHandler(checker *health.Checker, version string) *Handler {
	return &Handler{checker: checker, version: version}
}

// LiveHandler reports that the process is serving requests
func (h *Handler) LiveHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
	})
}

// RegisterHealthRoutes registers health check related routes
func (h *Handler) RegisterHealthRoutes(router gin.IRoutes) {
	router.GET("/health", h.checker.Handler())
	router.GET("/health/live", h.LiveHandler)
}
