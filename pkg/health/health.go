package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"team-dashboard/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Status represents the health status of a component
type Status string

const (
	// StatusUp indicates a component is working correctly
	StatusUp Status = "up"
	// StatusDown indicates a component is not working
	StatusDown Status = "down"
	// StatusDegraded indicates a component is working but with reduced functionality
	StatusDegraded Status = "degraded"
)

// Component represents a system component that can be health-checked
type Component struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Critical    bool           `json:"critical"`
	Description string         `json:"description,omitempty"`
	Error       string         `json:"error,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
}

// Result is what a check reports
type Result struct {
	Status      Status
	Description string
	Details     map[string]any
	Err         error
}

// Check represents a health check function
type Check func(ctx context.Context) Result

type registration struct {
	check    Check
	critical bool
}

// Checker manages health checks for the system
type Checker struct {
	checks      map[string]registration
	components  map[string]*Component
	checkPeriod time.Duration
	timeout     time.Duration
	mutex       sync.RWMutex
	log         *logger.Logger
}

// NewChecker creates a new health checker
func NewChecker(log *logger.Logger, checkPeriod time.Duration) *Checker {
	if log == nil {
		log = logger.Discard()
	}
	checker := &Checker{
		checks:      make(map[string]registration),
		components:  make(map[string]*Component),
		checkPeriod: checkPeriod,
		timeout:     5 * time.Second,
		log:         log,
	}

	checker.RegisterCheck("self", false, func(context.Context) Result {
		return Result{Status: StatusUp, Description: "Health checker is running"}
	})

	return checker
}

// RegisterCheck registers a new health check. A critical component that is
// down makes the whole service unhealthy.
func (c *Checker) RegisterCheck(name string, critical bool, check Check) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.checks[name] = registration{check: check, critical: critical}
	c.components[name] = &Component{
		Name:        name,
		Status:      StatusDown,
		Critical:    critical,
		Description: "Not checked yet",
	}
}

// RunChecks executes all registered health checks
func (c *Checker) RunChecks(ctx context.Context) {
	c.mutex.RLock()
	checks := make(map[string]registration, len(c.checks))
	for name, reg := range c.checks {
		checks[name] = reg
	}
	c.mutex.RUnlock()

	for name, reg := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		res := reg.check(checkCtx)
		cancel()

		c.mutex.Lock()
		component := c.components[name]
		component.Status = res.Status
		component.Description = res.Description
		component.Details = res.Details
		component.LastChecked = time.Now()
		component.Error = ""
		if res.Err != nil {
			component.Error = res.Err.Error()
		}
		c.mutex.Unlock()

		if res.Err != nil {
			c.log.Error("Health check failed",
				"component", name,
				"status", string(res.Status),
				"error", res.Err.Error(),
			)
		} else {
			c.log.Debug("Health check completed", "component", name, "status", string(res.Status))
		}
	}
}

// Start runs the checks now and then periodically until ctx is done
func (c *Checker) Start(ctx context.Context) {
	go func() {
		c.RunChecks(ctx)

		ticker := time.NewTicker(c.checkPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.RunChecks(ctx)
			}
		}
	}()
}

// GetStatus returns a copy of the current component states
func (c *Checker) GetStatus() map[string]*Component {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make(map[string]*Component, len(c.components))
	for k, v := range c.components {
		componentCopy := *v
		result[k] = &componentCopy
	}

	return result
}

// IsSystemHealthy returns true if all critical components are up
func (c *Checker) IsSystemHealthy() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	for _, component := range c.components {
		if component.Critical && component.Status == StatusDown {
			return false
		}
	}
	return true
}

// Handler serves the component states, with 503 when a critical component is down
func (c *Checker) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := http.StatusOK
		overall := "ok"
		if !c.IsSystemHealthy() {
			status = http.StatusServiceUnavailable
			overall = "unavailable"
		}

		ctx.JSON(status, gin.H{
			"status":     overall,
			"timestamp":  time.Now(),
			"components": c.GetStatus(),
		})
	}
}

// Pinger is anything that can report reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterStorageCheck registers the critical storage backend check. details
// may be nil; it is called on every run to attach extra state.
func (c *Checker) RegisterStorageCheck(backend string, p Pinger, details func() map[string]any) {
	c.RegisterCheck("storage", true, func(ctx context.Context) Result {
		var extra map[string]any
		if details != nil {
			extra = details()
		}
		if err := p.Ping(ctx); err != nil {
			return Result{Status: StatusDown, Description: backend + " storage unreachable", Details: extra, Err: err}
		}
		return Result{Status: StatusUp, Description: backend + " storage reachable", Details: extra}
	})
}
