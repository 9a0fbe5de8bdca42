package api

import (
	"net/http"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/internal/service"
	apperrors "team-dashboard/backend/pkg/errors"
	"team-dashboard/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// IdentityController handles the identity selector
type IdentityController struct {
	identity *service.IdentityService
}

// NewIdentityController creates a new identity controller
func NewIdentityController(identity *service.IdentityService) *IdentityController {
	return &IdentityController{identity: identity}
}

// RegisterRoutesV1 registers the identity routes
func (c *IdentityController) RegisterRoutesV1(group *gin.RouterGroup) {
	group.GET("/identity", c.GetIdentity)
	group.PUT("/identity", c.SetIdentity)
	group.GET("/roles", c.ListRoles)
}

// GetIdentity returns the identity of the browser profile
func (c *IdentityController) GetIdentity(ctx *gin.Context) {
	scope := middleware.Scope(ctx)
	name, err := c.identity.Get(ctx.Request.Context(), scope.ProfileID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, models.IdentityResponse{Name: name, Selected: service.IsSelected(name)})
}

// SetIdentity stores the chosen display name
func (c *IdentityController) SetIdentity(ctx *gin.Context) {
	var request models.SetIdentityRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		abortWithError(ctx, apperrors.NewBadRequestError("INVALID_REQUEST", "Invalid request format").Wrap(err))
		return
	}

	if err := c.identity.Set(ctx.Request.Context(), middleware.Scope(ctx), request.Name); err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, models.IdentityResponse{Name: request.Name, Selected: service.IsSelected(request.Name)})
}

// ListRoles returns the roster
func (c *IdentityController) ListRoles(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"roles": c.identity.Roles()})
}
