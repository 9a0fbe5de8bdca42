package api

import (
	"net/http"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/internal/service"
	"team-dashboard/backend/internal/shell"
	"team-dashboard/backend/internal/view"
	apperrors "team-dashboard/backend/pkg/errors"
	"team-dashboard/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var pageTitles = map[shell.Page]string{
	shell.PageIndex:     "团队管理系统",
	shell.PageTeam:      "团队成员",
	shell.PageResources: "资源参考",
}

// PageController renders the dashboard pages
type PageController struct {
	identity   *service.IdentityService
	messages   *service.MessageService
	resources  *service.ResourceService
	project    models.Project
	timeLayout string
}

// NewPageController creates a new page controller
func NewPageController(
	identity *service.IdentityService,
	messages *service.MessageService,
	resources *service.ResourceService,
	project models.Project,
	timeLayout string,
) *PageController {
	return &PageController{
		identity:   identity,
		messages:   messages,
		resources:  resources,
		project:    project,
		timeLayout: timeLayout,
	}
}

// RegisterRoutes registers the page routes on the engine root
func (c *PageController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/", c.RenderPage)
	router.GET("/index.html", c.RenderPage)
	router.GET("/team.html", c.RenderPage)
	router.GET("/resources.html", c.RenderPage)
}

// RenderPage renders the page for the request path. Every load is a new page
// instance with its own id.
func (c *PageController) RenderPage(ctx *gin.Context) {
	page := shell.ResolvePage(ctx.Request.URL.Path)
	if page == shell.PageUnknown {
		abortWithError(ctx, apperrors.NewNotFoundError("PAGE_NOT_FOUND", "Unknown page"))
		return
	}

	scope := middleware.Scope(ctx)
	scope.PageID = uuid.NewString()
	reqCtx := ctx.Request.Context()

	if _, err := c.messages.Deduplicate(reqCtx, scope); err != nil {
		abortWithError(ctx, err)
		return
	}

	identity, err := c.identity.Get(reqCtx, scope.ProfileID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	roles := c.identity.Roles()

	data := view.PageData{
		Title:   pageTitles[page],
		Page:    page,
		PageID:  scope.PageID,
		Sidebar: shell.BuildSidebar(page, roles, identity),
	}

	switch page {
	case shell.PageIndex:
		messages, err := c.messages.LoadAll(reqCtx, scope)
		if err != nil {
			abortWithError(ctx, err)
			return
		}
		project := c.project
		data.Project = &project
		data.Messages = view.MessageViews(messages)
	case shell.PageTeam:
		data.Members = roles
	case shell.PageResources:
		loaded := make(map[models.Collection][]models.Resource, len(models.Collections))
		for _, coll := range models.Collections {
			resources, err := c.resources.LoadAll(reqCtx, scope.ProfileID, coll)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			loaded[coll] = resources
		}
		tab := ctx.DefaultQuery("tab", view.TabAll)
		data.Tabs = view.Tabs(tab)
		data.Sections = view.Sections(tab, loaded, c.timeLayout)
	}

	ctx.HTML(http.StatusOK, view.PageTemplate(page), data)
}
