package api

import (
	"net/http"
	"strings"

	"team-dashboard/backend/internal/shell"

	"github.com/gin-gonic/gin"
)

// NavController serves the per-page navigation links
type NavController struct{}

// NewNavController creates a new navigation controller
func NewNavController() *NavController {
	return &NavController{}
}

// RegisterRoutesV1 registers the navigation route
func (c *NavController) RegisterRoutesV1(group *gin.RouterGroup) {
	group.GET("/nav", c.GetNav)
}

// GetNav returns the links of ?page=, which may be a page name or path.
// Unknown pages get an empty list.
func (c *NavController) GetNav(ctx *gin.Context) {
	p := ctx.Query("page")
	if p != "" && !strings.HasSuffix(p, "/") && !strings.HasSuffix(p, ".html") {
		p += ".html"
	}
	page := shell.ResolvePage(p)

	ctx.JSON(http.StatusOK, gin.H{
		"page":  page,
		"links": shell.NavLinks(page),
	})
}
