package router

import (
	"net/http"
	"os"

	apidoc "team-dashboard/backend/api"
	"team-dashboard/backend/pkg/validator"

	"github.com/gin-gonic/gin"
)

// addOpenAPIValidation validates requests of group against the OpenAPI schema
// and serves the schema. The bundled schema is used when the configured file
// does not exist.
func (r *Router) addOpenAPIValidation(group *gin.RouterGroup) {
	schemaPath := r.Config.OpenAPI.SchemaPath

	v, err := validator.NewOpenAPIValidator(schemaPath, apidoc.OpenAPI)
	if err != nil {
		r.Logger.Error("Failed to initialize OpenAPI validator", "error", err)
		return
	}

	group.Use(v.Middleware())
	if fileExists(schemaPath) {
		r.Logger.Info("OpenAPI validation enabled", "schema", schemaPath)
	} else {
		r.Logger.Info("OpenAPI validation enabled", "schema", "bundled")
	}

	r.Engine.GET("/api/docs/openapi.yaml", func(c *gin.Context) {
		if fileExists(schemaPath) {
			c.File(schemaPath)
			return
		}
		c.Data(http.StatusOK, "application/yaml", apidoc.OpenAPI)
	})
	r.Logger.Info("OpenAPI schema available at", "url", "/api/docs/openapi.yaml")
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
