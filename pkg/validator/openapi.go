package validator

import (
	"fmt"
	"mime"
	"os"
	"sync"

	apperrors "team-dashboard/backend/pkg/errors"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
)

// OpenAPIValidator validates requests against an OpenAPI schema
type OpenAPIValidator struct {
	swagger    *openapi3.T
	router     routers.Router
	schemaPath string
	fallback   []byte
	mutex      sync.RWMutex
}

// NewOpenAPIValidator loads the schema at schemaPath, or fallback when the
// file does not exist
func NewOpenAPIValidator(schemaPath string, fallback []byte) (*OpenAPIValidator, error) {
	v := &OpenAPIValidator{schemaPath: schemaPath, fallback: fallback}
	if err := v.ReloadSchema(); err != nil {
		return nil, err
	}
	return v, nil
}

// loadOpenAPISchema loads and validates the schema from disk or from data
func loadOpenAPISchema(path string, data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	// The default reader caches by path, which would make reloads return the first read
	loader.ReadFromURIFunc = openapi3.ReadFromFile

	var (
		swagger *openapi3.T
		err     error
	)
	if _, statErr := os.Stat(path); path != "" && statErr == nil {
		swagger, err = loader.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load OpenAPI schema from %s: %w", path, err)
		}
	} else {
		if len(data) == 0 {
			return nil, fmt.Errorf("OpenAPI schema %q not found and no bundled schema given", path)
		}
		swagger, err = loader.LoadFromData(data)
		if err != nil {
			return nil, fmt.Errorf("failed to load bundled OpenAPI schema: %w", err)
		}
	}

	if err := swagger.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI schema: %w", err)
	}

	return swagger, nil
}

// ReloadSchema reloads the OpenAPI schema
func (v *OpenAPIValidator) ReloadSchema() error {
	swagger, err := loadOpenAPISchema(v.schemaPath, v.fallback)
	if err != nil {
		return err
	}

	router, err := gorillamux.NewRouter(swagger)
	if err != nil {
		return fmt.Errorf("error creating OpenAPI router: %w", err)
	}

	v.mutex.Lock()
	defer v.mutex.Unlock()

	v.swagger = swagger
	v.router = router
	return nil
}

// Middleware returns a Gin middleware that rejects requests not matching the
// schema. Requests for routes the schema does not describe pass through.
// Multipart bodies are not validated.
func (v *OpenAPIValidator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		v.mutex.RLock()
		router := v.router
		v.mutex.RUnlock()

		route, pathParams, err := router.FindRoute(c.Request)
		if err != nil {
			c.Next()
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				ExcludeRequestBody: isMultipart(c.ContentType()),
				MultiError:         false,
			},
		}

		if err := openapi3filter.ValidateRequest(c.Request.Context(), input); err != nil {
			c.Error(apperrors.NewBadRequestError("INVALID_REQUEST", fmt.Sprintf("Invalid request: %v", err)))
			c.Abort()
			return
		}

		c.Next()
	}
}

func isMultipart(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "multipart/form-data"
}
