package validator

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"team-dashboard/backend/api"
	apperrors "team-dashboard/backend/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, v *OpenAPIValidator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperrors.ErrorHandler())
	r.Use(v.Middleware())
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.PUT("/api/v1/identity", ok)
	r.POST("/api/v1/resources/:collection", ok)
	r.GET("/static/app.js", ok)
	return r
}

func do(r http.Handler, method, target, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddlewareRejectsBodyMissingRequiredField(t *testing.T) {
	v, err := NewOpenAPIValidator("", api.OpenAPI)
	require.NoError(t, err)
	r := newEngine(t, v)

	w := do(r, http.MethodPut, "/api/v1/identity", "application/json", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")

	w = do(r, http.MethodPut, "/api/v1/identity", "application/json", []byte(`{"name":"铭"}`))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddlewarePassesUndescribedRoutesAndMultipart(t *testing.T) {
	v, err := NewOpenAPIValidator("", api.OpenAPI)
	require.NoError(t, err)
	r := newEngine(t, v)

	w := do(r, http.MethodGet, "/static/app.js", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "a.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, mw.Close())

	w = do(r, http.MethodPost, "/api/v1/resources/scene", mw.FormDataContentType(), buf.Bytes())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSchemaFileTakesPrecedenceAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, api.OpenAPI, 0o600))

	v, err := NewOpenAPIValidator(path, nil)
	require.NoError(t, err)
	w := do(newEngine(t, v), http.MethodPut, "/api/v1/identity", "application/json", []byte(`{}`))
	require.Equal(t, http.StatusBadRequest, w.Code)

	relaxed := strings.Replace(string(api.OpenAPI), "              required: [name]\n", "", 1)
	require.NoError(t, os.WriteFile(path, []byte(relaxed), 0o600))
	require.NoError(t, v.ReloadSchema())

	w = do(newEngine(t, v), http.MethodPut, "/api/v1/identity", "application/json", []byte(`{}`))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewOpenAPIValidatorNeedsASchema(t *testing.T) {
	_, err := NewOpenAPIValidator(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}
