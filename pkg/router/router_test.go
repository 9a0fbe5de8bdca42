package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"team-dashboard/backend/pkg/config"
	"team-dashboard/backend/pkg/di"
	"team-dashboard/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Load()
	cfg.Storage.Backend = config.BackendMemory
	cfg.Observability.TracingEnabled = false
	cfg.Observability.MetricsEnabled = true
	cfg.Security.AllowedOrigins = []string{"http://dashboard.local"}
	cfg.OpenAPI.SchemaPath = ""

	ctx := context.Background()
	container, err := di.New(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close(ctx) })

	r := New(container)
	r.SetupRoutes()
	return r
}

func serve(r *Router, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)
	return w
}

func TestHealthRoute(t *testing.T) {
	r := newTestRouter(t)
	r.Container.Health.RunChecks(context.Background())

	w := serve(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"storage"`)

	w = serve(r, http.MethodGet, "/api/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPagesAndStaticAssets(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodGet, "/team.html", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "#team-members")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "tb_profile=")

	w = serve(r, http.MethodGet, "/static/app.js", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/settings.html", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIRequestsAreValidated(t *testing.T) {
	r := newTestRouter(t)
	jsonHeader := map[string]string{"Content-Type": "application/json"}

	w := serve(r, http.MethodPut, "/api/v1/identity", `{}`, jsonHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")

	w = serve(r, http.MethodPut, "/api/v1/identity", `{"name":"南羽"}`, jsonHeader)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/api/docs/openapi.yaml", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/v1/identity")
}

func TestCORS(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodOptions, "/api/v1/messages", "", map[string]string{"Origin": "http://dashboard.local"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://dashboard.local", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, "/api/v1/roles", "", map[string]string{"Origin": "http://elsewhere.local"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsRoute(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
