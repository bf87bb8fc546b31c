// AngelaMos | 2026
// handler_test.go

package docs_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/medassist/internal/admin"
	"github.com/carterperez-dev/medassist/internal/docs"
	"github.com/carterperez-dev/medassist/internal/health"
	"github.com/carterperez-dev/medassist/internal/medication"
	"github.com/carterperez-dev/medassist/internal/medicine"
	"github.com/carterperez-dev/medassist/internal/prescription"
	"github.com/carterperez-dev/medassist/internal/user"
)

func newRouter(t *testing.T, cfg docs.Config) chi.Router {
	t.Helper()

	h, err := docs.NewHandler(cfg)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return r
}

func get(t *testing.T, r chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

type helpEnvelope struct {
	Success bool              `json:"success"`
	Data    docs.HelpResponse `json:"data"`
}

func TestHelp(t *testing.T) {
	r := newRouter(t, docs.Config{Name: "medassist", Version: "1.4.2"})

	rec := get(t, r, "/api/help")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var env helpEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "medassist", env.Data.Name)
	assert.Equal(t, "1.4.2", env.Data.Version)
	assert.Equal(t, "/api/swagger", env.Data.Docs.OpenAPI)
	assert.Equal(t, "/api/help", env.Data.Docs.Help)

	assert.Contains(t, env.Data.Routes, docs.Route{
		Method:      http.MethodPost,
		Path:        "/api/admin/db-query",
		Description: "Admin: run a read-only SQL statement",
	})
	assert.Contains(t, env.Data.Routes, docs.Route{
		Method:      http.MethodGet,
		Path:        "/api/help",
		Description: "Route list and documentation links",
	})
	assert.IsNonDecreasing(t, paths(env.Data.Routes))
}

func TestHelp_BaseURL(t *testing.T) {
	r := newRouter(t, docs.Config{Version: "1.0.0", BaseURL: "https://rx.example.org/"})

	var env helpEnvelope
	require.NoError(t, json.Unmarshal(get(t, r, "/api/help").Body.Bytes(), &env))
	assert.Equal(t, "https://rx.example.org/api/swagger", env.Data.Docs.OpenAPI)
	assert.Equal(t, "https://rx.example.org/api/help", env.Data.Docs.Help)
}

func TestSwagger(t *testing.T) {
	r := newRouter(t, docs.Config{Version: "2.0.1"})

	rec := get(t, r, "/api/swagger")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.True(t, strings.HasPrefix(doc.OpenAPI, "3.0"))
	assert.Equal(t, "MedAssist API", doc.Info.Title)
	assert.Equal(t, "2.0.1", doc.Info.Version)
	assert.Contains(t, doc.Paths, "/api/swagger")
	assert.Contains(t, doc.Paths["/api/auth/login"], "post")
}

// TestDocumentedRoutesMatchMounted mounts every API handler the way main
// does and checks the help index lists exactly those routes.
func TestDocumentedRoutesMatchMounted(t *testing.T) {
	docsHandler, err := docs.NewHandler(docs.Config{Version: "test"})
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		health.NewHandler(health.Config{}).RegisterAPIRoutes(r)
		docsHandler.RegisterRoutes(r)
		user.NewHandler(nil, nil).RegisterRoutes(r)
		admin.NewHandler(admin.HandlerConfig{}).RegisterRoutes(r)
		prescription.NewHandler(nil).RegisterRoutes(r)
		medication.NewHandler(nil).RegisterRoutes(r)
		medicine.NewHandler(nil).RegisterRoutes(r)
	})

	var mounted []string
	err = chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		mounted = append(mounted, method+" "+strings.TrimSuffix(route, "/"))
		return nil
	})
	require.NoError(t, err)

	var env helpEnvelope
	require.NoError(t, json.Unmarshal(get(t, router, "/api/help").Body.Bytes(), &env))

	documented := make([]string, 0, len(env.Data.Routes))
	for _, rt := range env.Data.Routes {
		documented = append(documented, rt.Method+" "+rt.Path)
	}

	assert.ElementsMatch(t, mounted, documented)
}

func paths(routes []docs.Route) []string {
	out := make([]string, len(routes))
	for i, rt := range routes {
		out[i] = rt.Path
	}
	return out
}
