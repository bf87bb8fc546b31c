// AngelaMos | 2026
// handler_test.go

package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/medassist/internal/health"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type counter struct {
	n   int64
	err error
}

func (c counter) Count(context.Context) (int64, error) { return c.n, c.err }

func get(t *testing.T, h *health.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Route("/api", h.RegisterAPIRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name      string
		cfg       health.Config
		code      int
		status    string
		dbError   string
		withCount bool
	}{
		{
			name:      "healthy",
			cfg:       health.Config{DB: pinger{}, Medications: counter{n: 1234}, Version: "1.2.0"},
			code:      http.StatusOK,
			status:    "ok",
			withCount: true,
		},
		{
			name:    "ping fails",
			cfg:     health.Config{DB: pinger{err: errors.New("dial tcp: refused")}, Medications: counter{}},
			code:    http.StatusServiceUnavailable,
			status:  "degraded",
			dbError: "ping failed",
		},
		{
			name:    "count fails",
			cfg:     health.Config{DB: pinger{}, Medications: counter{err: errors.New("no such table")}},
			code:    http.StatusServiceUnavailable,
			status:  "degraded",
			dbError: "medication count failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, health.NewHandler(tt.cfg), "/api/health")
			require.Equal(t, tt.code, rec.Code)

			var resp health.ServiceStatusResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.dbError, resp.DB.Error)
			assert.NotContains(t, rec.Body.String(), "refused")

			if tt.withCount {
				require.NotNil(t, resp.DB.MedicationsCount)
				assert.EqualValues(t, 1234, *resp.DB.MedicationsCount)
				assert.Equal(t, "1.2.0", resp.Version)
			} else {
				assert.Nil(t, resp.DB.MedicationsCount)
			}
		})
	}
}

func TestReadiness(t *testing.T) {
	rec := get(t, health.NewHandler(health.Config{DB: pinger{}}), "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp health.ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Checks, 1, "redis is skipped when not configured")
	assert.Equal(t, "database", resp.Checks[0].Name)

	rec = get(t, health.NewHandler(health.Config{
		DB:    pinger{},
		Redis: pinger{err: errors.New("down")},
	}), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Checks, 2)
	assert.Equal(t, "degraded", resp.Status)
}

func TestLifecycleFlags(t *testing.T) {
	h := health.NewHandler(health.Config{DB: pinger{}})

	assert.Equal(t, http.StatusOK, get(t, h, "/livez").Code)

	h.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)

	h.SetShutdown(true)
	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "shutting_down")
}
