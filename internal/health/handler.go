// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

type Checker interface {
	Ping(ctx context.Context) error
}

// Counter reports the number of rows in the medication reference table.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type Config struct {
	DB          Checker
	Redis       Checker
	Medications Counter
	Version     string
}

// dependency is one named backing service checked by readiness.
type dependency struct {
	name    string
	checker Checker
}

type Handler struct {
	deps        []dependency
	medications Counter
	version     string
	startedAt   time.Time
	now         func() time.Time
	ready       atomic.Bool
	shutdown    atomic.Bool
}

const checkTimeout = 5 * time.Second

// NewHandler builds the health endpoints. A nil Redis checker means redis is
// not configured and is left out of readiness.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		deps:        []dependency{{name: "database", checker: cfg.DB}},
		medications: cfg.Medications,
		version:     cfg.Version,
		startedAt:   time.Now(),
		now:         time.Now,
	}
	if cfg.Redis != nil {
		h.deps = append(h.deps, dependency{name: "redis", checker: cfg.Redis})
	}
	h.ready.Store(true)
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

// RegisterAPIRoutes mounts the service status endpoint under the API prefix.
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Get("/health", h.Status)
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	if h.shutdown.Load() {
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "shutting_down"})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	switch {
	case h.shutdown.Load():
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "shutting_down"})
		return
	case !h.ready.Load():
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "not_ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	resp := ReadinessResponse{Status: "ok", Checks: h.checkAll(ctx)}
	code := http.StatusOK
	for _, c := range resp.Checks {
		if !c.Healthy {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, code, resp)
}

// Status reports version, uptime and the state of the store, including the
// size of the medication table.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	now := h.now()
	resp := ServiceStatusResponse{
		Status:        "ok",
		Version:       h.version,
		Timestamp:     now.UTC(),
		UptimeSeconds: int64(now.Sub(h.startedAt).Round(time.Second).Seconds()),
		DB:            DBStatus{Status: "ok"},
	}

	degrade := func(reason string) {
		resp.Status = "degraded"
		resp.DB.Status = "error"
		resp.DB.Error = reason
		writeJSON(w, http.StatusServiceUnavailable, resp)
	}

	if db := checkOne(ctx, h.deps[0]); !db.Healthy {
		degrade(db.Message)
		return
	}

	if h.medications != nil {
		n, err := h.medications.Count(ctx)
		if err != nil {
			degrade("medication count failed")
			return
		}
		resp.DB.MedicationsCount = &n
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) checkAll(ctx context.Context) []HealthCheck {
	checks := make([]HealthCheck, len(h.deps))

	var wg sync.WaitGroup
	for i, d := range h.deps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checks[i] = checkOne(ctx, d)
		}()
	}
	wg.Wait()

	return checks
}

func checkOne(ctx context.Context, d dependency) HealthCheck {
	check := HealthCheck{Name: d.name, Healthy: true}

	if d.checker == nil {
		check.Healthy = false
		check.Message = d.name + " checker not configured"
		return check
	}

	start := time.Now()
	err := d.checker.Ping(ctx)
	check.Latency = time.Since(start).String()

	if err != nil {
		check.Healthy = false
		check.Message = "ping failed"
	}
	return check
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

type ServiceStatusResponse struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptimeSeconds"`
	DB            DBStatus  `json:"db"`
}

type DBStatus struct {
	Status           string `json:"status"`
	MedicationsCount *int64 `json:"medicationsCount"`
	Error            string `json:"error,omitempty"`
}
