// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/middleware"
	"github.com/carterperez-dev/medassist/internal/prescription"
	"github.com/carterperez-dev/medassist/internal/user"
)

type Handler struct {
	service    *Service
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	redisPing  func(ctx context.Context) error
	dbPing     func(ctx context.Context) error
}

type HandlerConfig struct {
	Service    *Service
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
	DBPing     func(ctx context.Context) error
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		service:    cfg.Service,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		redisPing:  cfg.RedisPing,
		dbPing:     cfg.DBPing,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/requests", h.ListRequests)
		r.Post("/approve/{userId}", h.Approve)
		r.Post("/reject/{userId}", h.Reject)
		r.Post("/change-status/{userId}", h.ChangeStatus)
		r.Delete("/delete-user/{userId}", h.DeleteUser)
		r.Post("/restore-user/{userId}", h.RestoreUser)
		r.Get("/user-prescriptions/{userId}", h.UserPrescriptions)
		r.Delete("/prescriptions/{prescriptionId}", h.DeletePrescription)
		r.Post("/db-query", h.RunQuery)
		r.Get("/stats", h.GetSystemStats)
	})
}

// actorID resolves the acting admin. The optional body is decoded into
// dest, whose userId is used when the query string has none.
func actorID(r *http.Request, dest any, bodyID *core.RawID) string {
	if r.ContentLength != 0 && dest != nil {
		//nolint:errcheck // body is optional; a bad body leaves the id empty
		_ = json.NewDecoder(r.Body).Decode(dest)
	}

	var id core.RawID
	if bodyID != nil {
		id = *bodyID
	}

	return middleware.RequestUserID(r, id)
}

// pathID parses a numeric URL parameter. The actor is authorized before a
// malformed id is reported, so non-admins never learn more than 401 or 403.
func (h *Handler) pathID(
	w http.ResponseWriter,
	r *http.Request,
	actor, param string,
) (int64, bool) {
	id, err := core.ParseID(chi.URLParam(r, param))
	if err == nil {
		return id, true
	}

	if _, err := h.service.Guard().Require(r.Context(), actor); err != nil {
		writeError(w, err)
		return 0, false
	}

	core.BadRequest(w, "invalid "+param)
	return 0, false
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	users, err := h.service.ListRequests(r.Context(), actorID(r, nil, nil), ListParams{
		ShowDeleted: q.Get("showDeleted"),
		Status:      q.Get("status"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	core.List(w, user.ToUserResponseList(users), len(users))
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	var body ActorRequest
	actor := actorID(r, &body, &body.UserID)

	h.statusChange(w, r, actor, func(ctx context.Context, target int64) (*user.User, error) {
		return h.service.Approve(ctx, actor, target)
	})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var body ActorRequest
	actor := actorID(r, &body, &body.UserID)

	h.statusChange(w, r, actor, func(ctx context.Context, target int64) (*user.User, error) {
		return h.service.Reject(ctx, actor, target)
	})
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var body ChangeStatusRequest
	actor := actorID(r, &body, &body.UserID)

	h.statusChange(w, r, actor, func(ctx context.Context, target int64) (*user.User, error) {
		return h.service.ChangeStatus(ctx, actor, target, body.Status, body.IsAdmin.Ptr())
	})
}

func (h *Handler) statusChange(
	w http.ResponseWriter,
	r *http.Request,
	actor string,
	fn func(ctx context.Context, target int64) (*user.User, error),
) {
	target, ok := h.pathID(w, r, actor, "userId")
	if !ok {
		return
	}

	u, err := fn(r.Context(), target)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, user.ToUserResponse(u))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var body ActorRequest
	actor := actorID(r, &body, &body.UserID)

	u, err := h.service.DeleteUser(r.Context(), actor, chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, user.ToUserResponse(u))
}

func (h *Handler) RestoreUser(w http.ResponseWriter, r *http.Request) {
	var body ActorRequest
	actor := actorID(r, &body, &body.UserID)

	h.statusChange(w, r, actor, func(ctx context.Context, target int64) (*user.User, error) {
		return h.service.RestoreUser(ctx, actor, target)
	})
}

func (h *Handler) UserPrescriptions(w http.ResponseWriter, r *http.Request) {
	actor := actorID(r, nil, nil)

	target, ok := h.pathID(w, r, actor, "userId")
	if !ok {
		return
	}

	items, err := h.service.UserPrescriptions(r.Context(), actor, target)
	if err != nil {
		writeError(w, err)
		return
	}

	core.List(w, prescription.ToResponseList(items), len(items))
}

func (h *Handler) DeletePrescription(w http.ResponseWriter, r *http.Request) {
	var body ActorRequest
	actor := actorID(r, &body, &body.UserID)

	id, ok := h.pathID(w, r, actor, "prescriptionId")
	if !ok {
		return
	}

	if err := h.service.DeletePrescription(r.Context(), actor, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "prescription")
			return
		}
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) RunQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	actor := actorID(r, &req, &req.UserID)

	resp, err := h.service.RunQuery(r.Context(), actor, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := h.service.Guard().Require(ctx, actorID(r, nil, nil)); err != nil {
		writeError(w, err)
		return
	}

	dbHealthy := true
	if h.dbPing != nil {
		if err := h.dbPing(ctx); err != nil {
			dbHealthy = false
		}
	}

	var redisStatus *RedisStatus
	if h.redisPing != nil {
		redisStatus = &RedisStatus{
			Healthy: h.redisPing(ctx) == nil,
			Stats:   h.getRedisStats(),
		}
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	core.OK(w, SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: dbHealthy,
			Stats:   h.getDBStats(),
		},
		Redis: redisStatus,
		Runtime: RuntimeStats{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			NumCPU:       runtime.NumCPU(),
			MemAlloc:     memStats.Alloc,
			MemSys:       memStats.Sys,
			NumGC:        memStats.NumGC,
		},
	})
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	if stats == nil {
		return nil
	}

	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSelfAction):
		core.JSONError(w, core.NewAppError(
			err,
			"you cannot delete your own account",
			http.StatusBadRequest,
			"SELF_ACTION",
		))
	case errors.Is(err, ErrProtectedAccount):
		core.JSONError(w, core.NewAppError(
			err,
			"the primary admin account cannot be deleted",
			http.StatusBadRequest,
			"PROTECTED_ACCOUNT",
		))
	default:
		user.WriteError(w, err)
	}
}

type SystemStatsResponse struct {
	Database DatabaseStatus `json:"database"`
	Redis    *RedisStatus   `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"maxOpenConnections"`
	OpenConnections    int    `json:"openConnections"`
	InUse              int    `json:"inUse"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"waitCount"`
	WaitDuration       string `json:"waitDuration"`
	MaxIdleClosed      int64  `json:"maxIdleClosed"`
	MaxIdleTimeClosed  int64  `json:"maxIdleTimeClosed"`
	MaxLifetimeClosed  int64  `json:"maxLifetimeClosed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"totalConns"`
	IdleConns  uint32 `json:"idleConns"`
	StaleConns uint32 `json:"staleConns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
	NumCPU       int    `json:"numCpu"`
	MemAlloc     uint64 `json:"memAllocBytes"`
	MemSys       uint64 `json:"memSysBytes"`
	NumGC        uint32 `json:"numGc"`
}
