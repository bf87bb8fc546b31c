// AngelaMos | 2026
// handler_test.go

package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/medassist/internal/admin"
	"github.com/carterperez-dev/medassist/internal/prescription"
	"github.com/carterperez-dev/medassist/internal/user"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Count int `json:"count"`
	} `json:"meta"`
}

func (f *fixture) router() http.Handler {
	r := chi.NewRouter()
	admin.NewHandler(admin.HandlerConfig{
		Service: f.admin,
		DBStats: f.db.Stats,
		DBPing:  f.db.Ping,
	}).RegisterRoutes(r)
	return r
}

func call(t *testing.T, h http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func TestHandler_ApproveActorSources(t *testing.T) {
	f := newFixture(t)
	h := f.router()

	code, env := call(t, h, http.MethodPost, "/admin/approve/"+id(f.ana.ID)+"?userId="+f.rootID, nil)
	require.Equal(t, http.StatusOK, code)

	var u user.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, user.StatusApproved, u.Status)
	assert.NotNil(t, u.ApprovedAt)

	code, _ = call(t, h, http.MethodPost, "/admin/reject/"+id(f.ana.ID),
		map[string]any{"userId": f.root.ID})
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(t, h, http.MethodPost, "/admin/reject/"+id(f.ana.ID),
		map[string]any{"userId": f.rootID})
	assert.Equal(t, http.StatusOK, code, "string ids are accepted")
}

func TestHandler_GuardStatusCodes(t *testing.T) {
	f := newFixture(t)
	h := f.router()

	tests := []struct {
		name   string
		method string
		path   string
		code   int
	}{
		{"missing actor", http.MethodPost, "/admin/approve/" + id(f.ana.ID), http.StatusUnauthorized},
		{"unknown actor", http.MethodPost, "/admin/approve/" + id(f.ana.ID) + "?userId=999999", http.StatusUnauthorized},
		{"non-admin actor", http.MethodPost, "/admin/approve/" + id(f.ana.ID) + "?userId=" + id(f.bob.ID), http.StatusForbidden},
		{"non-admin with bad path", http.MethodPost, "/admin/approve/abc?userId=" + id(f.bob.ID), http.StatusForbidden},
		{"admin with bad path", http.MethodPost, "/admin/approve/abc?userId=" + f.rootID, http.StatusBadRequest},
		{"non-admin listing", http.MethodGet, "/admin/requests?userId=" + id(f.bob.ID), http.StatusForbidden},
		{"non-admin stats", http.MethodGet, "/admin/stats?userId=" + id(f.bob.ID), http.StatusForbidden},
		{"missing target", http.MethodPost, "/admin/approve/999999?userId=" + f.rootID, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := call(t, h, tt.method, tt.path, nil)
			assert.Equal(t, tt.code, code)
			assert.False(t, env.Success)
		})
	}

	assert.Equal(t, user.StatusPending, f.reload(t, f.ana.ID).Status)
}

func TestHandler_StatsGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := f.router()

	f.ana.IsAdmin = true
	require.NoError(t, user.NewRepository(f.db).Update(ctx, f.ana))
	_, err := f.users.SelfDelete(ctx, f.ana.ID)
	require.NoError(t, err)

	tests := map[string]struct {
		query string
		code  int
	}{
		"missing actor": {"", http.StatusUnauthorized},
		"unknown actor": {"?userId=999999", http.StatusUnauthorized},
		"non-admin":     {"?userId=" + id(f.bob.ID), http.StatusForbidden},
		"deleted admin": {"?userId=" + id(f.ana.ID), http.StatusForbidden},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			code, env := call(t, h, http.MethodGet, "/admin/stats"+tt.query, nil)
			assert.Equal(t, tt.code, code)
			assert.False(t, env.Success)
			assert.Empty(t, string(env.Data))
		})
	}
}

func TestHandler_ChangeStatus(t *testing.T) {
	f := newFixture(t)
	h := f.router()

	code, env := call(t, h, http.MethodPost, "/admin/change-status/"+id(f.ana.ID), map[string]any{
		"userId":  f.root.ID,
		"status":  "approved",
		"isAdmin": "1",
	})
	require.Equal(t, http.StatusOK, code)

	var u user.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.True(t, u.IsAdmin)
	assert.Equal(t, user.StatusApproved, u.Status)

	code, env = call(t, h, http.MethodPost, "/admin/change-status/"+id(f.ana.ID), map[string]any{
		"userId": f.root.ID,
		"status": "bogus",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestHandler_DeleteAndRestore(t *testing.T) {
	f := newFixture(t)
	h := f.router()
	actor := "?userId=" + f.rootID

	code, env := call(t, h, http.MethodDelete, "/admin/delete-user/"+f.rootID+actor, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "SELF_ACTION", env.Error.Code)

	code, env = call(t, h, http.MethodPost, "/admin/restore-user/"+id(f.ana.ID)+actor, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "NOT_DELETED", env.Error.Code)

	code, _ = call(t, h, http.MethodDelete, "/admin/delete-user/"+id(f.ana.ID)+actor, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = call(t, h, http.MethodDelete, "/admin/delete-user/"+id(f.ana.ID)+actor, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ALREADY_DELETED", env.Error.Code)

	code, env = call(t, h, http.MethodGet, "/admin/requests"+actor+"&showDeleted=true", nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Count)

	code, _ = call(t, h, http.MethodPost, "/admin/restore-user/"+id(f.ana.ID)+actor, nil)
	assert.Equal(t, http.StatusOK, code)

	_, err := f.admin.ChangeStatus(context.Background(), f.rootID, f.bob.ID, "approved", boolPtr(true))
	require.NoError(t, err)

	code, env = call(t, h, http.MethodDelete, "/admin/delete-user/"+f.rootID+"?userId="+id(f.bob.ID), nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "PROTECTED_ACCOUNT", env.Error.Code)
}

func TestHandler_Prescriptions(t *testing.T) {
	f := newFixture(t)
	h := f.router()
	ctx := context.Background()
	actor := "?userId=" + f.rootID

	_, err := f.admin.Approve(ctx, f.rootID, f.ana.ID)
	require.NoError(t, err)
	p, err := f.rx.Create(ctx, f.ana.ID, prescription.CreateRequest{PatientName: "Ion"})
	require.NoError(t, err)

	code, env := call(t, h, http.MethodGet, "/admin/user-prescriptions/"+id(f.ana.ID)+actor, nil)
	require.Equal(t, http.StatusOK, code)
	var items []prescription.Response
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Ion", *items[0].PatientName)

	code, _ = call(t, h, http.MethodGet, "/admin/user-prescriptions/999999"+actor, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, h, http.MethodDelete, "/admin/prescriptions/"+id(p.ID)+actor, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, env = call(t, h, http.MethodDelete, "/admin/prescriptions/"+id(p.ID)+actor, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "prescription not found", env.Error.Message)
}

func TestHandler_RunQuery(t *testing.T) {
	f := newFixture(t)
	h := f.router()

	code, env := call(t, h, http.MethodPost, "/admin/db-query", map[string]any{
		"userId": f.root.ID,
		"query":  "SELECT email FROM users ORDER BY id",
		"type":   "all",
	})
	require.Equal(t, http.StatusOK, code)

	var resp struct {
		Result        []map[string]any `json:"result"`
		Count         int              `json:"count"`
		ExecutionTime string           `json:"executionTime"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, rootEmail, resp.Result[0]["email"])

	code, env = call(t, h, http.MethodPost, "/admin/db-query", map[string]any{
		"userId": f.root.ID,
		"query":  "DROP TABLE users",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, _ = call(t, h, http.MethodPost, "/admin/db-query", map[string]any{
		"userId": f.root.ID,
		"query":  "SELECT * FROM missing_table",
	})
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestHandler_Stats(t *testing.T) {
	f := newFixture(t)
	h := f.router()

	code, env := call(t, h, http.MethodGet, "/admin/stats?userId="+f.rootID, nil)
	require.Equal(t, http.StatusOK, code)

	var stats admin.SystemStatsResponse
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.True(t, stats.Database.Healthy)
	assert.NotNil(t, stats.Database.Stats)
	assert.Nil(t, stats.Redis)
	assert.NotEmpty(t, stats.Runtime.GoVersion)
}
