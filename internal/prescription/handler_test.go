// AngelaMos | 2026
// handler_test.go

package prescription_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/medassist/internal/prescription"
)

func (e *env) router() http.Handler {
	r := chi.NewRouter()
	prescription.NewHandler(e.svc).RegisterRoutes(r)
	return r
}

func send(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateAndList(t *testing.T) {
	e := newEnv(t)
	h := e.router()
	doc := e.account(t, "doc@x.com", true)
	owner := strconv.FormatInt(doc.ID, 10)

	rec := send(t, h, http.MethodPost, "/prescriptions/", `{
		"userId": "`+owner+`",
		"patientName": "Ion",
		"medications": [{"name": "Aspirin"}],
		"treatmentPlans": {"Aspirin": {"days": 3}}
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data prescription.Response `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, doc.ID, created.Data.UserID)
	assert.Len(t, created.Data.Medications, 1)

	rec = send(t, h, http.MethodGet, "/prescriptions/?userId="+owner, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		Data []prescription.Response `json:"data"`
		Meta struct {
			Count int `json:"count"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Meta.Count)
	assert.JSONEq(t, `{"days":3}`, string(listed.Data[0].TreatmentPlans["Aspirin"]))
}

func TestHandler_Errors(t *testing.T) {
	e := newEnv(t)
	h := e.router()
	pending := e.account(t, "pending@x.com", false)
	doc := e.account(t, "doc@x.com", true)
	owner := strconv.FormatInt(doc.ID, 10)

	rec := send(t, h, http.MethodPost, "/prescriptions/", `{"userId": `+strconv.FormatInt(pending.ID, 10)+`}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_APPROVED")

	rec = send(t, h, http.MethodPost, "/prescriptions/", `{"medications": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(t, h, http.MethodPost, "/prescriptions/", `{"userId": `+owner+`, "medications": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(t, h, http.MethodDelete, "/prescriptions/abc?userId="+owner, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(t, h, http.MethodDelete, "/prescriptions/999999?userId="+owner, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "prescription not found")
}

func TestHandler_DeleteAll(t *testing.T) {
	e := newEnv(t)
	h := e.router()
	doc := e.account(t, "doc@x.com", true)
	owner := strconv.FormatInt(doc.ID, 10)

	for range 2 {
		rec := send(t, h, http.MethodPost, "/prescriptions/?userId="+owner, `{}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := send(t, h, http.MethodDelete, "/prescriptions/?userId="+owner, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data prescription.DeleteAllResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 2, resp.Data.DeletedCount)
}
