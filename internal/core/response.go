// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
)

type Response struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Error   *ErrorBody    `json:"error,omitempty"`
	Meta    *ResponseMeta `json:"meta,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

type ResponseMeta struct {
	Count int `json:"count"`
}

var exposeErrors atomic.Bool

// ExposeInternalErrors controls whether 500 responses carry the underlying
// error text. Only development builds turn it on.
func ExposeInternalErrors(enabled bool) {
	exposeErrors.Store(enabled)
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Response{Success: true, Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func List(w http.ResponseWriter, data any, count int) {
	JSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
		Meta:    &ResponseMeta{Count: count},
	})
}

func JSONError(w http.ResponseWriter, err error) {
	appErr, ok := GetAppError(err)
	if !ok {
		InternalServerError(w, err)
		return
	}

	body := &ErrorBody{Code: appErr.Code, Message: appErr.Message}
	if appErr.StatusCode >= http.StatusInternalServerError &&
		exposeErrors.Load() && appErr.Err != nil {
		body.Detail = appErr.Err.Error()
	}

	JSON(w, appErr.StatusCode, Response{Success: false, Error: body})
}

func BadRequest(w http.ResponseWriter, message string) {
	JSONError(w, ValidationError(message))
}

func NotFound(w http.ResponseWriter, resource string) {
	JSONError(w, NotFoundError(resource))
}

func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)
	JSONError(w, InternalError(err))
}
