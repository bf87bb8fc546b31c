// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/middleware"
)

// TokenIssuer mints an access token after a successful login. It is nil
// when JWT support is disabled.
type TokenIssuer interface {
	IssueAccessToken(userID int64, isAdmin bool) (string, time.Duration, error)
}

type Handler struct {
	service   *Service
	tokens    TokenIssuer
	validator *validator.Validate
}

func NewHandler(service *Service, tokens TokenIssuer) *Handler {
	return &Handler{
		service:   service,
		tokens:    tokens,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Get("/me", h.GetMe)
		r.Delete("/delete", h.SelfDelete)
		r.Post("/recover", h.Recover)
	})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.Signup(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrAccountDeleted) {
			core.JSONError(w, core.NewAppError(
				err,
				"an account with this email was deleted; recover it instead",
				http.StatusConflict,
				"ACCOUNT_DELETED",
			))
			return
		}
		writeError(w, err)
		return
	}

	core.Created(w, ToUserResponse(u))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrAccountDeleted) {
			core.JSONError(w, core.NewAppError(
				err,
				"this account was deleted",
				http.StatusForbidden,
				"ACCOUNT_DELETED",
			))
			return
		}
		writeError(w, err)
		return
	}

	resp := LoginResponse{User: ToUserResponse(u)}

	if h.tokens != nil {
		token, ttl, err := h.tokens.IssueAccessToken(u.ID, u.IsAdmin)
		if err != nil {
			core.InternalServerError(w, err)
			return
		}
		resp.AccessToken = token
		resp.TokenType = "Bearer"
		resp.ExpiresIn = int(ttl.Seconds())
	}

	core.OK(w, resp)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.RequireUserID(w, r, "")
	if !ok {
		return
	}

	u, err := h.service.GetMe(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) SelfDelete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if r.ContentLength != 0 {
		//nolint:errcheck // body is optional; the id may come from the query
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	id, ok := middleware.RequireUserID(w, r, req.UserID)
	if !ok {
		return
	}

	u, err := h.service.SelfDelete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) Recover(w http.ResponseWriter, r *http.Request) {
	var req RecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	u, err := h.service.Recover(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

// WriteError maps account errors onto the JSON envelope. Other packages
// reuse it for errors that cross from this one.
func WriteError(w http.ResponseWriter, err error) {
	writeError(w, err)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, ErrEmailTaken):
		core.JSONError(w, core.NewAppError(
			err,
			"email is already registered",
			http.StatusBadRequest,
			"EMAIL_TAKEN",
		))
	case errors.Is(err, ErrInvalidCredentials):
		core.JSONError(w, core.NewAppError(
			err,
			"invalid email or password",
			http.StatusUnauthorized,
			"INVALID_CREDENTIALS",
		))
	case errors.Is(err, ErrAlreadyDeleted):
		core.JSONError(w, core.NewAppError(
			err,
			"account is already deleted",
			http.StatusBadRequest,
			"ALREADY_DELETED",
		))
	case errors.Is(err, ErrNotDeleted):
		core.JSONError(w, core.NewAppError(
			err,
			"account is not deleted",
			http.StatusBadRequest,
			"NOT_DELETED",
		))
	case errors.Is(err, ErrAccountDeleted):
		core.JSONError(w, core.NewAppError(
			err,
			"this account was deleted",
			http.StatusForbidden,
			"ACCOUNT_DELETED",
		))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	default:
		core.InternalServerError(w, err)
	}
}
