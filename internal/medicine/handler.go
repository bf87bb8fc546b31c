// AngelaMos | 2026
// handler.go

package medicine

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/middleware"
	"github.com/carterperez-dev/medassist/internal/user"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/user-medicines", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{medicineId}", h.Update)
		r.Delete("/{medicineId}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.RequireUserID(w, r, "")
	if !ok {
		return
	}

	items, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.List(w, ToResponseList(items), len(items))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	ownerID, ok := middleware.RequireUserID(w, r, req.UserID)
	if !ok {
		return
	}

	m, err := h.service.Create(r.Context(), ownerID, req)
	if err != nil {
		user.WriteError(w, err)
		return
	}

	core.Created(w, ToResponse(m))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	ownerID, ok := middleware.RequireUserID(w, r, req.UserID)
	if !ok {
		return
	}

	id, err := core.ParseID(chi.URLParam(r, "medicineId"))
	if err != nil {
		core.BadRequest(w, "invalid medicine id")
		return
	}

	m, err := h.service.Update(r.Context(), ownerID, id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToResponse(m))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.RequireUserID(w, r, "")
	if !ok {
		return
	}

	id, err := core.ParseID(chi.URLParam(r, "medicineId"))
	if err != nil {
		core.BadRequest(w, "invalid medicine id")
		return
	}

	if err := h.service.Delete(r.Context(), ownerID, id); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (UpsertRequest, bool) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return req, false
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return req, false
	}

	return req, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "medicine")
	default:
		core.InternalServerError(w, err)
	}
}
