// AngelaMos | 2026
// handler.go

package prescription

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
	r.Route("/prescriptions", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Delete("/", h.DeleteAll)
		r.Delete("/{prescriptionId}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	ownerID, ok := middleware.RequireUserID(w, r, req.UserID)
	if !ok {
		return
	}

	p, err := h.service.Create(r.Context(), ownerID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToResponse(p))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.RequireUserID(w, r, "")
	if !ok {
		return
	}

	items, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.List(w, ToResponseList(items), len(items))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.RequireUserID(w, r, "")
	if !ok {
		return
	}

	id, err := core.ParseID(chi.URLParam(r, "prescriptionId"))
	if err != nil {
		core.BadRequest(w, "invalid prescription id")
		return
	}

	if err := h.service.Delete(r.Context(), ownerID, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "prescription")
			return
		}
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.RequireUserID(w, r, "")
	if !ok {
		return
	}

	n, err := h.service.DeleteAll(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, DeleteAllResponse{DeletedCount: n})
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotApproved) {
		core.JSONError(w, core.NewAppError(
			err,
			"account is not approved yet",
			http.StatusForbidden,
			"NOT_APPROVED",
		))
		return
	}

	user.WriteError(w, err)
}
