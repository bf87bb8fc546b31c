// AngelaMos | 2026
// handler.go

package medication

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/medassist/internal/core"
)

type Handler struct {
	repo Repository
}

func NewHandler(db core.Store) *Handler {
	return &Handler{repo: NewRepository(db)}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/medications", func(r chi.Router) {
		r.Get("/", h.Search)
		r.Get("/{medicationId}", h.GetByID)
	})
}

// Count reports the size of the reference table.
func (h *Handler) Count(ctx context.Context) (int64, error) {
	return h.repo.Count(ctx)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := SearchParams{
		Search: strings.TrimSpace(q.Get("search")),
		Limit:  ParseLimit(q.Get("limit")),
		Offset: ParseOffset(q.Get("offset")),
	}

	items, err := h.repo.Search(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, SearchResult{Items: items, Count: len(items)})
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(chi.URLParam(r, "medicationId"))
	if err != nil {
		core.BadRequest(w, "invalid medication id")
		return
	}

	m, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "medication")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, m)
}

// ParseLimit turns the limit parameter into a page size. "all" and "0"
// request the whole table up to MaxLimit; anything unparsable or negative
// falls back to DefaultLimit.
func ParseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "all" || raw == "0" {
		return MaxLimit
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return DefaultLimit
	}

	return min(n, MaxLimit)
}

func ParseOffset(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
