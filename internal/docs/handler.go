// AngelaMos | 2026
// handler.go

package docs

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/medassist/internal/core"
)

const (
	helpPath    = "/api/help"
	swaggerPath = "/api/swagger"
)

//go:embed openapi.json
var openapi []byte

// Route is one documented endpoint.
type Route struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type Links struct {
	OpenAPI string `json:"openapiJson"`
	Help    string `json:"help"`
}

type HelpResponse struct {
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Docs    Links   `json:"docs"`
	Routes  []Route `json:"routes"`
}

type Config struct {
	Name    string
	Version string
	// BaseURL prefixes the documentation links. Empty keeps them relative.
	BaseURL string
}

// Handler serves the route index and the OpenAPI document. Both are built
// once from the embedded document with the running version stamped in.
type Handler struct {
	help     HelpResponse
	document []byte
}

func NewHandler(cfg Config) (*Handler, error) {
	var doc map[string]any
	if err := json.Unmarshal(openapi, &doc); err != nil {
		return nil, fmt.Errorf("decode openapi document: %w", err)
	}

	info, ok := doc["info"].(map[string]any)
	if !ok {
		return nil, errors.New("openapi document has no info object")
	}
	info["version"] = cfg.Version

	document, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi document: %w", err)
	}

	routes, err := routesOf(openapi)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(cfg.BaseURL, "/")
	return &Handler{
		help: HelpResponse{
			Name:    cfg.Name,
			Version: cfg.Version,
			Docs: Links{
				OpenAPI: base + swaggerPath,
				Help:    base + helpPath,
			},
			Routes: routes,
		},
		document: document,
	}, nil
}

// RegisterRoutes mounts the endpoints under the API prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/help", h.Help)
	r.Get("/swagger", h.Swagger)
}

func (h *Handler) Help(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.help)
}

func (h *Handler) Swagger(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // best-effort response
	_, _ = w.Write(h.document)
}

// routesOf flattens the document's paths into a list ordered by path and
// then by method.
func routesOf(raw []byte) ([]Route, error) {
	var doc struct {
		Paths map[string]map[string]struct {
			Summary string `json:"summary"`
		} `json:"paths"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode openapi paths: %w", err)
	}

	routes := make([]Route, 0, len(doc.Paths))
	for path, ops := range doc.Paths {
		for method, op := range ops {
			routes = append(routes, Route{
				Method:      strings.ToUpper(method),
				Path:        path,
				Description: op.Summary,
			})
		}
	}

	slices.SortFunc(routes, func(a, b Route) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.Method, b.Method)
	})
	return routes, nil
}
