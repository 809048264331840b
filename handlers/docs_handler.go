package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rm/user-service/utils"
	"go.uber.org/zap"
)

// RouteDoc describes one registered endpoint
type RouteDoc struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// APIDocs is the document served at the docs path
type APIDocs struct {
	Service string     `json:"service"`
	Routes  []RouteDoc `json:"routes"`
}

// DocsHandler serves a listing of the routes mounted on a chi router
type DocsHandler struct {
	service string
	routes  chi.Routes
	logger  *zap.Logger
}

// NewDocsHandler creates a DocsHandler. routes is walked on every request, so routes registered later are included.
func NewDocsHandler(service string, routes chi.Routes, logger *zap.Logger) *DocsHandler {
	return &DocsHandler{service: service, routes: routes, logger: logger}
}

// HandleDocs handles GET /v2/api-docs
func (h *DocsHandler) HandleDocs(w http.ResponseWriter, r *http.Request) {
	docs := APIDocs{Service: h.service, Routes: make([]RouteDoc, 0)}

	err := chi.Walk(h.routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		docs.Routes = append(docs.Routes, RouteDoc{Method: method, Path: strings.TrimSuffix(route, "/*")})
		return nil
	})
	if err != nil {
		h.logger.Error("failed to walk routes", zap.Error(err))
		_ = utils.WriteInternalServerError(w)
		return
	}

	sort.Slice(docs.Routes, func(i, j int) bool {
		if docs.Routes[i].Path == docs.Routes[j].Path {
			return docs.Routes[i].Method < docs.Routes[j].Method
		}
		return docs.Routes[i].Path < docs.Routes[j].Path
	})

	_ = utils.WriteSuccess(w, docs)
}
