package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/spektr-org/incomelens/engine"
	"github.com/spektr-org/incomelens/server/handlers"
	"github.com/spektr-org/incomelens/server/middleware"
	"github.com/spektr-org/incomelens/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(s.view, s.report, s.cache, handlers.Options{
		PageSize:  s.config.PageSize,
		ChartSize: s.config.ChartSize,
		Started:   s.StartTime(),
		Engine: []engine.Option{
			engine.WithConfidenceLevel(s.config.ConfidenceLevel),
			engine.WithMaxHueLevels(s.config.MaxHueLevels),
			engine.WithHistogramBins(s.config.HistogramBins),
		},
	}, s.logger)

	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/health", getOnly(h.HandleHealth))
	mux.HandleFunc(prefix+"/health", getOnly(h.HandleHealth))
	mux.HandleFunc(prefix+"/ready", getOnly(h.HandleReady))

	mux.HandleFunc(prefix+"/columns", getOnly(h.HandleColumns))
	mux.HandleFunc(prefix+"/options", getOnly(h.HandleOptions))
	mux.HandleFunc(prefix+"/view", getOnly(h.HandleView))
	mux.HandleFunc(prefix+"/cleaning", getOnly(h.HandleCleaning))

	mux.HandleFunc("/charts/", getOnly(func(w http.ResponseWriter, r *http.Request) {
		key, index, ok := parseChartPath(r.URL.Path)
		if !ok {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		h.HandleChartPNG(w, r, key, index)
	}))

	mux.HandleFunc("/", getOnly(h.HandleDashboard))
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logger(s.logger),
	)(handler)
}

func getOnly(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		fn(w, r)
	}
}

// parseChartPath splits /charts/{key}/{index}.png.
func parseChartPath(path string) (string, int, bool) {
	parts := splitPath(strings.TrimPrefix(path, "/charts/"))
	if len(parts) != 2 {
		return "", 0, false
	}
	name, ok := strings.CutSuffix(parts[1], ".png")
	if !ok {
		return "", 0, false
	}
	index, err := strconv.Atoi(name)
	if err != nil || index < 0 {
		return "", 0, false
	}
	return parts[0], index, true
}

// splitPath splits a URL path into parts, removing empty strings.
func splitPath(path string) []string {
	parts := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
