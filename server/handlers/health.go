package handlers

import (
	"net/http"
	"time"

	"github.com/spektr-org/incomelens/server/response"
)

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"status":  "healthy",
		"service": "incomelens",
		"version": "v1",
	}
	if !h.opts.Started.IsZero() {
		body["uptime"] = time.Since(h.opts.Started).Round(time.Second).String()
	}
	response.OK(w, body)
}

// HandleReady handles GET /api/v1/ready.
// The dataset is loaded before the server starts, so an empty view means
// the process was wired without data.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	if h.view == nil || h.view.Len() == 0 {
		response.ServiceUnavailable(w, "Dataset not loaded")
		return
	}

	stats := h.cache.GetStats()
	response.OK(w, map[string]any{
		"status":  "ready",
		"records": h.view.Len(),
		"cache": map[string]any{
			"items": stats.ItemCount,
		},
	})
}
