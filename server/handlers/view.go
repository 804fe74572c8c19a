package handlers

import (
	"fmt"
	"net/http"

	"github.com/spektr-org/incomelens/engine"
	"github.com/spektr-org/incomelens/logging"
	"github.com/spektr-org/incomelens/schema"
	"github.com/spektr-org/incomelens/server/response"
)

// ChartURL returns the image URL of chart index of an executed request.
func ChartURL(key string, index int) string {
	return fmt.Sprintf("/charts/%s/%d.png", key, index)
}

// ViewResponse is the JSON payload of GET /api/v1/view.
type ViewResponse struct {
	Key       string         `json:"key"`
	Result    *engine.Result `json:"result"`
	ChartURLs []string       `json:"chartUrls,omitempty"`
}

// HandleView handles GET /api/v1/view.
// Query parameters: option, x, y, kind, rotation, hue, generate, filter.<column>.
// Charts that cannot be drawn carry their own error; the request still
// succeeds.
func (h *Handlers) HandleView(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	key, res, err := h.execute(r, req)
	if err != nil {
		logging.FromContext(r.Context()).Debug().Err(err).Msg("view request rejected")
		response.ErrorFromType(w, err)
		return
	}

	out := ViewResponse{Key: key, Result: res}
	for i, c := range res.Charts {
		if c.Error == "" {
			out.ChartURLs = append(out.ChartURLs, ChartURL(key, i))
		} else {
			out.ChartURLs = append(out.ChartURLs, "")
		}
	}
	response.OK(w, out)
}

// HandleColumns handles GET /api/v1/columns.
func (h *Handlers) HandleColumns(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"columns": schema.Documentation(),
		"count":   len(schema.Documentation()),
	})
}

// HandleCleaning handles GET /api/v1/cleaning.
func (h *Handlers) HandleCleaning(w http.ResponseWriter, _ *http.Request) {
	if h.report == nil {
		response.NotFound(w, "No cleaning report", "the dataset was served without cleaning")
		return
	}
	response.OK(w, h.report)
}

// HandleOptions handles GET /api/v1/options.
func (h *Handlers) HandleOptions(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"options":     engine.ViewOptions(),
		"kinds":       engine.PlotKinds(),
		"columns":     schema.Names(),
		"hues":        hueChoices(),
		"minRotation": engine.MinRotation,
		"maxRotation": engine.MaxRotation,
		"defaults":    engine.DefaultCustomSelection(),
	})
}

// hueChoices is the hue selector: no grouping, then every column.
func hueChoices() []string {
	return append([]string{engine.NoHue}, schema.Names()...)
}
