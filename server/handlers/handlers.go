// Package handlers provides HTTP request handlers for the dashboard.
package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/spektr-org/incomelens/cleaner"
	"github.com/spektr-org/incomelens/engine"
	"github.com/spektr-org/incomelens/logging"
	"github.com/spektr-org/incomelens/render"
	"github.com/spektr-org/incomelens/server/cache"
)

// Options tunes how views are computed and displayed.
type Options struct {
	PageSize  int
	ChartSize render.Size
	Engine    []engine.Option
	Started   time.Time // reported as uptime by /health when set
}

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	view   engine.RecordView
	report *cleaner.Report
	cache  *cache.Cache
	opts   Options
	logger *zerolog.Logger
}

// New creates a new Handlers instance over the cleaned dataset view.
func New(
	view engine.RecordView,
	report *cleaner.Report,
	cache *cache.Cache,
	opts Options,
	logger *zerolog.Logger,
) *Handlers {
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handlers{
		view:   view,
		report: report,
		cache:  cache,
		opts:   opts,
		logger: logger,
	}
}

// execute runs a view request, reusing a cached result for an equal request.
func (h *Handlers) execute(r *http.Request, req engine.Request) (string, *engine.Result, error) {
	key := cache.RequestKey(req)
	if res, ok := h.cache.GetResult(key); ok {
		return key, res, nil
	}

	opts := append(slices.Clone(h.opts.Engine), engine.WithLogger(logging.FromContext(r.Context())))
	res, err := engine.Execute(req, h.view, opts...)
	if err != nil {
		return "", nil, err
	}
	h.cache.SetResult(key, res)
	return key, res, nil
}
