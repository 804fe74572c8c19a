package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spektr-org/incomelens/errors"
	"github.com/spektr-org/incomelens/logging"
	"github.com/spektr-org/incomelens/render"
	"github.com/spektr-org/incomelens/server/response"
)

// HandleChartPNG handles GET /charts/{key}/{index}.png.
// The key names a request executed earlier by the dashboard or the view API;
// once its result has expired from the cache the image is gone too.
func (h *Handlers) HandleChartPNG(w http.ResponseWriter, r *http.Request, key string, index int) {
	imageKey := key + "/" + strconv.Itoa(index)
	if png, ok := h.cache.GetImage(imageKey); ok {
		writePNG(w, png)
		return
	}

	res, ok := h.cache.GetResult(key)
	if !ok {
		response.ErrorFromType(w, fmt.Errorf("view %s: %w", key, errors.ErrNotFound))
		return
	}
	if index < 0 || index >= len(res.Charts) {
		response.ErrorFromType(w, fmt.Errorf("chart %d of view %s: %w", index, key, errors.ErrNotFound))
		return
	}

	c := res.Charts[index]
	if c.Error != "" {
		err := c.Err()
		if err == nil {
			err = errors.NewRenderError(c.Title, c.Error)
		}
		response.ErrorFromType(w, err)
		return
	}

	var buf bytes.Buffer
	if err := render.PNG(&buf, c, h.opts.ChartSize); err != nil {
		logging.FromContext(r.Context()).Warn().Err(err).Str("chart", c.Title).Msg("chart rasterisation failed")
		response.ErrorFromType(w, err)
		return
	}

	h.cache.SetImage(imageKey, buf.Bytes())
	writePNG(w, buf.Bytes())
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
