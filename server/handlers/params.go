package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spektr-org/incomelens/engine"
	"github.com/spektr-org/incomelens/errors"
)

// FilterPrefix marks query parameters that restrict rows, e.g.
// filter.gender=F or filter.education=Superior completo,Pós graduação.
const FilterPrefix = "filter."

// Query parameter names shared by the dashboard form and the JSON API.
const (
	ParamOption   = "option"
	ParamX        = "x"
	ParamY        = "y"
	ParamKind     = "kind"
	ParamRotation = "rotation"
	ParamHue      = "hue"
	ParamGenerate = "generate"
	ParamPage     = "page"
)

// ParseRequest extracts a view request from query parameters.
// A missing option selects the Data view; missing custom fields take the
// custom form defaults. Malformed numbers are validation errors.
func ParseRequest(r *http.Request) (engine.Request, error) {
	q := r.URL.Query()

	req := engine.Request{
		Option: q.Get(ParamOption),
		Custom: engine.DefaultCustomSelection(),
	}
	if req.Option == "" {
		req.Option = engine.OptionData
	}

	if v := q.Get(ParamX); v != "" {
		req.Custom.X = v
	}
	if v := q.Get(ParamY); v != "" {
		req.Custom.Y = v
	}
	if v := q.Get(ParamKind); v != "" {
		req.Custom.Kind = v
	}
	if v := q.Get(ParamHue); v != "" && v != engine.NoHue {
		req.Custom.Hue = v
	}
	if v := q.Get(ParamRotation); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, errors.NewValidationError(ParamRotation, v, "must be an integer")
		}
		req.Custom.Rotation = n
	}
	if v := q.Get(ParamGenerate); v != "" {
		generate, err := parseFlag(v)
		if err != nil {
			return req, errors.NewValidationError(ParamGenerate, v, "must be a boolean")
		}
		req.Custom.Generate = generate
	}

	req.Filters = parseFilters(q)

	// Only the custom view reads its form; dropping it keeps equal
	// panel requests on one cache key.
	if req.Option != engine.OptionCustom {
		req.Custom = engine.CustomSelection{}
	}
	return req, nil
}

// ParsePage returns the zero-based table page from a one-based query value.
func ParsePage(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get(ParamPage))
	if err != nil || n < 1 {
		return 0
	}
	return n - 1
}

func parseFilters(q url.Values) engine.Filters {
	var f engine.Filters
	for key, values := range q {
		column, ok := strings.CutPrefix(key, FilterPrefix)
		if !ok || column == "" {
			continue
		}
		var allowed []string
		for _, v := range values {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					allowed = append(allowed, part)
				}
			}
		}
		if len(allowed) == 0 {
			continue
		}
		if f.Dimensions == nil {
			f.Dimensions = make(map[string][]string)
		}
		f.Dimensions[column] = allowed
	}
	return f
}

// parseFlag accepts the values an HTML checkbox or button may submit.
func parseFlag(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(v)
}

// Values encodes a request back into query parameters, the inverse of
// ParseRequest. Used to build pagination links.
func Values(req engine.Request) url.Values {
	q := url.Values{}
	q.Set(ParamOption, req.Option)
	if req.Option == engine.OptionCustom {
		q.Set(ParamX, req.Custom.X)
		q.Set(ParamY, req.Custom.Y)
		q.Set(ParamKind, req.Custom.Kind)
		q.Set(ParamRotation, strconv.Itoa(req.Custom.Rotation))
		if req.Custom.Hue != "" {
			q.Set(ParamHue, req.Custom.Hue)
		}
		if req.Custom.Generate {
			q.Set(ParamGenerate, "true")
		}
	}
	for column, allowed := range req.Filters.Dimensions {
		if len(allowed) > 0 {
			q.Set(FilterPrefix+column, strings.Join(allowed, ","))
		}
	}
	return q
}
