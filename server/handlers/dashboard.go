package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/spektr-org/incomelens/engine"
	"github.com/spektr-org/incomelens/errors"
	"github.com/spektr-org/incomelens/logging"
	"github.com/spektr-org/incomelens/schema"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// dashboardPage is everything the dashboard template draws.
type dashboardPage struct {
	Title         string
	Business      string
	Documentation []schema.DocEntry
	Options       []string
	Selected      string

	Error   string
	Result  *engine.Result
	Table   *engine.TableData
	Page    int // one-based
	Pages   int
	PrevURL string
	NextURL string
	Charts  []chartPanel

	Form    *engine.CustomForm
	Hues    []string
	HueName string
	Custom  bool
	Filters []filterView
}

type chartPanel struct {
	Title string
	URL   string
	Error string
}

type filterView struct {
	Column string
	Values string
}

// HandleDashboard handles GET /.
// Every page shows the title, the business-understanding paragraph and the
// column documentation table above the view selector.
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page := dashboardPage{
		Title:         schema.Title,
		Business:      schema.BusinessUnderstanding,
		Documentation: schema.Documentation(),
		Options:       engine.ViewOptions(),
		Hues:          hueChoices(),
		HueName:       engine.NoHue,
	}
	status := http.StatusOK

	req, err := ParseRequest(r)
	page.Selected = req.Option
	page.Custom = req.Option == engine.OptionCustom
	page.Form = defaultForm()
	if err == nil {
		err = h.fillView(r, req, &page)
	}
	if err != nil {
		status = http.StatusInternalServerError
		if errors.IsValidationError(err) {
			status = http.StatusBadRequest
		}
		page.Error = err.Error()
		logging.FromContext(r.Context()).Debug().Err(err).Msg("dashboard request rejected")
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, page); err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Msg("dashboard template failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handlers) fillView(r *http.Request, req engine.Request, page *dashboardPage) error {
	key, res, err := h.execute(r, req)
	if err != nil {
		return err
	}
	page.Result = res

	columns := req.Filters.Keys()
	sort.Strings(columns)
	for _, column := range columns {
		page.Filters = append(page.Filters, filterView{
			Column: column,
			Values: strings.Join(req.Filters.Dimensions[column], ", "),
		})
	}

	if res.Table != nil {
		n := ParsePage(r)
		pages := res.Table.Pages(h.opts.PageSize)
		if n >= pages {
			n = pages - 1
		}
		page.Table = res.Table.Page(n, h.opts.PageSize)
		page.Page = n + 1
		page.Pages = pages
		if n > 0 {
			page.PrevURL = pageURL(req, n)
		}
		if n+1 < pages {
			page.NextURL = pageURL(req, n+2)
		}
	}

	if res.Form != nil {
		page.Form = res.Form
		if res.Form.Selection.Hue != "" {
			page.HueName = res.Form.Selection.Hue
		}
	}

	for i, c := range res.Charts {
		panel := chartPanel{Title: c.Title, Error: c.Error}
		if c.Error == "" {
			panel.URL = ChartURL(key, i)
		}
		page.Charts = append(page.Charts, panel)
	}
	return nil
}

func defaultForm() *engine.CustomForm {
	return &engine.CustomForm{
		Selection:   engine.DefaultCustomSelection(),
		Columns:     schema.Names(),
		Kinds:       engine.PlotKinds(),
		MinRotation: engine.MinRotation,
		MaxRotation: engine.MaxRotation,
	}
}

func pageURL(req engine.Request, page int) string {
	q := Values(req)
	q.Set(ParamPage, strconv.Itoa(page))
	return "/?" + q.Encode()
}
