package handlers_test

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/incomelens/cleaner"
	"github.com/spektr-org/incomelens/dataset"
	"github.com/spektr-org/incomelens/engine"
	"github.com/spektr-org/incomelens/render"
	"github.com/spektr-org/incomelens/schema"
	"github.com/spektr-org/incomelens/server/cache"
	"github.com/spektr-org/incomelens/server/handlers"
	"github.com/spektr-org/incomelens/server/response"
)

func day(s string) time.Time {
	t, err := time.Parse(dataset.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixtureTable() *dataset.Table {
	return &dataset.Table{Source: "fixture.csv", Records: []dataset.IncomeRecord{
		{ReferenceDate: day("2015-02-01"), ClientID: 1, Gender: "F", VehicleOwnership: false, PropertyOwnership: true, NumberOfChildren: 0, IncomeType: "Empresário", Education: "Secundário", MaritalStatus: "Casado", ResidenceType: "Casa", Age: 40, EmploymentDuration: 5, NumberOfHouseholdMembers: 2, Income: 3000},
		{ReferenceDate: day("2015-01-01"), ClientID: 2, Gender: "M", VehicleOwnership: true, PropertyOwnership: false, NumberOfChildren: 1, IncomeType: "Assalariado", Education: "Superior completo", MaritalStatus: "Solteiro", ResidenceType: "Aluguel", Age: 30, EmploymentDuration: 2, NumberOfHouseholdMembers: 3, Income: 5000},
		{ReferenceDate: day("2015-01-01"), ClientID: 3, Gender: "F", VehicleOwnership: false, PropertyOwnership: true, NumberOfChildren: 2, IncomeType: "Assalariado", Education: "Secundário", MaritalStatus: "Casado", ResidenceType: "Casa", Age: 50, EmploymentDuration: 10, NumberOfHouseholdMembers: 4, Income: 4000},
		{ReferenceDate: day("2015-03-01"), ClientID: 4, Gender: "M", VehicleOwnership: true, PropertyOwnership: true, NumberOfChildren: 0, IncomeType: "Pensionista", Education: "Superior completo", MaritalStatus: "Viúvo", ResidenceType: "Casa", Age: 60, EmploymentDuration: 1.5, NumberOfHouseholdMembers: 1, Income: 2000},
		{ReferenceDate: day("2015-02-01"), ClientID: 5, Gender: "F", VehicleOwnership: false, PropertyOwnership: false, NumberOfChildren: 1, IncomeType: "Empresário", Education: "Superior completo", MaritalStatus: "Solteiro", ResidenceType: "Com os pais", Age: 25, EmploymentDuration: 1, NumberOfHouseholdMembers: 2, Income: 6000},
		{ReferenceDate: day("2015-03-01"), ClientID: 6, Gender: "M", VehicleOwnership: true, PropertyOwnership: false, NumberOfChildren: 0, IncomeType: "Assalariado", Education: "Secundário", MaritalStatus: "Casado", ResidenceType: "Casa", Age: 35, EmploymentDuration: 3, NumberOfHouseholdMembers: 2, Income: 3500},
	}}
}

func newHandlers(t *testing.T, report *cleaner.Report) *handlers.Handlers {
	t.Helper()
	return newHandlersFor(t, fixtureTable(), report)
}

func newHandlersFor(t *testing.T, table *dataset.Table, report *cleaner.Report) *handlers.Handlers {
	t.Helper()
	logger := zerolog.Nop()
	return handlers.New(
		table.View(),
		report,
		cache.New(time.Minute, time.Minute),
		handlers.Options{PageSize: 4, ChartSize: render.Size{Width: 320, Height: 240}},
		&logger,
	)
}

func dashboard(t *testing.T, h *handlers.Handlers, q url.Values) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	w := httptest.NewRecorder()
	h.HandleDashboard(w, httptest.NewRequest(http.MethodGet, "/?"+q.Encode(), nil))

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return w, doc
}

func customQuery(x, y, kind, rotation string, generate bool) url.Values {
	q := url.Values{}
	q.Set("option", engine.OptionCustom)
	q.Set("x", x)
	q.Set("y", y)
	q.Set("kind", kind)
	q.Set("rotation", rotation)
	if generate {
		q.Set("generate", "true")
	}
	return q
}

type envelope[T any] struct {
	Data  T               `json:"data"`
	Error *response.Error `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}

// ============================================================================
// DASHBOARD
// ============================================================================

func TestDashboardDefaultsToData(t *testing.T) {
	w, doc := dashboard(t, newHandlers(t, nil), url.Values{})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, schema.Title, doc.Find("h1#title").Text())
	assert.Equal(t, schema.BusinessUnderstanding, doc.Find("#business p").Text())
	assert.Equal(t, 14, doc.Find("#documentation tbody tr").Length())

	var options []string
	doc.Find("select#option option").Each(func(_ int, s *goquery.Selection) {
		options = append(options, s.Text())
	})
	assert.Equal(t, engine.ViewOptions(), options)

	selected, _ := doc.Find("select#option option[selected]").Attr("value")
	assert.Equal(t, engine.OptionData, selected)

	assert.Equal(t, 0, doc.Find("#generate").Length(), "custom form only shows for the custom view")
	assert.Equal(t, 14, doc.Find("#data thead th").Length())
	assert.Equal(t, 4, doc.Find("#data tbody tr").Length())
}

func TestDashboardPaginatesTable(t *testing.T) {
	h := newHandlers(t, nil)

	_, first := dashboard(t, h, url.Values{})
	next, ok := first.Find("nav.pager a[rel=next]").Attr("href")
	require.True(t, ok)
	assert.Contains(t, next, "page=2")
	assert.Equal(t, 0, first.Find("nav.pager a[rel=prev]").Length())

	_, second := dashboard(t, h, url.Values{"option": {engine.OptionData}, "page": {"2"}})
	assert.Equal(t, 2, second.Find("#data tbody tr").Length())
	assert.Equal(t, 1, second.Find("nav.pager a[rel=prev]").Length())
	assert.Contains(t, second.Find("nav.pager span").Text(), "Page 2 of 2")

	// Past the end clamps to the last page.
	_, last := dashboard(t, h, url.Values{"page": {"9"}})
	assert.Equal(t, 2, last.Find("#data tbody tr").Length())
}

func TestDashboardCustomForm(t *testing.T) {
	_, doc := dashboard(t, newHandlers(t, nil), url.Values{"option": {engine.OptionCustom}})

	assert.Equal(t, "Generate Graph", strings.TrimSpace(doc.Find("#generate").Text()))
	assert.Equal(t, 14, doc.Find("form#custom select[name=x] option").Length())
	assert.Equal(t, 14, doc.Find("form#custom select[name=y] option").Length())
	assert.Equal(t, 3, doc.Find("form#custom select[name=kind] option").Length())

	hue := doc.Find("form#custom select[name=hue] option")
	assert.Equal(t, 15, hue.Length())
	assert.Equal(t, engine.NoHue, hue.First().Text())

	x, _ := doc.Find("form#custom select[name=x] option[selected]").Attr("value")
	y, _ := doc.Find("form#custom select[name=y] option[selected]").Attr("value")
	assert.Equal(t, schema.ReferenceDate, x)
	assert.Equal(t, schema.Income, y)

	rotation := doc.Find("form#custom input[name=rotation]")
	assert.Equal(t, "0", rotation.AttrOr("min", ""))
	assert.Equal(t, "90", rotation.AttrOr("max", ""))
	assert.Equal(t, "45", rotation.AttrOr("value", ""))

	assert.Equal(t, 0, doc.Find("#charts img").Length(), "no chart before Generate")
}

func TestDashboardCustomGenerate(t *testing.T) {
	h := newHandlers(t, nil)

	_, doc := dashboard(t, h, customQuery(schema.Education, schema.Income, engine.PlotBar, "30", true))

	imgs := doc.Find("#charts img")
	require.Equal(t, 1, imgs.Length())
	src := imgs.AttrOr("src", "")
	require.True(t, strings.HasPrefix(src, "/charts/"), src)
	require.True(t, strings.HasSuffix(src, "/0.png"), src)

	key := strings.TrimSuffix(strings.TrimPrefix(src, "/charts/"), "/0.png")
	w := httptest.NewRecorder()
	h.HandleChartPNG(w, httptest.NewRequest(http.MethodGet, src, nil), key, 0)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "\x89PNG"))

	selected, _ := doc.Find("form#custom input[name=rotation]").Attr("value")
	assert.Equal(t, "30", selected)
}

func TestDashboardShowsChartErrors(t *testing.T) {
	_, doc := dashboard(t, newHandlers(t, nil), customQuery(schema.Age, schema.Gender, engine.PlotScatter, "45", true))

	assert.Equal(t, 0, doc.Find("#charts img").Length())
	assert.Equal(t, 1, doc.Find("#charts .chart-error").Length())
}

func TestDashboardPanels(t *testing.T) {
	h := newHandlers(t, nil)

	_, overTime := dashboard(t, h, url.Values{"option": {engine.OptionOverTime}})
	assert.Equal(t, 6, overTime.Find("#charts img").Length())

	_, bivariate := dashboard(t, h, url.Values{"option": {engine.OptionBivariate}})
	assert.Equal(t, 7, bivariate.Find("#charts img").Length())
	assert.Equal(t, 0, bivariate.Find("#data").Length())
}

func TestDashboardInvalidRequest(t *testing.T) {
	w, doc := dashboard(t, newHandlers(t, nil), customQuery(schema.Education, schema.Income, engine.PlotBar, "120", true))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, doc.Find("#error").Text(), "rotation")
	// The page still renders so the user can fix the form.
	assert.Equal(t, 4, doc.Find("select#option option").Length())
}

func TestDashboardKeepsFilters(t *testing.T) {
	q := url.Values{"option": {engine.OptionData}, "filter.gender": {"F"}}
	_, doc := dashboard(t, newHandlers(t, nil), q)

	assert.Equal(t, 3, doc.Find("#data tbody tr").Length())
	assert.Equal(t, "F", doc.Find("form#selector input[name='filter.gender']").AttrOr("value", ""))
}

// ============================================================================
// JSON API
// ============================================================================

func TestHandleView(t *testing.T) {
	h := newHandlers(t, nil)

	w := httptest.NewRecorder()
	q := url.Values{"option": {engine.OptionOverTime}}
	h.HandleView(w, httptest.NewRequest(http.MethodGet, "/api/v1/view?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, w.Code)

	env := decode[handlers.ViewResponse](t, w)
	require.Nil(t, env.Error)
	assert.NotEmpty(t, env.Data.Key)
	require.Len(t, env.Data.Result.Charts, 6)
	require.Len(t, env.Data.ChartURLs, 6)
	assert.Equal(t, handlers.ChartURL(env.Data.Key, 5), env.Data.ChartURLs[5])
}

func TestHandleViewMissingColumnChart(t *testing.T) {
	table := fixtureTable()
	for i := range table.Records {
		table.Records[i].EmploymentDuration = math.NaN()
	}
	h := newHandlersFor(t, table, nil)

	w := httptest.NewRecorder()
	q := customQuery(schema.EmploymentDuration, schema.Income, engine.PlotLine, "45", true)
	h.HandleView(w, httptest.NewRequest(http.MethodGet, "/api/v1/view?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotZero(t, w.Body.Len())

	env := decode[handlers.ViewResponse](t, w)
	require.Nil(t, env.Error)
	require.Len(t, env.Data.Result.Charts, 1)
	assert.Contains(t, env.Data.Result.Charts[0].Error, "no finite values")
	assert.Equal(t, []string{""}, env.Data.ChartURLs, "error charts get no image")

	w = httptest.NewRecorder()
	h.HandleChartPNG(w, httptest.NewRequest(http.MethodGet, "/", nil), env.Data.Key, 0)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandleViewDataIsComplete(t *testing.T) {
	h := newHandlers(t, nil)

	w := httptest.NewRecorder()
	h.HandleView(w, httptest.NewRequest(http.MethodGet, "/api/v1/view", nil))

	env := decode[handlers.ViewResponse](t, w)
	require.NotNil(t, env.Data.Result.Table)
	assert.Len(t, env.Data.Result.Table.Rows, 6, "the API is not paginated")
}

func TestHandleViewRejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
	}{
		{"unknown option", url.Values{"option": {"Everything"}}},
		{"rotation not a number", customQuery(schema.Age, schema.Income, engine.PlotLine, "steep", true)},
		{"rotation out of range", customQuery(schema.Age, schema.Income, engine.PlotLine, "91", true)},
		{"unknown column", customQuery("salary", schema.Income, engine.PlotLine, "45", true)},
		{"unknown filter", url.Values{"option": {engine.OptionData}, "filter.city": {"Recife"}}},
	}

	h := newHandlers(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleView(w, httptest.NewRequest(http.MethodGet, "/api/v1/view?"+tt.query.Encode(), nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decode[json.RawMessage](t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, "BAD_REQUEST", env.Error.Code)
		})
	}
}

func TestHandleChartPNGErrors(t *testing.T) {
	h := newHandlers(t, nil)

	t.Run("unknown key", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleChartPNG(w, httptest.NewRequest(http.MethodGet, "/charts/nope/0.png", nil), "nope", 0)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	w := httptest.NewRecorder()
	h.HandleView(w, httptest.NewRequest(http.MethodGet,
		"/api/v1/view?"+customQuery(schema.Age, schema.Gender, engine.PlotScatter, "45", true).Encode(), nil))
	env := decode[handlers.ViewResponse](t, w)
	require.Len(t, env.Data.Result.Charts, 1)
	assert.Equal(t, []string{""}, env.Data.ChartURLs)

	t.Run("index out of range", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleChartPNG(w, httptest.NewRequest(http.MethodGet, "/", nil), env.Data.Key, 3)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("chart error", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleChartPNG(w, httptest.NewRequest(http.MethodGet, "/", nil), env.Data.Key, 0)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestHandleColumns(t *testing.T) {
	w := httptest.NewRecorder()
	newHandlers(t, nil).HandleColumns(w, httptest.NewRequest(http.MethodGet, "/api/v1/columns", nil))

	env := decode[struct {
		Columns []schema.DocEntry `json:"columns"`
		Count   int               `json:"count"`
	}](t, w)
	assert.Equal(t, 14, env.Data.Count)
	assert.Equal(t, schema.ReferenceDate, env.Data.Columns[0].ColumnName)
	assert.Equal(t, schema.Income, env.Data.Columns[13].ColumnName)
}

func TestHandleCleaning(t *testing.T) {
	t.Run("without report", func(t *testing.T) {
		w := httptest.NewRecorder()
		newHandlers(t, nil).HandleCleaning(w, httptest.NewRequest(http.MethodGet, "/api/v1/cleaning", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("with report", func(t *testing.T) {
		report := &cleaner.Report{
			ID:   "r-1",
			Rows: 6,
			Operations: []cleaner.Operation{
				{Column: schema.Income, Operation: cleaner.OpWinsorize, Affected: 1, Value: 5000},
			},
		}
		w := httptest.NewRecorder()
		newHandlers(t, report).HandleCleaning(w, httptest.NewRequest(http.MethodGet, "/api/v1/cleaning", nil))

		env := decode[cleaner.Report](t, w)
		assert.Equal(t, "r-1", env.Data.ID)
		require.Len(t, env.Data.Operations, 1)
		assert.Equal(t, cleaner.OpWinsorize, env.Data.Operations[0].Operation)
	})
}

func TestHandleHealthWithoutStartTime(t *testing.T) {
	w := httptest.NewRecorder()
	newHandlers(t, nil).HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	env := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", env.Data["status"])
	assert.NotContains(t, env.Data, "uptime")
}

func TestHandleReady(t *testing.T) {
	w := httptest.NewRecorder()
	newHandlers(t, nil).HandleReady(w, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))

	env := decode[map[string]any](t, w)
	assert.Equal(t, "ready", env.Data["status"])
	assert.Equal(t, float64(6), env.Data["records"])
}
