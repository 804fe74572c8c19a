package engine

import (
	"github.com/spektr-org/incomelens/schema"
)

// ============================================================================
// ENGINE TYPES — Requests, panels and render-ready charts
// ============================================================================
// A Request carries one interaction: the selected view plus, for the custom
// view, the form selections. Execute turns it into a Result that a renderer
// (HTML, PNG, JSON) can draw without touching the dataset again.
// ============================================================================

// View options, exactly as shown in the selector.
const (
	OptionData      = "Data"
	OptionOverTime  = "Show graphs over time"
	OptionBivariate = "Show Bivariate Graphs"
	OptionCustom    = "Show custom graphs"
)

// ViewOptions returns the selector options in display order.
func ViewOptions() []string {
	return []string{OptionData, OptionOverTime, OptionBivariate, OptionCustom}
}

// Custom plot kinds, exactly as shown in the kind selector.
const (
	PlotScatter = "Scatter Plot"
	PlotBar     = "Bar Plot"
	PlotLine    = "Line Plot"
)

// PlotKinds returns the custom plot kinds in display order.
func PlotKinds() []string {
	return []string{PlotScatter, PlotBar, PlotLine}
}

// Rotation bounds for x tick labels, in degrees.
const (
	MinRotation     = 0
	MaxRotation     = 90
	DefaultRotation = 45
)

// ============================================================================
// REQUEST
// ============================================================================

// Request is the input of one interaction.
type Request struct {
	Option  string          `json:"option"`
	Custom  CustomSelection `json:"custom"`
	Filters Filters         `json:"filters,omitempty"`
}

// CustomSelection holds the custom graph form state.
type CustomSelection struct {
	X        string `json:"x"`
	Y        string `json:"y"`
	Kind     string `json:"kind"`
	Rotation int    `json:"rotation"`
	Hue      string `json:"hue,omitempty"` // empty means no grouping
	Generate bool   `json:"generate"`
}

// DefaultCustomSelection is the form state before the user changes anything.
func DefaultCustomSelection() CustomSelection {
	return CustomSelection{
		X:        schema.ReferenceDate,
		Y:        schema.Income,
		Kind:     PlotScatter,
		Rotation: DefaultRotation,
	}
}

// ============================================================================
// RESULT
// ============================================================================

// Result is the render-ready output of Execute.
type Result struct {
	Option  string `json:"option"`
	Title   string `json:"title"`
	Summary string `json:"summary"`

	// Exactly one of Table, Charts or Form is the primary payload:
	// Data → Table; panels → Charts; custom → Form (+ one chart once generated).
	Table  *TableData     `json:"table,omitempty"`
	Charts []*ChartConfig `json:"charts,omitempty"`
	Form   *CustomForm    `json:"form,omitempty"`
}

// ChartErrors returns the chart-local errors of a result, in chart order.
func (r *Result) ChartErrors() []string {
	var errs []string
	for _, c := range r.Charts {
		if c.Error != "" {
			errs = append(errs, c.Error)
		}
	}
	return errs
}

// CustomForm echoes the custom selection together with its choices.
type CustomForm struct {
	Selection   CustomSelection `json:"selection"`
	Columns     []string        `json:"columns"`
	Kinds       []string        `json:"kinds"`
	MinRotation int             `json:"minRotation"`
	MaxRotation int             `json:"maxRotation"`
	Generated   bool            `json:"generated"`
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group is one category of a grouping column with its aggregated measure.
type Group struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Value float64    `json:"value"` // mean of the measure
	Lower float64    `json:"lower"` // confidence interval
	Upper float64    `json:"upper"`
	Count int        `json:"count"`
	View  RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}

// ============================================================================
// CHART TYPES
// ============================================================================

// Chart types.
const (
	ChartBar       = "bar"
	ChartLine      = "line"
	ChartScatter   = "scatter"
	ChartHistogram = "histogram"
)

// X axis modes.
const (
	AxisCategorical = "categorical"
	AxisNumeric     = "numeric"
)

// ChartConfig defines how to render one chart.
//
// On a categorical axis every point's X is the index of its label in
// Categories. On a numeric axis X is the value itself.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	XMode      string        `json:"xMode"`
	Categories []string      `json:"categories,omitempty"`
	Rotation   int           `json:"rotation"`
	Hue        string        `json:"hue,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`

	// Error is set when this chart could not be built; Series is then empty.
	Error string `json:"error,omitempty"`
	err   error
}

// Err returns the typed error behind Error, if any.
func (c *ChartConfig) Err() error { return c.err }

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point. Lower/Upper bound the
// confidence interval of an aggregated point; HasCI is false for raw points.
type ChartPoint struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Value float64 `json:"value"`
	Lower float64 `json:"lower,omitempty"`
	Upper float64 `json:"upper,omitempty"`
	HasCI bool    `json:"hasCI,omitempty"`
	Count int     `json:"count,omitempty"`
	Width float64 `json:"width,omitempty"` // histogram bin width
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "date", "bool"
	Align string `json:"align"` // "left", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}
