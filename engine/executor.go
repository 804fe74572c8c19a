package engine

import (
	"fmt"
	"time"

	"github.com/spektr-org/incomelens/errors"
	"github.com/spektr-org/incomelens/schema"
)

// ============================================================================
// EXECUTOR — View dispatch
// ============================================================================
// Entry point: Execute(req, view, opts...)
//
// Pipeline:
//   1. Validate the request (option, filters, custom selection)
//   2. Apply filters → SubView
//   3. Dispatch to exactly one view builder (table / panel / custom)
//   4. Attach the summary line
//   5. Return Result
//
// Zero data copy — the engine reads consumer data through RecordView, and
// never mutates it, so one view may serve concurrent requests.
// ============================================================================

// Columns plotted against reference_date, one line chart each, in order.
var overTimeHues = []string{
	schema.VehicleOwnership,
	schema.IncomeType,
	schema.Education,
	schema.MaritalStatus,
	schema.ResidenceType,
}

// Columns of the bivariate panel, one bar chart each, in order.
var bivariateColumns = []string{
	schema.PropertyOwnership,
	schema.VehicleOwnership,
	schema.NumberOfChildren,
	schema.IncomeType,
	schema.Education,
	schema.MaritalStatus,
	schema.ResidenceType,
}

// Columns of the shared-bin histogram that opens the over-time panel.
var histogramColumns = []string{schema.PropertyOwnership, schema.Income}

// Execute runs one view request against a RecordView and returns a
// render-ready Result. Invalid requests return a ValidationError; charts that
// cannot be drawn carry their own error and do not fail the request.
func Execute(req Request, view RecordView, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	start := time.Now()

	if err := validateRequest(req, view); err != nil {
		return nil, err
	}

	filtered := ApplyFilters(view, req.Filters)

	var result *Result
	switch req.Option {
	case OptionData:
		result = executeData(filtered, cfg)
	case OptionOverTime:
		result = executeOverTime(filtered, cfg)
	case OptionBivariate:
		result = executeBivariate(filtered, cfg)
	case OptionCustom:
		result = executeCustom(req.Custom, filtered, cfg)
	}

	for _, msg := range result.ChartErrors() {
		cfg.Logger.Warn().Str("option", req.Option).Str("chart_error", msg).Msg("chart not rendered")
	}
	cfg.Logger.Debug().
		Str("option", req.Option).
		Int("records", view.Len()).
		Int("filtered", filtered.Len()).
		Int("charts", len(result.Charts)).
		Dur("duration", time.Since(start)).
		Msg("view executed")

	return result, nil
}

// ============================================================================
// VIEWS
// ============================================================================

func executeData(view RecordView, cfg *config) *Result {
	return &Result{
		Option:  OptionData,
		Title:   "Data",
		Summary: buildSummary(OptionData, nil, view, cfg),
		Table:   buildRawTable(view, cfg),
	}
}

// OverTimePanel returns the six over-time charts in display order.
func OverTimePanel(view RecordView, opts ...Option) []*ChartConfig {
	return overTimePanel(view, applyOptions(opts))
}

func overTimePanel(view RecordView, cfg *config) []*ChartConfig {
	measure := cfg.Schema.GetDefaultMeasure()
	charts := make([]*ChartConfig, 0, 1+len(overTimeHues))
	charts = append(charts, buildHistogram(view, histogramColumns, MinRotation, cfg))
	for _, hue := range overTimeHues {
		charts = append(charts, buildLineChart(view, schema.ReferenceDate, measure, hue, DefaultRotation, cfg))
	}
	return charts
}

func executeOverTime(view RecordView, cfg *config) *Result {
	return &Result{
		Option:  OptionOverTime,
		Title:   "Graphs over time",
		Summary: buildSummary(OptionOverTime, nil, view, cfg),
		Charts:  overTimePanel(view, cfg),
	}
}

// BivariatePanel returns the seven bivariate bar charts in display order.
func BivariatePanel(view RecordView, opts ...Option) []*ChartConfig {
	return bivariatePanel(view, applyOptions(opts))
}

func bivariatePanel(view RecordView, cfg *config) []*ChartConfig {
	measure := cfg.Schema.GetDefaultMeasure()
	charts := make([]*ChartConfig, 0, len(bivariateColumns))
	for _, x := range bivariateColumns {
		charts = append(charts, buildBarChart(view, x, measure, "", DefaultRotation, cfg))
	}
	return charts
}

func executeBivariate(view RecordView, cfg *config) *Result {
	charts := bivariatePanel(view, cfg)

	// Highest category across the panel feeds the summary line.
	var top []Group
	for _, c := range charts {
		for _, s := range c.Series {
			for _, p := range s.Data {
				top = append(top, Group{
					Key:   p.Label,
					Label: fmt.Sprintf("%s = %s", c.XAxis, p.Label),
					Value: p.Value,
				})
			}
		}
	}

	return &Result{
		Option:  OptionBivariate,
		Title:   "Bivariate graphs",
		Summary: buildSummary(OptionBivariate, top, view, cfg),
		Charts:  charts,
	}
}

// CustomChart builds the single chart of a custom selection, ignoring
// Generate. The selection must already be valid.
func CustomChart(sel CustomSelection, view RecordView, opts ...Option) *ChartConfig {
	return customChart(sel, view, applyOptions(opts))
}

func customChart(sel CustomSelection, view RecordView, cfg *config) *ChartConfig {
	hue := normalizeHue(sel.Hue)
	cfg.Logger.Debug().
		Str("kind", sel.Kind).
		Str("x", sel.X).Str("x_kind", kindLabel(columnKind(view, sel.X))).
		Str("y", sel.Y).Str("y_kind", kindLabel(columnKind(view, sel.Y))).
		Str("hue", hue).
		Int("rotation", sel.Rotation).
		Msg("building custom chart")

	switch sel.Kind {
	case PlotBar:
		return buildBarChart(view, sel.X, sel.Y, hue, sel.Rotation, cfg)
	case PlotLine:
		return buildLineChart(view, sel.X, sel.Y, hue, sel.Rotation, cfg)
	default:
		return buildScatterChart(view, sel.X, sel.Y, hue, sel.Rotation, cfg)
	}
}

func executeCustom(sel CustomSelection, view RecordView, cfg *config) *Result {
	sel.Hue = normalizeHue(sel.Hue)
	result := &Result{
		Option:  OptionCustom,
		Title:   "Custom graphs",
		Summary: buildSummary(OptionCustom, nil, view, cfg),
		Form: &CustomForm{
			Selection:   sel,
			Columns:     schema.Names(),
			Kinds:       PlotKinds(),
			MinRotation: MinRotation,
			MaxRotation: MaxRotation,
			Generated:   sel.Generate,
		},
	}
	if sel.Generate {
		result.Charts = []*ChartConfig{customChart(sel, view, cfg)}
	}
	return result
}

// ============================================================================
// VALIDATION
// ============================================================================

func validateRequest(req Request, view RecordView) error {
	switch req.Option {
	case OptionData, OptionOverTime, OptionBivariate, OptionCustom:
	default:
		return errors.NewValidationError("option", req.Option, "unknown view option")
	}

	for _, key := range req.Filters.Keys() {
		if !knownColumn(view, key) {
			return errors.NewValidationError("filter", key, "unknown column")
		}
	}

	if req.Option == OptionCustom {
		return ValidateCustom(req.Custom, view)
	}
	return nil
}

// ValidateCustom checks a custom selection against the columns of view.
func ValidateCustom(sel CustomSelection, view RecordView) error {
	if !knownColumn(view, sel.X) {
		return errors.NewValidationError("x", sel.X, "unknown column")
	}
	if !knownColumn(view, sel.Y) {
		return errors.NewValidationError("y", sel.Y, "unknown column")
	}
	if hue := normalizeHue(sel.Hue); hue != "" && !knownColumn(view, hue) {
		return errors.NewValidationError("hue", sel.Hue, "unknown column")
	}
	switch sel.Kind {
	case PlotScatter, PlotBar, PlotLine:
	default:
		return errors.NewValidationError("kind", sel.Kind, "unknown plot kind")
	}
	if sel.Rotation < MinRotation || sel.Rotation > MaxRotation {
		return errors.NewValidationError("rotation", sel.Rotation,
			fmt.Sprintf("must be between %d and %d", MinRotation, MaxRotation))
	}
	return nil
}

// NoHue is the hue selector's label for "no grouping".
const NoHue = "None"

func normalizeHue(hue string) string {
	if hue == NoHue {
		return ""
	}
	return hue
}

func knownColumn(view RecordView, key string) bool {
	if _, ok := schema.Lookup(key); ok {
		return true
	}
	return key != "" && hasColumn(view, key)
}
