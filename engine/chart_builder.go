package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/spektr-org/incomelens/errors"
	"github.com/spektr-org/incomelens/schema"
)

// ============================================================================
// CHART BUILDER — Produces ChartConfig from a view + column selection
// ============================================================================
// One builder per chart type. Builders never fail the request: a selection
// that cannot be plotted comes back as a ChartConfig with Error set and no
// series, so the rest of a panel still renders.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// axis captures where a point lands on the x axis.
type axis struct {
	mode       string
	categories []string
	index      map[string]int
}

// position returns the x coordinate of row i in view.
func (a axis) position(view RecordView, i int, key string) float64 {
	if a.mode == AxisNumeric {
		return view.Measure(i, key)
	}
	return float64(a.index[view.Dimension(i, key)])
}

// newAxis decides how x is laid out. Bars are always categorical.
func newAxis(view RecordView, x string, forceCategorical bool) axis {
	kind := columnKind(view, x)
	if !forceCategorical && kind.Numeric() && isMeasure(view, x) {
		return axis{mode: AxisNumeric}
	}
	cats := Categories(view, x)
	idx := make(map[string]int, len(cats))
	for i, c := range cats {
		idx[c] = i
	}
	return axis{mode: AxisCategorical, categories: cats, index: idx}
}

// binnedAxis lays bins out as categories.
func binnedAxis(b binning) axis {
	cats := b.labels()
	idx := make(map[string]int, len(cats))
	for i, c := range cats {
		idx[c] = i
	}
	return axis{mode: AxisCategorical, categories: cats, index: idx}
}

// newChart creates the common chart skeleton.
func newChart(chartType, title, x, y, hue string, rotation int, cfg *config) *ChartConfig {
	return &ChartConfig{
		ChartType:  chartType,
		Title:      title,
		XAxis:      LabelForColumn(cfg.Schema, x),
		YAxis:      LabelForColumn(cfg.Schema, y),
		Rotation:   rotation,
		Hue:        hue,
		Series:     []ChartSeries{},
		ShowLegend: hue != "",
		ShowGrid:   true,
	}
}

// fail marks a chart as not renderable.
func fail(chart *ChartConfig, err error) *ChartConfig {
	chart.err = err
	chart.Error = err.Error()
	chart.Series = []ChartSeries{}
	chart.Categories = nil
	return chart
}

// checkSelection validates the parts of a selection every chart type shares.
func checkSelection(view RecordView, chart *ChartConfig, x, y, hue string, cfg *config) error {
	if !isMeasure(view, y) {
		return errors.NewRenderError(chart.Title,
			fmt.Sprintf("y axis %q is not numeric", y))
	}
	if hue != "" {
		if n := len(Categories(view, hue)); n > cfg.MaxHueLevels {
			return errors.NewRenderError(chart.Title,
				fmt.Sprintf("hue %q has %d levels (max %d)", hue, n, cfg.MaxHueLevels))
		}
	}
	return nil
}

func checkCategories(chart *ChartConfig, x string, a axis, cfg *config) error {
	if a.mode == AxisCategorical && len(a.categories) > cfg.MaxCategories {
		return errors.NewRenderError(chart.Title,
			fmt.Sprintf("x axis %q has %d categories (max %d)", x, len(a.categories), cfg.MaxCategories))
	}
	return nil
}

// checkPlotted rejects a chart where no row produced a finite point, e.g. an
// axis column that is entirely missing.
func checkPlotted(chart *ChartConfig, x, y string) error {
	for _, s := range chart.Series {
		if len(s.Data) > 0 {
			return nil
		}
	}
	return errors.NewRenderError(chart.Title,
		fmt.Sprintf("no finite values to plot for %q against %q", y, x))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// hueSplits returns (name, view) pairs: one per hue level, or the whole view.
func hueSplits(view RecordView, hue, fallback string) []Group {
	if hue == "" {
		return []Group{{Key: fallback, Label: fallback, View: view}}
	}
	return groupBySingle(view, hue)
}

// ============================================================================
// BAR — mean of y per x category with confidence interval
// ============================================================================

// buildBarChart produces one bar per x category (per hue level).
func buildBarChart(view RecordView, x, y, hue string, rotation int, cfg *config) *ChartConfig {
	chart := newChart(ChartBar, titleFor(cfg.Schema, y, x, hue), x, y, hue, rotation, cfg)
	if err := checkSelection(view, chart, x, y, hue, cfg); err != nil {
		return fail(chart, err)
	}

	a := newAxis(view, x, true)
	group := func(v RecordView) []Group { return GroupAndAggregate(v, x, y, cfg.ConfidenceLevel) }

	// A numeric x with too many distinct values is drawn over equal-width bins.
	if len(a.categories) > cfg.MaxCategories && columnKind(view, x).Numeric() && isMeasure(view, x) {
		if b, ok := newBinning(view, x, cfg.HistogramBins); ok {
			a = binnedAxis(b)
			chart.XAxis += " (binned)"
			group = func(v RecordView) []Group {
				groups := groupByBins(v, x, b)
				for i := range groups {
					aggregateGroup(&groups[i], y, cfg.ConfidenceLevel)
				}
				return groups
			}
		}
	}

	if err := checkCategories(chart, x, a, cfg); err != nil {
		return fail(chart, err)
	}
	chart.XMode = a.mode
	chart.Categories = a.categories

	for _, split := range hueSplits(view, hue, LabelForColumn(cfg.Schema, y)) {
		series := ChartSeries{Name: split.Label}
		for _, g := range group(split.View) {
			if g.Count == 0 || !finite(g.Value) {
				continue
			}
			series.Data = append(series.Data, ChartPoint{
				Label: g.Label,
				X:     float64(a.index[g.Key]),
				Value: g.Value,
				Lower: g.Lower,
				Upper: g.Upper,
				HasCI: true,
				Count: g.Count,
			})
		}
		chart.Series = append(chart.Series, series)
	}

	if err := checkPlotted(chart, x, y); err != nil {
		return fail(chart, err)
	}
	assignColors(chart)
	return chart
}

// ============================================================================
// LINE — mean of y per x value, sorted along x
// ============================================================================

// buildLineChart produces one line per hue level through the mean of y at
// every distinct x.
func buildLineChart(view RecordView, x, y, hue string, rotation int, cfg *config) *ChartConfig {
	chart := newChart(ChartLine, titleFor(cfg.Schema, y, x, hue), x, y, hue, rotation, cfg)
	if err := checkSelection(view, chart, x, y, hue, cfg); err != nil {
		return fail(chart, err)
	}

	a := newAxis(view, x, false)
	if err := checkCategories(chart, x, a, cfg); err != nil {
		return fail(chart, err)
	}
	chart.XMode = a.mode
	chart.Categories = a.categories

	for _, split := range hueSplits(view, hue, LabelForColumn(cfg.Schema, y)) {
		series := ChartSeries{Name: split.Label}
		// groupBySingle already returns groups in x order.
		for _, g := range GroupAndAggregate(split.View, x, y, cfg.ConfidenceLevel) {
			if g.Count == 0 || !finite(g.Value) {
				continue
			}
			xv := a.position(g.View, 0, x)
			if !finite(xv) {
				continue
			}
			series.Data = append(series.Data, ChartPoint{
				Label: g.Label,
				X:     xv,
				Value: g.Value,
				Lower: g.Lower,
				Upper: g.Upper,
				HasCI: true,
				Count: g.Count,
			})
		}
		chart.Series = append(chart.Series, series)
	}

	if err := checkPlotted(chart, x, y); err != nil {
		return fail(chart, err)
	}
	assignColors(chart)
	return chart
}

// ============================================================================
// SCATTER — raw points
// ============================================================================

// buildScatterChart produces one point per row with a numeric y.
func buildScatterChart(view RecordView, x, y, hue string, rotation int, cfg *config) *ChartConfig {
	chart := newChart(ChartScatter, titleFor(cfg.Schema, y, x, hue), x, y, hue, rotation, cfg)
	if err := checkSelection(view, chart, x, y, hue, cfg); err != nil {
		return fail(chart, err)
	}

	a := newAxis(view, x, false)
	if err := checkCategories(chart, x, a, cfg); err != nil {
		return fail(chart, err)
	}
	chart.XMode = a.mode
	chart.Categories = a.categories
	chart.ShowGrid = false

	for _, split := range hueSplits(view, hue, LabelForColumn(cfg.Schema, y)) {
		sv := split.View
		series := ChartSeries{Name: split.Label, Data: make([]ChartPoint, 0, sv.Len())}
		for i := 0; i < sv.Len(); i++ {
			xv, yv := a.position(sv, i, x), sv.Measure(i, y)
			if !finite(xv) || !finite(yv) {
				continue
			}
			series.Data = append(series.Data, ChartPoint{
				Label: sv.Dimension(i, x),
				X:     xv,
				Value: yv,
			})
		}
		chart.Series = append(chart.Series, series)
	}

	if err := checkPlotted(chart, x, y); err != nil {
		return fail(chart, err)
	}
	assignColors(chart)
	return chart
}

// ============================================================================
// HISTOGRAM — several numeric columns on shared bins
// ============================================================================

// buildHistogram counts every column into the same equal-width bins spanning
// the combined range of all columns.
func buildHistogram(view RecordView, columns []string, rotation int, cfg *config) *ChartConfig {
	labels := make([]string, len(columns))
	for i, c := range columns {
		labels[i] = LabelForColumn(cfg.Schema, c)
	}
	chart := newChart(ChartHistogram, strings.Join(labels, " and "), "", "", "", rotation, cfg)
	chart.YAxis = "Frequency"
	chart.XMode = AxisNumeric
	chart.ShowLegend = len(columns) > 1

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range columns {
		if !isMeasure(view, c) {
			return fail(chart, errors.NewRenderError(chart.Title, fmt.Sprintf("column %q is not numeric", c)))
		}
		for i := 0; i < view.Len(); i++ {
			v := view.Measure(i, c)
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return fail(chart, errors.NewRenderError(chart.Title, "no values to bin"))
	}
	if hi == lo {
		lo, hi = lo-0.5, hi+0.5
	}

	bins := cfg.HistogramBins
	width := (hi - lo) / float64(bins)

	for ci, c := range columns {
		counts := make([]int, bins)
		for i := 0; i < view.Len(); i++ {
			v := view.Measure(i, c)
			if math.IsNaN(v) {
				continue
			}
			b := int((v - lo) / width)
			if b >= bins {
				b = bins - 1 // right edge is inclusive
			}
			counts[b]++
		}

		series := ChartSeries{Name: labels[ci], Data: make([]ChartPoint, bins)}
		for b := range counts {
			left := lo + float64(b)*width
			series.Data[b] = ChartPoint{
				Label: fmt.Sprintf("%s–%s", FormatNumber(left), FormatNumber(left+width)),
				X:     left,
				Value: float64(counts[b]),
				Count: counts[b],
				Width: width,
			}
		}
		chart.Series = append(chart.Series, series)
	}

	assignColors(chart)
	return chart
}

// ============================================================================
// COLORS
// ============================================================================

func assignColors(chart *ChartConfig) {
	chart.Colors = make([]string, len(chart.Series))
	for i := range chart.Series {
		c := defaultColors[i%len(defaultColors)]
		chart.Series[i].Color = c
		chart.Colors[i] = c
	}
}

// kindLabel is used in logs.
func kindLabel(k schema.Kind) string {
	if k == "" {
		return "unknown"
	}
	return string(k)
}
