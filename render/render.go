// Package render rasterises engine charts to PNG with go-chart.
//
// Aggregated points (bars, line means) are drawn by custom elements on top of
// explicit axis ranges, so every chart keeps the same x layout the engine
// computed: categories at integer positions, numeric values as themselves.
package render

import (
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spektr-org/incomelens/engine"
	"github.com/spektr-org/incomelens/errors"
)

// Size is the pixel size of a rendered chart.
type Size struct {
	Width  int `json:"width" mapstructure:"width"`
	Height int `json:"height" mapstructure:"height"`
}

// DefaultSize is used when a size has a zero dimension.
var DefaultSize = Size{Width: 960, Height: 540}

const (
	barFill      = 0.7 // share of a category slot covered by its bars
	bandAlpha    = 60
	scatterDot   = 2.5
	lineWidth    = 2.0
	xPadFraction = 0.05
	yPadFraction = 0.08
)

var (
	gridColor    = drawing.ColorFromHex("e5e7eb")
	whiskerColor = drawing.ColorFromHex("374151")
)

// PNG writes c as a PNG image. Charts that carry an error are not drawn.
func PNG(w io.Writer, c *engine.ChartConfig, size Size) error {
	g, err := Build(c, size)
	if err != nil {
		return err
	}
	if err := g.Render(chart.PNG, w); err != nil {
		return &errors.RenderError{Chart: c.Title, Message: "rasterise", Err: err}
	}
	return nil
}

// Build converts c into a go-chart Chart ready to render.
func Build(c *engine.ChartConfig, size Size) (*chart.Chart, error) {
	if c == nil {
		return nil, errors.NewRenderError("", "no chart")
	}
	if c.Error != "" {
		if err := c.Err(); err != nil {
			return nil, err
		}
		return nil, errors.NewRenderError(c.Title, c.Error)
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}

	b, ok := boundsOf(c)
	if !ok {
		return nil, errors.NewRenderError(c.Title, "no data points")
	}

	xr := &chart.ContinuousRange{}
	yr := &chart.ContinuousRange{}
	yr.Min, yr.Max = padRange(b.yMin, b.yMax, yPadFraction)

	g := &chart.Chart{
		Title:  c.Title,
		Width:  size.Width,
		Height: size.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 30, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  c.XAxis,
			Style: chart.Style{TextRotationDegrees: float64(c.Rotation)},
			Range: xr,
		},
		YAxis: chart.YAxis{
			Name:  c.YAxis,
			Range: yr,
		},
	}

	if c.XMode == engine.AxisCategorical {
		g.XAxis.Ticks = categoryTicks(c.Categories)
	} else {
		xr.Min, xr.Max = padRange(b.xMin, b.xMax, xPadFraction)
	}

	if c.ShowGrid {
		grid := chart.Style{StrokeColor: gridColor, StrokeWidth: 1}
		g.YAxis.GridMajorStyle = grid
		g.YAxis.GridMinorStyle = grid
	} else {
		g.YAxis.GridMajorStyle = chart.Hidden()
		g.YAxis.GridMinorStyle = chart.Hidden()
	}
	g.XAxis.GridMajorStyle = chart.Hidden()
	g.XAxis.GridMinorStyle = chart.Hidden()

	switch c.ChartType {
	case engine.ChartBar:
		addBars(g, c, xr, yr, slotWidth(c))
	case engine.ChartHistogram:
		addBars(g, c, xr, yr, histogramWidth(c))
	case engine.ChartLine:
		addLines(g, c, xr, yr)
	case engine.ChartScatter:
		addScatter(g, c)
	default:
		return nil, errors.NewRenderError(c.Title, "unsupported chart type "+c.ChartType)
	}

	if c.ShowLegend && len(c.Series) > 1 {
		g.Elements = append(g.Elements, legend(c))
	}
	return g, nil
}

// ============================================================================
// SERIES
// ============================================================================

// anchor is an undrawn series that carries the x/y extent of s so go-chart
// has a visible series to lay out.
func anchor(s engine.ChartSeries) chart.ContinuousSeries {
	xs := make([]float64, len(s.Data))
	ys := make([]float64, len(s.Data))
	for i, p := range s.Data {
		xs[i], ys[i] = p.X, p.Value
	}
	return chart.ContinuousSeries{
		Name:    s.Name,
		Style:   chart.Style{StrokeWidth: chart.Disabled, StrokeColor: drawing.ColorFromHex(s.Color)},
		XValues: xs,
		YValues: ys,
	}
}

// addBars draws every series as side-by-side bars of total width slot (in x
// units) centred on each point, plus CI whiskers when present.
func addBars(g *chart.Chart, c *engine.ChartConfig, xr, yr *chart.ContinuousRange, slot float64) {
	n := float64(len(c.Series))
	each := slot / n
	centred := c.ChartType == engine.ChartBar

	for si, s := range c.Series {
		g.Series = append(g.Series, anchor(s))
		color := drawing.ColorFromHex(s.Color)
		points := s.Data
		offset := float64(si) * each

		g.Elements = append(g.Elements, func(r chart.Renderer, box chart.Box, _ chart.Style) {
			style := chart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 1}
			for _, p := range points {
				left := p.X + offset
				if centred {
					left = p.X - slot/2 + offset
				}
				x0 := box.Left + xr.Translate(left)
				x1 := box.Left + xr.Translate(left+each)
				if x1-x0 < 1 {
					x1 = x0 + 1
				}
				top := box.Bottom - yr.Translate(p.Value)
				base := box.Bottom - yr.Translate(math.Max(0, yr.Min))
				chart.Draw.Box(r, chart.Box{Top: min(top, base), Bottom: max(top, base), Left: x0, Right: x1}, style)

				if p.HasCI && p.Upper > p.Lower {
					mid := (x0 + x1) / 2
					whisker(r, mid, box.Bottom-yr.Translate(p.Lower), box.Bottom-yr.Translate(p.Upper), (x1-x0)/4)
				}
			}
		})
	}
}

// addLines draws one line through each series' means over its shaded
// confidence band.
func addLines(g *chart.Chart, c *engine.ChartConfig, xr, yr *chart.ContinuousRange) {
	for _, s := range c.Series {
		g.Series = append(g.Series, anchor(s))
		color := drawing.ColorFromHex(s.Color)
		points := s.Data

		g.Elements = append(g.Elements, func(r chart.Renderer, box chart.Box, _ chart.Style) {
			if len(points) == 0 {
				return
			}
			px := func(p engine.ChartPoint) int { return box.Left + xr.Translate(p.X) }
			py := func(v float64) int { return box.Bottom - yr.Translate(v) }

			if len(points) > 1 {
				r.SetFillColor(color.WithAlpha(bandAlpha))
				r.MoveTo(px(points[0]), py(points[0].Upper))
				for _, p := range points[1:] {
					r.LineTo(px(p), py(p.Upper))
				}
				for i := len(points) - 1; i >= 0; i-- {
					r.LineTo(px(points[i]), py(points[i].Lower))
				}
				r.Close()
				r.Fill()
				r.ResetStyle()

				r.SetStrokeColor(color)
				r.SetStrokeWidth(lineWidth)
				r.MoveTo(px(points[0]), py(points[0].Value))
				for _, p := range points[1:] {
					r.LineTo(px(p), py(p.Value))
				}
				r.Stroke()
				r.ResetStyle()
			}

			r.SetFillColor(color)
			r.SetStrokeColor(color)
			for _, p := range points {
				r.Circle(lineWidth, px(p), py(p.Value))
				r.FillStroke()
			}
			r.ResetStyle()
		})
	}
}

func addScatter(g *chart.Chart, c *engine.ChartConfig) {
	for _, s := range c.Series {
		color := drawing.ColorFromHex(s.Color)
		dots := anchor(s)
		dots.Style = chart.Style{
			StrokeWidth: chart.Disabled,
			DotColor:    color.WithAlpha(180),
			DotWidth:    scatterDot,
		}
		g.Series = append(g.Series, dots)
	}
}

func whisker(r chart.Renderer, x, yLow, yHigh, half int) {
	r.SetStrokeColor(whiskerColor)
	r.SetStrokeWidth(1.5)
	r.MoveTo(x, yLow)
	r.LineTo(x, yHigh)
	r.MoveTo(x-half, yLow)
	r.LineTo(x+half, yLow)
	r.MoveTo(x-half, yHigh)
	r.LineTo(x+half, yHigh)
	r.Stroke()
	r.ResetStyle()
}

// ============================================================================
// LEGEND
// ============================================================================

func legend(c *engine.ChartConfig) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		text := chart.Style{
			FontSize:  8,
			FontColor: chart.DefaultTextColor,
			Font:      defaults.Font,
		}
		if text.Font == nil {
			text.Font, _ = chart.GetDefaultFont()
		}

		x := box.Right - 150
		y := box.Top + 5
		for _, s := range c.Series {
			color := drawing.ColorFromHex(s.Color)
			chart.Draw.Box(r, chart.Box{Top: y, Left: x, Right: x + 10, Bottom: y + 10},
				chart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 1})
			chart.Draw.Text(r, s.Name, x+15, y+9, text)
			y += 14
		}
	}
}

// ============================================================================
// LAYOUT HELPERS
// ============================================================================

type bounds struct {
	xMin, xMax, yMin, yMax float64
}

// boundsOf returns the data extent of a chart, including CI ends and the zero
// baseline of bars.
func boundsOf(c *engine.ChartConfig) (bounds, bool) {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	found := false
	for _, s := range c.Series {
		for _, p := range s.Data {
			found = true
			right := p.X + p.Width
			b.xMin, b.xMax = math.Min(b.xMin, p.X), math.Max(b.xMax, right)
			b.yMin, b.yMax = math.Min(b.yMin, p.Value), math.Max(b.yMax, p.Value)
			if p.HasCI {
				b.yMin, b.yMax = math.Min(b.yMin, p.Lower), math.Max(b.yMax, p.Upper)
			}
		}
	}
	if c.ChartType == engine.ChartBar || c.ChartType == engine.ChartHistogram {
		b.yMin = math.Min(b.yMin, 0)
	}
	for _, v := range []float64{b.xMin, b.xMax, b.yMin, b.yMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return b, false
		}
	}
	return b, found
}

// padRange widens [lo, hi] by frac of its span on both sides. A zero span
// becomes a unit-wide range around the value.
func padRange(lo, hi, frac float64) (float64, float64) {
	if hi == lo {
		return lo - 0.5, hi + 0.5
	}
	pad := (hi - lo) * frac
	if lo == 0 {
		return 0, hi + pad
	}
	return lo - pad, hi + pad
}

// categoryTicks labels integer positions and adds blank ticks half a slot
// beyond both ends so edge categories are not clipped.
func categoryTicks(categories []string) []chart.Tick {
	ticks := make([]chart.Tick, 0, len(categories)+2)
	ticks = append(ticks, chart.Tick{Value: -0.6})
	for i, c := range categories {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: c})
	}
	return append(ticks, chart.Tick{Value: float64(len(categories)) - 0.4})
}

func slotWidth(c *engine.ChartConfig) float64 {
	if c.XMode == engine.AxisCategorical {
		return barFill
	}
	return 1
}

func histogramWidth(c *engine.ChartConfig) float64 {
	for _, s := range c.Series {
		for _, p := range s.Data {
			if p.Width > 0 {
				return p.Width * 0.95
			}
		}
	}
	return 1
}
