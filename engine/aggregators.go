package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spektr-org/incomelens/schema"
)

// ============================================================================
// AGGREGATORS — Grouping, Ordering and Aggregation via RecordView
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view).
//
// Category order on an axis follows the column kind:
//   boolean     False → True
//   temporal    chronological
//   numeric     ascending
//   otherwise   first appearance
// ============================================================================

// GroupAndAggregate groups view by dimension and computes the mean of
// measure with its confidence interval for every group.
// Groups come back in axis order.
func GroupAndAggregate(view RecordView, dimension, measure string, level float64) []Group {
	if view.Len() == 0 {
		return nil
	}
	groups := groupBySingle(view, dimension)
	for i := range groups {
		aggregateGroup(&groups[i], measure, level)
	}
	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBySingle(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	first := func(key string) int { return grouped[key][0] }
	SortCategories(order, columnKind(view, dimension), func(key string) float64 {
		return view.Measure(first(key), dimension)
	})

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			Count: len(grouped[key]),
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

// binning splits the finite range of a numeric column into equal-width bins.
type binning struct {
	lo, width float64
	n         int
}

// newBinning spans the finite values of key in view with n bins. ok is false
// when the column has no finite value.
func newBinning(view RecordView, key string, n int) (binning, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < view.Len(); i++ {
		v := view.Measure(i, key)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if math.IsInf(lo, 1) || n <= 0 {
		return binning{}, false
	}
	if hi == lo {
		lo, hi = lo-0.5, hi+0.5
	}
	return binning{lo: lo, width: (hi - lo) / float64(n), n: n}, true
}

// index returns the bin of v, or -1 for a non-finite value.
func (b binning) index(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return -1
	}
	i := int((v - b.lo) / b.width)
	if i >= b.n {
		i = b.n - 1 // right edge is inclusive
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (b binning) label(i int) string {
	left := b.lo + float64(i)*b.width
	return fmt.Sprintf("%s–%s", FormatNumber(left), FormatNumber(left+b.width))
}

// labels returns every bin label in order.
func (b binning) labels() []string {
	out := make([]string, b.n)
	for i := range out {
		out[i] = b.label(i)
	}
	return out
}

// groupByBins groups view by the bin of a numeric column. Empty bins and
// rows without a finite value are left out; groups come back in bin order.
func groupByBins(view RecordView, key string, b binning) []Group {
	members := make([][]int, b.n)
	for i := 0; i < view.Len(); i++ {
		if bin := b.index(view.Measure(i, key)); bin >= 0 {
			members[bin] = append(members[bin], i)
		}
	}

	groups := make([]Group, 0, b.n)
	for bin, idx := range members {
		if len(idx) == 0 {
			continue
		}
		label := b.label(bin)
		groups = append(groups, Group{
			Key:   label,
			Label: label,
			Count: len(idx),
			View:  newSubView(view, idx),
		})
	}
	return groups
}

// Categories returns the distinct values of dimension in axis order.
func Categories(view RecordView, dimension string) []string {
	groups := groupBySingle(view, dimension)
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

// SortCategories orders distinct category keys in place.
// numeric returns the numeric value behind a key for numeric kinds.
func SortCategories(keys []string, kind schema.Kind, numeric func(string) float64) {
	switch kind {
	case schema.KindBoolean, schema.KindInteger, schema.KindContinuous:
		if numeric == nil {
			return
		}
		sort.SliceStable(keys, func(i, j int) bool { return numeric(keys[i]) < numeric(keys[j]) })
	case schema.KindTemporal:
		sort.SliceStable(keys, func(i, j int) bool { return parseSortableDate(keys[i]) < parseSortableDate(keys[j]) })
	default:
		// preserve first appearance
	}
}

// columnKind resolves the kind of a column, falling back to what the view
// exposes for columns outside the canonical schema.
func columnKind(view RecordView, key string) schema.Kind {
	if k := schema.KindOf(key); k != "" {
		return k
	}
	if isMeasure(view, key) {
		return schema.KindContinuous
	}
	return schema.KindCategorical
}

// isMeasure reports whether key has numeric values in view.
func isMeasure(view RecordView, key string) bool {
	for _, k := range view.MeasureKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// hasColumn reports whether key is any column of view.
func hasColumn(view RecordView, key string) bool {
	for _, k := range view.DimensionKeys() {
		if k == key {
			return true
		}
	}
	return isMeasure(view, key)
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(group *Group, measure string, level float64) {
	est := MeanCI(measureValues(group.View, measure), level)
	group.Value = est.Mean
	group.Lower = est.Lower
	group.Upper = est.Upper
	group.Count = est.N
}

// AvgMeasure computes the mean of a named measure, ignoring NaN.
func AvgMeasure(view RecordView, measure string) float64 {
	return MeanCI(measureValues(view, measure), 0.95).Mean
}

// MaxMeasure returns the largest non-NaN value of a named measure.
func MaxMeasure(view RecordView, measure string) float64 {
	m := math.Inf(-1)
	found := false
	for i := 0; i < view.Len(); i++ {
		v := view.Measure(i, measure)
		if math.IsNaN(v) {
			continue
		}
		if !found || v > m {
			m = v
			found = true
		}
	}
	if !found {
		return 0
	}
	return m
}

// MinMeasure returns the smallest non-NaN value of a named measure.
func MinMeasure(view RecordView, measure string) float64 {
	m := math.Inf(1)
	found := false
	for i := 0; i < view.Len(); i++ {
		v := view.Measure(i, measure)
		if math.IsNaN(v) {
			continue
		}
		if !found || v < m {
			m = v
			found = true
		}
	}
	if !found {
		return 0
	}
	return m
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

var sortableDateLayouts = []string{"2006-01-02", "2006-01", "Jan-2006", "2006"}

// parseSortableDate converts a date key to a sortable Unix time.
// Unparseable keys sort last, in their original order.
func parseSortableDate(key string) int64 {
	for _, layout := range sortableDateLayouts {
		if t, err := time.Parse(layout, key); err == nil {
			return t.Unix()
		}
	}
	return math.MaxInt64
}

// FormatNumber formats a value with comma separators and two decimals.
func FormatNumber(amount float64) string {
	if math.IsNaN(amount) {
		return "NaN"
	}
	negative := amount < 0
	if negative {
		amount = -amount
	}

	cents := int64(math.Round(amount * 100))
	intPart := cents / 100
	decPart := cents % 100

	result := fmt.Sprintf("%s.%02d", FormatInt(int(intPart)), decPart)
	if negative {
		result = "-" + result
	}
	return result
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LabelForColumn returns the display label of a column.
func LabelForColumn(s schema.Config, key string) string {
	if key == "" {
		return ""
	}
	return s.Label(key)
}

// titleFor builds "Y by X" chart titles.
func titleFor(s schema.Config, y, x, hue string) string {
	t := fmt.Sprintf("%s by %s", LabelForColumn(s, y), LabelForColumn(s, x))
	if hue != "" {
		t += fmt.Sprintf(" (%s)", strings.ToLower(LabelForColumn(s, hue)))
	}
	return t
}
