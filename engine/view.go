package engine

// ============================================================================
// RECORD VIEW — read-only column access for the engine
// ============================================================================
// The engine never copies the dataset. Panels, hue splits and filters all
// read rows through a RecordView:
//
//   DomainView[T]  typed records read through registered accessors
//   SubView        a subset of another view, held as row indices
//
// Dimension returns the display string of a column. Measure returns the
// numeric value of a column that has one, NaN for a missing value and 0 for
// a column without numeric values.
// ============================================================================

// RecordView provides indexed access to a dataset.
// Dimension and Measure are called once per row and column in every chart.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string // columns in display order
	MeasureKeys() []string   // columns with numeric values
}

// ============================================================================
// SUB VIEW
// ============================================================================

// SubView is the rows of a parent view selected by index.
type SubView struct {
	parent RecordView
	rows   []int
}

func newSubView(parent RecordView, rows []int) RecordView {
	return &SubView{parent: parent, rows: rows}
}

func (v *SubView) Len() int { return len(v.rows) }

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.rows) {
		return ""
	}
	return v.parent.Dimension(v.rows[i], key)
}

func (v *SubView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.rows) {
		return 0
	}
	return v.parent.Measure(v.rows[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

// ============================================================================
// DOMAIN ADAPTER
// ============================================================================
//
//	var adapter = engine.NewDomainAdapter[IncomeRecord]().
//	    Dimension("education", func(r IncomeRecord) string { return r.Education }).
//	    Measure("income", func(r IncomeRecord) float64 { return r.Income })
//
//	res, err := engine.Execute(req, adapter.Bind(table.Records))
//
// ============================================================================

// accessors holds the registered column readers of a record type.
type accessors[T any] struct {
	dimOrder  []string
	measOrder []string
	dims      map[string]func(T) string
	meas      map[string]func(T) float64
}

// DomainAdapter declares how a record type maps to columns. It is built once
// and bound to any number of record slices.
type DomainAdapter[T any] struct {
	cols accessors[T]
}

// NewDomainAdapter creates an adapter with no columns.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{cols: accessors[T]{
		dims: make(map[string]func(T) string),
		meas: make(map[string]func(T) float64),
	}}
}

// Dimension registers the display string of a column. Registering a key
// again replaces its reader but keeps its position.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	if _, ok := a.cols.dims[key]; !ok {
		a.cols.dimOrder = append(a.cols.dimOrder, key)
	}
	a.cols.dims[key] = fn
	return a
}

// Measure registers the numeric value of a column.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) float64) *DomainAdapter[T] {
	if _, ok := a.cols.meas[key]; !ok {
		a.cols.measOrder = append(a.cols.measOrder, key)
	}
	a.cols.meas[key] = fn
	return a
}

// Bind returns a view over data. The slice is referenced, not copied.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{data: data, cols: &a.cols}
}

// DomainView reads typed records through the accessors of its adapter.
type DomainView[T any] struct {
	data []T
	cols *accessors[T]
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	fn, ok := v.cols.dims[key]
	if !ok || i < 0 || i >= len(v.data) {
		return ""
	}
	return fn(v.data[i])
}

func (v *DomainView[T]) Measure(i int, key string) float64 {
	fn, ok := v.cols.meas[key]
	if !ok || i < 0 || i >= len(v.data) {
		return 0
	}
	return fn(v.data[i])
}

func (v *DomainView[T]) DimensionKeys() []string { return v.cols.dimOrder }
func (v *DomainView[T]) MeasureKeys() []string   { return v.cols.measOrder }
