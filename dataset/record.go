// Package dataset loads the income CSV into a typed, read-only table.
package dataset

import (
	"math"
	"strconv"
	"time"

	"github.com/spektr-org/incomelens/engine"
	"github.com/spektr-org/incomelens/schema"
)

// DateLayout is the layout of reference_date, in the file and on screen.
const DateLayout = "2006-01-02"

// IncomeRecord is one client observation.
type IncomeRecord struct {
	ReferenceDate            time.Time `json:"reference_date"`
	ClientID                 int       `json:"client_id"`
	Gender                   string    `json:"gender"`
	VehicleOwnership         bool      `json:"vehicle_ownership"`
	PropertyOwnership        bool      `json:"property_ownership"`
	NumberOfChildren         int       `json:"number_of_children"`
	IncomeType               string    `json:"income_type"`
	Education                string    `json:"education"`
	MaritalStatus            string    `json:"marital_status"`
	ResidenceType            string    `json:"residence_type"`
	Age                      int       `json:"age"`
	EmploymentDuration       float64   `json:"employment_duration"` // NaN when missing
	NumberOfHouseholdMembers int       `json:"number_of_household_members"`
	Income                   float64   `json:"income"`
}

// Table is the loaded dataset. Records keep file order.
type Table struct {
	Source   string                 `json:"source"`
	Records  []IncomeRecord         `json:"records"`
	Unknown  []string               `json:"unknown,omitempty"`
	Profiles []schema.ColumnProfile `json:"profiles,omitempty"`
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Records) }

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Source:   t.Source,
		Records:  make([]IncomeRecord, len(t.Records)),
		Unknown:  append([]string(nil), t.Unknown...),
		Profiles: append([]schema.ColumnProfile(nil), t.Profiles...),
	}
	copy(out.Records, t.Records)
	return out
}

// EmploymentDurations returns the employment_duration column.
func (t *Table) EmploymentDurations() []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.EmploymentDuration
	}
	return out
}

// Incomes returns the income column.
func (t *Table) Incomes() []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Income
	}
	return out
}

// ============================================================================
// RECORD VIEW — engine access to the typed records
// ============================================================================
// Every canonical column is a dimension (its display string). Integer,
// boolean and continuous columns are also measures.
// ============================================================================

var adapter = engine.NewDomainAdapter[IncomeRecord]().
	Dimension(schema.ReferenceDate, func(r IncomeRecord) string { return r.ReferenceDate.Format(DateLayout) }).
	Dimension(schema.ClientID, func(r IncomeRecord) string { return strconv.Itoa(r.ClientID) }).
	Dimension(schema.Gender, func(r IncomeRecord) string { return r.Gender }).
	Dimension(schema.VehicleOwnership, func(r IncomeRecord) string { return FormatBool(r.VehicleOwnership) }).
	Dimension(schema.PropertyOwnership, func(r IncomeRecord) string { return FormatBool(r.PropertyOwnership) }).
	Dimension(schema.NumberOfChildren, func(r IncomeRecord) string { return strconv.Itoa(r.NumberOfChildren) }).
	Dimension(schema.IncomeType, func(r IncomeRecord) string { return r.IncomeType }).
	Dimension(schema.Education, func(r IncomeRecord) string { return r.Education }).
	Dimension(schema.MaritalStatus, func(r IncomeRecord) string { return r.MaritalStatus }).
	Dimension(schema.ResidenceType, func(r IncomeRecord) string { return r.ResidenceType }).
	Dimension(schema.Age, func(r IncomeRecord) string { return strconv.Itoa(r.Age) }).
	Dimension(schema.EmploymentDuration, func(r IncomeRecord) string { return FormatFloat(r.EmploymentDuration) }).
	Dimension(schema.NumberOfHouseholdMembers, func(r IncomeRecord) string { return strconv.Itoa(r.NumberOfHouseholdMembers) }).
	Dimension(schema.Income, func(r IncomeRecord) string { return FormatFloat(r.Income) }).
	Measure(schema.ClientID, func(r IncomeRecord) float64 { return float64(r.ClientID) }).
	Measure(schema.VehicleOwnership, func(r IncomeRecord) float64 { return boolFloat(r.VehicleOwnership) }).
	Measure(schema.PropertyOwnership, func(r IncomeRecord) float64 { return boolFloat(r.PropertyOwnership) }).
	Measure(schema.NumberOfChildren, func(r IncomeRecord) float64 { return float64(r.NumberOfChildren) }).
	Measure(schema.Age, func(r IncomeRecord) float64 { return float64(r.Age) }).
	Measure(schema.EmploymentDuration, func(r IncomeRecord) float64 { return r.EmploymentDuration }).
	Measure(schema.NumberOfHouseholdMembers, func(r IncomeRecord) float64 { return float64(r.NumberOfHouseholdMembers) }).
	Measure(schema.Income, func(r IncomeRecord) float64 { return r.Income })

// View returns a zero-copy engine view over the records.
func (t *Table) View() engine.RecordView {
	return adapter.Bind(t.Records)
}

// FormatBool renders a boolean the way the source file spells it.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// FormatFloat renders a float without rounding or exponent notation.
func FormatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
