package schema

// ============================================================================
// COLUMNS — Canonical income dataset columns
// ============================================================================
// The source CSV carries Portuguese labels. Every column is renamed once at
// load time; everything downstream speaks canonical names only.
// ============================================================================

// Kind classifies how a column behaves on a chart axis.
type Kind string

const (
	KindTemporal    Kind = "temporal"
	KindCategorical Kind = "categorical"
	KindBoolean     Kind = "boolean"
	KindInteger     Kind = "integer"
	KindContinuous  Kind = "continuous"
)

// Numeric reports whether values of this kind can be averaged.
// Booleans count as 0/1.
func (k Kind) Numeric() bool {
	return k == KindInteger || k == KindContinuous || k == KindBoolean
}

// Column describes one canonical column.
type Column struct {
	Name        string `json:"name" yaml:"name"`
	Source      string `json:"source" yaml:"source"`
	Kind        Kind   `json:"kind" yaml:"kind"`
	Description string `json:"description" yaml:"description"`
}

// Canonical column names.
const (
	ReferenceDate            = "reference_date"
	ClientID                 = "client_id"
	Gender                   = "gender"
	VehicleOwnership         = "vehicle_ownership"
	PropertyOwnership        = "property_ownership"
	NumberOfChildren         = "number_of_children"
	IncomeType               = "income_type"
	Education                = "education"
	MaritalStatus            = "marital_status"
	ResidenceType            = "residence_type"
	Age                      = "age"
	EmploymentDuration       = "employment_duration"
	NumberOfHouseholdMembers = "number_of_household_members"
	Income                   = "income"
)

// columns is in documentation order.
var columns = []Column{
	{ReferenceDate, "data_ref", KindTemporal, "The reference date for the information or transactions."},
	{ClientID, "id_cliente", KindInteger, "Unique identifier of the client."},
	{Gender, "sexo", KindCategorical, "Client's gender (M for male, F for female)."},
	{VehicleOwnership, "posse_de_veiculo", KindBoolean, "Indicates whether the client owns a vehicle (1 for yes, 0 for no)."},
	{PropertyOwnership, "posse_de_imovel", KindBoolean, "Indicates whether the client owns a property (1 for yes, 0 for no)."},
	{NumberOfChildren, "qtd_filhos", KindInteger, "Number of children the client has."},
	{IncomeType, "tipo_renda", KindCategorical, "Client's income type (e.g., salaried, self-employed, etc.)."},
	{Education, "educacao", KindCategorical, "Client's education level (e.g., high school, college degree, etc.)."},
	{MaritalStatus, "estado_civil", KindCategorical, "Client's marital status (e.g., single, married, etc.)."},
	{ResidenceType, "tipo_residencia", KindCategorical, "Client's residence type (e.g., rented, owned, etc.)."},
	{Age, "idade", KindInteger, "Client's age."},
	{EmploymentDuration, "tempo_emprego", KindContinuous, "Client's current employment duration (in years)."},
	{NumberOfHouseholdMembers, "qt_pessoas_residencia", KindInteger, "Number of people living in the client's household."},
	{Income, "renda", KindContinuous, "Client's monthly income."},
}

var byName = func() map[string]Column {
	m := make(map[string]Column, len(columns))
	for _, c := range columns {
		m[c.Name] = c
	}
	return m
}()

// Columns returns the canonical columns in documentation order.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// Names returns the canonical column names in documentation order.
func Names() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the canonical column with the given name.
func Lookup(name string) (Column, bool) {
	c, ok := byName[name]
	return c, ok
}

// KindOf returns the kind of a canonical column, or "" if unknown.
func KindOf(name string) Kind {
	return byName[name].Kind
}

// SourceMapping returns the source → canonical rename table.
func SourceMapping() map[string]string {
	m := make(map[string]string, len(columns))
	for _, c := range columns {
		m[c.Source] = c.Name
	}
	return m
}

// DocEntry is one row of the column documentation table.
type DocEntry struct {
	ColumnName  string `json:"columnName" yaml:"column_name"`
	Description string `json:"description" yaml:"description"`
}

// Documentation returns the static column documentation table.
// It does not depend on any loaded data.
func Documentation() []DocEntry {
	docs := make([]DocEntry, len(columns))
	for i, c := range columns {
		docs[i] = DocEntry{ColumnName: c.Name, Description: c.Description}
	}
	return docs
}
