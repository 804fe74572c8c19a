package schema

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ============================================================================
// SCHEMA — Describes the shape of the income dataset for the engine
// ============================================================================
// Built once from the canonical column table. The engine uses it to resolve
// axis labels and to decide which columns can be averaged; the CLI and HTTP
// surfaces use it to describe the dataset.
// ============================================================================

// Config describes the complete shape of a dataset.
type Config struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Dimensions []DimensionMeta `json:"dimensions" yaml:"dimensions"`
	Measures   []MeasureMeta   `json:"measures" yaml:"measures"`
}

// DimensionMeta describes a field used for grouping or as a categorical axis.
type DimensionMeta struct {
	Key           string `json:"key" yaml:"key"`
	DisplayName   string `json:"displayName" yaml:"display_name"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	Kind          Kind   `json:"kind" yaml:"kind"`
	IsTemporal    bool   `json:"isTemporal,omitempty" yaml:"is_temporal,omitempty"`
	TemporalOrder string `json:"temporalOrder,omitempty" yaml:"temporal_order,omitempty"` // "chronological"
}

// MeasureMeta describes a numeric field used for aggregation.
type MeasureMeta struct {
	Key                string `json:"key" yaml:"key"`
	DisplayName        string `json:"displayName" yaml:"display_name"`
	Description        string `json:"description,omitempty" yaml:"description,omitempty"`
	Kind               Kind   `json:"kind" yaml:"kind"`
	Unit               string `json:"unit,omitempty" yaml:"unit,omitempty"` // "currency", "years", "count"
	DefaultAggregation string `json:"defaultAggregation,omitempty" yaml:"default_aggregation,omitempty"`
}

// Title is the page header shown above every view.
const Title = "Exploratory Analysis of Income Prediction"

// BusinessUnderstanding is the introductory paragraph shown under the title.
const BusinessUnderstanding = "Examine how income interacts with other factors like property and vehicle " +
	"ownership to identify customer profiles with high potential for a credit limit increase."

var measureUnits = map[string]string{
	Income:             "currency",
	EmploymentDuration: "years",
	Age:                "years",
}

// IncomeConfig returns the schema of the canonical income dataset.
// Continuous columns and age are measures; every other column is a dimension.
func IncomeConfig() Config {
	cfg := Config{
		Name:        "income",
		Version:     "1.0",
		Description: BusinessUnderstanding,
	}

	for _, c := range columns {
		if c.Kind == KindContinuous || c.Name == Age {
			cfg.Measures = append(cfg.Measures, MeasureMeta{
				Key:                c.Name,
				DisplayName:        DisplayName(c.Name),
				Description:        c.Description,
				Kind:               c.Kind,
				Unit:               measureUnits[c.Name],
				DefaultAggregation: "avg",
			})
			continue
		}

		dim := DimensionMeta{
			Key:         c.Name,
			DisplayName: DisplayName(c.Name),
			Description: c.Description,
			Kind:        c.Kind,
		}
		if c.Kind == KindTemporal {
			dim.IsTemporal = true
			dim.TemporalOrder = "chronological"
		}
		cfg.Dimensions = append(cfg.Dimensions, dim)
	}
	return cfg
}

// GetDefaultMeasure returns the measure plotted when none is chosen.
func (c Config) GetDefaultMeasure() string {
	for _, m := range c.Measures {
		if m.Key == Income {
			return m.Key
		}
	}
	if len(c.Measures) > 0 {
		return c.Measures[0].Key
	}
	return Income
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// Label returns the display name for any column key in the schema.
func (c Config) Label(key string) string {
	for _, d := range c.Dimensions {
		if d.Key == key {
			return d.DisplayName
		}
	}
	for _, m := range c.Measures {
		if m.Key == key {
			return m.DisplayName
		}
	}
	return DisplayName(key)
}

// DisplayName turns a snake_case key into a human label.
// "number_of_children" → "Number Of Children"
func DisplayName(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	// Casers are stateful, so one per call.
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}
