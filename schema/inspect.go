package schema

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// INSPECTION — Heuristic value typing per column
// ============================================================================
// Samples raw string values and guesses their type. The loader compares the
// guess with each column's declared Kind and warns on mismatches, so a
// malformed export is visible in the logs before parsing fails on one cell.
//
// Pipeline per column:
//   1. Drop null-like values, count them
//   2. Detect type (bool, date, numeric, string) at an 80% threshold
//   3. Record cardinality and a sorted sample
// ============================================================================

// ValueType is the detected type of a raw column.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumeric ValueType = "numeric"
	TypeDate    ValueType = "date"
	TypeBool    ValueType = "bool"
)

// ColumnProfile summarises the raw values of one column.
type ColumnProfile struct {
	Name         string    `json:"name" yaml:"name"`
	Detected     ValueType `json:"detected" yaml:"detected"`
	Declared     Kind      `json:"declared,omitempty" yaml:"declared,omitempty"`
	NullCount    int       `json:"nullCount" yaml:"null_count"`
	UniqueCount  int       `json:"uniqueCount" yaml:"unique_count"`
	SampleValues []string  `json:"sampleValues" yaml:"sample_values"`
}

// Compatible reports whether the detected type can satisfy the declared kind.
// Columns with no declared kind are always compatible.
func (p ColumnProfile) Compatible() bool {
	switch p.Declared {
	case "":
		return true
	case KindTemporal:
		return p.Detected == TypeDate
	case KindBoolean:
		return p.Detected == TypeBool
	case KindInteger, KindContinuous:
		// 0/1 columns are detected as bool before numeric.
		return p.Detected == TypeNumeric || p.Detected == TypeBool
	default:
		return true
	}
}

// InspectOptions controls inspection behavior.
type InspectOptions struct {
	SampleSize int // Max rows to inspect (0 = all)
	MaxSamples int // Max distinct values kept per column
}

// DefaultInspectOptions returns sensible defaults.
func DefaultInspectOptions() InspectOptions {
	return InspectOptions{SampleSize: 1000, MaxSamples: 10}
}

// InspectColumns profiles each column of a raw, row-major string table.
// Headers may be source or canonical names; declared kinds are resolved for
// both.
func InspectColumns(headers []string, rows [][]string, opts ...InspectOptions) []ColumnProfile {
	opt := DefaultInspectOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.SampleSize > 0 && len(rows) > opt.SampleSize {
		rows = rows[:opt.SampleSize]
	}

	mapping := SourceMapping()
	profiles := make([]ColumnProfile, len(headers))

	for i, header := range headers {
		p := ColumnProfile{Name: header, Detected: TypeString}

		name := header
		if canonical, ok := mapping[header]; ok {
			name = canonical
		}
		p.Declared = KindOf(name)

		values := make([]string, 0, len(rows))
		unique := make(map[string]bool)
		for _, row := range rows {
			if i >= len(row) || isNull(row[i]) {
				p.NullCount++
				continue
			}
			v := strings.TrimSpace(row[i])
			values = append(values, v)
			unique[v] = true
		}

		p.UniqueCount = len(unique)
		if len(values) > 0 {
			p.Detected = detectType(values)
		}
		p.SampleValues = collectSamples(unique, opt.MaxSamples)
		profiles[i] = p
	}
	return profiles
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

func isNull(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "null", "NULL", "NaN", "nan", "N/A", "n/a":
		return true
	}
	return false
}

// detectType inspects values to determine column type.
// Requires 80%+ of non-null values to match for bool/date/numeric.
func detectType(values []string) ValueType {
	numCount, dateCount, boolCount := 0, 0, 0

	for _, v := range values {
		if isNumeric(v) {
			numCount++
		}
		if isDate(v) {
			dateCount++
		}
		if isBool(v) {
			boolCount++
		}
	}

	threshold := int(float64(len(values)) * 0.8)
	if threshold == 0 {
		threshold = 1
	}

	switch {
	case boolCount >= threshold:
		return TypeBool
	case dateCount >= threshold:
		return TypeDate
	case numCount >= threshold:
		return TypeNumeric
	}
	return TypeString
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "false", "1", "0":
		return true
	}
	return false
}

// collectSamples picks up to maxSamples values, sorted for deterministic output.
func collectSamples(unique map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(unique))
	for v := range unique {
		samples = append(samples, v)
	}
	sort.Strings(samples)

	if maxSamples > 0 && len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
