package dataset

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/spektr-org/incomelens/errors"
	"github.com/spektr-org/incomelens/logging"
	"github.com/spektr-org/incomelens/schema"
)

// ============================================================================
// LOADER — CSV → typed Table
// ============================================================================
// Pipeline:
//   1. Read every cell as a string (no type detection)
//   2. Drop the leading index column by position
//   3. Rename source labels to canonical names
//   4. Profile raw values and warn on kind mismatches
//   5. Convert each column to its Go type
//
// Any failure is a LoadError or SchemaError. Nothing here is retried.
// ============================================================================

// DefaultPath is where the dataset lives relative to the working directory.
const DefaultPath = "./input/previsao_de_renda.csv"

// Load reads the dataset from a file.
func Load(ctx context.Context, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewLoadError(path, "open dataset", err)
	}
	defer f.Close()

	return Read(ctx, f, path)
}

// Read parses the dataset from r. source names the input in errors and logs.
func Read(ctx context.Context, r io.Reader, source string) (*Table, error) {
	log := logging.FromContext(ctx)
	start := time.Now()

	df := dataframe.ReadCSV(r,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"", "NA", "NaN", "<nil>"}),
	)
	if df.Err != nil {
		if strings.Contains(df.Err.Error(), "empty DataFrame") {
			return nil, errors.NewLoadError(source, "no data rows", nil)
		}
		return nil, errors.NewLoadError(source, "read csv", df.Err)
	}

	names := df.Names()
	if len(names) == 0 || schema.IsSourceColumn(names[0]) {
		return nil, errors.NewLoadError(source, "leading index column is missing", nil)
	}
	df = df.Drop([]int{0})
	if df.Err != nil {
		return nil, errors.NewLoadError(source, "drop index column", df.Err)
	}

	norm, err := schema.Normalize(df.Names())
	if err != nil {
		return nil, err
	}
	for old, canonical := range norm.Renames {
		df = df.Rename(canonical, old)
	}
	if df.Err != nil {
		return nil, errors.NewLoadError(source, "rename columns", df.Err)
	}
	if len(norm.Unknown) > 0 {
		log.Warn().Strs("columns", norm.Unknown).Str("source", source).Msg("Ignoring unknown columns")
	}

	cols := make(map[string][]string, len(schema.Names()))
	for _, name := range schema.Names() {
		col := df.Col(name)
		if col.Err != nil {
			return nil, errors.NewLoadError(source, "read column "+name, col.Err)
		}
		cols[name] = col.Records()
	}

	table := &Table{
		Source:   source,
		Unknown:  norm.Unknown,
		Profiles: profile(cols),
	}
	for _, p := range table.Profiles {
		if !p.Compatible() {
			log.Warn().
				Str("column", p.Name).
				Str("declared", string(p.Declared)).
				Str("detected", string(p.Detected)).
				Msg("Column values do not look like their declared kind")
		}
	}

	records, err := convert(source, df.Nrow(), cols)
	if err != nil {
		return nil, err
	}
	table.Records = records

	log.Info().
		Str("source", source).
		Int("rows", len(records)).
		Dur("took", time.Since(start)).
		Msg("Dataset loaded")

	return table, nil
}

// profile samples the raw string columns in canonical order.
func profile(cols map[string][]string) []schema.ColumnProfile {
	opt := schema.DefaultInspectOptions()
	headers := schema.Names()

	n := 0
	if len(headers) > 0 {
		n = len(cols[headers[0]])
	}
	if opt.SampleSize > 0 && n > opt.SampleSize {
		n = opt.SampleSize
	}

	rows := make([][]string, n)
	for i := range rows {
		row := make([]string, len(headers))
		for j, h := range headers {
			v := cols[h][i]
			if v == "NaN" {
				v = ""
			}
			row[j] = v
		}
		rows[i] = row
	}
	return schema.InspectColumns(headers, rows, opt)
}

// ============================================================================
// CONVERSION
// ============================================================================

type cellError struct {
	column  string
	message string
	err     error
}

// convert builds records column by column. Row numbers in errors are 1-based.
func convert(source string, n int, cols map[string][]string) ([]IncomeRecord, error) {
	records := make([]IncomeRecord, n)

	for i := 0; i < n; i++ {
		cell := func(name string) string { return cols[name][i] }
		rec := &records[i]

		var cerr *cellError
		set := func(name string, fn func(string) error) {
			if cerr != nil {
				return
			}
			raw := cell(name)
			if raw == "NaN" && name != schema.EmploymentDuration {
				cerr = &cellError{column: name, message: "missing value"}
				return
			}
			if err := fn(raw); err != nil {
				cerr = &cellError{column: name, message: fmt.Sprintf("invalid value %q", raw), err: err}
			}
		}

		set(schema.ReferenceDate, func(s string) (err error) {
			rec.ReferenceDate, err = time.Parse(DateLayout, strings.TrimSpace(s))
			return err
		})
		set(schema.ClientID, func(s string) (err error) {
			rec.ClientID, err = parseWhole(s)
			return err
		})
		set(schema.Gender, func(s string) error { rec.Gender = strings.TrimSpace(s); return nil })
		set(schema.VehicleOwnership, func(s string) (err error) {
			rec.VehicleOwnership, err = strconv.ParseBool(strings.TrimSpace(s))
			return err
		})
		set(schema.PropertyOwnership, func(s string) (err error) {
			rec.PropertyOwnership, err = strconv.ParseBool(strings.TrimSpace(s))
			return err
		})
		set(schema.NumberOfChildren, func(s string) (err error) {
			rec.NumberOfChildren, err = parseWhole(s)
			return err
		})
		set(schema.IncomeType, func(s string) error { rec.IncomeType = strings.TrimSpace(s); return nil })
		set(schema.Education, func(s string) error { rec.Education = strings.TrimSpace(s); return nil })
		set(schema.MaritalStatus, func(s string) error { rec.MaritalStatus = strings.TrimSpace(s); return nil })
		set(schema.ResidenceType, func(s string) error { rec.ResidenceType = strings.TrimSpace(s); return nil })
		set(schema.Age, func(s string) (err error) {
			rec.Age, err = parseWhole(s)
			return err
		})
		set(schema.EmploymentDuration, func(s string) error {
			if s == "NaN" {
				rec.EmploymentDuration = math.NaN()
				return nil
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			rec.EmploymentDuration = f
			return err
		})
		set(schema.NumberOfHouseholdMembers, func(s string) (err error) {
			rec.NumberOfHouseholdMembers, err = parseWhole(s)
			return err
		})
		set(schema.Income, func(s string) (err error) {
			rec.Income, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
			return err
		})

		if cerr != nil {
			return nil, &errors.LoadError{
				Path:    source,
				Row:     i + 1,
				Column:  cerr.column,
				Message: cerr.message,
				Err:     cerr.err,
			}
		}
	}
	return records, nil
}

// parseWhole accepts "3" as well as float literals with no fraction ("3.0").
func parseWhole(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}
