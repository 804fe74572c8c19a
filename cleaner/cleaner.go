// Package cleaner applies the fixed cleaning steps to a loaded dataset and
// records what each step changed.
package cleaner

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/incomelens/dataset"
	"github.com/spektr-org/incomelens/logging"
	"github.com/spektr-org/incomelens/schema"
)

// Operation names.
const (
	OpWinsorize  = "winsorize"
	OpMeanImpute = "mean_impute"
)

// Operation records one cleaning step applied to a column.
type Operation struct {
	Column    string  `json:"column" yaml:"column"`
	Operation string  `json:"operation" yaml:"operation"`
	Affected  int     `json:"affected" yaml:"affected"`
	Value     float64 `json:"value" yaml:"value"` // threshold or fill value
	Max       float64 `json:"max" yaml:"max"`     // largest value before the step
	Missing   int     `json:"missing" yaml:"missing"`
	Reason    string  `json:"reason" yaml:"reason"`
	Skipped   bool    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Report summarises a Clean run.
type Report struct {
	ID         string      `json:"id" yaml:"id"`
	Source     string      `json:"source" yaml:"source"`
	Rows       int         `json:"rows" yaml:"rows"`
	CleanedAt  time.Time   `json:"cleanedAt" yaml:"cleaned_at"`
	Operations []Operation `json:"operations" yaml:"operations"`
}

// Options controls the cleaning steps.
type Options struct {
	LowerLimit float64 // income winsor limit for the low tail
	UpperLimit float64 // income winsor limit for the high tail
}

// DefaultOptions clamps the top 5% of income and leaves the bottom alone.
func DefaultOptions() Options {
	return Options{LowerLimit: 0, UpperLimit: 0.05}
}

// Clean winsorizes income and mean-imputes employment_duration.
// The input table is not modified.
func Clean(ctx context.Context, table *dataset.Table, opts ...Options) (*dataset.Table, *Report, error) {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	log := logging.FromContext(ctx)

	out := table.Clone()
	report := &Report{
		ID:        uuid.New().String(),
		Source:    table.Source,
		Rows:      table.Len(),
		CleanedAt: time.Now().UTC(),
	}

	// Income
	raw := table.Incomes()
	incomes, lim, err := Winsorize(raw, opt.LowerLimit, opt.UpperLimit)
	if err != nil {
		return nil, nil, err
	}
	for i := range out.Records {
		out.Records[i].Income = incomes[i]
	}
	report.Operations = append(report.Operations, Operation{
		Column:    schema.Income,
		Operation: OpWinsorize,
		Affected:  lim.ClippedLow + lim.ClippedHigh,
		Value:     finite(lim.High),
		Max:       finite(Max(raw)),
		Missing:   CountMissing(raw),
		Reason:    "clamp outliers",
		Skipped:   math.IsNaN(lim.High) && math.IsNaN(lim.Low),
	})
	log.Debug().
		Int("clipped_high", lim.ClippedHigh).
		Int("clipped_low", lim.ClippedLow).
		Float64("threshold", lim.High).
		Msg("Winsorized income")

	// Employment duration
	rawDurations := table.EmploymentDurations()
	durations, mean, filled, ok := MeanImpute(rawDurations)
	op := Operation{
		Column:    schema.EmploymentDuration,
		Operation: OpMeanImpute,
		Affected:  filled,
		Value:     finite(mean),
		Max:       finite(Max(rawDurations)),
		Missing:   CountMissing(rawDurations),
		Reason:    "fill missing values",
	}
	if !ok {
		op.Skipped = true
		op.Reason = "no observed values to average"
		log.Warn().Str("column", schema.EmploymentDuration).Msg("Mean imputation skipped: column has no values")
	} else {
		for i := range out.Records {
			out.Records[i].EmploymentDuration = durations[i]
		}
	}
	report.Operations = append(report.Operations, op)

	log.Info().
		Str("report_id", report.ID).
		Int("rows", report.Rows).
		Int("income_clipped", lim.ClippedLow+lim.ClippedHigh).
		Int("duration_filled", filled).
		Msg("Dataset cleaned")

	return out, report, nil
}

// finite maps NaN to zero so reports stay JSON-encodable.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
