package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/spektr-org/incomelens/schema"
)

// ============================================================================
// TEXT BUILDER — Summary lines shown above each view
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// ============================================================================

// Summary templates per view. Placeholders are resolved by resolvePlaceholders.
var summaryTemplates = map[string]string{
	OptionData:      "{count} records across {columns} columns, {period}.",
	OptionOverTime:  "Mean {measure} over {period}. Overall mean {avg}, range {min} to {max}.",
	OptionBivariate: "Mean {measure} per category with {level} confidence intervals. Highest: {top_category} ({top_amount}).",
	OptionCustom:    "{count} records available for plotting.",
}

// buildSummary resolves the summary template of option against view.
// groups is optional and feeds the {top_*} placeholders.
func buildSummary(option string, groups []Group, view RecordView, cfg *config) string {
	return resolvePlaceholders(summaryTemplates[option], groups, view, cfg)
}

// ============================================================================
// PLACEHOLDER RESOLUTION
// ============================================================================

// resolvePlaceholders substitutes computed values into a summary template.
func resolvePlaceholders(template string, groups []Group, view RecordView, cfg *config) string {
	if template == "" {
		return buildDefaultSummary(view)
	}

	measure := cfg.Schema.GetDefaultMeasure()
	count := view.Len()

	replacements := map[string]string{
		"{count}":   FormatInt(count),
		"{columns}": fmt.Sprintf("%d", len(schema.Names())),
		"{period}":  DerivePeriod(view),
		"{measure}": strings.ToLower(LabelForColumn(cfg.Schema, measure)),
		"{level}":   fmt.Sprintf("%g%%", RoundTo2(cfg.ConfidenceLevel*100)),
	}

	// Top group (highest mean)
	if len(groups) > 0 {
		top := groups[0]
		for _, g := range groups[1:] {
			if g.Value > top.Value {
				top = g
			}
		}
		replacements["{top_category}"] = top.Label
		replacements["{top_amount}"] = FormatNumber(top.Value)
	}

	if count > 0 {
		replacements["{avg}"] = FormatNumber(AvgMeasure(view, measure))
		replacements["{max}"] = FormatNumber(MaxMeasure(view, measure))
		replacements["{min}"] = FormatNumber(MinMeasure(view, measure))
	}

	result := template
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return stripUnresolvedPlaceholders(result)
}

// ============================================================================
// PERIOD HELPER
// ============================================================================

// DerivePeriod builds a human-readable period string from the reference dates
// of a view.
func DerivePeriod(view RecordView) string {
	if view.Len() == 0 {
		return "no data"
	}

	dates := make(map[string]bool)
	for i := 0; i < view.Len(); i++ {
		if d := view.Dimension(i, schema.ReferenceDate); d != "" {
			dates[d] = true
		}
	}

	switch len(dates) {
	case 0:
		return "all time"
	case 1:
		for d := range dates {
			return d
		}
	}

	keys := make([]string, 0, len(dates))
	for d := range dates {
		keys = append(keys, d)
	}
	sort.Slice(keys, func(i, j int) bool {
		return parseSortableDate(keys[i]) < parseSortableDate(keys[j])
	})
	return fmt.Sprintf("%s – %s", keys[0], keys[len(keys)-1])
}

// ============================================================================
// INTERNAL HELPERS
// ============================================================================

func buildDefaultSummary(view RecordView) string {
	if view.Len() == 0 {
		return "No records loaded."
	}
	return fmt.Sprintf("%s records.", FormatInt(view.Len()))
}

var placeholderRegex = regexp.MustCompile(`\{[a-z_]+\}`)

func stripUnresolvedPlaceholders(text string) string {
	cleaned := placeholderRegex.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, "()", "")
	cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimRight(cleaned, " ,:—-–")
	if cleaned == "" {
		return text
	}
	return cleaned
}
