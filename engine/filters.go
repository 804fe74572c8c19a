package engine

import (
	"strings"
)

// ============================================================================
// FILTERS — Dimension-Based Row Filtering via RecordView
// ============================================================================
// Single-pass filter: checks ALL dimension constraints per record in one loop.
// Returns a SubView over the matching rows.
// Every view is computed on the filtered rows, so the same panels can be
// drawn for, say, only female clients or a single income type.
// ============================================================================

// Filters restricts the rows a view is computed on.
type Filters struct {
	Dimensions map[string][]string `json:"dimensions,omitempty"`
}

// IsEmpty reports whether no constraint is set.
func (f Filters) IsEmpty() bool {
	for _, vals := range f.Dimensions {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// Keys returns the filtered column names.
func (f Filters) Keys() []string {
	keys := make([]string, 0, len(f.Dimensions))
	for k, vals := range f.Dimensions {
		if len(vals) > 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

// ApplyFilters returns a view of records matching all dimension filters.
// Dimensions are AND-combined; values within a dimension are OR-combined.
// Matching is case-insensitive. Empty filter = no restriction.
func ApplyFilters(view RecordView, filters Filters) RecordView {
	if filters.IsEmpty() {
		return view
	}

	// Pre-build lowercase lookup sets for each dimension filter
	sets := make(map[string]map[string]bool)
	for dim, allowed := range filters.Dimensions {
		if len(allowed) > 0 {
			sets[dim] = toLowerSet(allowed)
		}
	}

	// Single pass — record passes if it matches ALL dimension filters
	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for dim, set := range sets {
			if !set[strings.ToLower(view.Dimension(i, dim))] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

// toLowerSet converts a string slice to a lowercase lookup set.
func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
