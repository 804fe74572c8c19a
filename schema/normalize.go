package schema

import (
	"strings"

	"github.com/spektr-org/incomelens/errors"
)

// ============================================================================
// NORMALIZER — Source labels → canonical names
// ============================================================================

// Normalization is the outcome of renaming a header row.
type Normalization struct {
	// Headers is the input header row with every known source label replaced
	// by its canonical name. Unknown headers are kept verbatim.
	Headers []string

	// Renames maps old → new for every column that was renamed.
	Renames map[string]string

	// Unknown lists headers that are not part of the source schema.
	Unknown []string
}

// Normalize renames source headers to canonical names.
// Every one of the fourteen source columns must be present; otherwise a
// SchemaError listing all absent columns is returned.
func Normalize(headers []string) (*Normalization, error) {
	mapping := SourceMapping()

	present := make(map[string]bool, len(headers))
	n := &Normalization{
		Headers: make([]string, len(headers)),
		Renames: make(map[string]string),
	}

	for i, h := range headers {
		key := strings.TrimSpace(h)
		if canonical, ok := mapping[key]; ok {
			if present[key] {
				return nil, errors.NewValidationError("header", key, "duplicate source column")
			}
			present[key] = true
			n.Headers[i] = canonical
			n.Renames[key] = canonical
			continue
		}
		n.Headers[i] = key
		n.Unknown = append(n.Unknown, key)
	}

	var missing []string
	for _, c := range columns {
		if !present[c.Source] {
			missing = append(missing, c.Source)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewSchemaError(missing)
	}

	return n, nil
}

// IsSourceColumn reports whether name is one of the fourteen source labels.
func IsSourceColumn(name string) bool {
	_, ok := SourceMapping()[strings.TrimSpace(name)]
	return ok
}
