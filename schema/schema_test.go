package schema

import (
	"testing"

	"github.com/spektr-org/incomelens/errors"
)

// ============================================================================
// NORMALIZER TESTS
// ============================================================================

var sourceHeaders = []string{
	"data_ref", "id_cliente", "sexo", "posse_de_veiculo", "posse_de_imovel",
	"qtd_filhos", "tipo_renda", "educacao", "estado_civil", "tipo_residencia",
	"idade", "tempo_emprego", "qt_pessoas_residencia", "renda",
}

func TestNormalizeRenamesEveryColumn(t *testing.T) {
	n, err := Normalize(sourceHeaders)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	want := Names()
	if len(n.Headers) != len(want) {
		t.Fatalf("got %d headers, want %d", len(n.Headers), len(want))
	}
	for i := range want {
		if n.Headers[i] != want[i] {
			t.Errorf("header %d = %q, want %q", i, n.Headers[i], want[i])
		}
	}
	if len(n.Renames) != 14 {
		t.Errorf("expected 14 renames, got %d", len(n.Renames))
	}
	if len(n.Unknown) != 0 {
		t.Errorf("expected no unknown headers, got %v", n.Unknown)
	}
}

func TestNormalizeIsBijective(t *testing.T) {
	mapping := SourceMapping()
	seen := make(map[string]string)
	for src, dst := range mapping {
		if prev, ok := seen[dst]; ok {
			t.Errorf("%s and %s both map to %s", prev, src, dst)
		}
		seen[dst] = src
	}
	for _, name := range Names() {
		if _, ok := seen[name]; !ok {
			t.Errorf("canonical column %s has no source", name)
		}
	}
}

func TestNormalizeKeepsOrderWithExtras(t *testing.T) {
	headers := append([]string{"extra"}, sourceHeaders...)
	n, err := Normalize(headers)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	assertEqual(t, n.Headers[0], "extra", "unknown header kept verbatim")
	assertEqual(t, n.Headers[1], ReferenceDate, "first source header renamed")
	assertContains(t, n.Unknown, "extra", "extra should be reported as unknown")
}

func TestNormalizeMissingColumns(t *testing.T) {
	headers := make([]string, 0, len(sourceHeaders))
	for _, h := range sourceHeaders {
		if h == "renda" || h == "sexo" {
			continue
		}
		headers = append(headers, h)
	}

	_, err := Normalize(headers)
	if err == nil {
		t.Fatal("expected schema error")
	}
	if !errors.IsSchemaMismatch(err) {
		t.Fatalf("expected schema mismatch, got %T: %v", err, err)
	}

	var se *errors.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	assertContains(t, se.Missing, "renda", "renda should be missing")
	assertContains(t, se.Missing, "sexo", "sexo should be missing")
	if len(se.Missing) != 2 {
		t.Errorf("expected exactly 2 missing, got %v", se.Missing)
	}
}

func TestNormalizeDuplicateSource(t *testing.T) {
	headers := append(append([]string{}, sourceHeaders...), "renda")
	_, err := Normalize(headers)
	if !errors.IsValidationError(err) {
		t.Fatalf("expected validation error for duplicate, got %v", err)
	}
}

// ============================================================================
// DOCUMENTATION + CONFIG TESTS
// ============================================================================

func TestDocumentationOrder(t *testing.T) {
	docs := Documentation()
	if len(docs) != 14 {
		t.Fatalf("expected 14 entries, got %d", len(docs))
	}
	assertEqual(t, docs[0].ColumnName, ReferenceDate, "first entry")
	assertEqual(t, docs[13].ColumnName, Income, "last entry")
	assertEqual(t, docs[13].Description, "Client's monthly income.", "income description")
	assertEqual(t, docs[0].Description, "The reference date for the information or transactions.", "reference_date description")
}

func TestIncomeConfig(t *testing.T) {
	cfg := IncomeConfig()

	measures := cfg.MeasureKeys()
	assertContains(t, measures, Income, "income is a measure")
	assertContains(t, measures, EmploymentDuration, "employment_duration is a measure")
	assertContains(t, measures, Age, "age is a measure")

	dims := cfg.DimensionKeys()
	assertContains(t, dims, ReferenceDate, "reference_date is a dimension")
	assertContains(t, dims, Education, "education is a dimension")

	if len(dims)+len(measures) != 14 {
		t.Errorf("expected 14 columns in total, got %d", len(dims)+len(measures))
	}
	assertEqual(t, cfg.GetDefaultMeasure(), Income, "default measure")
	assertEqual(t, cfg.Label(NumberOfHouseholdMembers), "Number Of Household Members", "label")
}

func TestKindOf(t *testing.T) {
	cases := map[string]Kind{
		ReferenceDate:     KindTemporal,
		PropertyOwnership: KindBoolean,
		Education:         KindCategorical,
		NumberOfChildren:  KindInteger,
		Income:            KindContinuous,
		"nope":            "",
	}
	for col, want := range cases {
		if got := KindOf(col); got != want {
			t.Errorf("KindOf(%q) = %q, want %q", col, got, want)
		}
	}
	if !KindBoolean.Numeric() || KindCategorical.Numeric() {
		t.Error("boolean should be numeric, categorical should not")
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func assertContains(t *testing.T, slice []string, item string, msg string) {
	t.Helper()
	for _, s := range slice {
		if s == item {
			return
		}
	}
	t.Errorf("%s: %q not found in %v", msg, item, slice)
}

func assertEqual(t *testing.T, got, want, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", msg, got, want)
	}
}
