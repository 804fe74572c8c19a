package schema

import "testing"

// ============================================================================
// INSPECTION TESTS
// ============================================================================

func TestInspectColumnsDetectsTypes(t *testing.T) {
	headers := []string{"data_ref", "posse_de_imovel", "tipo_renda", "renda", "tempo_emprego"}
	rows := [][]string{
		{"2015-01-01", "True", "Empresário", "8060.34", "6.6027"},
		{"2015-02-01", "False", "Assalariado", "1852.15", ""},
		{"2015-03-01", "True", "Assalariado", "2253.89", "3.1"},
	}

	profiles := InspectColumns(headers, rows)
	if len(profiles) != len(headers) {
		t.Fatalf("expected %d profiles, got %d", len(headers), len(profiles))
	}

	want := []ValueType{TypeDate, TypeBool, TypeString, TypeNumeric, TypeNumeric}
	for i, p := range profiles {
		if p.Detected != want[i] {
			t.Errorf("%s detected %s, want %s", p.Name, p.Detected, want[i])
		}
		if !p.Compatible() {
			t.Errorf("%s (%s) should be compatible with %s", p.Name, p.Detected, p.Declared)
		}
	}

	assertEqual(t, string(profiles[0].Declared), string(KindTemporal), "declared kind resolved from source name")
	if profiles[4].NullCount != 1 {
		t.Errorf("tempo_emprego nulls = %d, want 1", profiles[4].NullCount)
	}
	if profiles[2].UniqueCount != 2 {
		t.Errorf("tipo_renda unique = %d, want 2", profiles[2].UniqueCount)
	}
}

func TestInspectColumnsFlagsMismatch(t *testing.T) {
	profiles := InspectColumns([]string{"renda"}, [][]string{{"abc"}, {"def"}})
	if profiles[0].Compatible() {
		t.Error("string values should not satisfy a continuous column")
	}
}

func TestInspectSampleLimit(t *testing.T) {
	rows := make([][]string, 0, 50)
	for i := 0; i < 50; i++ {
		rows = append(rows, []string{string(rune('A' + i%26))})
	}
	profiles := InspectColumns([]string{"letter"}, rows, InspectOptions{SampleSize: 10, MaxSamples: 3})

	p := profiles[0]
	if p.UniqueCount != 10 {
		t.Errorf("unique = %d, want 10 (sample limited)", p.UniqueCount)
	}
	if len(p.SampleValues) != 3 {
		t.Errorf("samples = %v, want 3 values", p.SampleValues)
	}
	if p.Declared != "" || !p.Compatible() {
		t.Error("unknown column should have no declared kind and be compatible")
	}
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		values []string
		want   ValueType
	}{
		{[]string{"1", "0", "1"}, TypeBool},
		{[]string{"True", "False"}, TypeBool},
		{[]string{"2015-01-01", "2016-05-01"}, TypeDate},
		{[]string{"1.5", "22", "-3"}, TypeNumeric},
		{[]string{"Casado", "Solteiro"}, TypeString},
	}
	for _, tt := range tests {
		if got := detectType(tt.values); got != tt.want {
			t.Errorf("detectType(%v) = %s, want %s", tt.values, got, tt.want)
		}
	}
}
