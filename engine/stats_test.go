package engine

import (
	"math"
	"testing"

	"github.com/spektr-org/incomelens/schema"
)

func TestMeanCI(t *testing.T) {
	est := MeanCI([]float64{1, 2, 3}, 0.95)

	// s = 1, n = 3, t(0.975, 2) = 4.302653
	half := 4.302652729911275 / math.Sqrt(3)
	if est.N != 3 {
		t.Fatalf("N = %d, want 3", est.N)
	}
	assertClose(t, "mean", est.Mean, 2)
	assertClose(t, "lower", est.Lower, 2-half)
	assertClose(t, "upper", est.Upper, 2+half)
}

func TestMeanCIIgnoresNaN(t *testing.T) {
	est := MeanCI([]float64{math.NaN(), 1, 2, 3, math.NaN()}, 0.95)
	if est.N != 3 {
		t.Fatalf("N = %d, want 3", est.N)
	}
	assertClose(t, "mean", est.Mean, 2)
}

func TestMeanCISingleObservation(t *testing.T) {
	est := MeanCI([]float64{42}, 0.95)
	if est.Lower != 42 || est.Upper != 42 || est.Mean != 42 {
		t.Errorf("single value should have zero-width interval, got %+v", est)
	}
}

func TestMeanCIEmpty(t *testing.T) {
	est := MeanCI([]float64{math.NaN()}, 0.95)
	if est.N != 0 || !math.IsNaN(est.Mean) {
		t.Errorf("expected N=0 and NaN mean, got %+v", est)
	}
}

func TestMeanCIWiderAtHigherLevel(t *testing.T) {
	values := []float64{10, 12, 9, 14, 11}
	narrow := MeanCI(values, 0.80)
	wide := MeanCI(values, 0.99)
	if wide.Upper-wide.Lower <= narrow.Upper-narrow.Lower {
		t.Errorf("99%% interval %v not wider than 80%% interval %v", wide, narrow)
	}
}

// ============================================================================
// ORDERING
// ============================================================================

func TestSortCategories(t *testing.T) {
	tests := []struct {
		name    string
		kind    schema.Kind
		keys    []string
		numeric map[string]float64
		want    []string
	}{
		{
			name:    "boolean false first",
			kind:    schema.KindBoolean,
			keys:    []string{"True", "False"},
			numeric: map[string]float64{"True": 1, "False": 0},
			want:    []string{"False", "True"},
		},
		{
			name:    "integer ascending",
			kind:    schema.KindInteger,
			keys:    []string{"2", "10", "0"},
			numeric: map[string]float64{"2": 2, "10": 10, "0": 0},
			want:    []string{"0", "2", "10"},
		},
		{
			name: "temporal chronological",
			kind: schema.KindTemporal,
			keys: []string{"2015-03-01", "2015-01-01", "2015-02-01"},
			want: []string{"2015-01-01", "2015-02-01", "2015-03-01"},
		},
		{
			name: "categorical first appearance",
			kind: schema.KindCategorical,
			keys: []string{"Casado", "Solteiro", "Viúvo"},
			want: []string{"Casado", "Solteiro", "Viúvo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := append([]string(nil), tt.keys...)
			SortCategories(keys, tt.kind, func(k string) float64 { return tt.numeric[k] })
			for i := range tt.want {
				if keys[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", keys, tt.want)
				}
			}
		})
	}
}

type groupRow struct {
	g string
	v float64
}

func TestGroupAndAggregateDomainView(t *testing.T) {
	view := NewDomainAdapter[groupRow]().
		Dimension("g", func(r groupRow) string { return r.g }).
		Measure("v", func(r groupRow) float64 { return r.v }).
		Bind([]groupRow{{"b", 4}, {"a", 1}, {"b", 6}})

	groups := GroupAndAggregate(view, "g", "v", 0.95)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Key != "b" || groups[1].Key != "a" {
		t.Errorf("groups not in first-appearance order: %s, %s", groups[0].Key, groups[1].Key)
	}
	assertClose(t, "mean b", groups[0].Value, 5)
	if groups[0].Count != 2 || groups[0].View.Len() != 2 {
		t.Errorf("group b count = %d, view len = %d", groups[0].Count, groups[0].View.Len())
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		0:         "0.00",
		1234.5:    "1,234.50",
		-98765.43: "-98,765.43",
		1000000:   "1,000,000.00",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}

func assertClose(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
