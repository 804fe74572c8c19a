package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

type entry struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
}

type entries []entry

func (e entries) TableData() Data {
	rows := make([][]string, len(e))
	for i, x := range e {
		rows[i] = []string{x.Name, x.Kind}
	}
	return Data{Headers: []string{"Name", "Kind"}, Rows: rows}
}

var sample = entries{{"income", "continuous"}, {"gender", "categorical"}}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"", "", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	if got := DetectFormat("YAML"); got != FormatYAML {
		t.Errorf("expected yaml, got %q", got)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).Format(&buf, sample); err != nil {
		t.Fatal(err)
	}
	var decoded []entry
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[1].Name != "gender" {
		t.Errorf("unexpected output %+v", decoded)
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatYAML).Format(&buf, sample); err != nil {
		t.Fatal(err)
	}
	var decoded []entry
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Kind != "continuous" {
		t.Errorf("unexpected output %+v", decoded)
	}
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatTable).Format(&buf, sample); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"income", "continuous", "gender", "categorical"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(strings.ToLower(out), "kind") {
		t.Errorf("table output missing header:\n%s", out)
	}
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatTable).Format(&buf, map[string]int{"rows": 3}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"rows": 3`) {
		t.Errorf("expected JSON fallback, got %s", buf.String())
	}
}
