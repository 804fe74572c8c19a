package dataset

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/incomelens/errors"
	"github.com/spektr-org/incomelens/schema"
)

// ============================================================================
// LOADER TESTS
// ============================================================================

var incomeCSV = []byte(`,data_ref,id_cliente,sexo,posse_de_veiculo,posse_de_imovel,qtd_filhos,tipo_renda,educacao,estado_civil,tipo_residencia,idade,tempo_emprego,qt_pessoas_residencia,renda
0,2015-01-01,15056,F,False,True,0,Empresário,Secundário,Solteiro,Casa,26,6.602739726027397,1.0,8060.34
1,2015-01-01,9968,M,True,True,0,Assalariado,Superior completo,Casado,Casa,28,7.183561643835616,2.0,1852.15
2,2015-02-01,4312,F,True,True,0,Empresário,Superior completo,Casado,Casa,35,0.8383561643835616,2.0,2253.89
3,2015-02-01,10639,F,False,True,1,Servidor público,Superior completo,Casado,Casa,30,4.846575342465753,3.0,6600.77
4,2015-03-01,7064,M,True,False,0,Assalariado,Secundário,Solteiro,Governamental,33,,1.0,6475.97
`)

func TestReadParsesEveryColumn(t *testing.T) {
	table, err := Read(context.Background(), bytes.NewReader(incomeCSV), "fixture.csv")
	require.NoError(t, err)
	require.Equal(t, 5, table.Len())

	first := table.Records[0]
	assert.Equal(t, "2015-01-01", first.ReferenceDate.Format(DateLayout))
	assert.Equal(t, 15056, first.ClientID)
	assert.Equal(t, "F", first.Gender)
	assert.False(t, first.VehicleOwnership)
	assert.True(t, first.PropertyOwnership)
	assert.Equal(t, "Empresário", first.IncomeType)
	assert.Equal(t, 26, first.Age)
	assert.InDelta(t, 6.602739726027397, first.EmploymentDuration, 1e-12)
	assert.Equal(t, 1, first.NumberOfHouseholdMembers)
	assert.Equal(t, 8060.34, first.Income)

	assert.True(t, math.IsNaN(table.Records[4].EmploymentDuration), "empty tempo_emprego is missing")
	assert.Equal(t, "Governamental", table.Records[4].ResidenceType)
	assert.Empty(t, table.Unknown)
	assert.Len(t, table.Profiles, 14)
}

func TestReadKeepsRowOrder(t *testing.T) {
	table, err := Read(context.Background(), bytes.NewReader(incomeCSV), "fixture.csv")
	require.NoError(t, err)

	ids := make([]int, 0, table.Len())
	for _, r := range table.Records {
		ids = append(ids, r.ClientID)
	}
	assert.Equal(t, []int{15056, 9968, 4312, 10639, 7064}, ids)
}

func TestReadMissingIndexColumn(t *testing.T) {
	lines := strings.Split(string(incomeCSV), "\n")
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		b.WriteString(line[strings.Index(line, ",")+1:])
		b.WriteString("\n")
	}

	_, err := Read(context.Background(), strings.NewReader(b.String()), "noindex.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrLoad))
	assert.Contains(t, err.Error(), "index")
}

func TestReadMissingSourceColumn(t *testing.T) {
	data := strings.Replace(string(incomeCSV), ",renda\n", ",salario\n", 1)

	_, err := Read(context.Background(), strings.NewReader(data), "renamed.csv")
	require.Error(t, err)
	assert.True(t, errors.IsSchemaMismatch(err))

	var se *errors.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"renda"}, se.Missing)
}

func TestReadBadCellNamesRowAndColumn(t *testing.T) {
	data := strings.Replace(string(incomeCSV), ",35,", ",thirty-five,", 1)

	_, err := Read(context.Background(), strings.NewReader(data), "bad.csv")
	require.Error(t, err)

	var le *errors.LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 3, le.Row)
	assert.Equal(t, schema.Age, le.Column)
}

func TestReadMissingRequiredCell(t *testing.T) {
	data := strings.Replace(string(incomeCSV), ",8060.34\n", ",\n", 1)

	_, err := Read(context.Background(), strings.NewReader(data), "gap.csv")

	var le *errors.LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 1, le.Row)
	assert.Equal(t, schema.Income, le.Column)
	assert.Equal(t, "missing value", le.Message)
}

func TestReadHeaderOnly(t *testing.T) {
	header := strings.SplitN(string(incomeCSV), "\n", 2)[0] + "\n"
	_, err := Read(context.Background(), strings.NewReader(header), "empty.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrLoad))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrLoad))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previsao_de_renda.csv")
	require.NoError(t, os.WriteFile(path, incomeCSV, 0o644))

	table, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, table.Source)
	assert.Equal(t, 5, table.Len())
}

// ============================================================================
// VIEW TESTS
// ============================================================================

func TestViewFormatsVerbatim(t *testing.T) {
	table, err := Read(context.Background(), bytes.NewReader(incomeCSV), "fixture.csv")
	require.NoError(t, err)

	view := table.View()
	require.Equal(t, 5, view.Len())
	assert.Equal(t, schema.Names(), view.DimensionKeys())

	assert.Equal(t, "2015-01-01", view.Dimension(0, schema.ReferenceDate))
	assert.Equal(t, "False", view.Dimension(0, schema.VehicleOwnership))
	assert.Equal(t, "8060.34", view.Dimension(0, schema.Income))
	assert.Equal(t, "NaN", view.Dimension(4, schema.EmploymentDuration))

	assert.Equal(t, 1.0, view.Measure(0, schema.PropertyOwnership))
	assert.Equal(t, 1852.15, view.Measure(1, schema.Income))
	assert.Equal(t, 0.0, view.Measure(0, schema.Gender), "categorical columns are not measures")
}

func TestCloneIsIndependent(t *testing.T) {
	table, err := Read(context.Background(), bytes.NewReader(incomeCSV), "fixture.csv")
	require.NoError(t, err)

	clone := table.Clone()
	clone.Records[0].Income = 1

	assert.Equal(t, 8060.34, table.Records[0].Income)
	assert.Equal(t, []float64{1, 1852.15, 2253.89, 6600.77, 6475.97}, clone.Incomes())
}

func TestParseWhole(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{"2.0", 2, false},
		{" 4 ", 4, false},
		{"2.5", 0, true},
		{"x", 0, true},
	}
	for _, tt := range tests {
		got, err := parseWhole(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
