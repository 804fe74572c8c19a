package app

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/incomelens/cmd/incomelens/output"
	"github.com/spektr-org/incomelens/dataset"
	"github.com/spektr-org/incomelens/logging"
	"github.com/spektr-org/incomelens/schema"
)

// NewDescribeCommand creates the describe command.
func (a *App) NewDescribeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "describe",
		GroupID: "data",
		Short:   "Describe the dataset columns",
		Long: `Describe prints the column documentation table: every canonical column
with its source label, kind and description.

With --profile the dataset is loaded and each raw column is profiled
(detected type, nulls, cardinality and sample values).`,
		Example: `  incomelens describe
  incomelens describe --format yaml
  incomelens describe --profile --data ./input/previsao_de_renda.csv`,
		RunE: a.runDescribe,
	}

	cmd.Flags().Bool("profile", false, "Profile the raw columns of the dataset")

	return cmd
}

func (a *App) runDescribe(cmd *cobra.Command, _ []string) error {
	formatter := output.NewFormatter(a.format())

	if !mustGetBool(cmd, "profile") {
		return formatter.Format(out(cmd), columnList(schema.Columns()))
	}

	table, err := dataset.Load(logging.WithLogger(cmd.Context(), a.logger), a.config.DataPath)
	if err != nil {
		return err
	}
	for _, p := range table.Profiles {
		if !p.Compatible() {
			a.logger.Warn().
				Str("column", p.Name).
				Str("detected", string(p.Detected)).
				Str("declared", string(p.Declared)).
				Msg("Column values do not look like their declared kind")
		}
	}
	return formatter.Format(out(cmd), profileList(table.Profiles))
}

// columnList renders the documentation table.
type columnList []schema.Column

// TableData implements output.Tabular.
func (l columnList) TableData() output.Data {
	rows := make([][]string, len(l))
	for i, c := range l {
		rows[i] = []string{c.Name, c.Source, string(c.Kind), c.Description}
	}
	return output.Data{
		Headers: []string{"Column", "Source", "Kind", "Description"},
		Rows:    rows,
	}
}

// profileList renders raw column profiles.
type profileList []schema.ColumnProfile

// TableData implements output.Tabular.
func (l profileList) TableData() output.Data {
	rows := make([][]string, len(l))
	for i, p := range l {
		rows[i] = []string{
			p.Name,
			string(p.Declared),
			string(p.Detected),
			strconv.Itoa(p.NullCount),
			strconv.Itoa(p.UniqueCount),
			strings.Join(p.SampleValues, ", "),
		}
	}
	return output.Data{
		Headers:   []string{"Column", "Declared", "Detected", "Nulls", "Unique", "Samples"},
		Rows:      rows,
		Alignment: []string{"left", "left", "left", "right", "right", "left"},
	}
}
