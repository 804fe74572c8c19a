package app

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spektr-org/incomelens/cleaner"
	"github.com/spektr-org/incomelens/cmd/incomelens/output"
	"github.com/spektr-org/incomelens/dataset"
)

// NewCleanCommand creates the clean command.
func (a *App) NewCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "clean",
		GroupID: "data",
		Short:   "Load and clean the dataset, then print the cleaning report",
		Long: `Clean runs the same load-and-clean step as serve and prints what changed:
the income winsor threshold and how many rows it clamped, and the mean used
to fill missing employment durations.`,
		Example: `  incomelens clean
  incomelens clean --data ./input/previsao_de_renda.csv --format json`,
		RunE: a.runClean,
	}
}

func (a *App) runClean(cmd *cobra.Command, _ []string) error {
	_, report, err := a.LoadData(cmd.Context())
	if err != nil {
		return err
	}
	return output.NewFormatter(a.format()).Format(out(cmd), reportView(*report))
}

// reportView renders a cleaning report. It keeps the report's field tags, so
// JSON and YAML output match the report.
type reportView cleaner.Report

// TableData implements output.Tabular.
func (r reportView) TableData() output.Data {
	rows := make([][]string, len(r.Operations))
	for i, op := range r.Operations {
		value := dataset.FormatFloat(op.Value)
		if op.Skipped {
			value = "-"
		}
		rows[i] = []string{
			op.Column,
			op.Operation,
			strconv.Itoa(op.Missing),
			dataset.FormatFloat(op.Max),
			strconv.Itoa(op.Affected),
			value,
			op.Reason,
		}
	}
	return output.Data{
		Headers:   []string{"Column", "Operation", "Missing", "Max", "Affected", "Value", "Reason"},
		Rows:      rows,
		Footer:    []string{"", "rows", strconv.Itoa(r.Rows), "", "", "", r.Source},
		Alignment: []string{"left", "left", "right", "right", "right", "right", "left"},
	}
}
