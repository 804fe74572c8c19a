package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/spf13/cobra"

	"github.com/spektr-org/incomelens/engine"
	"github.com/spektr-org/incomelens/errors"
	"github.com/spektr-org/incomelens/render"
	"github.com/spektr-org/incomelens/server"
)

// NewExportCommand creates the export command.
func (a *App) NewExportCommand() *cobra.Command {
	custom := engine.DefaultCustomSelection()

	cmd := &cobra.Command{
		Use:     "export",
		GroupID: "core",
		Short:   "Write the charts of one view to PNG files",
		Long: `Export renders one dashboard view without the server.

Every chart of the view is written to the output directory as
NN-<title>.png. The Data view is written as data.csv instead. Charts that
cannot be drawn are reported and skipped; the other charts are still written.`,
		Example: `  incomelens export --option "Show graphs over time" --out charts
  incomelens export --option "Show Bivariate Graphs"
  incomelens export --option "Show custom graphs" --x education --y income --kind "Bar Plot" --rotation 30
  incomelens export --option Data --out ./export`,
		RunE: a.runExport,
	}

	cmd.Flags().String("option", engine.OptionOverTime, "View to export: "+strings.Join(engine.ViewOptions(), ", "))
	cmd.Flags().String("out", "charts", "Output directory")
	cmd.Flags().String("x", custom.X, "Custom graph x column")
	cmd.Flags().String("y", custom.Y, "Custom graph y column")
	cmd.Flags().String("kind", custom.Kind, "Custom graph kind: "+strings.Join(engine.PlotKinds(), ", "))
	cmd.Flags().Int("rotation", custom.Rotation, "Custom graph x label rotation (0-90)")
	cmd.Flags().String("hue", "", "Custom graph hue column")
	cmd.Flags().Int("chart-width", render.DefaultSize.Width, "Chart width in pixels")
	cmd.Flags().Int("chart-height", render.DefaultSize.Height, "Chart height in pixels")
	cmd.Flags().Int("histogram-bins", server.DefaultConfig().HistogramBins, "Bins of histograms and of bar charts over wide numeric columns")

	return cmd
}

func (a *App) runExport(cmd *cobra.Command, _ []string) error {
	req := engine.Request{Option: mustGetString(cmd, "option")}
	if req.Option == engine.OptionCustom {
		rotation, err := cmd.Flags().GetInt("rotation")
		if err != nil {
			return err
		}
		req.Custom = engine.CustomSelection{
			X:        mustGetString(cmd, "x"),
			Y:        mustGetString(cmd, "y"),
			Kind:     mustGetString(cmd, "kind"),
			Rotation: rotation,
			Hue:      mustGetString(cmd, "hue"),
			Generate: true,
		}
	}

	table, _, err := a.LoadData(cmd.Context())
	if err != nil {
		return err
	}

	res, err := engine.Execute(req, table.View(),
		engine.WithHistogramBins(a.config.HistogramBins),
		engine.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	dir := mustGetString(cmd, "out")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if res.Table != nil {
		path := filepath.Join(dir, "data.csv")
		if err := writeTableCSV(path, res.Table); err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "wrote %s (%d rows)\n", path, len(res.Table.Rows))
		return nil
	}

	size := a.config.ChartSize()
	written := 0
	for i, c := range res.Charts {
		if c.Error != "" {
			fmt.Fprintf(out(cmd), "skipped %q: %s\n", c.Title, c.Error)
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%02d-%s.png", i+1, slug(c.Title)))
		if err := writeChartPNG(path, c, size); err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "wrote %s\n", path)
		written++
	}

	a.logger.Info().
		Str("option", req.Option).
		Int("charts", len(res.Charts)).
		Int("written", written).
		Str("dir", dir).
		Msg("Export finished")

	if written == 0 && len(res.Charts) > 0 {
		return errors.NewRenderError(res.Title, "no chart of this view could be drawn")
	}
	return nil
}

func writeChartPNG(path string, c *engine.ChartConfig, size render.Size) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return render.PNG(f, c, size)
}

// writeTableCSV writes the raw table exactly as displayed.
func writeTableCSV(path string, t *engine.TableData) (err error) {
	records := make([][]string, 0, len(t.Rows)+1)
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Key
	}
	records = append(records, header)
	records = append(records, t.Rows...)

	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return fmt.Errorf("building table: %w", df.Err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return df.WriteCSV(f)
}

// slug turns a chart title into a file name fragment.
func slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
