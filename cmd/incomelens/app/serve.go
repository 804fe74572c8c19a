package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spektr-org/incomelens/server"
)

// NewServeCommand creates the serve command.
func (a *App) NewServeCommand() *cobra.Command {
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Serve the dashboard",
		Long: `Serve loads and cleans the dataset once, then serves the dashboard.

Routes:
  /                            dashboard (data table, panels, custom graphs)
  /charts/{key}/{index}.png    rendered charts of a dashboard view
  /api/v1/view                 view result as JSON
  /api/v1/columns              column documentation
  /api/v1/cleaning             cleaning report
  /health                      liveness

Environment Variables:
  INCOMELENS_DATA, INCOMELENS_HOST, INCOMELENS_PORT, INCOMELENS_CACHE_TTL,
  INCOMELENS_PAGE_SIZE, INCOMELENS_CHART_WIDTH, INCOMELENS_CHART_HEIGHT,
  INCOMELENS_HISTOGRAM_BINS`,
		Example: `  incomelens serve
  incomelens serve --data ./input/previsao_de_renda.csv --port 8501
  incomelens serve --host 0.0.0.0 --cache-ttl 30m`,
		RunE: a.runServe,
	}

	cmd.Flags().String("host", defaults.Host, "Bind address")
	cmd.Flags().IntP("port", "p", defaults.Port, "Server port")
	cmd.Flags().Duration("cache-ttl", defaults.CacheTTL, "How long rendered views and charts stay cached")
	cmd.Flags().Int("page-size", defaults.PageSize, "Rows per page of the data table")
	cmd.Flags().Int("chart-width", defaults.ChartSize.Width, "Chart width in pixels")
	cmd.Flags().Int("chart-height", defaults.ChartSize.Height, "Chart height in pixels")
	cmd.Flags().Int("histogram-bins", defaults.HistogramBins, "Bins of histograms and of bar charts over wide numeric columns")

	return cmd
}

func (a *App) runServe(cmd *cobra.Command, _ []string) error {
	table, report, err := a.LoadData(cmd.Context())
	if err != nil {
		return err
	}

	cfg := a.config.ServerConfig()
	a.logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Dur("cache_ttl", cfg.CacheTTL).
		Int("page_size", cfg.PageSize).
		Msg("Starting dashboard server")

	srv, err := server.New(table.View(), report, cfg, a.logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Fprintf(out(cmd), "Serving %s on http://%s\n", table.Source, srv.Addr())
	fmt.Fprintln(out(cmd), "   Press Ctrl+C to stop")

	start := time.Now()
	if err := srv.ListenAndServe(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(out(cmd), "Server stopped after %s\n", time.Since(start).Round(time.Second))
	return nil
}
