// Command local-runner fetches one historical window and prints the
// derived table without starting the HTTP server.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"coviddash/internal/charts"
	"coviddash/internal/config"
	"coviddash/internal/fetchers"
	"coviddash/internal/logger"
	"coviddash/internal/mocks"
	"coviddash/internal/reports"
	"coviddash/internal/view"
)

type runOptions struct {
	days    int
	size    int
	page    int
	sort    string
	scope   string
	chart   string
	png     string
	mock    bool
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := runOptions{}
	defaults := view.DefaultParameters()

	cmd := &cobra.Command{
		Use:   "local-runner",
		Short: "Print worldwide COVID-19 historical totals",
		Long: `Fetch the worldwide historical totals for one lookback window and print
the selected page as a table.

Examples:
  local-runner                       # Last month, first page, oldest first
  local-runner --days 90 --size 30   # Three months, 30 rows per page
  local-runner --sort desc --page 2  # Newest first, second page
  local-runner --mock --png out.png  # Embedded data, write a chart image`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.days, "days", defaults.LookbackDays, fmt.Sprintf("lookback window in days %v", view.LookbackOptions))
	cmd.Flags().IntVar(&opts.size, "size", defaults.PageSize, fmt.Sprintf("rows per page %v", view.PageSizeOptions))
	cmd.Flags().IntVar(&opts.page, "page", 1, "page number (clamped to the available pages)")
	cmd.Flags().StringVar(&opts.sort, "sort", string(defaults.Sort), "date order: asc or desc")
	cmd.Flags().StringVar(&opts.scope, "scope", string(defaults.ChartScope), "chart scope: page or all")
	cmd.Flags().StringVar(&opts.chart, "chart", string(defaults.Chart), "chart kind for --png: line or bar")
	cmd.Flags().StringVar(&opts.png, "png", "", "write the chart as PNG to this path")
	cmd.Flags().BoolVar(&opts.mock, "mock", false, "use the embedded sample dataset instead of the live API")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall fetch timeout")

	return cmd
}

func run(ctx context.Context, w io.Writer, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	p := view.Parameters{
		LookbackDays: opts.days,
		PageSize:     opts.size,
		PageNumber:   max(opts.page, 1),
		Sort:         view.SortDirection(opts.sort),
		Chart:        view.ChartKind(opts.chart),
		ChartScope:   view.ChartScope(opts.scope),
	}
	if err := p.Validate(); err != nil {
		return err
	}

	source, err := newSource(ctx, opts.mock)
	if err != nil {
		return err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	start := time.Now()
	ds, err := source.FetchHistorical(fetchCtx, p.LookbackDays)
	if err != nil {
		return fmt.Errorf("fetch historical data: %w", err)
	}
	logger.Debug("Fetched dataset", map[string]interface{}{
		"dates":    ds.Len(),
		"duration": time.Since(start).String(),
	})

	p, err = view.Apply(p, view.SetPage(p.PageNumber), ds.Len())
	if err != nil {
		return err
	}
	v := view.Derive(ds, p)

	latest, ok := ds.LatestDate()
	if _, err := fmt.Fprintf(w, "Total COVID-19 historical data around the world for the Last %s\nLatest data : %s\n\n",
		view.WindowLabel(p.LookbackDays), reports.FormatLatest(latest, ok)); err != nil {
		return err
	}

	if err := renderTable(w, v); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	if _, err := fmt.Fprintf(w, "\nPage %d of %d\n", v.Params.PageNumber, v.TotalPages); err != nil {
		return err
	}

	if opts.png != "" {
		if err := writePNG(opts.png, v); err != nil {
			return err
		}
		fmt.Fprintf(w, "Chart written to %s\n", opts.png)
	}
	return nil
}

func newSource(ctx context.Context, mock bool) (fetchers.Source, error) {
	if mock {
		svc, err := mocks.NewMockService()
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat, false)
	return fetchers.NewFetcher(cfg), nil
}

// renderTable builds the table in memory so a failing writer surfaces as one
// error from the final write.
func renderTable(w io.Writer, v view.View) error {
	var buf bytes.Buffer
	table := tablewriter.NewTable(&buf,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignRight,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
		}),
	)

	rows := make([][]string, 0, len(v.Rows))
	for _, r := range v.Rows {
		rows = append(rows, []string{
			r.DisplayDate,
			reports.FormatCount(r.Cases),
			reports.FormatCount(r.Deaths),
			reports.FormatCount(r.Recovered),
		})
	}
	if len(rows) == 0 {
		rows = append(rows, []string{"No data", "", "", ""})
	}

	table.Header([]string{"Date", "Cases", "Deaths", "Recovered"})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// writePNG renders the chart before touching path, so a chart that cannot be
// drawn leaves no file behind.
func writePNG(path string, v view.View) error {
	var buf bytes.Buffer
	title := fmt.Sprintf("Worldwide totals, last %s", view.WindowLabel(v.Params.LookbackDays))
	if err := charts.NewChartGenerator(1000, 500).PNG(&buf, v.Chart(), v.Params.Chart, title); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
