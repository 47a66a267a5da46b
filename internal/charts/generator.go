// Package charts draws the cases/deaths chart: an interactive go-echarts
// document for the dashboard and a static PNG for the CLI and /chart.png.
package charts

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"coviddash/internal/view"
)

// ErrNotEnoughPoints is returned when the series has too few known values to
// draw.
var ErrNotEnoughPoints = errors.New("not enough data points to chart")

const (
	casesColor  = "#3366cc"
	deathsColor = "#dc3912"
)

// ChartGenerator renders chart points in either output format.
type ChartGenerator struct {
	width  int
	height int
}

// NewChartGenerator creates a generator for charts of the given pixel size.
func NewChartGenerator(width, height int) *ChartGenerator {
	return &ChartGenerator{width: width, height: height}
}

// Interactive writes a standalone HTML document with an ECharts line or bar
// chart. Cases use the left axis and deaths the right one; unknown counts
// are left as gaps.
func (cg *ChartGenerator) Interactive(w io.Writer, points []view.ChartPoint, kind view.ChartKind, title string) error {
	xAxis := make([]string, len(points))
	for i, p := range points {
		xAxis[i] = p.DisplayDate
	}

	globals := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     fmt.Sprintf("%dpx", cg.width),
			Height:    fmt.Sprintf("%dpx", cg.height),
		}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:  opts.Bool(true),
			Right: "10",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Date",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  "Cases",
			Scale: opts.Bool(true),
		}),
		charts.WithGridOpts(opts.Grid{
			Left:  "90",
			Right: "90",
		}),
	}
	deathsAxis := opts.YAxis{
		Name:  "Deaths",
		Scale: opts.Bool(true),
	}

	switch kind {
	case view.BarChart:
		bar := charts.NewBar()
		bar.SetGlobalOptions(globals...)
		bar.ExtendYAxis(deathsAxis)
		bar.SetXAxis(xAxis).
			AddSeries("Cases", barData(points, casesOf), charts.WithItemStyleOpts(opts.ItemStyle{Color: casesColor})).
			AddSeries("Deaths", barData(points, deathsOf),
				charts.WithBarChartOpts(opts.BarChart{YAxisIndex: 1}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: deathsColor}))
		return bar.Render(w)
	case view.LineChart:
		line := charts.NewLine()
		line.SetGlobalOptions(globals...)
		line.ExtendYAxis(deathsAxis)
		line.SetXAxis(xAxis).
			AddSeries("Cases", lineData(points, casesOf), charts.WithItemStyleOpts(opts.ItemStyle{Color: casesColor})).
			AddSeries("Deaths", lineData(points, deathsOf),
				charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: deathsColor}))
		return line.Render(w)
	default:
		return fmt.Errorf("unsupported chart kind %q", kind)
	}
}

func casesOf(p view.ChartPoint) (int64, bool)  { return p.Cases.Value, p.Cases.Known }
func deathsOf(p view.ChartPoint) (int64, bool) { return p.Deaths.Value, p.Deaths.Known }

func lineData(points []view.ChartPoint, get func(view.ChartPoint) (int64, bool)) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		if v, ok := get(p); ok {
			data[i] = opts.LineData{Value: v}
		} else {
			data[i] = opts.LineData{Value: nil}
		}
	}
	return data
}

func barData(points []view.ChartPoint, get func(view.ChartPoint) (int64, bool)) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, p := range points {
		if v, ok := get(p); ok {
			data[i] = opts.BarData{Value: v}
		} else {
			data[i] = opts.BarData{Value: nil}
		}
	}
	return data
}
