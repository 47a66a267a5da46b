package charts

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"coviddash/internal/view"
)

// maxXLabels caps how many date labels the static charts print.
const maxXLabels = 10

// PNG writes a static chart. Line charts plot cases on the left axis and
// deaths on the right; bar charts plot cases only. A line needs at least
// two known case counts, a bar chart one.
func (cg *ChartGenerator) PNG(w io.Writer, points []view.ChartPoint, kind view.ChartKind, title string) error {
	switch kind {
	case view.LineChart:
		return cg.linePNG(w, points, title)
	case view.BarChart:
		return cg.barPNG(w, points, title)
	default:
		return fmt.Errorf("unsupported chart kind %q", kind)
	}
}

func (cg *ChartGenerator) linePNG(w io.Writer, points []view.ChartPoint, title string) error {
	cases := knownSeries(points, casesOf)
	if len(cases.XValues) < 2 {
		return ErrNotEnoughPoints
	}
	cases.Name = "Cases"
	cases.Style = chart.Style{
		StrokeColor: drawing.ColorFromHex(casesColor[1:]),
		StrokeWidth: 2,
	}

	series := []chart.Series{cases}
	graph := chart.Chart{
		Title:  title,
		Width:  cg.width,
		Height: cg.height,
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Style: chart.Style{FontSize: 9},
			Ticks: dateTicks(points),
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(points) - 1)},
		},
		YAxis: chart.YAxis{
			Name:           "Cases",
			Style:          chart.Style{FontSize: 9},
			ValueFormatter: compactFormatter,
			Range:          paddedRange(cases.YValues),
		},
	}

	deaths := knownSeries(points, deathsOf)
	if len(deaths.XValues) >= 2 {
		deaths.Name = "Deaths"
		deaths.YAxis = chart.YAxisSecondary
		deaths.Style = chart.Style{
			StrokeColor: drawing.ColorFromHex(deathsColor[1:]),
			StrokeWidth: 2,
		}
		series = append(series, deaths)
		graph.YAxisSecondary = chart.YAxis{
			Name:           "Deaths",
			Style:          chart.Style{FontSize: 9},
			ValueFormatter: compactFormatter,
			Range:          paddedRange(deaths.YValues),
		}
	}

	graph.Series = series
	graph.Elements = []chart.Renderable{chart.LegendThin(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render line chart: %w", err)
	}
	return nil
}

func (cg *ChartGenerator) barPNG(w io.Writer, points []view.ChartPoint, title string) error {
	var bars []chart.Value
	var values []float64
	for _, p := range points {
		if !p.Cases.Known {
			continue
		}
		v := float64(p.Cases.Value)
		values = append(values, v)
		bars = append(bars, chart.Value{
			Label: p.DisplayDate,
			Value: v,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(casesColor[1:]),
				StrokeColor: drawing.ColorFromHex(casesColor[1:]),
			},
		})
	}
	if len(bars) == 0 {
		return ErrNotEnoughPoints
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  cg.width,
		Height: cg.height,
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.Style{
			FontSize: 8,
			Hidden:   len(bars) > maxXLabels*3,
		},
		YAxis: chart.YAxis{
			Style:          chart.Style{FontSize: 9},
			ValueFormatter: compactFormatter,
			Range:          paddedRange(values),
		},
		BarSpacing: 2,
		Bars:       bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render bar chart: %w", err)
	}
	return nil
}

// knownSeries places each known value at its index in points so the cases
// and deaths lines stay aligned on the shared x axis.
func knownSeries(points []view.ChartPoint, get func(view.ChartPoint) (int64, bool)) chart.ContinuousSeries {
	var s chart.ContinuousSeries
	for i, p := range points {
		if v, ok := get(p); ok {
			s.XValues = append(s.XValues, float64(i))
			s.YValues = append(s.YValues, float64(v))
		}
	}
	return s
}

// dateTicks labels at most maxXLabels evenly spaced points, always
// including the last one.
func dateTicks(points []view.ChartPoint) []chart.Tick {
	if len(points) == 0 {
		return nil
	}
	step := (len(points) + maxXLabels - 1) / maxXLabels
	var ticks []chart.Tick
	for i := 0; i < len(points); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: points[i].DisplayDate})
	}
	if last := len(points) - 1; last%step != 0 {
		ticks = append(ticks, chart.Tick{Value: float64(last), Label: points[last].DisplayDate})
	}
	return ticks
}

// paddedRange fits the values with a little headroom. Cumulative totals sit
// far from zero, so the axis does not start at zero. A flat series gets a
// non-empty range.
func paddedRange(values []float64) *chart.ContinuousRange {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = max(hi*0.05, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func compactFormatter(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return CompactCount(f)
}

// CompactCount abbreviates large counts: 1234567 -> "1.23M".
func CompactCount(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
