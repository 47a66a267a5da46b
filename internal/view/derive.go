package view

import (
	"slices"

	"coviddash/internal/dates"
	"coviddash/internal/models"
)

// Row is one table row.
type Row struct {
	Date        string       `json:"date"`
	DisplayDate string       `json:"display_date"`
	Cases       models.Count `json:"cases"`
	Deaths      models.Count `json:"deaths"`
	Recovered   models.Count `json:"recovered"`
}

// ChartPoint is one x position on the chart.
type ChartPoint struct {
	DisplayDate string       `json:"display_date"`
	Cases       models.Count `json:"cases"`
	Deaths      models.Count `json:"deaths"`
}

// View is everything a renderer needs for one set of parameters.
type View struct {
	Params         Parameters   `json:"params"`
	SortedDateKeys []string     `json:"sorted_date_keys"`
	PageSlice      []string     `json:"page_slice"`
	Rows           []Row        `json:"rows"`
	ChartSeries    []ChartPoint `json:"chart_series"`
	PageSeries     []ChartPoint `json:"page_series"`
	TotalPages     int          `json:"total_pages"`
	LatestDate     string       `json:"latest_date"`
	HasLatest      bool         `json:"has_latest"`
}

// Chart returns the series selected by the parameters' chart scope.
func (v View) Chart() []ChartPoint {
	if v.Params.ChartScope == AllScope {
		return v.ChartSeries
	}
	return v.PageSeries
}

// HasPrevious reports whether a previous page exists.
func (v View) HasPrevious() bool { return v.Params.PageNumber > 1 }

// HasNext reports whether a next page exists.
func (v View) HasNext() bool { return v.Params.PageNumber < v.TotalPages }

// Derive computes the view of ds under p. It does not clamp: a page past
// the end yields empty rows.
func Derive(ds *models.HistoricalDataset, p Parameters) View {
	v := View{Params: p}
	v.LatestDate, v.HasLatest = ds.LatestDate()

	v.SortedDateKeys = SortKeys(ds.Keys(), p.Sort)
	v.TotalPages = TotalPages(len(v.SortedDateKeys), p.PageSize)
	v.PageSlice = pageSlice(v.SortedDateKeys, p.PageNumber, p.PageSize)

	v.Rows = make([]Row, 0, len(v.PageSlice))
	for _, key := range v.PageSlice {
		rec := ds.Lookup(key)
		v.Rows = append(v.Rows, Row{
			Date:        key,
			DisplayDate: dates.Display(key),
			Cases:       rec.Cases,
			Deaths:      rec.Deaths,
			Recovered:   rec.Recovered,
		})
	}

	v.ChartSeries = chartSeries(ds, v.SortedDateKeys)
	v.PageSeries = chartSeries(ds, v.PageSlice)
	return v
}

// SortKeys returns keys in calendar order for dir. keys is not modified.
func SortKeys(keys []string, dir SortDirection) []string {
	parsed := make([]dates.Key, len(keys))
	for i, k := range keys {
		parsed[i] = dates.ParseKey(k)
	}
	slices.SortStableFunc(parsed, dates.Compare)
	if dir == Descending {
		slices.Reverse(parsed)
	}

	out := make([]string, len(parsed))
	for i, k := range parsed {
		out[i] = k.Raw
	}
	return out
}

func pageSlice(keys []string, page, size int) []string {
	if size <= 0 || page < 1 {
		return []string{}
	}
	start := (page - 1) * size
	if start >= len(keys) {
		return []string{}
	}
	end := min(start+size, len(keys))
	return keys[start:end:end]
}

func chartSeries(ds *models.HistoricalDataset, keys []string) []ChartPoint {
	points := make([]ChartPoint, 0, len(keys))
	for _, key := range keys {
		rec := ds.Lookup(key)
		points = append(points, ChartPoint{
			DisplayDate: dates.Display(key),
			Cases:       rec.Cases,
			Deaths:      rec.Deaths,
		})
	}
	return points
}
