// Package view derives everything the dashboard renders from a dataset and
// the user's current view parameters. Derivation is pure; parameter changes
// go through intents so page resets and clamping happen in one place.
package view

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
)

// ErrInvalidParameter is returned for values outside the enumerated options.
var ErrInvalidParameter = errors.New("invalid view parameter")

// SortDirection orders the table by date.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Toggle returns the opposite direction.
func (d SortDirection) Toggle() SortDirection {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// ChartKind selects the chart renderer.
type ChartKind string

const (
	LineChart ChartKind = "line"
	BarChart  ChartKind = "bar"
)

// ChartScope selects which dates feed the chart.
type ChartScope string

const (
	// PageScope charts only the rows on the current page.
	PageScope ChartScope = "page"
	// AllScope charts every date in the dataset.
	AllScope ChartScope = "all"
)

var (
	// LookbackOptions are the selectable lookback windows, in days.
	LookbackOptions = []int{3, 7, 21, 30, 90}
	// PageSizeOptions are the selectable rows per page.
	PageSizeOptions = []int{10, 30, 90}
)

func ValidLookbackDays(n int) bool { return slices.Contains(LookbackOptions, n) }

func ValidPageSize(n int) bool { return slices.Contains(PageSizeOptions, n) }

func validSort(d SortDirection) bool { return d == Ascending || d == Descending }

func validChart(k ChartKind) bool { return k == LineChart || k == BarChart }

func validScope(s ChartScope) bool { return s == PageScope || s == AllScope }

// Parameters is the user's current view. It is a value; every change
// produces a new one.
type Parameters struct {
	LookbackDays int           `json:"lookback_days"`
	PageSize     int           `json:"page_size"`
	PageNumber   int           `json:"page_number"`
	Sort         SortDirection `json:"sort"`
	Chart        ChartKind     `json:"chart"`
	ChartScope   ChartScope    `json:"chart_scope"`
}

// DefaultParameters is the view shown before the user changes anything.
func DefaultParameters() Parameters {
	return Parameters{
		LookbackDays: 30,
		PageSize:     10,
		PageNumber:   1,
		Sort:         Ascending,
		Chart:        LineChart,
		ChartScope:   PageScope,
	}
}

// Validate checks every enumerated field. PageNumber only has to be
// positive here; the upper bound depends on the dataset.
func (p Parameters) Validate() error {
	switch {
	case !ValidLookbackDays(p.LookbackDays):
		return fmt.Errorf("%w: lookback days %d (valid: %v)", ErrInvalidParameter, p.LookbackDays, LookbackOptions)
	case !ValidPageSize(p.PageSize):
		return fmt.Errorf("%w: page size %d (valid: %v)", ErrInvalidParameter, p.PageSize, PageSizeOptions)
	case p.PageNumber < 1:
		return fmt.Errorf("%w: page %d", ErrInvalidParameter, p.PageNumber)
	case !validSort(p.Sort):
		return fmt.Errorf("%w: sort %q", ErrInvalidParameter, p.Sort)
	case !validChart(p.Chart):
		return fmt.Errorf("%w: chart %q", ErrInvalidParameter, p.Chart)
	case !validScope(p.ChartScope):
		return fmt.Errorf("%w: chart scope %q", ErrInvalidParameter, p.ChartScope)
	}
	return nil
}

// Query encodes p as URL query values. It round-trips through ParseQuery.
func (p Parameters) Query() url.Values {
	q := url.Values{}
	q.Set("days", strconv.Itoa(p.LookbackDays))
	q.Set("size", strconv.Itoa(p.PageSize))
	q.Set("page", strconv.Itoa(p.PageNumber))
	q.Set("sort", string(p.Sort))
	q.Set("chart", string(p.Chart))
	q.Set("scope", string(p.ChartScope))
	return q
}

// ParseQuery overlays the values present in q onto defaults. Absent or empty
// keys keep the default; malformed or out-of-set values are an error.
func ParseQuery(q url.Values, defaults Parameters) (Parameters, error) {
	p := defaults

	ints := []struct {
		key string
		dst *int
	}{
		{"days", &p.LookbackDays},
		{"size", &p.PageSize},
		{"page", &p.PageNumber},
	}
	for _, f := range ints {
		raw := q.Get(f.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return defaults, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidParameter, f.key, raw)
		}
		*f.dst = n
	}

	if v := q.Get("sort"); v != "" {
		p.Sort = SortDirection(v)
	}
	if v := q.Get("chart"); v != "" {
		p.Chart = ChartKind(v)
	}
	if v := q.Get("scope"); v != "" {
		p.ChartScope = ChartScope(v)
	}

	if err := p.Validate(); err != nil {
		return defaults, err
	}
	return p, nil
}

// WindowLabel names a lookback window for headings.
func WindowLabel(days int) string {
	switch days {
	case 30:
		return "1 Month"
	case 90:
		return "3 Months"
	default:
		return fmt.Sprintf("%d Days", days)
	}
}
