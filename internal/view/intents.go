package view

import "fmt"

// Intent is a single user action on the view parameters.
type Intent interface {
	apply(p Parameters, keyCount int) (Parameters, error)
}

// SetLookbackDays selects a new window. The page always returns to 1.
type SetLookbackDays int

func (i SetLookbackDays) apply(p Parameters, _ int) (Parameters, error) {
	n := int(i)
	if !ValidLookbackDays(n) {
		return p, fmt.Errorf("%w: lookback days %d", ErrInvalidParameter, n)
	}
	p.LookbackDays = n
	p.PageNumber = 1
	return p, nil
}

// SetPageSize changes rows per page and keeps the current page in range
// for the new page count.
type SetPageSize int

func (i SetPageSize) apply(p Parameters, keyCount int) (Parameters, error) {
	n := int(i)
	if !ValidPageSize(n) {
		return p, fmt.Errorf("%w: page size %d", ErrInvalidParameter, n)
	}
	p.PageSize = n
	p.PageNumber = ClampPage(p.PageNumber, TotalPages(keyCount, n))
	return p, nil
}

// SetPage moves to page n, clamped to the dataset's page range.
type SetPage int

func (i SetPage) apply(p Parameters, keyCount int) (Parameters, error) {
	p.PageNumber = ClampPage(int(i), TotalPages(keyCount, p.PageSize))
	return p, nil
}

// ToggleSortDirection flips between ascending and descending.
type ToggleSortDirection struct{}

func (ToggleSortDirection) apply(p Parameters, _ int) (Parameters, error) {
	p.Sort = p.Sort.Toggle()
	return p, nil
}

// SetChartKind switches between line and bar.
type SetChartKind ChartKind

func (i SetChartKind) apply(p Parameters, _ int) (Parameters, error) {
	k := ChartKind(i)
	if !validChart(k) {
		return p, fmt.Errorf("%w: chart %q", ErrInvalidParameter, k)
	}
	p.Chart = k
	return p, nil
}

// SetChartScope switches between the windowed and unwindowed chart.
type SetChartScope ChartScope

func (i SetChartScope) apply(p Parameters, _ int) (Parameters, error) {
	s := ChartScope(i)
	if !validScope(s) {
		return p, fmt.Errorf("%w: chart scope %q", ErrInvalidParameter, s)
	}
	p.ChartScope = s
	return p, nil
}

// Apply returns the parameters that result from intent. keyCount is the
// number of dates in the dataset currently on screen. On error p is returned
// unchanged.
func Apply(p Parameters, intent Intent, keyCount int) (Parameters, error) {
	return intent.apply(p, keyCount)
}

// ClampPage keeps page within [1, totalPages]; an empty dataset has only
// page 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// TotalPages is ceil(keys / pageSize).
func TotalPages(keys, pageSize int) int {
	if keys <= 0 || pageSize <= 0 {
		return 0
	}
	return (keys + pageSize - 1) / pageSize
}
