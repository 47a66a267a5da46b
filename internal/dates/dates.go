// Package dates handles the month/day/year keys used by the historical
// timeline: parsing into calendar dates, ordering, and display formatting.
package dates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is wrapped by every Parse failure.
var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar day without time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Time returns midnight UTC on d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Compare returns -1, 0 or +1 as d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	return d.Time().Compare(other.Time())
}

func (d Date) String() string {
	return fmt.Sprintf("%d/%d/%d", int(d.Month), d.Day, d.Year)
}

// Parse reads "M/D/YYYY". Two-digit years, as served by disease.sh
// ("1/22/20"), are taken as 20YY.
func Parse(raw string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q: expected month/day/year", ErrInvalidDate, raw)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Date{}, fmt.Errorf("%w: %q: field %q is not a number", ErrInvalidDate, raw, p)
		}
		nums[i] = n
	}

	month, day, year := nums[0], nums[1], nums[2]
	if len(parts[2]) <= 2 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 {
		return Date{}, fmt.Errorf("%w: %q: out of range", ErrInvalidDate, raw)
	}

	d := Date{Year: year, Month: time.Month(month), Day: day}
	// time.Date normalises 2/30 into March; reject anything that moved.
	t := d.Time()
	if t.Year() != year || t.Month() != d.Month || t.Day() != day {
		return Date{}, fmt.Errorf("%w: %q: no such day", ErrInvalidDate, raw)
	}
	return d, nil
}

// Key is a dataset key together with its parse outcome.
type Key struct {
	Raw   string
	Date  Date
	Valid bool
}

// ParseKey never fails; an unparseable key comes back with Valid false.
func ParseKey(raw string) Key {
	d, err := Parse(raw)
	return Key{Raw: raw, Date: d, Valid: err == nil}
}

// Compare orders keys chronologically. Invalid keys sort before all valid
// ones, and equal dates fall back to the raw text, so the order is total.
func Compare(a, b Key) int {
	switch {
	case a.Valid && !b.Valid:
		return 1
	case !a.Valid && b.Valid:
		return -1
	case a.Valid && b.Valid:
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
	}
	return strings.Compare(a.Raw, b.Raw)
}

// Display reorders "month/day/year" into "day/month/year" without touching
// the fields themselves. Anything that is not three slash-separated fields
// is returned as is.
func Display(raw string) string {
	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return raw
	}
	return parts[1] + "/" + parts[0] + "/" + parts[2]
}
