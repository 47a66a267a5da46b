package view

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coviddash/internal/models"
)

// datasetOfDays builds n consecutive days starting at 12/25/2020 so the
// window crosses a year boundary and single/double digit months.
func datasetOfDays(n int) *models.HistoricalDataset {
	records := make([]models.DailyRecord, 0, n)
	month, day, year := 12, 25, 2020
	for i := 0; i < n; i++ {
		records = append(records, models.DailyRecord{
			Date:      fmt.Sprintf("%d/%d/%d", month, day, year),
			Cases:     models.KnownCount(int64(1000 + i)),
			Deaths:    models.KnownCount(int64(10 + i)),
			Recovered: models.KnownCount(int64(500 + i)),
		})
		day++
		if day > 28 {
			day = 1
			month++
			if month > 12 {
				month = 1
				year++
			}
		}
	}
	return models.NewHistoricalDataset(records...)
}

func TestDeriveTwoDayScenario(t *testing.T) {
	ds := models.NewHistoricalDataset(
		models.DailyRecord{Date: "1/1/2021", Cases: models.KnownCount(10)},
		models.DailyRecord{Date: "1/2/2021", Cases: models.KnownCount(15)},
	)
	p := DefaultParameters()

	v := Derive(ds, p)
	assert.Equal(t, []string{"1/1/2021", "1/2/2021"}, v.PageSlice)
	assert.Equal(t, 1, v.TotalPages)
	assert.True(t, v.HasLatest)
	assert.Equal(t, "1/2/2021", v.LatestDate)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, "1/1/2021", v.Rows[0].DisplayDate)
	assert.Equal(t, int64(15), v.Rows[1].Cases.Value)
	assert.False(t, v.HasPrevious())
	assert.False(t, v.HasNext())
}

func TestDeriveSortsByCalendarNotString(t *testing.T) {
	ds := models.NewHistoricalDataset(
		models.DailyRecord{Date: "9/30/2020", Cases: models.KnownCount(1)},
		models.DailyRecord{Date: "10/1/2020", Cases: models.KnownCount(2)},
		models.DailyRecord{Date: "10/10/2020", Cases: models.KnownCount(3)},
		models.DailyRecord{Date: "10/2/2020", Cases: models.KnownCount(4)},
	)
	p := DefaultParameters()

	asc := Derive(ds, p)
	want := []string{"9/30/2020", "10/1/2020", "10/2/2020", "10/10/2020"}
	if diff := cmp.Diff(want, asc.SortedDateKeys); diff != "" {
		t.Errorf("ascending keys mismatch (-want +got):\n%s", diff)
	}

	p.Sort = Descending
	desc := Derive(ds, p)
	reversed := slices.Clone(want)
	slices.Reverse(reversed)
	if diff := cmp.Diff(reversed, desc.SortedDateKeys); diff != "" {
		t.Errorf("descending keys mismatch (-want +got):\n%s", diff)
	}
}

func TestDescendingIsReverseOfAscending(t *testing.T) {
	ds := models.NewHistoricalDataset(
		models.DailyRecord{Date: "1/2/2021", Cases: models.KnownCount(1)},
		models.DailyRecord{Date: "bogus", Cases: models.KnownCount(2)},
		models.DailyRecord{Date: "1/1/21", Cases: models.KnownCount(3)},
		models.DailyRecord{Date: "1/1/2021", Cases: models.KnownCount(4)},
		models.DailyRecord{Date: "2/30/2021", Cases: models.KnownCount(5)},
	)
	asc := SortKeys(ds.Keys(), Ascending)
	desc := SortKeys(ds.Keys(), Descending)

	slices.Reverse(desc)
	if diff := cmp.Diff(asc, desc); diff != "" {
		t.Errorf("reverse(desc) != asc (-asc +desc):\n%s", diff)
	}
}

func TestSortKeysDoesNotMutateInput(t *testing.T) {
	keys := []string{"1/3/2021", "1/1/2021", "1/2/2021"}
	_ = SortKeys(keys, Ascending)
	assert.Equal(t, []string{"1/3/2021", "1/1/2021", "1/2/2021"}, keys)
}

func TestPagesConcatenateToSortedKeys(t *testing.T) {
	for _, n := range []int{0, 1, 3, 7, 10, 21, 29, 30, 31, 90} {
		for _, size := range PageSizeOptions {
			for _, dir := range []SortDirection{Ascending, Descending} {
				t.Run(fmt.Sprintf("n=%d/size=%d/%s", n, size, dir), func(t *testing.T) {
					ds := datasetOfDays(n)
					p := DefaultParameters()
					p.PageSize = size
					p.Sort = dir

					first := Derive(ds, p)
					assert.Equal(t, (n+size-1)/size, first.TotalPages)
					assert.Len(t, first.ChartSeries, len(first.SortedDateKeys))

					var all []string
					for page := 1; page <= first.TotalPages; page++ {
						p.PageNumber = page
						v := Derive(ds, p)
						assert.LessOrEqual(t, len(v.PageSlice), size)
						assert.NotEmpty(t, v.PageSlice)
						all = append(all, v.PageSlice...)
					}
					if diff := cmp.Diff(first.SortedDateKeys, all); n > 0 && diff != "" {
						t.Errorf("pages do not concatenate to sorted keys (-want +got):\n%s", diff)
					}
					if n == 0 {
						assert.Empty(t, all)
						assert.Equal(t, 0, first.TotalPages)
					}
				})
			}
		}
	}
}

func TestPageSeriesAlignsWithPageSlice(t *testing.T) {
	ds := datasetOfDays(25)
	p := DefaultParameters()
	p.Sort = Descending
	p.PageNumber = 3

	v := Derive(ds, p)
	require.Len(t, v.PageSlice, 5)
	require.Len(t, v.PageSeries, len(v.PageSlice))
	for i, key := range v.PageSlice {
		assert.Equal(t, v.Rows[i].DisplayDate, v.PageSeries[i].DisplayDate, "index %d (%s)", i, key)
		assert.Equal(t, v.Rows[i].Cases, v.PageSeries[i].Cases)
		assert.Equal(t, v.Rows[i].Deaths, v.PageSeries[i].Deaths)
	}
	assert.Equal(t, v.PageSeries, v.Chart())

	p.ChartScope = AllScope
	v = Derive(ds, p)
	assert.Len(t, v.Chart(), 25)
}

func TestPagePastEndIsEmpty(t *testing.T) {
	ds := datasetOfDays(12)
	p := DefaultParameters()
	p.PageNumber = 5

	v := Derive(ds, p)
	assert.Equal(t, 2, v.TotalPages)
	assert.Empty(t, v.PageSlice)
	assert.Empty(t, v.Rows)
	assert.Empty(t, v.PageSeries)
}

func TestLatestDateIgnoresSort(t *testing.T) {
	ds := models.NewHistoricalDataset(
		models.DailyRecord{Date: "1/3/2021", Cases: models.KnownCount(3)},
		models.DailyRecord{Date: "1/1/2021", Cases: models.KnownCount(1)},
	)
	for _, dir := range []SortDirection{Ascending, Descending} {
		p := DefaultParameters()
		p.Sort = dir
		v := Derive(ds, p)
		assert.Equal(t, "1/1/2021", v.LatestDate, "last arrival key regardless of %s", dir)
	}
}

func TestDeriveUnknownCounts(t *testing.T) {
	ds := models.NewHistoricalDataset(
		models.DailyRecord{Date: "3/14/2021", Cases: models.KnownCount(100)},
	)
	v := Derive(ds, DefaultParameters())
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "14/3/2021", v.Rows[0].DisplayDate)
	assert.False(t, v.Rows[0].Deaths.Known)
	assert.False(t, v.Rows[0].Recovered.Known)
}

func TestDeriveEmptyDataset(t *testing.T) {
	v := Derive(models.NewHistoricalDataset(), DefaultParameters())
	assert.Equal(t, 0, v.TotalPages)
	assert.False(t, v.HasLatest)
	assert.Empty(t, v.Rows)
	assert.Empty(t, v.ChartSeries)

	v = Derive(nil, DefaultParameters())
	assert.Equal(t, 0, v.TotalPages)
}
