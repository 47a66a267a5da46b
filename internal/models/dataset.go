package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Series maps a month/day/year date key to a cumulative count, keeping the
// order in which keys arrived from upstream.
type Series struct {
	m *orderedmap.OrderedMap[string, int64]
}

// NewSeries returns an empty series.
func NewSeries() *Series {
	return &Series{m: orderedmap.New[string, int64]()}
}

// Set stores a count. Re-setting an existing key keeps its position.
func (s *Series) Set(date string, count int64) {
	s.m.Set(date, count)
}

// Get returns the count for date.
func (s *Series) Get(date string) (int64, bool) {
	if s == nil || s.m == nil {
		return 0, false
	}
	return s.m.Get(date)
}

// Len is the number of dates in the series.
func (s *Series) Len() int {
	if s == nil || s.m == nil {
		return 0
	}
	return s.m.Len()
}

// Keys returns the dates in arrival order.
func (s *Series) Keys() []string {
	if s.Len() == 0 {
		return nil
	}
	keys := make([]string, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Last returns the most recently arrived date.
func (s *Series) Last() (string, bool) {
	if s.Len() == 0 {
		return "", false
	}
	return s.m.Newest().Key, true
}

// MarshalJSON writes the series as an object with keys in arrival order.
func (s *Series) MarshalJSON() ([]byte, error) {
	if s == nil || s.m == nil {
		return []byte("{}"), nil
	}
	return s.m.MarshalJSON()
}

// UnmarshalJSON reads an object of date -> count, keeping key order.
func (s *Series) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("timeline is null")
	}
	m := orderedmap.New[string, int64]()
	if err := m.UnmarshalJSON(data); err != nil {
		return err
	}
	s.m = m
	return nil
}

// HistoricalDataset is one upstream response: three date-keyed timelines.
// The cases timeline defines the authoritative key set and order.
type HistoricalDataset struct {
	Cases     *Series `json:"cases"`
	Deaths    *Series `json:"deaths"`
	Recovered *Series `json:"recovered"`
}

// Count is a cumulative total that may be missing from its timeline.
type Count struct {
	Value int64
	Known bool
}

// KnownCount wraps a present count.
func KnownCount(v int64) Count {
	return Count{Value: v, Known: true}
}

// MarshalJSON writes unknown counts as null.
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Known {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// DailyRecord is the cases/deaths/recovered triple for one date.
type DailyRecord struct {
	Date      string `json:"date"`
	Cases     Count  `json:"cases"`
	Deaths    Count  `json:"deaths"`
	Recovered Count  `json:"recovered"`
}

// NewHistoricalDataset builds a dataset from records, in the given order.
// Unknown deaths or recovered counts leave the date out of that timeline.
func NewHistoricalDataset(records ...DailyRecord) *HistoricalDataset {
	ds := &HistoricalDataset{
		Cases:     NewSeries(),
		Deaths:    NewSeries(),
		Recovered: NewSeries(),
	}
	for _, r := range records {
		ds.Cases.Set(r.Date, r.Cases.Value)
		if r.Deaths.Known {
			ds.Deaths.Set(r.Date, r.Deaths.Value)
		}
		if r.Recovered.Known {
			ds.Recovered.Set(r.Date, r.Recovered.Value)
		}
	}
	return ds
}

// Keys returns the dataset's dates in arrival order.
func (d *HistoricalDataset) Keys() []string {
	if d == nil {
		return nil
	}
	return d.Cases.Keys()
}

// Len is the number of dates in the dataset.
func (d *HistoricalDataset) Len() int {
	if d == nil {
		return 0
	}
	return d.Cases.Len()
}

// LatestDate is the last key in arrival order. It does not depend on any
// sort applied for display.
func (d *HistoricalDataset) LatestDate() (string, bool) {
	if d == nil {
		return "", false
	}
	return d.Cases.Last()
}

// Lookup returns the counts recorded for date.
func (d *HistoricalDataset) Lookup(date string) DailyRecord {
	rec := DailyRecord{Date: date}
	if d == nil {
		return rec
	}
	rec.Cases = lookup(d.Cases, date)
	rec.Deaths = lookup(d.Deaths, date)
	rec.Recovered = lookup(d.Recovered, date)
	return rec
}

func lookup(s *Series, date string) Count {
	v, ok := s.Get(date)
	return Count{Value: v, Known: ok}
}
