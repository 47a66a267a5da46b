package mocks

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"coviddash/internal/fetchers"
	"coviddash/internal/models"
)

//go:embed data/historical_all.json
var historicalFixture []byte

// MockService serves a recorded disease.sh response instead of calling the
// API. It backs MOCKUP_MODE and the CLI's --mock flag.
type MockService struct {
	dataset *models.HistoricalDataset
	delay   time.Duration
}

var _ fetchers.Source = (*MockService)(nil)

// NewMockService loads the embedded 90-day fixture.
func NewMockService() (*MockService, error) {
	ds, err := fetchers.ParseHistorical(historicalFixture)
	if err != nil {
		return nil, fmt.Errorf("failed to load mock historical data: %w", err)
	}
	return &MockService{dataset: ds}, nil
}

// WithDelay makes every fetch take at least d, to mimic network latency.
func (m *MockService) WithDelay(d time.Duration) *MockService {
	m.delay = d
	return m
}

// FetchHistorical returns the newest lastDays dates of the fixture, in the
// fixture's order.
func (m *MockService) FetchHistorical(ctx context.Context, lastDays int) (*models.HistoricalDataset, error) {
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys := m.dataset.Keys()
	if lastDays < len(keys) {
		keys = keys[len(keys)-max(lastDays, 0):]
	}

	records := make([]models.DailyRecord, 0, len(keys))
	for _, k := range keys {
		records = append(records, m.dataset.Lookup(k))
	}
	return models.NewHistoricalDataset(records...), nil
}
