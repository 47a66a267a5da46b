package mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockServiceWindows(t *testing.T) {
	svc, err := NewMockService()
	require.NoError(t, err)

	tests := []struct {
		lastDays int
		want     int
	}{
		{3, 3},
		{7, 7},
		{21, 21},
		{30, 30},
		{90, 90},
		{365, 90},
	}

	for _, tt := range tests {
		ds, err := svc.FetchHistorical(context.Background(), tt.lastDays)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ds.Len(), "lastdays=%d", tt.lastDays)

		latest, ok := ds.LatestDate()
		require.True(t, ok)
		assert.Equal(t, "6/12/21", latest, "window always ends at the newest fixture date")
	}
}

func TestMockServiceKeepsCounts(t *testing.T) {
	svc, err := NewMockService()
	require.NoError(t, err)

	full, err := svc.FetchHistorical(context.Background(), 90)
	require.NoError(t, err)
	short, err := svc.FetchHistorical(context.Background(), 3)
	require.NoError(t, err)

	for _, k := range short.Keys() {
		assert.Equal(t, full.Lookup(k), short.Lookup(k))
	}
	assert.Equal(t, []string{"6/10/21", "6/11/21", "6/12/21"}, short.Keys())
}

func TestMockServiceDelayHonoursContext(t *testing.T) {
	svc, err := NewMockService()
	require.NoError(t, err)
	svc.WithDelay(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = svc.FetchHistorical(ctx, 7)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
