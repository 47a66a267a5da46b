package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordFetch(t *testing.T) {
	before := testutil.ToFloat64(FetchTotal.WithLabelValues("21", "success"))

	RecordFetch(21, "success", 0.25)
	RecordFetch(21, "success", 0.5)

	assert.Equal(t, before+2, testutil.ToFloat64(FetchTotal.WithLabelValues("21", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(FetchTotal.WithLabelValues("21", "never-recorded")))
}

func TestRecordStaleAndDatasetDates(t *testing.T) {
	before := testutil.ToFloat64(StaleResponsesTotal)
	RecordStale()
	assert.Equal(t, before+1, testutil.ToFloat64(StaleResponsesTotal))

	SetDatasetDates(90)
	assert.Equal(t, 90.0, testutil.ToFloat64(DatasetDates))
	SetDatasetDates(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(DatasetDates))
}

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/view", "400"))
	RecordRequest("/api/view", 400)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/view", "400")))
}
