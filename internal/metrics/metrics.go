// Package metrics provides Prometheus metrics for coviddash.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchTotal counts upstream fetches by lookback window and outcome.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coviddash",
			Name:      "upstream_fetch_total",
			Help:      "Total number of disease.sh historical fetches",
		},
		[]string{"lastdays", "status"},
	)

	// FetchDuration measures upstream fetch duration.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coviddash",
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Duration of disease.sh historical fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"lastdays"},
	)

	// StaleResponsesTotal counts fetch results dropped because a newer
	// window was selected before they arrived.
	StaleResponsesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coviddash",
			Name:      "stale_responses_total",
			Help:      "Fetch results discarded because they belonged to a superseded request",
		},
	)

	// DatasetDates tracks how many dates the current dataset holds.
	DatasetDates = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "coviddash",
			Name:      "dataset_dates",
			Help:      "Number of dates in the dataset currently displayed",
		},
	)

	// HTTPRequestsTotal counts served requests by route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coviddash",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"route", "code"},
	)
)

// RecordFetch records one upstream fetch.
func RecordFetch(lastDays int, status string, duration float64) {
	label := strconv.Itoa(lastDays)
	FetchTotal.WithLabelValues(label, status).Inc()
	FetchDuration.WithLabelValues(label).Observe(duration)
}

// RecordStale records a dropped stale response.
func RecordStale() {
	StaleResponsesTotal.Inc()
}

// SetDatasetDates sets the size of the current dataset.
func SetDatasetDates(n int) {
	DatasetDates.Set(float64(n))
}

// RecordRequest records one served HTTP request.
func RecordRequest(route string, code int) {
	HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
