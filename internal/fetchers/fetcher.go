package fetchers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"coviddash/internal/config"
	"coviddash/internal/logger"
	"coviddash/internal/metrics"
	"coviddash/internal/models"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrUpstream is wrapped when disease.sh answers with a non-200 status.
	ErrUpstream = errors.New("upstream error")
	// ErrMalformedResponse is wrapped when the body is not a historical dataset.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// Source supplies historical datasets for a lookback window.
type Source interface {
	FetchHistorical(ctx context.Context, lastDays int) (*models.HistoricalDataset, error)
}

// Fetcher retrieves worldwide historical totals from disease.sh.
type Fetcher struct {
	client  *resty.Client
	baseURL string
	group   singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the context shared by every caller waiting on one window. It is
// cancelled only after the last waiter leaves.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewFetcher creates a fetcher using the configured endpoint, timeout and
// retry count. A zero timeout means the request waits as long as its context
// allows.
func NewFetcher(cfg *config.Config) *Fetcher {
	client := resty.New()
	client.SetTimeout(cfg.FetchTimeout)
	client.SetRetryCount(cfg.FetchRetries)
	client.SetRetryWaitTime(500 * time.Millisecond)

	return &Fetcher{
		client:  client,
		baseURL: cfg.DiseaseAPIURL,
		flights: make(map[string]*flight),
	}
}

// FetchHistorical returns the last lastDays days of totals. Callers asking
// for the same window at the same time share one request, which keeps running
// while at least one of them is still waiting. A caller whose context ends
// stops waiting and gets the context error.
func (f *Fetcher) FetchHistorical(ctx context.Context, lastDays int) (*models.HistoricalDataset, error) {
	key := strconv.Itoa(lastDays)
	fl := f.join(ctx, key)
	defer f.leave(key, fl)

	ch := f.group.DoChan(key, func() (interface{}, error) {
		return f.fetch(fl.ctx, lastDays)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logger.Debug("Shared in-flight historical fetch", map[string]interface{}{"lastdays": lastDays})
		}
		return res.Val.(*models.HistoricalDataset), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Fetcher) join(ctx context.Context, key string) *flight {
	f.mu.Lock()
	defer f.mu.Unlock()

	fl, ok := f.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		fl = &flight{ctx: fctx, cancel: cancel}
		f.flights[key] = fl
	}
	fl.waiters++
	return fl
}

// leave drops one waiter. The last one out cancels the request and forgets
// the in-flight call so the next caller starts a fresh one.
func (f *Fetcher) leave(key string, fl *flight) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fl.waiters--
	if fl.waiters > 0 {
		return
	}
	fl.cancel()
	if f.flights[key] == fl {
		delete(f.flights, key)
	}
	f.group.Forget(key)
}

func (f *Fetcher) fetch(ctx context.Context, lastDays int) (*models.HistoricalDataset, error) {
	start := time.Now()
	ds, err := f.fetchOnce(ctx, lastDays)
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordFetch(lastDays, status, elapsed.Seconds())

	if err != nil {
		return nil, err
	}
	logger.Info("Fetched historical data", map[string]interface{}{
		"lastdays": lastDays,
		"dates":    ds.Len(),
		"duration": elapsed.String(),
	})
	return ds, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, lastDays int) (*models.HistoricalDataset, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("lastdays", strconv.Itoa(lastDays)).
		Get(f.baseURL)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch historical data: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, upstreamError(resp)
	}

	ds, err := ParseHistorical(resp.Body())
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// ParseHistorical decodes a disease.sh historical body. The cases timeline
// is required; deaths and recovered may be absent.
func ParseHistorical(body []byte) (*models.HistoricalDataset, error) {
	var ds models.HistoricalDataset
	if err := json.Unmarshal(body, &ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if ds.Cases == nil {
		return nil, fmt.Errorf("%w: no cases timeline", ErrMalformedResponse)
	}
	return &ds, nil
}

// upstreamError carries the API's own message when it sends one, e.g.
// {"message":"Country not found or doesn't have any historical data"}.
func upstreamError(resp *resty.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode(), body.Message)
	}
	return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode())
}
