// Package dashboard owns the fetched dataset and the fetch lifecycle. A
// window selection starts a background fetch; completions from superseded
// selections are discarded so an older response can never replace a newer
// one.
package dashboard

import (
	"context"
	"sync"
	"time"

	"coviddash/internal/fetchers"
	"coviddash/internal/logger"
	"coviddash/internal/metrics"
	"coviddash/internal/models"
)

// Phase is the fetch lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Fetching
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only copy of the dashboard state.
type Snapshot struct {
	Phase      Phase
	Window     int
	Dataset    *models.HistoricalDataset
	LatestDate string
	HasLatest  bool
	Err        error
	Loading    bool
	Generation uint64
	UpdatedAt  time.Time
}

// Dashboard serialises window selections and applies fetch results.
type Dashboard struct {
	source       fetchers.Source
	loadingDelay time.Duration
	now          func() time.Time
	log          *logger.Logger

	mu           sync.Mutex
	phase        Phase
	window       int
	dataset      *models.HistoricalDataset
	latestDate   string
	hasLatest    bool
	lastErr      error
	generation   uint64
	cancel       context.CancelFunc
	loadingUntil time.Time
	updatedAt    time.Time
	closed       bool

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup
}

// New creates an idle dashboard. loadingDelay keeps the loading indicator
// up for a while after each fetch completes.
func New(source fetchers.Source, loadingDelay time.Duration) *Dashboard {
	ctx, stop := context.WithCancel(context.Background())
	return &Dashboard{
		source:       source,
		loadingDelay: loadingDelay,
		now:          time.Now,
		log:          logger.GetGlobalLogger().WithComponent("dashboard"),
		dataset:      models.NewHistoricalDataset(),
		baseCtx:      ctx,
		stop:         stop,
	}
}

// SelectWindow switches to a lookback window and starts fetching it. It
// reports false, and does nothing, when days is already the selected window.
// Callers should move the view back to page 1 when it reports true.
func (d *Dashboard) SelectWindow(days int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || (d.phase != Idle && d.window == days) {
		return false
	}
	d.startLocked(days)
	return true
}

// Refresh fetches the current window again. It reports false when nothing
// has been selected yet or a fetch is already running.
func (d *Dashboard) Refresh() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || d.phase == Idle || d.phase == Fetching {
		return false
	}
	d.startLocked(d.window)
	return true
}

func (d *Dashboard) startLocked(days int) {
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(d.baseCtx)

	d.generation++
	d.cancel = cancel
	d.phase = Fetching
	d.window = days

	gen := d.generation
	d.log.Debug("Fetch started", map[string]interface{}{"lastdays": days, "generation": gen})

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ds, err := d.source.FetchHistorical(ctx, days)
		d.complete(gen, days, ds, err)
	}()
}

func (d *Dashboard) complete(gen uint64, days int, ds *models.HistoricalDataset, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if gen != d.generation {
		metrics.RecordStale()
		d.log.Debug("Discarded stale fetch result", map[string]interface{}{
			"lastdays":   days,
			"generation": gen,
			"current":    d.generation,
		})
		return
	}

	d.cancel()
	d.cancel = nil
	now := d.now()
	d.loadingUntil = now.Add(d.loadingDelay)
	d.updatedAt = now

	if err != nil {
		d.phase = Failed
		d.lastErr = err
		d.log.Error("Failed to fetch historical data", err, map[string]interface{}{"lastdays": days})
		return
	}

	d.phase = Ready
	d.lastErr = nil
	d.dataset = ds
	d.latestDate, d.hasLatest = ds.LatestDate()
	metrics.SetDatasetDates(ds.Len())
}

// Snapshot returns the current state. The dataset is shared, not copied;
// datasets are never modified once published.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Snapshot{
		Phase:      d.phase,
		Window:     d.window,
		Dataset:    d.dataset,
		LatestDate: d.latestDate,
		HasLatest:  d.hasLatest,
		Err:        d.lastErr,
		Loading:    d.phase == Fetching || d.now().Before(d.loadingUntil),
		Generation: d.generation,
		UpdatedAt:  d.updatedAt,
	}
}

// Wait blocks until every started fetch has completed.
func (d *Dashboard) Wait() {
	d.wg.Wait()
}

// Close cancels any in-flight fetch and waits for it to finish. Later
// selections are ignored.
func (d *Dashboard) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.stop()
	d.wg.Wait()
}
