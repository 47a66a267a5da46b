package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coviddash/internal/charts"
	"coviddash/internal/config"
	"coviddash/internal/dashboard"
	"coviddash/internal/fetchers"
	"coviddash/internal/logger"
	"coviddash/internal/mocks"
	"coviddash/internal/reports"
)

const (
	chartWidth  = 960
	chartHeight = 420
)

// Server represents the main application server
type Server struct {
	Config    *config.Config
	Source    fetchers.Source
	Dashboard *dashboard.Dashboard
	Pages     *reports.PageBuilder
	Charts    *charts.ChartGenerator
	Version   string
	startedAt time.Time
}

// NewServer creates a server backed by disease.sh, or by the recorded
// fixture when mockup mode is on.
func NewServer(cfg *config.Config) (*Server, error) {
	var source fetchers.Source = fetchers.NewFetcher(cfg)
	if cfg.MockupMode {
		mock, err := mocks.NewMockService()
		if err != nil {
			return nil, err
		}
		source = mock.WithDelay(cfg.MockDelay)
		logger.Info("Mockup mode enabled - serving recorded historical data", map[string]interface{}{
			"delay": cfg.MockDelay.String(),
		})
	}
	return NewServerWithSource(cfg, source)
}

// NewServerWithSource creates a server that reads datasets from source.
func NewServerWithSource(cfg *config.Config, source fetchers.Source) (*Server, error) {
	pages, err := reports.NewPageBuilder(cfg.DashboardNote)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize page builder: %w", err)
	}

	return &Server{
		Config:    cfg,
		Source:    source,
		Dashboard: dashboard.New(source, cfg.LoadingDelay),
		Pages:     pages,
		Charts:    charts.NewChartGenerator(chartWidth, chartHeight),
		Version:   config.GetVersion(),
		startedAt: time.Now(),
	}, nil
}

// Start selects the default window so the first page load finds data on
// the way.
func (s *Server) Start() {
	s.Dashboard.SelectWindow(s.Config.DefaultLookbackDays)
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/", s.HandleRoot)
	r.Post("/refresh", s.HandleRefresh)
	r.Get("/chart", s.HandleChart)
	r.Get("/chart.png", s.HandleChartPNG)
	r.Get("/static/{file}", s.HandleStatic)
	r.Get("/health", s.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/view", s.HandleView)
		r.Get("/dataset", s.HandleDataset)
		r.Get("/status", s.HandleStatus)
	})

	return r
}

// Close cancels background fetches.
func (s *Server) Close() error {
	s.Dashboard.Close()
	return nil
}
