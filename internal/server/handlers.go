package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coviddash/internal/charts"
	"coviddash/internal/dashboard"
	"coviddash/internal/logger"
	"coviddash/internal/reports"
	"coviddash/internal/view"
)

// HandleRoot serves the dashboard page. Selecting a different window
// starts a fetch and redirects to the first page of that window.
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	p, snap, changed, err := s.selectView(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if changed {
		http.Redirect(w, r, "/?"+p.Query().Encode(), http.StatusFound)
		return
	}

	data := reports.PageData{
		View:         s.derive(snap, p),
		Loading:      snap.Loading,
		Version:      s.Version,
		GeneratedAt:  time.Now(),
		RefreshAfter: s.Config.LoadingDelay,
	}

	var buf bytes.Buffer
	if err := s.Pages.Build(&buf, data); err != nil {
		logger.Error("Failed to render dashboard", err)
		http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// viewResponse is the JSON form of the derived view.
type viewResponse struct {
	View    view.View `json:"view"`
	Phase   string    `json:"phase"`
	Loading bool      `json:"loading"`
}

// HandleView returns the derived view as JSON. A different window is
// selected in place and answered with the loading state for page 1.
func (s *Server) HandleView(w http.ResponseWriter, r *http.Request) {
	p, snap, _, err := s.selectView(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{
		View:    s.derive(snap, p),
		Phase:   snap.Phase.String(),
		Loading: snap.Loading,
	})
}

// HandleDataset returns the current dataset with upstream key order.
func (s *Server) HandleDataset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Dashboard.Snapshot().Dataset)
}

type statusResponse struct {
	Phase      string     `json:"phase"`
	Window     int        `json:"window"`
	Loading    bool       `json:"loading"`
	Dates      int        `json:"dates"`
	LatestDate string     `json:"latest_date,omitempty"`
	Generation uint64     `json:"generation"`
	Error      string     `json:"error,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// HandleStatus reports the fetch state machine.
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Dashboard.Snapshot()
	resp := statusResponse{
		Phase:      snap.Phase.String(),
		Window:     snap.Window,
		Loading:    snap.Loading,
		Dates:      snap.Dataset.Len(),
		LatestDate: snap.LatestDate,
		Generation: snap.Generation,
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	if !snap.UpdatedAt.IsZero() {
		updated := snap.UpdatedAt.UTC()
		resp.UpdatedAt = &updated
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleRefresh re-fetches the current window.
func (s *Server) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.Dashboard.Refresh() {
		logger.Debug("Refresh ignored", map[string]interface{}{"phase": s.Dashboard.Snapshot().Phase.String()})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleChart serves the interactive chart document embedded by the page.
func (s *Server) HandleChart(w http.ResponseWriter, r *http.Request) {
	p, snap, err := s.currentView(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v := s.derive(snap, p)

	var buf bytes.Buffer
	if err := s.Charts.Interactive(&buf, v.Chart(), p.Chart, chartTitle(snap, p)); err != nil {
		logger.Error("Failed to render chart", err)
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// HandleChartPNG serves the same chart as a static image.
func (s *Server) HandleChartPNG(w http.ResponseWriter, r *http.Request) {
	p, snap, err := s.currentView(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v := s.derive(snap, p)

	var buf bytes.Buffer
	if err := s.Charts.PNG(&buf, v.Chart(), p.Chart, chartTitle(snap, p)); err != nil {
		if errors.Is(err, charts.ErrNotEnoughPoints) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.Error("Failed to render PNG chart", err)
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = buf.WriteTo(w)
}

// HandleStatic serves the embedded stylesheet.
func (s *Server) HandleStatic(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "file") != "styles.css" {
		http.NotFound(w, r)
		return
	}
	css, err := reports.NewTemplateLoader().LoadCSSStyles()
	if err != nil {
		logger.Error("Failed to load stylesheet", err)
		http.Error(w, "Failed to load stylesheet", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", GetContentType("styles.css"))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(css)
}

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.Dashboard.Snapshot()
	dataCheck := "ok"
	if snap.Phase == dashboard.Failed {
		dataCheck = "degraded"
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   s.Version,
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
		"checks": map[string]string{
			"config":   "ok",
			"upstream": dataCheck,
		},
	}
	writeJSON(w, http.StatusOK, health)
}

// selectView parses the request's view parameters and, when they name a
// window other than the current one, selects it. changed reports a window
// switch; the returned parameters are then already on page 1.
func (s *Server) selectView(r *http.Request) (view.Parameters, dashboard.Snapshot, bool, error) {
	p, snap, err := s.currentView(r)
	if err != nil {
		return p, snap, false, err
	}
	if !s.Dashboard.SelectWindow(p.LookbackDays) {
		return p, snap, false, nil
	}
	p, err = view.Apply(p, view.SetLookbackDays(p.LookbackDays), 0)
	if err != nil {
		return p, snap, false, err
	}
	return p, s.Dashboard.Snapshot(), true, nil
}

// currentView parses the request's view parameters. Absent values fall back
// to the configured defaults, with the window defaulting to the selected one.
func (s *Server) currentView(r *http.Request) (view.Parameters, dashboard.Snapshot, error) {
	snap := s.Dashboard.Snapshot()
	defaults := s.Config.DefaultParameters()
	if snap.Phase != dashboard.Idle {
		defaults.LookbackDays = snap.Window
	}
	p, err := view.ParseQuery(r.URL.Query(), defaults)
	return p, snap, err
}

// derive clamps the page to the dataset and computes the view.
func (s *Server) derive(snap dashboard.Snapshot, p view.Parameters) view.View {
	p, _ = view.Apply(p, view.SetPage(p.PageNumber), snap.Dataset.Len())
	return view.Derive(snap.Dataset, p)
}

// chartTitle names the window the plotted data was fetched for. Chart
// requests never switch windows, so a days value in the query does not
// describe the data once a window is selected.
func chartTitle(snap dashboard.Snapshot, p view.Parameters) string {
	days := p.LookbackDays
	if snap.Phase != dashboard.Idle {
		days = snap.Window
	}
	return "COVID-19 cases and deaths, last " + view.WindowLabel(days)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to encode JSON response", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
