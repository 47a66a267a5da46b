package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"coviddash/internal/config"
	"coviddash/internal/server"
)

func TestServerEndToEndWithMockData(t *testing.T) {
	cfg := &config.Config{
		Port:                "8080",
		DefaultLookbackDays: 7,
		DefaultPageSize:     10,
		DashboardNote:       config.DefaultDashboardNote,
		MockupMode:          true,
		Environment:         "test",
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	defer srv.Close()

	srv.Start()
	srv.Dashboard.Wait()

	ts := httptest.NewServer(newHTTPServer(cfg, srv.SetupRoutes()).Handler)
	defer ts.Close()

	tests := []struct {
		path     string
		want     int
		contains string
	}{
		{"/health", http.StatusOK, "healthy"},
		{"/", http.StatusOK, "for the Last 7 Days"},
		{"/api/status", http.StatusOK, `"phase":"ready"`},
		{"/static/styles.css", http.StatusOK, ".dashboard"},
		{"/?days=5", http.StatusBadRequest, "invalid view parameter"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.want {
				t.Errorf("GET %s: got status %d, want %d", tt.path, resp.StatusCode, tt.want)
			}
			body := new(strings.Builder)
			if _, err := io.Copy(body, resp.Body); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(body.String(), tt.contains) {
				t.Errorf("GET %s: body does not contain %q", tt.path, tt.contains)
			}
		})
	}
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{Port: "9090"}
	s := newHTTPServer(cfg, http.NotFoundHandler())

	if s.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", s.Addr)
	}
	if s.ReadHeaderTimeout == 0 || s.WriteTimeout == 0 {
		t.Error("expected server timeouts to be set")
	}
}
