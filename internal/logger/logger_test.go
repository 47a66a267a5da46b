package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line is not valid JSON: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		expected []string
	}{
		{name: "debug shows everything", level: DEBUG, expected: []string{"DEBUG", "INFO", "WARN", "ERROR"}},
		{name: "warn drops debug and info", level: WARN, expected: []string{"WARN", "ERROR"}},
		{name: "error only", level: ERROR, expected: []string{"ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Level: tt.level, Format: JSONFormat, Output: &buf, Component: "test"})

			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")
			l.Error("error message", nil)

			var levels []string
			for _, entry := range decodeLines(t, &buf) {
				levels = append(levels, entry.Level)
			}
			assert.Equal(t, tt.expected, levels)
		})
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: INFO, Format: JSONFormat, Output: &buf, Component: "fetcher"})

	l.Info("dataset replaced", map[string]interface{}{
		"window": 30,
		"points": "31",
	})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "dataset replaced", entry.Message)
	assert.Equal(t, "fetcher", entry.Component)
	assert.Equal(t, float64(30), entry.Fields["window"])
	assert.Equal(t, "31", entry.Fields["points"])
	assert.NotEmpty(t, entry.Timestamp)
	assert.Contains(t, entry.Caller, "logger_test.go")
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: INFO, Format: TextFormat, Output: &buf, Component: "server"})

	l.Info("listening", map[string]interface{}{"port": "8080"})

	output := buf.String()
	assert.Contains(t, output, "INFO")
	assert.Contains(t, output, "server")
	assert.Contains(t, output, "listening")
	assert.Contains(t, output, `"port": "8080"`)
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: INFO, Format: JSONFormat, Output: &buf, Component: "base"})

	base.WithComponent("dashboard").Info("state changed")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "dashboard", entries[0].Component)
}

func TestSetLevelIsSharedWithComponents(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: INFO, Format: JSONFormat, Output: &buf})
	child := base.WithComponent("child")

	child.Debug("hidden")
	base.SetLevel(DEBUG)
	child.Debug("visible")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "visible", entries[0].Message)
}

func TestSetFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: INFO, Format: JSONFormat, Output: &buf})

	l.SetFormat(TextFormat)
	l.Info("plain")

	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "expected console output after SetFormat")
	assert.Contains(t, buf.String(), "plain")
}

func TestErrorLogging(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: ERROR, Format: JSONFormat, Output: &buf})

	l.Error("fetch failed", errors.New("upstream returned status 502"), map[string]interface{}{
		"window": 7,
	})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "upstream returned status 502", entries[0].Error)
	assert.Equal(t, float64(7), entries[0].Fields["window"])
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	SetGlobalLogger(New(Config{Level: INFO, Format: JSONFormat, Output: &buf, Component: "global-test"}))

	Info("global info message")
	Warn("global warn message")
	Debug("filtered")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "global info message", entries[0].Message)
	assert.Equal(t, "WARN", entries[1].Level)
	assert.Contains(t, entries[1].Caller, "logger_test.go")
}

func TestFormattedLogging(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: INFO, Format: JSONFormat, Output: &buf})

	l.Infof("fetched %d points for %s", 31, "30 days")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "fetched 31 points for 30 days", entries[0].Message)
}

func TestConfigure(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	tests := []struct {
		name       string
		level      string
		format     string
		production bool
		wantJSON   bool
		wantDebug  bool
	}{
		{name: "auto in production is json", level: "info", format: "auto", production: true, wantJSON: true},
		{name: "auto in development is text", level: "info", format: "auto", production: false, wantJSON: false},
		{name: "explicit json with debug", level: "DEBUG", format: "JSON", wantJSON: true, wantDebug: true},
		{name: "unknown values keep defaults", level: "verbose", format: "xml", wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetGlobalLogger(New(Config{Level: INFO, Format: JSONFormat, Output: &buf}))

			Configure(tt.level, tt.format, tt.production)
			Debug("debug line")
			Info("info line")

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if tt.wantDebug {
				assert.Len(t, lines, 2)
			} else {
				assert.Len(t, lines, 1)
			}
			assert.Equal(t, tt.wantJSON, json.Valid([]byte(lines[0])))
		})
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{FATAL, "FATAL"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.level.String())
	}
}

func BenchmarkJSONLogging(b *testing.B) {
	var buf bytes.Buffer
	l := New(Config{Level: INFO, Format: JSONFormat, Output: &buf})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Info("benchmark message", map[string]interface{}{"iteration": i})
	}
}

func BenchmarkLevelFiltering(b *testing.B) {
	var buf bytes.Buffer
	l := New(Config{Level: WARN, Format: JSONFormat, Output: &buf})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Debug("debug message that should be filtered")
	}
}
