package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hunt.log")

	log, err := NewLogger(path, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	log.Info("allocated candidate", "address", "95.163.248.5")
	if err := log.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["msg"] != "allocated candidate" {
		t.Errorf("msg = %v, want %q", entry["msg"], "allocated candidate")
	}
	if entry["address"] != "95.163.248.5" {
		t.Errorf("address = %v, want %q", entry["address"], "95.163.248.5")
	}
}

func TestWithWorkerAndCycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hunt.log")

	log, err := NewLogger(path, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	log.WithCycle(2).WithWorker(3).Debug("testing candidate")
	if err := log.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["worker"] != float64(3) {
		t.Errorf("worker = %v, want 3", entry["worker"])
	}
	if entry["cycle"] != float64(2) {
		t.Errorf("cycle = %v, want 2", entry["cycle"])
	}
}

func TestChildLoggerDoesNotMutateParent(t *testing.T) {
	log := NopLogger()
	child := log.WithWorker(1)

	if len(log.attrs) != 0 {
		t.Errorf("parent attrs = %d, want 0", len(log.attrs))
	}
	if len(child.attrs) != 1 {
		t.Errorf("child attrs = %d, want 1", len(child.attrs))
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hunt.log")

	log, err := NewLogger(path, LevelWarn)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	log.Info("should be filtered")
	log.Warn("should appear")
	if err := log.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	if strings.Contains(out, "should be filtered") {
		t.Error("INFO message logged at WARN level")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("WARN message missing at WARN level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(filepath.Join(dir, "hunt.log"), LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
