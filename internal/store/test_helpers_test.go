package store

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/voightp/esofile-storage/internal/ir"
	"github.com/voightp/esofile-storage/internal/testutil"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	return createTestStoreWith(t, Config{Path: filepath.Join(t.TempDir(), "test.db")})
}

// createTestStoreWith opens a store with cfg, discarding logs unless cfg
// carries its own logger.
func createTestStoreWith(t *testing.T, cfg Config) *Store {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// captureLogger returns a logger writing JSON lines into the returned buffer.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// zoneTemperatures is a file with one hourly and one daily table:
//
//	hourly: ZONE1 and ZONE2 temperature (3 samples), ZONE1 humidity (3 samples)
//	daily:  ZONE1 temperature (1 sample)
func zoneTemperatures(name string) *testutil.ResultFile {
	return testutil.NewResultFile(name).
		AddVariable("hourly", 1, "ZONE1", "Zone Mean Air Temperature", "C", 20.1, 20.5, 21.0).
		AddVariable("hourly", 2, "ZONE2", "Zone Mean Air Temperature", "C", 18.0, 18.25, 18.5).
		AddVariable("hourly", 3, "ZONE1", "Zone Air Relative Humidity", "%", 40, 41, 42).
		AddVariable("daily", 1, "ZONE1", "Zone Mean Air Temperature", "C", 20.53)
}

// mustStore stores files and fails the test on any failure.
func mustStore(t *testing.T, s *Store, files ...*testutil.ResultFile) *BatchReport {
	t.Helper()
	args := make([]ir.ResultFile, len(files))
	for i, f := range files {
		args[i] = f
	}
	report, err := s.Store(context.Background(), args...)
	if err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
	if !report.OK() {
		t.Fatalf("Store() reported failures: %v", report.Err())
	}
	return report
}
