package daemon

import (
	"context"
	"path/filepath"
	"testing"

	"aircheck/internal/config"
	"aircheck/internal/logging"
	"aircheck/internal/store"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.ArchiveDir = filepath.Join(t.TempDir(), "archive")
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Station.ID = "WBOR"
	cfg.Station.StreamURL = "https://stream.example.org/wbor"
	// Long segment duration keeps the capture monitor parked in its
	// boundary wait for the life of the test.
	cfg.Station.SegmentDurationSeconds = 3600
	cfg.AMQP.Host = ""

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	journal, err := store.OpenPath(filepath.Join(cfg.Paths.LogDir, "segments.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}

	d, err := New(&cfg, journal, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestStartStopLifecycle(t *testing.T) {
	d := newTestDaemon(t)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail while running")
	}

	status := d.Status(context.Background())
	if !status.Running {
		t.Fatal("status should report running")
	}
	if status.Station != "WBOR" {
		t.Errorf("station = %q", status.Station)
	}

	d.Stop()
	if d.Status(context.Background()).Running {
		t.Fatal("status should report stopped")
	}
}

func TestLockPreventsSecondInstance(t *testing.T) {
	d := newTestDaemon(t)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	second, err := New(d.cfg, d.journal, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second daemon instance must not acquire the lock")
	}
}

func TestTestNotificationWithoutBroker(t *testing.T) {
	d := newTestDaemon(t)
	ok, detail, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if ok {
		t.Fatal("expected not-ok without broker host")
	}
	if detail == "" {
		t.Fatal("expected explanatory detail")
	}
}
