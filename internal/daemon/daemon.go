package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"aircheck/internal/api"
	"aircheck/internal/capture"
	"aircheck/internal/config"
	"aircheck/internal/logging"
	"aircheck/internal/metrics"
	"aircheck/internal/notify"
	"aircheck/internal/place"
	"aircheck/internal/store"
)

// Daemon coordinates the archiver services and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	journal  *store.Store
	notifier notify.Service
	metrics  *metrics.Metrics

	monitor *capture.Monitor
	watcher *place.Watcher
	api     *api.Server

	lockPath string
	lock     *flock.Flock
	logPath  string

	running atomic.Bool
	cancel  context.CancelFunc
	fatal   chan error
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	Station       string
	ArchiveDir    string
	JournalDBPath string
	LockFilePath  string
	Journal       store.HealthSummary
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, journal *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || journal == nil || logger == nil {
		return nil, errors.New("daemon requires config, journal, and logger")
	}

	m := metrics.New()
	notifier := notify.NewService(cfg)
	engine := place.NewEngine(cfg, journal, logger, notifier, m)
	lockPath := filepath.Join(cfg.Paths.LogDir, "aircheckd.lock")

	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		journal:  journal,
		notifier: notifier,
		metrics:  m,
		monitor:  capture.NewMonitor(cfg, journal, logger, m),
		watcher:  place.NewWatcher(cfg, engine, logger),
		api:      api.NewServer(cfg.Paths.APIBind, journal, m, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		logPath:  filepath.Join(cfg.Paths.LogDir, "aircheck.log"),
		fatal:    make(chan error, 2),
	}, nil
}

// Start acquires the daemon lock and launches the capture monitor, the
// placement watcher, and the status API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another aircheck daemon instance is already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("prepare directories: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.api.Start()

	go func() {
		if err := d.watcher.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			d.fatal <- fmt.Errorf("placement watcher: %w", err)
		}
	}()
	go func() {
		err := d.monitor.Run(runCtx)
		if errors.Is(err, context.Canceled) {
			return
		}
		if err != nil {
			d.fatal <- fmt.Errorf("capture monitor: %w", err)
			return
		}
		// A clean ffmpeg exit still means capture stopped; the
		// supervisor restarts us either way.
		d.fatal <- errors.New("capture monitor stopped")
	}()

	d.running.Store(true)
	d.logger.Info("aircheck daemon started",
		logging.String("station", d.cfg.Station.ID),
		logging.String("archive_dir", d.cfg.Paths.ArchiveDir),
		logging.String("lock", d.lockPath))
	return nil
}

// Wait blocks until a service fails or ctx is cancelled, and returns the
// reason the daemon should exit.
func (d *Daemon) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-d.fatal:
		return err
	}
}

// Stop stops the background services and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.Shutdown()
	if err := d.notifier.Close(); err != nil {
		d.logger.Warn("failed to close notification channel", logging.Error(err))
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("aircheck daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.journal != nil {
		return d.journal.Close()
	}
	return nil
}

// TestNotification publishes a test message over the configured broker
// connection.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.AMQP.Host) == "" {
		return false, "broker host not configured", nil
	}
	if err := d.notifier.Test(ctx); err != nil {
		return false, "failed to publish test message", err
	}
	return true, "test message published", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		Station:       d.cfg.Station.ID,
		ArchiveDir:    d.cfg.Paths.ArchiveDir,
		JournalDBPath: d.journal.Path(),
		LockFilePath:  d.lockPath,
	}
	if summary, err := d.journal.Health(ctx); err == nil {
		status.Journal = summary
	}
	return status
}
