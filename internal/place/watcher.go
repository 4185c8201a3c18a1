package place

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"aircheck/internal/config"
	"aircheck/internal/logging"
	"aircheck/internal/segment"
	"aircheck/internal/services"
)

// Watcher feeds the placement engine from the top level of the archive
// directory. Finalized segments arrive there by rename, so it reacts to
// create and rename events and additionally sweeps on an interval to pick up
// anything dropped while the process was down or an event was missed.
type Watcher struct {
	cfg    *config.Config
	engine *Engine
	logger *slog.Logger
}

func NewWatcher(cfg *config.Config, engine *Engine, logger *slog.Logger) *Watcher {
	return &Watcher{
		cfg:    cfg,
		engine: engine,
		logger: logging.NewComponentLogger(logger, "watcher"),
	}
}

// Run watches until ctx is cancelled. It sweeps once at startup so segments
// left behind by a previous run are placed before new events are handled.
func (w *Watcher) Run(ctx context.Context) error {
	dir := w.cfg.Paths.ArchiveDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "watcher", "create archive directory", dir, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return services.Wrap(services.ErrTransient, "watcher", "create filesystem watcher", dir, err)
	}
	defer fsw.Close()
	if err := fsw.Add(dir); err != nil {
		return services.Wrap(services.ErrTransient, "watcher", "watch archive directory", dir, err)
	}

	w.Sweep(ctx)

	interval := time.Duration(w.cfg.Placement.SweepIntervalSeconds) * time.Second
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	w.logger.Info("watching for finalized segments",
		logging.String("directory", dir),
		logging.Duration("sweep_interval", interval))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if !isFinalized(event.Name) {
				continue
			}
			w.place(ctx, event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("filesystem watcher error", logging.Error(err))
		case <-tick:
			w.Sweep(ctx)
		}
	}
}

// Sweep places every finalized segment currently sitting at the top level of
// the archive directory.
func (w *Watcher) Sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.cfg.Paths.ArchiveDir)
	if err != nil {
		w.logger.Warn("sweep failed to read archive directory", logging.Error(err))
		return
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if entry.IsDir() || !isFinalized(entry.Name()) {
			continue
		}
		w.place(ctx, filepath.Join(w.cfg.Paths.ArchiveDir, entry.Name()))
	}
}

func (w *Watcher) place(ctx context.Context, path string) {
	// An event can race the sweep for the same file; whoever loses finds
	// the source gone and moves on.
	if _, err := os.Stat(path); err != nil {
		return
	}
	if _, err := w.engine.Place(ctx, path); err != nil {
		w.logger.Error("placement failed", logging.String("source", path), logging.Error(err))
	}
}

func isFinalized(path string) bool {
	return strings.HasSuffix(filepath.Base(path), segment.FinalExt)
}
