package place

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"aircheck/internal/config"
	"aircheck/internal/fileutil"
	"aircheck/internal/logging"
	"aircheck/internal/metrics"
	"aircheck/internal/notify"
	"aircheck/internal/segment"
	"aircheck/internal/services"
	"aircheck/internal/store"
)

// lockFilename is the per-directory lock file. It is created on demand and
// never removed.
const lockFilename = ".lock"

const maxOrdinalAttempts = 10000

// Outcome describes the terminal state of one placement attempt.
type Outcome string

const (
	// OutcomePlaced is a fresh move into an unoccupied canonical slot.
	OutcomePlaced Outcome = "placed"
	// OutcomeConflictPlaced is a move under a conflict ordinal.
	OutcomeConflictPlaced Outcome = "conflict_placed"
	// OutcomeDuplicate means the incoming file matched the occupant
	// byte-for-byte and was discarded.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeUnmatched means the filename did not parse and the file was
	// routed to the unmatched directory.
	OutcomeUnmatched Outcome = "unmatched"
	// OutcomeQuarantined means the archive move failed and the file was
	// rescued into the unmatched directory instead.
	OutcomeQuarantined Outcome = "quarantined"
	// OutcomeMissingSource means the source vanished before placement,
	// typically because a concurrent attempt already handled it.
	OutcomeMissingSource Outcome = "missing_source"
)

// Result reports where a placement attempt left the file.
type Result struct {
	Outcome   Outcome
	FinalPath string
	Notified  bool
}

// Engine performs collision-safe placement of finalized segments.
type Engine struct {
	cfg      *config.Config
	journal  *store.Store
	logger   *slog.Logger
	notifier notify.Service
	metrics  *metrics.Metrics

	// hashFile and moveFile are swappable in tests to exercise digest and
	// move failures and to widen race windows under concurrent placement.
	hashFile func(string) (string, error)
	moveFile func(src, dst string) error
}

// NewEngine constructs the placement engine. The journal and metrics may be
// nil; the notifier must not be.
func NewEngine(cfg *config.Config, journal *store.Store, logger *slog.Logger, notifier notify.Service, m *metrics.Metrics) *Engine {
	return &Engine{
		cfg:      cfg,
		journal:  journal,
		logger:   logging.NewComponentLogger(logger, "placement"),
		notifier: notifier,
		metrics:  m,
		hashFile: fileutil.HashFile,
		moveFile: fileutil.MoveFile,
	}
}

// Place admits one finalized file into the archive. It classifies the
// filename, serializes against other placements targeting the same directory
// via the directory lock, resolves collisions by content digest, moves the
// file, and publishes a notification for every file that landed in the dated
// tree. The returned Result is valid even when err is non-nil and reports
// where the file ended up.
func (e *Engine) Place(ctx context.Context, sourcePath string) (Result, error) {
	filename := filepath.Base(sourcePath)
	ctx = services.WithSegment(ctx, filename)
	ctx = services.WithCorrelationID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, e.logger)

	name, ok := segment.Parse(filename)
	if !ok {
		logger.Warn("filename does not match expected format, routing to unmatched directory",
			logging.String("source", sourcePath))
		return e.placeUnmatched(ctx, logger, sourcePath, filename)
	}

	targetDir := name.Timestamp.DatedDir(e.cfg.Paths.ArchiveDir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		e.metrics.IncPlacementFailures()
		return Result{}, services.Wrap(services.ErrTransient, "placement", "create target directory", targetDir, err)
	}

	result, err := e.placeInDir(ctx, logger, sourcePath, filename, targetDir)
	if err != nil {
		return result, err
	}

	// Notification happens after the lock is released; the move is the
	// authoritative side effect and is never rolled back on publish
	// failure.
	if result.Outcome == OutcomePlaced || result.Outcome == OutcomeConflictPlaced {
		finalName := filepath.Base(result.FinalPath)
		msg := notify.Message{Filename: finalName, Timestamp: name.Timestamp}
		if err := e.notifier.SegmentPlaced(ctx, msg); err != nil {
			e.metrics.IncNotifyFailures()
			logger.Error("notification publish failed, segment remains placed",
				logging.String("final_path", result.FinalPath),
				logging.Error(err))
		} else {
			result.Notified = true
		}
	}
	return result, nil
}

// placeInDir runs the collision-resolution sequence for a conforming
// filename. The directory lock is held for the whole sequence so the
// existence check and move cannot interleave with a concurrent attempt.
func (e *Engine) placeInDir(ctx context.Context, logger *slog.Logger, sourcePath, filename, targetDir string) (Result, error) {
	lock := flock.New(filepath.Join(targetDir, lockFilename))
	if err := lock.Lock(); err != nil {
		e.metrics.IncPlacementFailures()
		return Result{}, services.Wrap(services.ErrTransient, "placement", "acquire directory lock", targetDir, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release directory lock", logging.Error(err))
		}
	}()

	// The watcher event and a manual sweep can race for the same file;
	// whoever lost the lock finds the source gone and has nothing to do.
	if gone, err := sourceVanished(sourcePath); err == nil && gone {
		logger.Info("source vanished before placement, concurrent attempt handled it")
		return Result{Outcome: OutcomeMissingSource}, nil
	}

	targetPath := filepath.Join(targetDir, filename)

	occupied, err := pathExists(targetPath)
	if err != nil {
		e.metrics.IncPlacementFailures()
		return Result{}, services.Wrap(services.ErrTransient, "placement", "check target slot", targetPath, err)
	}

	if occupied {
		incomingDigest, err := e.hashFile(sourcePath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Info("source vanished before digest, concurrent attempt handled it")
				return Result{Outcome: OutcomeMissingSource}, nil
			}
			return Result{}, e.abortPlacement(ctx, logger, sourcePath, filename, err)
		}
		existingDigest, err := e.hashFile(targetPath)
		if err != nil {
			return Result{}, e.abortPlacement(ctx, logger, sourcePath, filename, err)
		}

		if incomingDigest == existingDigest {
			// Verified duplicate: the occupant stays, the arrival goes.
			if err := os.Remove(sourcePath); err != nil {
				e.metrics.IncPlacementFailures()
				return Result{}, services.Wrap(services.ErrTransient, "placement", "discard duplicate", sourcePath, err)
			}
			logger.Warn("discarded content-identical duplicate",
				logging.String("existing", targetPath))
			e.metrics.IncDuplicatesDiscarded()
			e.record(ctx, logger, filename, store.StatusDuplicate, targetPath, incomingDigest, "")
			return Result{Outcome: OutcomeDuplicate, FinalPath: targetPath}, nil
		}

		ordinalPath, err := nextFreeOrdinal(targetDir, filename)
		if err != nil {
			e.metrics.IncPlacementFailures()
			return Result{}, services.Wrap(services.ErrTransient, "placement", "allocate conflict ordinal", filename, err)
		}
		logger.Info("target occupied by different content, placing under conflict ordinal",
			logging.String("target", ordinalPath))
		if err := e.moveFile(sourcePath, ordinalPath); err != nil {
			return e.quarantine(ctx, logger, sourcePath, filename, ordinalPath, err)
		}
		e.metrics.IncConflictsResolved()
		e.metrics.IncSegmentsPlaced()
		e.record(ctx, logger, filepath.Base(ordinalPath), store.StatusPlaced, ordinalPath, incomingDigest, "")
		return Result{Outcome: OutcomeConflictPlaced, FinalPath: ordinalPath}, nil
	}

	if err := e.moveFile(sourcePath, targetPath); err != nil {
		return e.quarantine(ctx, logger, sourcePath, filename, targetPath, err)
	}
	logger.Info("segment placed", logging.String("target", targetPath))
	e.metrics.IncSegmentsPlaced()
	e.record(ctx, logger, filename, store.StatusPlaced, targetPath, "", "")
	return Result{Outcome: OutcomePlaced, FinalPath: targetPath}, nil
}

// placeUnmatched routes a non-conforming file into the unmatched directory.
// No notification is published for unmatched files.
func (e *Engine) placeUnmatched(ctx context.Context, logger *slog.Logger, sourcePath, filename string) (Result, error) {
	targetPath, err := e.routeToUnmatched(logger, sourcePath, filename)
	if err != nil {
		e.metrics.IncPlacementFailures()
		e.record(ctx, logger, filename, store.StatusFailed, sourcePath, "", err.Error())
		return Result{}, err
	}
	e.metrics.IncUnmatchedRouted()
	e.record(ctx, logger, filename, store.StatusUnmatched, targetPath, "", "")
	return Result{Outcome: OutcomeUnmatched, FinalPath: targetPath}, nil
}

// routeToUnmatched moves a file into the unmatched directory under that
// directory's lock, allocating the next free ordinal when the name is
// already taken. An existing occupant is never replaced.
func (e *Engine) routeToUnmatched(logger *slog.Logger, sourcePath, filename string) (string, error) {
	unmatchedDir := e.cfg.UnmatchedPath()
	if err := os.MkdirAll(unmatchedDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrTransient, "placement", "create unmatched directory", unmatchedDir, err)
	}

	lock := flock.New(filepath.Join(unmatchedDir, lockFilename))
	if err := lock.Lock(); err != nil {
		return "", services.Wrap(services.ErrTransient, "placement", "acquire directory lock", unmatchedDir, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release directory lock", logging.Error(err))
		}
	}()

	targetPath := filepath.Join(unmatchedDir, filename)
	occupied, err := pathExists(targetPath)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "placement", "check unmatched slot", targetPath, err)
	}
	if occupied {
		targetPath, err = nextFreeOrdinal(unmatchedDir, filename)
		if err != nil {
			return "", services.Wrap(services.ErrTransient, "placement", "allocate unmatched ordinal", filename, err)
		}
	}

	if err := e.moveFile(sourcePath, targetPath); err != nil {
		return "", services.Wrap(services.ErrTransient, "placement", "move to unmatched", sourcePath, err)
	}
	return targetPath, nil
}

// abortPlacement handles a digest failure: the source file stays where it is
// for manual inspection.
func (e *Engine) abortPlacement(ctx context.Context, logger *slog.Logger, sourcePath, filename string, cause error) error {
	e.metrics.IncPlacementFailures()
	logger.Error("digest computation failed, aborting placement",
		logging.String("source", sourcePath),
		logging.Error(cause))
	e.record(ctx, logger, filename, store.StatusFailed, sourcePath, "", cause.Error())
	return services.Wrap(services.ErrIntegrity, "placement", "compute digest", sourcePath, cause)
}

// quarantine rescues a file whose archive move failed, using the same
// locked, occupancy-checked sequence as unmatched routing so an earlier
// quarantined file is never replaced. If even the rescue fails the file is
// left untouched at its source path.
func (e *Engine) quarantine(ctx context.Context, logger *slog.Logger, sourcePath, filename, intendedTarget string, cause error) (Result, error) {
	e.metrics.IncPlacementFailures()
	logger.Error("failed to move segment into archive",
		logging.String("source", sourcePath),
		logging.String("target", intendedTarget),
		logging.Error(cause))

	wrapped := services.Wrap(services.ErrTransient, "placement", "move segment", intendedTarget, cause)

	quarantinePath, rescueErr := e.routeToUnmatched(logger, sourcePath, filename)
	if rescueErr != nil {
		logger.Error("quarantine also failed, leaving file at source path",
			logging.String("source", sourcePath),
			logging.Error(rescueErr))
		e.record(ctx, logger, filename, store.StatusFailed, sourcePath, "", cause.Error())
		return Result{}, wrapped
	}

	logger.Warn("segment quarantined to unmatched directory",
		logging.String("quarantine_path", quarantinePath))
	e.record(ctx, logger, filename, store.StatusFailed, quarantinePath, "", cause.Error())
	return Result{Outcome: OutcomeQuarantined, FinalPath: quarantinePath}, wrapped
}

func (e *Engine) record(ctx context.Context, logger *slog.Logger, filename string, status store.Status, path, digest, errorMessage string) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Transition(ctx, filename, status, path, digest, errorMessage); err != nil {
		logger.Warn("failed to persist segment state", logging.Error(err))
	}
}

// nextFreeOrdinal finds the smallest ordinal n >= 1 such that
// {base}-{n}{ext} is unoccupied in dir. Callers must hold the directory
// lock.
func nextFreeOrdinal(dir, filename string) (string, error) {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	for n := 1; n <= maxOrdinalAttempts; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, n, ext))
		occupied, err := pathExists(candidate)
		if err != nil {
			return "", err
		}
		if !occupied {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("exhausted ordinal slots for %s in %s", filename, dir)
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func sourceVanished(path string) (bool, error) {
	exists, err := pathExists(path)
	return !exists, err
}
