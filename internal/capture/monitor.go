package capture

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"aircheck/internal/config"
	"aircheck/internal/logging"
	"aircheck/internal/metrics"
	"aircheck/internal/segment"
	"aircheck/internal/services"
	"aircheck/internal/store"
)

const diagnosticBufferSize = 1024 * 1024

// Monitor owns one capture process for the configured station.
type Monitor struct {
	cfg     *config.Config
	journal *store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	binary string
	now    func() time.Time
}

// NewMonitor constructs the capture monitor. The journal and metrics may be
// nil.
func NewMonitor(cfg *config.Config, journal *store.Store, logger *slog.Logger, m *metrics.Metrics) *Monitor {
	return &Monitor{
		cfg:     cfg,
		journal: journal,
		logger:  logging.NewComponentLogger(logger, "capture"),
		metrics: m,
		binary:  cfg.FFmpegBinary(),
		now:     time.Now,
	}
}

// Run starts the capture process at the next segment boundary and supervises
// it until it exits or ctx is cancelled. A non-zero exit is returned as an
// error; restart policy belongs to whatever supervises this process.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.waitForBoundary(ctx); err != nil {
		return err
	}

	pattern := segment.CapturePattern(m.cfg.Paths.ArchiveDir, m.cfg.Station.ID)
	cmd := exec.Command(m.binary, captureArgs(m.cfg.Station.StreamURL, m.cfg.Station.SegmentDurationSeconds, pattern)...)
	// Own process group so termination reaches ffmpeg's children too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "capture", "open diagnostic stream", m.binary, err)
	}
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, "capture", "start capture process", m.binary, err)
	}
	m.logger.Info("capture process started",
		logging.Int("pid", cmd.Process.Pid),
		logging.String("station", m.cfg.Station.ID),
		logging.String("pattern", pattern),
		logging.Int("segment_seconds", m.cfg.Station.SegmentDurationSeconds))

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		m.readDiagnostics(ctx, stderr)
	}()

	// Wait must not run until the pipe reader has drained, or the pipe is
	// closed out from under the scanner.
	waitErr := make(chan error, 1)
	go func() {
		<-readerDone
		waitErr <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		m.terminate(cmd, waitErr)
		return ctx.Err()
	case err := <-waitErr:
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "capture", "supervise capture process", "capture process exited abnormally", err)
		}
		m.logger.Warn("capture process exited cleanly, a final provisional segment may remain")
		return nil
	}
}

// waitForBoundary sleeps until the wall clock reaches the next exact
// multiple of the segment duration, so segment start times line up across
// restarts.
func (m *Monitor) waitForBoundary(ctx context.Context) error {
	duration := time.Duration(m.cfg.Station.SegmentDurationSeconds) * time.Second
	now := m.now().UTC()
	start := nextBoundary(now, duration)
	wait := start.Sub(now)
	if wait <= 0 {
		return nil
	}
	m.logger.Info("waiting for segment boundary",
		logging.Duration("wait", wait),
		logging.String("start_at", start.Format(time.RFC3339)))
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBoundary(now time.Time, duration time.Duration) time.Time {
	aligned := now.Truncate(duration)
	if aligned.Equal(now) {
		return now
	}
	return aligned.Add(duration)
}

func captureArgs(streamURL string, segmentSeconds int, pattern string) []string {
	return []string{
		"-loglevel", "verbose",
		"-i", streamURL,
		"-map", "0:a",
		"-c:a", "copy",
		"-f", "segment",
		"-segment_format", "mp3",
		"-strftime", "1",
		"-segment_time", strconv.Itoa(segmentSeconds),
		"-segment_time_metadata", "1",
		pattern,
	}
}

func (m *Monitor) readDiagnostics(ctx context.Context, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), diagnosticBufferSize)
	active := ""
	for scanner.Scan() {
		line := scanner.Text()
		m.logger.Debug("ffmpeg", logging.String("line", line))
		active = m.handleLine(ctx, line, active)
	}
	if err := scanner.Err(); err != nil {
		m.logger.Warn("diagnostic stream read error", logging.Error(err))
	}
}

func (m *Monitor) handleLine(ctx context.Context, line, active string) string {
	event, next := Classify(line, active)
	switch event.Kind {
	case EventOpened:
		if event.Stale != "" {
			m.logger.Warn("previous segment never reported closed, finalizing it now",
				logging.String(logging.FieldSegment, filepath.Base(event.Stale)))
			m.finalize(ctx, event.Stale)
		}
		m.logger.Info("segment opened",
			logging.String(logging.FieldSegment, filepath.Base(event.Path)))
		m.track(ctx, event.Path)
	case EventClosed:
		m.finalize(ctx, event.Path)
	case EventTitle:
		m.logger.Info("stream title update", logging.String("title", event.Title))
	}
	return next
}

func (m *Monitor) track(ctx context.Context, provisionalPath string) {
	if m.journal == nil {
		return
	}
	if _, err := m.journal.Track(ctx, m.cfg.Station.ID, journalName(provisionalPath), provisionalPath, store.StatusRecording); err != nil {
		m.logger.Warn("failed to persist segment state", logging.Error(err))
	}
}

// finalize renames a closed provisional file to its final extension. On
// rename failure the provisional file is left in place for manual recovery;
// finalization is not retried here.
func (m *Monitor) finalize(ctx context.Context, provisionalPath string) {
	finalPath, ok := segment.FinalPath(provisionalPath)
	if !ok {
		m.logger.Warn("closed file does not carry the provisional extension, skipping",
			logging.String("path", provisionalPath))
		return
	}
	if err := os.Rename(provisionalPath, finalPath); err != nil {
		m.logger.Error("failed to finalize segment, provisional file left in place",
			logging.String("path", provisionalPath),
			logging.Error(err))
		return
	}
	m.logger.Info("segment finalized",
		logging.String(logging.FieldSegment, filepath.Base(finalPath)))
	m.metrics.IncSegmentsFinalized()
	if m.journal != nil {
		if err := m.journal.Transition(ctx, journalName(provisionalPath), store.StatusClosed, finalPath, "", ""); err != nil {
			m.logger.Warn("failed to persist segment state", logging.Error(err))
		}
	}
}

// journalName is the final-form filename used as the journal key for a
// segment, so the recording and placed rows line up.
func journalName(provisionalPath string) string {
	if finalPath, ok := segment.FinalPath(provisionalPath); ok {
		return filepath.Base(finalPath)
	}
	return filepath.Base(provisionalPath)
}

// terminate forwards SIGTERM to the capture process group, waits out the
// configured grace period, then escalates to SIGKILL.
func (m *Monitor) terminate(cmd *exec.Cmd, waitErr <-chan error) {
	pgid := cmd.Process.Pid
	m.logger.Info("stopping capture process group", logging.Int("pgid", pgid))
	if err := unix.Kill(-pgid, unix.SIGTERM); err != nil {
		m.logger.Warn("failed to signal capture process group", logging.Error(err))
	}

	grace := time.Duration(m.cfg.Capture.ShutdownGraceSeconds) * time.Second
	select {
	case <-waitErr:
		m.logger.Info("capture process exited gracefully")
	case <-time.After(grace):
		m.logger.Warn("grace period elapsed, killing capture process group",
			logging.Duration("grace", grace))
		_ = unix.Kill(-pgid, unix.SIGKILL)
		<-waitErr
	}
}
