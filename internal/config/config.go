package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	// ArchiveDir is the archive root. The capture process writes
	// provisional files into its top level; placed segments live in dated
	// subdirectories beneath it.
	ArchiveDir string `toml:"archive_dir"`
	// UnmatchedDir is the subdirectory name (under ArchiveDir) that
	// receives non-conforming and quarantined files.
	UnmatchedDir string `toml:"unmatched_dir"`
	LogDir       string `toml:"log_dir"`
	APIBind      string `toml:"api_bind"`
}

// Station describes the stream being archived.
type Station struct {
	// ID is the short station identifier embedded in filenames, uppercase.
	ID        string `toml:"id"`
	StreamURL string `toml:"stream_url"`
	// SegmentDurationSeconds is the rollover interval; capture starts on
	// the next exact multiple of it.
	SegmentDurationSeconds int `toml:"segment_duration_seconds"`
}

// Capture contains tuning for the supervised ffmpeg process.
type Capture struct {
	// ShutdownGraceSeconds bounds the wait between SIGTERM and SIGKILL of
	// the capture process group.
	ShutdownGraceSeconds int `toml:"shutdown_grace_seconds"`
}

// Placement contains tuning for the placement engine.
type Placement struct {
	// SweepIntervalSeconds controls how often the capture directory is
	// re-scanned for finalized files the watcher missed. Zero disables
	// the sweep.
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"`
}

// AMQP contains connection parameters for the notification sink. An empty
// host disables publishing.
type AMQP struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Exchange string `toml:"exchange"`
	Queue    string `toml:"queue"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the archiver.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Station   Station   `toml:"station"`
	Capture   Capture   `toml:"capture"`
	Placement Placement `toml:"placement"`
	AMQP      AMQP      `toml:"amqp"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/aircheck/config.toml")
}

// Load locates, parses, and validates a configuration file. A .env file in
// the working directory is applied first so broker credentials can come from
// the environment. The returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("aircheck.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories daemon operation requires.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ArchiveDir, c.Paths.LogDir, c.UnmatchedPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// UnmatchedPath returns the absolute quarantine directory.
func (c *Config) UnmatchedPath() string {
	return filepath.Join(c.Paths.ArchiveDir, c.Paths.UnmatchedDir)
}

// FFmpegBinary returns the capture executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
