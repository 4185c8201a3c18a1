package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStation(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStation() error {
	if c.Station.ID == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/aircheck/config.toml"
		}
		return fmt.Errorf("station.id is required. Set STATION_ID env var or edit %s (create with 'aircheck config init')", defaultPath)
	}
	if c.Station.SegmentDurationSeconds <= 0 {
		return errors.New("station.segment_duration_seconds must be a positive integer")
	}
	if c.Station.SegmentDurationSeconds > 86400 {
		return errors.New("station.segment_duration_seconds must not exceed one day")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.ArchiveDir) == "" {
		return errors.New("paths.archive_dir must be set")
	}
	if strings.ContainsAny(c.Paths.UnmatchedDir, "/\\") {
		return errors.New("paths.unmatched_dir must be a bare directory name, not a path")
	}
	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.ShutdownGraceSeconds <= 0 {
		return errors.New("capture.shutdown_grace_seconds must be positive")
	}
	return nil
}
