package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStation()
	c.normalizeAMQP()
	c.normalizeLogging()
	if c.Capture.ShutdownGraceSeconds <= 0 {
		c.Capture.ShutdownGraceSeconds = defaultShutdownGraceSeconds
	}
	if c.Placement.SweepIntervalSeconds < 0 {
		c.Placement.SweepIntervalSeconds = 0
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ArchiveDir, err = expandPath(c.Paths.ArchiveDir); err != nil {
		return fmt.Errorf("paths.archive_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.UnmatchedDir = strings.TrimSpace(c.Paths.UnmatchedDir)
	if c.Paths.UnmatchedDir == "" {
		c.Paths.UnmatchedDir = defaultUnmatchedDir
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeStation() {
	c.Station.ID = strings.ToUpper(strings.TrimSpace(c.Station.ID))
	if c.Station.ID == "" {
		if value, ok := os.LookupEnv("STATION_ID"); ok {
			c.Station.ID = strings.ToUpper(strings.TrimSpace(value))
		}
	}
	c.Station.StreamURL = strings.TrimSpace(c.Station.StreamURL)
	if c.Station.StreamURL == "" {
		if value, ok := os.LookupEnv("STREAM_URL"); ok {
			c.Station.StreamURL = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeAMQP() {
	c.AMQP.Host = strings.TrimSpace(c.AMQP.Host)
	if c.AMQP.Host == "" {
		if value, ok := os.LookupEnv("RABBITMQ_HOST"); ok {
			c.AMQP.Host = strings.TrimSpace(value)
		}
	}
	if c.AMQP.Port <= 0 {
		c.AMQP.Port = defaultAMQPPort
	}
	c.AMQP.Exchange = strings.TrimSpace(c.AMQP.Exchange)
	if c.AMQP.Exchange == "" {
		c.AMQP.Exchange = defaultAMQPExchange
	}
	c.AMQP.Queue = strings.TrimSpace(c.AMQP.Queue)
	if c.AMQP.Queue == "" {
		c.AMQP.Queue = defaultAMQPQueue
	}
	c.AMQP.Username = strings.TrimSpace(c.AMQP.Username)
	if c.AMQP.Username == "" {
		if value, ok := os.LookupEnv("RABBITMQ_USERNAME"); ok {
			c.AMQP.Username = strings.TrimSpace(value)
		}
	}
	if c.AMQP.Password == "" {
		if value, ok := os.LookupEnv("RABBITMQ_PASSWORD"); ok {
			c.AMQP.Password = value
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
