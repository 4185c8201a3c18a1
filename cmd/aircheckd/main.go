// Command aircheckd runs the stream archiver daemon: the capture monitor,
// the placement watcher, and the status API.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"aircheck/internal/config"
	"aircheck/internal/daemon"
	"aircheck/internal/logging"
	"aircheck/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	journal, err := store.Open(cfg)
	if err != nil {
		logger.Error("open segment journal", logging.Error(err))
		os.Exit(1)
	}

	d, err := daemon.New(cfg, journal, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		os.Exit(1)
	}

	err = d.Wait(ctx)
	d.Stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("aircheckd exiting on failure", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("aircheckd shutting down")
}
