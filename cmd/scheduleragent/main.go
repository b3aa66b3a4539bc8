package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/javiermolinar/scheduleragent/internal/cliagent"
	"github.com/javiermolinar/scheduleragent/internal/config"
	"github.com/javiermolinar/scheduleragent/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dbDir := filepath.Dir(cfg.Storage.DBPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	s, err := store.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() { _ = s.Close() }()

	app := cliagent.NewApp(s, cfg, nil)
	return app.Execute()
}
