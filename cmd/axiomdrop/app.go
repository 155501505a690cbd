package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/axiom-drop/internal/config"
	"github.com/vovakirdan/axiom-drop/internal/core"
	"github.com/vovakirdan/axiom-drop/internal/level"
	"github.com/vovakirdan/axiom-drop/internal/platform/tui"
	"github.com/vovakirdan/axiom-drop/internal/progress"
	"github.com/vovakirdan/axiom-drop/internal/storage"
)

// loadConfig loads the configuration and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagFPS > 0 {
		cfg.Host.TickRate = flagFPS
		cfg.Host.BroadcastRate = min(cfg.Host.BroadcastRate, flagFPS)
	}
	return cfg, cfg.Validate()
}

// newLogger builds the root logger. Interactive commands pass quiet so the
// log stays out of the alternate screen unless --log-file is set.
func newLogger(prefix string, quiet bool) (*log.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)
	if quiet {
		w = io.Discard
	}
	if flagLogFile != "" {
		path, err := config.ExpandHome(flagLogFile)
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		w, closer = f, f
	}

	lvl, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           lvl,
	})
	return logger, closer, nil
}

// terminalSize returns the terminal size, or 80x24 when not attached to one.
func terminalSize() (int, int) {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return width, height
}

// localEnv opens the local player's environment. Without a database the
// game still runs, keeping progress in memory.
func localEnv(cfg config.Config, logger *log.Logger) (*tui.Env, func(), error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open progress database, progress will not be saved", "error", err)
		fmt.Fprintf(os.Stderr, "Warning: could not open progress database: %v\n", err)
		store = nil
	}

	var kv progress.KV = progress.NewMemoryKV()
	if store != nil {
		kv = store
	}
	svc, err := progress.NewService(kv, "")
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}

	env := &tui.Env{
		Config:   cfg,
		Catalog:  level.NewCatalog(cfg.Viewport),
		Progress: svc,
		Store:    store,
		Logger:   logger,
	}
	cleanup := func() {
		if store != nil {
			store.Close()
		}
	}
	return env, cleanup, nil
}

// runtimeConfig sizes the runtime config to the current terminal.
func runtimeConfig(cfg config.Config) core.RuntimeConfig {
	w, h := terminalSize()
	return cfg.RuntimeConfig(w, h)
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
