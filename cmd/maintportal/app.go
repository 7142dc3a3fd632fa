package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"maintportal/internal/catalog"
	"maintportal/internal/config"
	"maintportal/internal/store"
)

// setup loads the configuration and installs the default logger: text in
// development, JSON everywhere else.
func setup() (*config.Config, error) {
	// Until the configuration is known, log at info as text.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	return cfg, nil
}

// loadCatalog reads the category configuration. A missing file leaves
// every category unconfigured rather than failing.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.CategoryConfig)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("category config not found, no category will be ranked", "path", cfg.CategoryConfig)
		return catalog.New(nil), nil
	}
	return cat, err
}

// openStore opens the configured record store.
func openStore(cfg *config.Config) (store.Records, error) {
	opts := store.Options{Backend: cfg.StoreBackend, DataDir: cfg.DataDir}
	if cfg.StoreBackend != store.BackendFS {
		opts.DSN = cfg.DSN()
	}
	return store.Open(opts)
}
