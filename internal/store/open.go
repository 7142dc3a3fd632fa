package store

import (
	"fmt"
	"log/slog"

	"maintportal/internal/database"
)

// Backend names accepted by Open.
const (
	BackendFS       = "fs"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	DataDir string // fs
	DSN     string // sqlite path or postgres URL
}

// Open connects the configured backend, running migrations for SQL ones.
func Open(opts Options) (Records, error) {
	switch opts.Backend {
	case BackendFS:
		s, err := NewFSStore(opts.DataDir)
		if err != nil {
			return nil, err
		}
		slog.Info("record store ready", "backend", opts.Backend, "dir", opts.DataDir)
		return s, nil
	case BackendSQLite, BackendPostgres:
		dialect := database.Dialect(opts.Backend)
		db, err := database.Connect(dialect, opts.DSN)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db, dialect); err != nil {
			db.Close()
			return nil, err
		}
		slog.Info("record store ready", "backend", opts.Backend)
		return NewSQLStore(db, dialect), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
}
