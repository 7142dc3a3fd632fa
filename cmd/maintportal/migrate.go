package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"maintportal/internal/database"
	"maintportal/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply pending migrations for the sqlite or postgres record store.
The filesystem store has no schema and needs no migrations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		if cfg.StoreBackend == store.BackendFS {
			slog.Info("filesystem store has no migrations")
			return nil
		}

		dialect := database.Dialect(cfg.StoreBackend)
		db, err := database.Connect(dialect, cfg.DSN())
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		if err := database.Migrate(db, dialect); err != nil {
			return err
		}
		slog.Info("migrations applied", "dialect", dialect)
		return nil
	},
}
