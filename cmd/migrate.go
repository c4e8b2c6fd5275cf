package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/frahmantamala/shopping-list/db"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Run the SQL migrations under db/migrations",
	}
	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  runGoose("up"),
	}
	migrateDownCmd = &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE:  runGoose("down"),
	}
	migrateStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the applied state of every migration",
		RunE:  runGoose("status"),
	}
	migrateDir string
)

func init() {
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "", "read migrations from this directory instead of the embedded set")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

func runGoose(command string) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		sqlDB, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
		if err != nil {
			return fmt.Errorf("goose: failed to open DB: %w", err)
		}
		defer sqlDB.Close()

		goose.SetTableName("schema_migrations")

		dir := migrateDir
		if dir == "" {
			goose.SetBaseFS(db.Migrations)
			dir = db.MigrationsDir
		} else {
			goose.SetBaseFS(os.DirFS("."))
		}

		if err := goose.RunContext(ctx, command, sqlDB, dir); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}
		return nil
	}
}
