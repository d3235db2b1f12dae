package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/devmetrics/internal/adapters/turso"
	"github.com/emiliopalmerini/devmetrics/internal/config"
	"github.com/emiliopalmerini/devmetrics/internal/migrate"
)

var flagMigrateForce bool

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations for the libsql store backend.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).
The file backend has no schema and needs no migration.

Examples:
  devmetrics migrate             # Run all pending migrations
  devmetrics migrate 0           # Rollback all migrations
  devmetrics migrate 1 --force   # Mark version 1 as applied and clear the dirty flag`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&flagMigrateForce, "force", false, "set the version without running migrations")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if app.Config.StoreBackend != config.BackendLibsql {
		fmt.Fprintf(out, "Store backend is %q, no migration needed\n", app.Config.StoreBackend)
		return nil
	}

	target := -1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version: %s", args[0])
		}
		target = v
	}
	if flagMigrateForce && target < 0 {
		return fmt.Errorf("--force requires a version")
	}

	db, err := turso.Open(app.Config.DatabaseURL, app.Config.AuthToken)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m := migrate.New(db, app.Log)

	if flagMigrateForce {
		if err := m.Force(ctx, target); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
		fmt.Fprintf(out, "Forced version %d\n", target)
		return nil
	}

	current, _, err := m.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	fmt.Fprintf(out, "Current version: %d\n", current)

	var n int
	if target >= 0 && target < current {
		n, err = m.DownTo(ctx, target)
	} else {
		n, err = m.UpTo(ctx, target)
	}
	if err != nil {
		return err
	}

	if n == 0 {
		fmt.Fprintln(out, "No migrations to run")
		return nil
	}
	current, _, err = m.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	fmt.Fprintf(out, "Applied %d migration(s), now at version %d\n", n, current)
	return nil
}
