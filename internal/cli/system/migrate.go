package system

import (
	"fmt"
	"io/fs"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/migration"
	"github.com/julianstephens/zentask/internal/storage/sqlite"
	"github.com/julianstephens/zentask/migrations"
)

type MigrateCmd struct {
	Remote bool `help:"Also apply pending migrations to the remote store."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	store, ok := ctx.Local.(*sqlite.Store)
	if !ok {
		return fmt.Errorf("migrate command only supports SQLite storage")
	}

	// Load keeps the connection open when only the version check fails.
	if err := store.Load(); err != nil && store.GetDB() == nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	runner, err := sqliteRunner(store)
	if err != nil {
		return err
	}

	count, err := runner.ApplyMigrations(func(msg string) {
		fmt.Fprintln(ctx.Out, msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(ctx.Out, "No migrations to apply. Database is up to date.")
	} else {
		fmt.Fprintf(ctx.Out, "\nSuccessfully applied %d migration(s).\n", count)
	}

	if c.Remote {
		if ctx.Remote == nil {
			return fmt.Errorf("no remote store available")
		}
		if err := ctx.Remote.Init(); err != nil {
			return fmt.Errorf("remote migration failed: %w", err)
		}
		fmt.Fprintln(ctx.Out, "Remote store is up to date.")
	}
	return nil
}

func sqliteRunner(store *sqlite.Store) (*migration.Runner, error) {
	db := store.GetDB()
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(db, subFS, migration.DriverSQLite)
}
