package system

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/storage/sqlite"
	"github.com/julianstephens/zentask/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsStore skips the check when the local store is unreachable.
	needsStore bool
	// warnOnly reports a failure without failing the run.
	warnOnly bool
	run      func(ctx *cli.Context) (skip string, err error)
}

var checks = []check{
	{name: "Schema version", needsStore: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsStore: true, run: checkMigrationsComplete},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Data validation", needsStore: true, run: checkValidation},
	{name: "Clock", run: func(*cli.Context) (string, error) { return "", checkClock(time.Now()) }},
	{name: "Remote store", run: checkRemote},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	out := ctx.Out
	fmt.Fprintln(out, "Running diagnostics...")
	fmt.Fprintln(out)

	hasError := false
	reachable := true
	if err := checkStoreReachable(ctx); err != nil {
		fmt.Fprintf(out, "✗ Local store reachable: FAIL\n   Error: %v\n", err)
		hasError = true
		reachable = false
	} else {
		fmt.Fprintln(out, "✓ Local store reachable: OK")
	}

	for _, c := range checks {
		if c.needsStore && !reachable {
			fmt.Fprintf(out, "⊘ %s: SKIPPED (local store not reachable)\n", c.name)
			continue
		}
		skip, err := c.run(ctx)
		switch {
		case skip != "":
			fmt.Fprintf(out, "⊘ %s: SKIPPED (%s)\n", c.name, skip)
		case err != nil && c.warnOnly:
			fmt.Fprintf(out, "⚠ %s: WARNING\n   %v\n", c.name, err)
		case err != nil:
			fmt.Fprintf(out, "✗ %s: FAIL\n   Error: %v\n", c.name, err)
			hasError = true
		default:
			fmt.Fprintf(out, "✓ %s: OK\n", c.name)
		}
	}

	fmt.Fprintln(out)
	if hasError {
		fmt.Fprintln(out, "Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Fprintln(out, "All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Local.Load(); err != nil {
		return fmt.Errorf("failed to load local store: %w", err)
	}
	if store, ok := ctx.Local.(*sqlite.Store); ok {
		db := store.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func schemaVersions(ctx *cli.Context) (current, latest int, skip string, err error) {
	store, ok := ctx.Local.(*sqlite.Store)
	if !ok {
		return 0, 0, "no schema for this backend", nil
	}
	runner, err := sqliteRunner(store)
	if err != nil {
		return 0, 0, "", err
	}
	if current, err = runner.GetCurrentVersion(); err != nil {
		return 0, 0, "", fmt.Errorf("failed to get current schema version: %w", err)
	}
	if latest, err = runner.GetLatestVersion(); err != nil {
		return 0, 0, "", fmt.Errorf("failed to get latest schema version: %w", err)
	}
	return current, latest, "", nil
}

func checkSchemaVersion(ctx *cli.Context) (string, error) {
	current, latest, skip, err := schemaVersions(ctx)
	if skip != "" || err != nil {
		return skip, err
	}
	if current > latest {
		return "", fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return "", nil
}

func checkMigrationsComplete(ctx *cli.Context) (string, error) {
	current, latest, skip, err := schemaVersions(ctx)
	if skip != "" || err != nil {
		return skip, err
	}
	if current < latest {
		return "", fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'zentask migrate')", current, latest)
	}
	return "", nil
}

func checkBackupsPresent(ctx *cli.Context) (string, error) {
	backups, err := ctx.Backups.ListBackups()
	if err != nil {
		return "", fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return "", fmt.Errorf("no backups found - consider creating one with 'zentask backup create'")
	}
	return "", nil
}

func checkValidation(ctx *cli.Context) (string, error) {
	if !ctx.Resolver.Current().Ready() {
		return "no active session", nil
	}
	t, err := ctx.Open()
	if err != nil {
		return "", err
	}
	report := validation.New().ValidateSnapshot(t.Export())
	if report.HasConflicts() {
		return "", fmt.Errorf("%d conflict(s):\n%s", len(report.Conflicts), strings.TrimSpace(report.FormatReport()))
	}
	return "", nil
}

func checkClock(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkRemote(ctx *cli.Context) (string, error) {
	if !ctx.Config.HasRemote() {
		return "not configured", nil
	}
	if ctx.Remote == nil {
		return "", fmt.Errorf("configured via %s but unreachable; changes stay local", ctx.Config.RemoteSource)
	}
	return "", nil
}
