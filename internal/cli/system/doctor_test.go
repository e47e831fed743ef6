package system

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/cli/clitest"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/storage/sqlite"
)

func setupDoctor(t *testing.T) (*cli.Context, *sqlite.Store, *bytes.Buffer) {
	t.Helper()
	ctx, _, out := setupSQLite(t)
	if err := ctx.Local.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return ctx, ctx.Local.(*sqlite.Store), out
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, _, _ := setupDoctor(t)

	// Missing backups is a warning, not a failure
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_ReportsWarningsAndSkips(t *testing.T) {
	ctx, _, out := setupDoctor(t)

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor command failed: %v", err)
	}
	for _, want := range []string{
		"⚠ Backups present: WARNING",
		"⊘ Data validation: SKIPPED (no active session)",
		"⊘ Remote store: SKIPPED (not configured)",
		"All diagnostics passed!",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDoctorCmd_WithBackupsAndSession(t *testing.T) {
	ctx, _, out := setupDoctor(t)
	ctx.Resolver.ContinueAsGuest()
	tr, err := ctx.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := tr.AddHabit("Read", models.CategoryPersonal); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	if _, err := ctx.Backups.CreateBackup(tr.Export()); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed with backups present: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Data validation: OK") || !strings.Contains(out.String(), "✓ Backups present: OK") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, store, _ := setupDoctor(t)

	db := store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert corrupted schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail with corrupted schema")
	}
}

func TestCheckMigrationsComplete_Incomplete(t *testing.T) {
	ctx, store, _ := setupDoctor(t)

	db := store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (0)"); err != nil {
		t.Fatalf("failed to insert downgraded schema version: %v", err)
	}

	if _, err := checkMigrationsComplete(ctx); err == nil {
		t.Error("checkMigrationsComplete should fail with incomplete migrations")
	}
}

func TestCheckRemote(t *testing.T) {
	h := clitest.Offline(t)
	h.Ctx.Config.RemoteURL = "postgres://zen@localhost/zentask"
	h.Ctx.Config.RemoteSource = "file"
	if _, err := checkRemote(h.Ctx); err == nil {
		t.Error("configured but unreachable remote should fail")
	}

	online := clitest.New(t)
	online.Ctx.Config.RemoteURL = "postgres://zen@localhost/zentask"
	if skip, err := checkRemote(online.Ctx); skip != "" || err != nil {
		t.Errorf("checkRemote() = %q, %v; want OK", skip, err)
	}
}

func TestCheckClock(t *testing.T) {
	if err := checkClock(time.Now()); err != nil {
		t.Errorf("clock check failed: %v", err)
	}
	if err := checkClock(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Error("clock check accepted 1999")
	}
}
