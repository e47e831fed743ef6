package backups

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/zentask/internal/backup"
	"github.com/julianstephens/zentask/internal/cli/clitest"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/storage/memory"
)

func TestBackupCreateAndList(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()

	if err := (&BackupListCmd{}).Run(h.Ctx); err != nil {
		t.Fatalf("BackupListCmd.Run() error = %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "No backups found.") {
		t.Errorf("unexpected output: %q", out)
	}

	if err := (&BackupCreateCmd{}).Run(h.Ctx); err != nil {
		t.Fatalf("BackupCreateCmd.Run() error = %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "Backup created") {
		t.Errorf("unexpected output: %q", out)
	}

	if err := (&BackupListCmd{}).Run(h.Ctx); err != nil {
		t.Fatalf("BackupListCmd.Run() error = %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "1 total") {
		t.Errorf("list output = %q", out)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()
	tr := h.Tracker(t)
	if _, err := tr.AddHabit("Read", models.CategoryPersonal); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "export.json")
	if err := (&ExportCmd{Out: path}).Run(h.Ctx); err != nil {
		t.Fatalf("ExportCmd.Run() error = %v", err)
	}
	snap, err := backup.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(snap.Habits) != 1 {
		t.Fatalf("exported habits = %d, want 1", len(snap.Habits))
	}

	tr.ClearLocal()
	if len(tr.Habits()) != 0 {
		t.Fatal("ClearLocal left habits behind")
	}

	if err := (&ImportCmd{File: path}).Run(h.Ctx); err != nil {
		t.Fatalf("ImportCmd.Run() error = %v", err)
	}
	if got := tr.Habits(); len(got) != 1 || got[0].Text != "Read" {
		t.Errorf("habits after import = %+v", got)
	}
	backups, err := h.Ctx.Backups.ListBackups()
	if err != nil || len(backups) != 1 {
		t.Errorf("automatic backups = %d (%v), want 1", len(backups), err)
	}
}

func TestImportDeclined(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()
	h.Ctx.Confirm = func(string) (bool, error) { return false, nil }

	path := filepath.Join(t.TempDir(), "in.json")
	if err := backup.WriteFile(path, models.Snapshot{Habits: []models.MonthlyHabit{{ID: "h1", Text: "Swim"}}}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := (&ImportCmd{File: path}).Run(h.Ctx); err != nil {
		t.Fatalf("ImportCmd.Run() error = %v", err)
	}
	if got := len(h.Tracker(t).Habits()); got != 0 {
		t.Errorf("habits = %d after declining", got)
	}
}

func TestImportMissingFile(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()
	if err := (&ImportCmd{File: filepath.Join(t.TempDir(), "absent.json")}).Run(h.Ctx); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestImportReportsSyncFailure(t *testing.T) {
	h := clitest.New(t)
	h.Login(t, "u1")
	h.Tracker(t)

	path := filepath.Join(t.TempDir(), "in.json")
	if err := backup.WriteFile(path, models.Snapshot{Habits: []models.MonthlyHabit{{ID: "h1", Text: "Swim"}}}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	h.Remote.FailNext(memory.MethodCommit, errors.New("network down"))

	if err := (&ImportCmd{File: path}).Run(h.Ctx); err != nil {
		t.Fatalf("ImportCmd.Run() error = %v", err)
	}
	if !strings.Contains(h.Err.String(), "not synced") {
		t.Errorf("expected a sync warning, got %q", h.Err.String())
	}
	if _, ok := h.Local.Read("u1_", models.KindHabits); !ok {
		t.Error("imported habits missing from local store")
	}
}

func TestClear(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()
	tr := h.Tracker(t)
	if _, err := tr.AddHabit("Read", models.CategoryPersonal); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	if err := (&ClearCmd{}).Run(h.Ctx); err != nil {
		t.Fatalf("ClearCmd.Run() error = %v", err)
	}
	if len(tr.Habits()) != 0 {
		t.Error("habits remain after clear")
	}
	entries, err := os.ReadDir(h.Ctx.Backups.GetBackupDir())
	if err != nil || len(entries) != 1 {
		t.Errorf("backup dir entries = %d (%v), want 1 automatic backup", len(entries), err)
	}
}
