package migration

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestMigrations(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewRunnerRejectsUnknownDriver(t *testing.T) {
	db := openSQLite(t)
	if _, err := NewRunner(db, fstest.MapFS{}, Driver("mysql")); err == nil {
		t.Error("expected error for unknown driver")
	}
	if _, err := NewRunner(nil, fstest.MapFS{}, DriverSQLite); err == nil {
		t.Error("expected error for nil db")
	}
}

func TestApplyMigrationsSQLite(t *testing.T) {
	db := openSQLite(t)
	runner, err := NewRunner(db, setupTestMigrations(map[string]string{
		"001_init.sql":  "CREATE TABLE kv (key TEXT PRIMARY KEY, value TEXT);",
		"002_flags.sql": "CREATE TABLE flags (key TEXT PRIMARY KEY, value TEXT);",
		"README.md":     "ignored",
	}), DriverSQLite)
	if err != nil {
		t.Fatal(err)
	}

	var logs []string
	count, err := runner.ApplyMigrations(func(s string) { logs = append(logs, s) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 migrations applied, got %d", count)
	}
	if len(logs) == 0 {
		t.Error("expected progress messages")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil || version != 2 {
		t.Errorf("GetCurrentVersion() = %d, %v; want 2", version, err)
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("ValidateVersion() error = %v", err)
	}

	count, err = runner.ApplyMigrations(nil)
	if err != nil || count != 0 {
		t.Errorf("second run = %d, %v; want no-op", count, err)
	}
}

func TestMigrationRollbackOnError(t *testing.T) {
	db := openSQLite(t)
	runner, err := NewRunner(db, setupTestMigrations(map[string]string{
		"001_bad.sql": "CREATE TABLE kv (key TEXT); THIS IS INVALID SQL;",
	}), DriverSQLite)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Fatal("ApplyMigrations should have failed with invalid SQL")
	}
	version, err := runner.GetCurrentVersion()
	if err != nil || version != 0 {
		t.Errorf("version = %d, %v; want 0 after rollback", version, err)
	}
}

func TestReadMigrationFilesErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{name: "no underscore", files: map[string]string{"001.sql": ""}, want: "invalid migration filename"},
		{name: "not a number", files: map[string]string{"abc_init.sql": ""}, want: "invalid version number"},
		{name: "zero version", files: map[string]string{"000_init.sql": ""}, want: "at least 1"},
		{name: "duplicate", files: map[string]string{"001_a.sql": "", "1_b.sql": ""}, want: "duplicate migration version"},
	}

	db := openSQLite(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, err := NewRunner(db, setupTestMigrations(tt.files), DriverSQLite)
			if err != nil {
				t.Fatal(err)
			}
			_, err = runner.ReadMigrationFiles()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ReadMigrationFiles() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	db := openSQLite(t)
	runner, err := NewRunner(db, setupTestMigrations(map[string]string{
		"001_init.sql": "CREATE TABLE kv (key TEXT);",
	}), DriverSQLite)
	if err != nil {
		t.Fatal(err)
	}
	if err := runner.SetVersion(5); err != nil {
		t.Fatal(err)
	}
	if err := runner.ValidateVersion(); err == nil {
		t.Error("expected error for newer schema")
	}
}
