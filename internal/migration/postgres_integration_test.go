package migration

import (
	"database/sql"
	"io/fs"
	"os"
	"testing"

	_ "github.com/lib/pq"

	"github.com/julianstephens/zentask/migrations"
)

// openPostgres connects to POSTGRES_TEST_URL, for example
// postgres://zentask@localhost:5432/zentask_test?sslmode=disable.
func openPostgres(t *testing.T) *sql.DB {
	t.Helper()
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open postgres database: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping postgres database: %v", err)
	}

	drop := func() {
		for _, table := range []string{"user_documents", "user_profiles", "schema_version", "broken"} {
			_, _ = db.Exec("DROP TABLE IF EXISTS " + table)
		}
	}
	drop()
	t.Cleanup(func() {
		drop()
		db.Close()
	})
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(
		"SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1)",
		name,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("failed to look up table %s: %v", name, err)
	}
	return exists
}

func TestPostgresEmbeddedMigrations(t *testing.T) {
	db := openPostgres(t)
	sub, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		t.Fatalf("fs.Sub() error = %v", err)
	}

	runner, err := NewRunner(db, sub, DriverPostgres)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	applied, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations() error = %v", err)
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		t.Fatalf("GetLatestVersion() error = %v", err)
	}
	if applied != latest {
		t.Errorf("applied %d migrations, want %d", applied, latest)
	}

	for _, table := range []string{"user_documents", "user_profiles"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s missing after migrations", table)
		}
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("ValidateVersion() error = %v", err)
	}

	again, err := runner.ApplyMigrations(nil)
	if err != nil || again != 0 {
		t.Errorf("second ApplyMigrations() = %d, %v; want 0, nil", again, err)
	}
}

func TestPostgresUsernameIndexIsCaseInsensitive(t *testing.T) {
	db := openPostgres(t)
	sub, _ := fs.Sub(migrations.FS, "postgres")
	runner, err := NewRunner(db, sub, DriverPostgres)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("ApplyMigrations() error = %v", err)
	}

	insert := "INSERT INTO user_profiles (user_id, username, body) VALUES ($1, $2, '{}'::jsonb)"
	if _, err := db.Exec(insert, "u1", "zen_master"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := db.Exec(insert, "u2", "Zen_Master"); err == nil {
		t.Error("a username differing only in case was accepted")
	}
	if _, err := db.Exec(insert, "u3", ""); err != nil {
		t.Errorf("empty username rejected: %v", err)
	}
	if _, err := db.Exec(insert, "u4", ""); err != nil {
		t.Errorf("second empty username rejected: %v", err)
	}
}

func TestPostgresMigrationRollbackOnError(t *testing.T) {
	db := openPostgres(t)

	runner, err := NewRunner(db, setupTestMigrations(map[string]string{
		"001_bad.sql": `
			CREATE TABLE broken (id SERIAL PRIMARY KEY);
			THIS IS INVALID SQL;
		`,
	}), DriverPostgres)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Fatal("ApplyMigrations should have failed with invalid SQL")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion() error = %v", err)
	}
	if version != 0 {
		t.Errorf("version = %d after failed migration, want 0", version)
	}
	if tableExists(t, db, "broken") {
		t.Error("table from the failed migration survived the rollback")
	}
}
