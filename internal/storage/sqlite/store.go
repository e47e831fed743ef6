package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/zentask/internal/logger"
	"github.com/julianstephens/zentask/internal/migration"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/storage"
	"github.com/julianstephens/zentask/migrations"
)

// Store is the Local adapter backed by a SQLite file.
type Store struct {
	path string
	db   *sql.DB
}

var (
	_ storage.Local           = (*Store)(nil)
	_ storage.NamespaceLister = (*Store)(nil)
)

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

// Init creates the database file if needed and applies pending migrations.
func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// modernc.org/sqlite serialises writers per file; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	s.db = db

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.ApplyMigrations(func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens an existing database and checks its schema version.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'zentask init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	s.db = db

	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.DriverSQLite)
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection, or nil before Init/Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) Read(namespace string, kind models.Kind) ([]byte, bool) {
	if s.db == nil {
		logger.Warn("Local read before load", "namespace", namespace, "kind", kind)
		return nil, false
	}
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE namespace = ? AND kind = ?", namespace, string(kind)).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Warn("Local read failed", "namespace", namespace, "kind", kind, "error", err)
		}
		return nil, false
	}
	return []byte(value), true
}

func (s *Store) Write(namespace string, kind models.Kind, value []byte) {
	if s.db == nil {
		logger.Warn("Local write before load", "namespace", namespace, "kind", kind)
		return
	}
	_, err := s.db.Exec(`
		INSERT INTO kv (namespace, kind, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, kind) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, string(kind), string(value), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		logger.Error("Local write failed", "namespace", namespace, "kind", kind, "error", err)
	}
}

func (s *Store) Remove(namespace string, kind models.Kind) {
	if s.db == nil {
		return
	}
	if _, err := s.db.Exec("DELETE FROM kv WHERE namespace = ? AND kind = ?", namespace, string(kind)); err != nil {
		logger.Error("Local remove failed", "namespace", namespace, "kind", kind, "error", err)
	}
}

func (s *Store) GetFlag(key string) (string, bool) {
	if s.db == nil {
		return "", false
	}
	var value string
	err := s.db.QueryRow("SELECT value FROM flags WHERE key = ?", key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Warn("Flag read failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func (s *Store) SetFlag(key, value string) {
	if s.db == nil {
		return
	}
	_, err := s.db.Exec(`
		INSERT INTO flags (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		logger.Error("Flag write failed", "key", key, "error", err)
	}
}

func (s *Store) ClearFlag(key string) {
	if s.db == nil {
		return
	}
	if _, err := s.db.Exec("DELETE FROM flags WHERE key = ?", key); err != nil {
		logger.Error("Flag clear failed", "key", key, "error", err)
	}
}

// Namespaces lists the namespaces with at least one stored category.
func (s *Store) Namespaces() ([]string, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}
	rows, err := s.db.Query("SELECT DISTINCT namespace FROM kv ORDER BY namespace")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	return out, rows.Err()
}
