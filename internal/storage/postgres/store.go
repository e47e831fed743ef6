package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/logger"
	"github.com/julianstephens/zentask/internal/migration"
	"github.com/julianstephens/zentask/internal/storage"
	"github.com/julianstephens/zentask/migrations"
)

const (
	maxOpenConns    = 4
	connMaxLifetime = 5 * time.Minute
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// Store is the Remote adapter: per-user JSONB documents in PostgreSQL.
type Store struct {
	connStr string
	db      *sql.DB
}

var _ storage.Remote = (*Store)(nil)

// New pins search_path to the zentask schema unless the connection string
// already sets one. Nothing is dialed until Init or Load.
func New(connStr string) *Store {
	connStr = strings.TrimSpace(connStr)
	if _, ok := connParam(connStr, "search_path"); !ok {
		connStr = withParam(connStr, "search_path", constants.AppName)
	}
	return &Store{connStr: connStr}
}

func isURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// connParam looks up key case-insensitively in a URL query or in DSN-style
// key=value pairs.
func connParam(connStr, key string) (string, bool) {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return "", false
		}
		for k, v := range u.Query() {
			if strings.EqualFold(k, key) && len(v) > 0 {
				return v[0], true
			}
		}
		return "", false
	}
	for _, pair := range strings.Fields(connStr) {
		k, v, ok := strings.Cut(pair, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return v, true
		}
	}
	return "", false
}

func withParam(connStr, key, value string) string {
	if !isURL(connStr) {
		return strings.TrimSpace(connStr + " " + key + "=" + value)
	}
	u, err := url.Parse(connStr)
	if err != nil {
		logger.Warn("Failed to parse Postgres connection URL", "error", err)
		return connStr
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// ValidateConnString accepts URL or DSN connection strings that carry no
// password. It returns false with ErrEmbeddedCredentials or
// ErrInvalidConnectionString otherwise.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if !isURL(connStr) {
		if _, ok := connParam(connStr, "password"); ok {
			return false, ErrEmbeddedCredentials
		}
		return true, nil
	}

	u, err := url.Parse(connStr)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	if _, set := u.User.Password(); set {
		return false, ErrEmbeddedCredentials
	}
	if u.Host == "" && u.User == nil && strings.Trim(u.Path, "/") == "" {
		return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
	}
	return true, nil
}

// Describe names the server and database without credentials.
func (s *Store) Describe() string {
	host, db := "localhost", ""
	if isURL(s.connStr) {
		if u, err := url.Parse(s.connStr); err == nil {
			if u.Host != "" {
				host = u.Host
			}
			db = strings.Trim(u.Path, "/")
		}
	} else {
		if h, ok := connParam(s.connStr, "host"); ok {
			host = h
		}
		db, _ = connParam(s.connStr, "dbname")
	}
	if db == "" {
		return host
	}
	return host + "/" + db
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		if _, ok := connParam(s.connStr, "sslmode"); !ok && strings.Contains(err.Error(), "SSL is not enabled on the server") {
			return nil, fmt.Errorf("failed to connect to %s: %w (hint: add sslmode=disable to the connection string)", s.Describe(), err)
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", s.Describe(), err)
	}
	return db, nil
}

// Init creates the zentask schema and applies pending migrations.
func (s *Store) Init() error {
	if s.db == nil {
		db, err := s.open()
		if err != nil {
			return err
		}
		s.db = db
	}
	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	applied, err := runner.ApplyMigrations(func(msg string) { logger.Info(msg, "store", "remote") })
	if err != nil {
		return fmt.Errorf("failed to run remote migrations: %w", err)
	}
	logger.Debug("Remote store initialized", "server", s.Describe(), "applied", applied)
	return nil
}

// Load connects and refuses schemas newer than this binary knows.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	db, err := s.open()
	if err != nil {
		return err
	}
	s.db = db

	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) runner() (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, sub, migration.DriverPostgres)
}
