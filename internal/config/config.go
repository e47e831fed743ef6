// Package config loads zentask settings from an optional YAML file and
// ZENTASK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/keyring"
	"github.com/julianstephens/zentask/internal/logger"
	"github.com/julianstephens/zentask/internal/storage/postgres"
	zsync "github.com/julianstephens/zentask/internal/sync"
	"github.com/julianstephens/zentask/internal/utils"
)

const (
	EnvPrefix      = "ZENTASK"
	ConfigFileName = "config.yaml"
)

// Remote connection string sources, in precedence order.
const (
	SourceEnv     = "env"
	SourceKeyring = "keyring"
	SourceFile    = "file"
)

type Sync struct {
	Debounce        time.Duration             `mapstructure:"debounce"`
	Timeout         time.Duration             `mapstructure:"timeout"`
	MigrationPolicy constants.MigrationPolicy `mapstructure:"migration_policy"`
}

type Backup struct {
	Max int `mapstructure:"max"`
}

type Config struct {
	DataPath     string `mapstructure:"data_path"`
	LocalBackend string `mapstructure:"local_backend"`
	RemoteURL    string `mapstructure:"remote_url"`
	Debug        bool   `mapstructure:"debug"`
	Timezone     string `mapstructure:"timezone"`
	Sync         Sync   `mapstructure:"sync"`
	Backup       Backup `mapstructure:"backup"`

	// RemoteSource names where RemoteURL came from; empty when no remote is configured.
	RemoteSource string `mapstructure:"-"`
	// File is the config file that was read, or "".
	File string `mapstructure:"-"`
}

// Dir is the directory holding the local store, logs and backups.
func (c *Config) Dir() string {
	return filepath.Dir(c.DataPath)
}

// HasRemote reports whether a remote store is configured.
func (c *Config) HasRemote() bool {
	return c.RemoteURL != ""
}

// DefaultPath is ~/.config/zentask/config.yaml, expanded.
func DefaultPath() string {
	return filepath.Join(ExpandPath(constants.DefaultConfigDir), ConfigFileName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(constants.ConfigDataPath, constants.DefaultDataPath)
	v.SetDefault(constants.ConfigLocalBackend, constants.LocalBackendSQLite)
	v.SetDefault(constants.ConfigRemoteURL, "")
	v.SetDefault(constants.ConfigDebug, false)
	v.SetDefault(constants.ConfigTimezone, "Local")
	v.SetDefault(constants.ConfigSyncDebounce, constants.DefaultDebounce)
	v.SetDefault(constants.ConfigSyncTimeout, constants.DefaultSyncTimeout)
	v.SetDefault(constants.ConfigMigrationPolicy, string(constants.MigrationLogsSignal))
	v.SetDefault(constants.ConfigBackupMax, constants.MaxBackups)
}

// Load reads path (DefaultPath when empty). A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	path = ExpandPath(path)

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		cfg.File = path
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to access config file %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.DataPath = ExpandPath(cfg.DataPath)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := cfg.resolveRemote(v); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LocalBackend {
	case constants.LocalBackendSQLite, constants.LocalBackendJSON:
	default:
		return fmt.Errorf("invalid %s %q (expected %s or %s)", constants.ConfigLocalBackend,
			c.LocalBackend, constants.LocalBackendSQLite, constants.LocalBackendJSON)
	}

	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid %s %q", constants.ConfigTimezone, c.Timezone)
	}

	policy, err := zsync.ParseMigrationPolicy(string(c.Sync.MigrationPolicy))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", constants.ConfigMigrationPolicy, err)
	}
	c.Sync.MigrationPolicy = policy

	if c.Sync.Debounce < 0 {
		return fmt.Errorf("%s must not be negative", constants.ConfigSyncDebounce)
	}
	if c.Sync.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", constants.ConfigSyncTimeout)
	}
	if c.Backup.Max < 1 {
		return fmt.Errorf("%s must be at least 1", constants.ConfigBackupMax)
	}
	return nil
}

// resolveRemote applies env > keyring > file precedence. Only the keyring may
// hold a connection string with an embedded password.
func (c *Config) resolveRemote(v *viper.Viper) error {
	c.RemoteURL = ""
	c.RemoteSource = ""

	if env, ok := os.LookupEnv(EnvPrefix + "_REMOTE_URL"); ok && strings.TrimSpace(env) != "" {
		return c.setRemote(strings.TrimSpace(env), SourceEnv)
	}

	secret, err := keyring.GetConnectionString()
	if err == nil && secret != "" {
		c.RemoteURL = secret
		c.RemoteSource = SourceKeyring
		return nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		logger.Debug("Keyring lookup failed, falling back to config file", "error", err)
	}

	if file := strings.TrimSpace(v.GetString(constants.ConfigRemoteURL)); file != "" {
		return c.setRemote(file, SourceFile)
	}
	return nil
}

func (c *Config) setRemote(connStr, source string) error {
	if _, err := postgres.ValidateConnString(connStr); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("%s remote_url: %w; store it with 'zentask keyring set' or use .pgpass", source, err)
		}
		return fmt.Errorf("%s remote_url: %w", source, err)
	}
	c.RemoteURL = connStr
	c.RemoteSource = source
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
