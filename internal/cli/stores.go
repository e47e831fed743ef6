package cli

import (
	"fmt"

	"github.com/julianstephens/zentask/internal/config"
	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/logger"
	"github.com/julianstephens/zentask/internal/storage"
	"github.com/julianstephens/zentask/internal/storage/jsonfile"
	"github.com/julianstephens/zentask/internal/storage/postgres"
	"github.com/julianstephens/zentask/internal/storage/sqlite"
)

// NewLocal selects the local backend named by the config.
func NewLocal(cfg *config.Config) (storage.Local, error) {
	switch cfg.LocalBackend {
	case constants.LocalBackendSQLite, "":
		return sqlite.NewStore(cfg.DataPath), nil
	case constants.LocalBackendJSON:
		return jsonfile.NewStore(cfg.DataPath), nil
	}
	return nil, fmt.Errorf("unknown local backend %q", cfg.LocalBackend)
}

// OpenRemote connects to the configured remote store. It returns nil, with a
// logged warning, when none is configured or it cannot be reached; the session
// then works offline.
func OpenRemote(cfg *config.Config) storage.Remote {
	if !cfg.HasRemote() {
		return nil
	}
	store := postgres.New(cfg.RemoteURL)
	if err := store.Load(); err != nil {
		logger.Warn("Remote store unavailable, working offline", "source", cfg.RemoteSource, "error", err)
		return nil
	}
	return store
}
