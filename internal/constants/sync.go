package constants

import "time"

// MigrationPolicy selects how the bootstrap loader decides which locally cached
// categories to push to the remote store on first authenticated load.
type MigrationPolicy string

const (
	DefaultDebounce    = 2 * time.Second
	DefaultSyncTimeout = 15 * time.Second

	// MigrationLogsSignal migrates every category when local logs exist and the
	// remote has none.
	MigrationLogsSignal MigrationPolicy = "logs-signal"
	// MigrationPerCategory migrates each category whose remote copy is empty and
	// whose local copy is present.
	MigrationPerCategory MigrationPolicy = "per-category"
)
