package constants

// Profile defaults applied when neither the remote nor the local store has a profile.
const (
	DefaultProfileName   = "Zen User"
	DefaultProfileBio    = "Finding focus and flow every day."
	DefaultProfileMantra = "Small steps, big impact."
	DefaultTheme         = "indigo"
	DefaultAvatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="
	GuestAvatarSeed      = "guest"
)

// Themes lists the theme keys a profile may select.
var Themes = []string{"indigo", "pink", "rose", "amber", "emerald", "sky", "zinc"}

// Config keys
const (
	ConfigDataPath        = "data_path"
	ConfigLocalBackend    = "local_backend"
	ConfigRemoteURL       = "remote_url"
	ConfigDebug           = "debug"
	ConfigTimezone        = "timezone"
	ConfigSyncDebounce    = "sync.debounce"
	ConfigSyncTimeout     = "sync.timeout"
	ConfigMigrationPolicy = "sync.migration_policy"
	ConfigBackupMax       = "backup.max"

	LocalBackendSQLite = "sqlite"
	LocalBackendJSON   = "json"
)
