package constants

import "time"

const (
	AppName            = "zentask"
	DefaultKeyringUser = "remote-connection"
	DefaultConfigDir   = "~/.config/zentask"
	DefaultDataPath    = "~/.config/zentask/zentask.db"
	Version            = "v0.1.0"

	// Local storage keys
	GuestPrefix  = "zentask_"
	GuestModeKey = "zentask_guest_mode"
	SessionKey   = "zentask_session"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "zentask-backup-"
	BackupFileSuffix = ".json"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "zentask-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.zentask"

	// Validation limits
	UsernameMinLength = 3
	MaxTextLength     = 500
)
