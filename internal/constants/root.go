package constants

import "time"

const (
	AppName            = "stride"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/stride/stride.db"
	ConnectionEnvVar   = "STRIDE_DB_CONNECTION"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "stride-"
	BackupFileSuffix = ".db"
	// RemoteBackupKey is the object key used by backup push/pull when none is given
	RemoteBackupKey = "stride/stride.db"
	BucketEnvVar    = "STRIDE_BACKUP_BUCKET"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "stride-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.stride"
	TrayAppExecutable      = "stride-tray"

	// HTTP
	DefaultServeAddr = ":8080"
	UserIDHeader     = "X-User-ID"
)
