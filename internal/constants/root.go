package constants

import "time"

const (
	AppName            = "agenda"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/agenda"
	DefaultDBPath      = "~/.config/agenda/agenda.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DefaultHorizonDays is how far ahead event occurrences are materialized
	DefaultHorizonDays = 90
	// DefaultAlertDays is the look-ahead window for the upcoming appointments list
	DefaultAlertDays = 15

	// Backup constants
	MaxBackups = 14

	// Notify constants
	DefaultNotifyInterval  = time.Hour
	DefaultNotifyWindow    = 24 * time.Hour
	NotifierLockfileName   = "agenda-notifier.lock"
	NotificationDurationMs = 10000
	TrayAppIdentifier      = "com.julianstephens.agenda"
	TrayAppExecutable      = "agenda-tray"
)
