package constants

import "time"

const (
	AppName            = "dayprompt"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/dayprompt/dayprompt.db"
	Version            = "v0.1.0"

	// EnvDBConnection holds a full PostgreSQL connection string, password included.
	EnvDBConnection = "DAYPROMPT_DB_CONNECTION"

	// KeyringTarget selects the connection string stored in the OS keyring.
	KeyringTarget = "keyring"

	// AlertIDPrefix is joined with a day key to form the daily alert id.
	AlertIDPrefix = "dayprompt.daily."

	// EntryNamespace seeds the uuid v5 ids of synthesized (backfilled) entries.
	EntryNamespace = "6f1c2a4e-9d3b-4c55-8e1a-7b2d9f0c3e41"

	// Synthetic windows for backfilled days open at noon.
	SyntheticWindowHour = 12

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifyGracePeriod      = 30 * time.Minute
	NotifierLockfileName   = "dayprompt-notifier.lock"
	NotificationDurationMs = 8000
	TrayAppIdentifier      = "com.julianstephens.dayprompt"
	TrayExecutablePrefix   = "dayprompt-tray"

	// Serve constants
	DispatchSchedule   = "@every 1m"
	ActivationSchedule = "*/15 * * * *"

	// Answer constants
	MinScore = 1
	MaxScore = 10
)
