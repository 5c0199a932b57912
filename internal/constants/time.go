package constants

const (
	// DateFormat is the calendar key format used for days (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the clock format used for times of day (HH:MM)
	TimeFormat = "15:04"

	// TimestampFormat is how instants are persisted in text columns
	TimestampFormat = "2006-01-02T15:04:05.999999999Z07:00"
)
