package sqlite

import (
	"database/sql"
	"time"
)

// stringToNull converts an empty string to NULL
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// errToNull stores an error message, NULL when err is nil
func errToNull(err error) sql.NullString {
	if err == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: err.Error(), Valid: true}
}

// boolToInt converts bool to the 0/1 SQLite stores
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// millis converts a duration to whole milliseconds
func millis(d time.Duration) int64 {
	return d.Milliseconds()
}
