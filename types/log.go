package types

import "time"

// LogEntry represents a request audit entry queued for the async logger.
type LogEntry struct {
	ID              uint
	Method          string
	URL             string
	RequestBody     string
	ResponseBody    string
	RequestHeaders  string
	ResponseHeaders string
	StatusCode      int
	UserID          *uint
	CreatedAt       time.Time
}
