package persistence

import "time"

// Schedule is a stored shift window exactly as persisted: times are raw
// "HH:MM" strings and Days is a comma separated weekday list. Validation
// happens in the duty engine so malformed rows can be skipped per pass
// instead of failing reads.
type Schedule struct {
	ID        string
	UserID    string
	StartTime string
	EndTime   string
	Days      string
	Active    bool
	UpdatedAt time.Time
}

// User is a stored user document.
type User struct {
	ID                string
	DisplayName       string
	Role              string
	OverrideEnabled   bool
	OverrideExpiresAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DutySession is an externally managed marker of active work, such as an
// open cash register. The reconciler only ever reads these.
type DutySession struct {
	ID       string
	UserID   string
	State    string
	OpenedAt time.Time
	ClosedAt *time.Time
}

// Session states as stored on duty session documents.
const (
	SessionStateOpen   = "open"
	SessionStateClosed = "closed"
)

// Mutation is one merge write against a single user document: only the
// named fields are overwritten, a nil value clears the field.
type Mutation struct {
	UserID string
	Fields map[string]any
}
