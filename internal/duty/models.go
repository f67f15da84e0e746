package duty

import "time"

// Role identifies a user's operational role as stored on the user document.
type Role string

const (
	// RoleAdmin marks an administrator. The reconciler never mutates admins.
	RoleAdmin Role = "admin"
	// RoleWorker marks a user currently considered on duty.
	RoleWorker Role = "worker"
	// RoleInactive marks a user considered off duty.
	RoleInactive Role = "inactive"
)

// Protected reports whether the reconciler must leave this role untouched.
func (r Role) Protected() bool {
	return r == RoleAdmin
}

// ScheduleDocument is a stored shift window as read from the document store,
// prior to validation. Times are "HH:MM" strings and Days is a comma
// separated list of weekday indices (0=Sunday..6=Saturday). An empty Days
// value means the window applies every day.
type ScheduleDocument struct {
	ID        string
	UserID    string
	StartTime string
	EndTime   string
	Days      string
	Active    bool
}

// Schedule is a validated recurring shift window for exactly one user.
type Schedule struct {
	ID     string
	UserID string
	Start  ClockTime
	End    ClockTime
	Days   []time.Weekday
	Active bool
}

// User is the subject of reconciliation.
type User struct {
	ID                string
	Role              Role
	OverrideEnabled   bool
	OverrideExpiresAt *time.Time
}

// Decision captures the outcome computed for one user during one pass. It is
// never persisted; it only drives the mutations planned for the committer.
type Decision struct {
	UserID        string
	InWindow      bool
	OpenSession   bool
	OverrideValid bool
	Target        Role
	Change        bool
}
