package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/duty-reconciler/internal/duty"
	"github.com/example/duty-reconciler/internal/persistence"
)

var (
	userCounter     uint64
	scheduleCounter uint64
	sessionCounter  uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserOption configures a generated user fixture.
type UserOption func(*persistence.User)

// NewUserFixture returns a deterministic user record with optional
// overrides. Users default to the worker role with no override.
func NewUserFixture(opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := persistence.User{
		ID:          id,
		DisplayName: fmt.Sprintf("User %03d", idx),
		Role:        string(duty.RoleWorker),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(u *persistence.User) {
		u.ID = id
	}
}

// WithRole overrides the generated role.
func WithRole(role duty.Role) UserOption {
	return func(u *persistence.User) {
		u.Role = string(role)
	}
}

// WithOverride enables the demotion override with the given expiry. A nil
// expiry produces the enabled-but-unbounded stale shape.
func WithOverride(expiresAt *time.Time) UserOption {
	return func(u *persistence.User) {
		u.OverrideEnabled = true
		u.OverrideExpiresAt = expiresAt
	}
}

// --------------------------- Schedule fixtures ---------------------------

// ScheduleOption configures a generated schedule fixture.
type ScheduleOption func(*persistence.Schedule)

// NewScheduleFixture returns a deterministic active schedule covering a
// standard day shift, with optional overrides.
func NewScheduleFixture(userID string, opts ...ScheduleOption) persistence.Schedule {
	idx := atomic.AddUint64(&scheduleCounter, 1)
	schedule := persistence.Schedule{
		ID:        fmt.Sprintf("schedule-%03d", idx),
		UserID:    userID,
		StartTime: "09:00",
		EndTime:   "17:00",
		Active:    true,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&schedule)
	}
	return schedule
}

// WithWindow overrides the start and end times.
func WithWindow(start, end string) ScheduleOption {
	return func(s *persistence.Schedule) {
		s.StartTime = start
		s.EndTime = end
	}
}

// WithDays overrides the weekday filter (comma separated indices).
func WithDays(days string) ScheduleOption {
	return func(s *persistence.Schedule) {
		s.Days = days
	}
}

// Inactive marks the schedule as not participating.
func Inactive() ScheduleOption {
	return func(s *persistence.Schedule) {
		s.Active = false
	}
}

// ---------------------------- Session fixtures ---------------------------

// SessionOption configures a generated duty session fixture.
type SessionOption func(*persistence.DutySession)

// NewSessionFixture returns a deterministic open duty session for a user.
func NewSessionFixture(userID string, opts ...SessionOption) persistence.DutySession {
	idx := atomic.AddUint64(&sessionCounter, 1)
	session := persistence.DutySession{
		ID:       fmt.Sprintf("session-%03d", idx),
		UserID:   userID,
		State:    persistence.SessionStateOpen,
		OpenedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&session)
	}
	return session
}

// Closed marks the session as closed at the given instant.
func Closed(at time.Time) SessionOption {
	return func(s *persistence.DutySession) {
		s.State = persistence.SessionStateClosed
		s.ClosedAt = &at
	}
}
