package persistence

import "context"

// ScheduleRepository reads stored shift windows.
type ScheduleRepository interface {
	// ListActiveSchedules returns every schedule with active = true.
	ListActiveSchedules(ctx context.Context) ([]Schedule, error)
}

// UserRepository reads stored user documents.
type UserRepository interface {
	GetUser(ctx context.Context, id string) (User, error)
}

// SessionRepository answers open session lookups.
type SessionRepository interface {
	// HasOpenSession reports whether the user owns at least one session in
	// the open state.
	HasOpenSession(ctx context.Context, userID string) (bool, error)
}

// MutationWriter applies one batch of user document mutations atomically.
type MutationWriter interface {
	Apply(ctx context.Context, mutations []Mutation) error
}
