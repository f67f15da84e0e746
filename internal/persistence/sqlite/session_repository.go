package sqlite

import (
	"context"
	"time"

	"github.com/example/duty-reconciler/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	helper *QueryHelper
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{helper: NewQueryHelper(pool)}
}

// HasOpenSession reports whether the user owns at least one open duty
// session. The query is existence-only; any match short-circuits.
func (r *SessionRepository) HasOpenSession(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM duty_sessions WHERE user_id = ? AND state = ?
		)
	`

	var exists int
	err := r.helper.QueryRow(ctx, query, userID, persistence.SessionStateOpen).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}

	return exists != 0, nil
}

// InsertSession stores a duty session row. Used by fixtures and tests; the
// reconciler itself never opens or closes sessions.
func (r *SessionRepository) InsertSession(ctx context.Context, session persistence.DutySession) error {
	if session.OpenedAt.IsZero() {
		session.OpenedAt = time.Now().UTC()
	}

	var closedAt any
	if session.ClosedAt != nil {
		closedAt = session.ClosedAt.UTC().Format(time.RFC3339)
	}

	query := `
		INSERT INTO duty_sessions (id, user_id, state, opened_at, closed_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.State,
		session.OpenedAt.Format(time.RFC3339),
		closedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}
