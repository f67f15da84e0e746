package sqlite

import (
	"context"
	"fmt"
)

// Store bundles the SQLite-backed repositories over one connection pool.
type Store struct {
	pool      *ConnectionPool
	Schedules *ScheduleRepository
	Users     *UserRepository
	Sessions  *SessionRepository
	Writer    *MutationWriter
}

// Open connects to the database behind the DSN and wires the repositories.
func Open(dsn string) (*Store, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}
	return &Store{
		pool:      pool,
		Schedules: NewScheduleRepository(pool),
		Users:     NewUserRepository(pool),
		Sessions:  NewSessionRepository(pool),
		Writer:    NewMutationWriter(pool),
	}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT 'inactive',
	override_enabled INTEGER NOT NULL DEFAULT 0,
	override_expires_at TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schedules (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL DEFAULT '',
	start_time TEXT NOT NULL DEFAULT '',
	end_time TEXT NOT NULL DEFAULT '',
	days TEXT NOT NULL DEFAULT '',
	active INTEGER NOT NULL DEFAULT 1,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_schedules_active ON schedules(active);

CREATE TABLE IF NOT EXISTS duty_sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	state TEXT NOT NULL,
	opened_at TEXT NOT NULL,
	closed_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_duty_sessions_user_state ON duty_sessions(user_id, state);
`

// Migrate applies the embedded schema. Statements are idempotent so calling
// this on every start is safe.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
