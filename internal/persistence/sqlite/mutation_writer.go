package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/duty-reconciler/internal/persistence"
)

// MutationWriter implements persistence.MutationWriter using SQLite. One
// Apply call is one atomic batch: either every mutation in the batch lands
// or none do.
type MutationWriter struct {
	pool   *ConnectionPool
	helper *QueryHelper
	now    func() time.Time
}

// NewMutationWriter creates a new SQLite mutation writer.
func NewMutationWriter(pool *ConnectionPool) *MutationWriter {
	return &MutationWriter{
		pool:   pool,
		helper: NewQueryHelper(pool),
		now:    time.Now,
	}
}

// Apply merges each mutation into its user row inside one transaction. Only
// the named fields are overwritten; a nil value clears the column. Mutations
// against users that no longer exist affect zero rows and are ignored, which
// keeps retried batches idempotent.
func (w *MutationWriter) Apply(ctx context.Context, mutations []persistence.Mutation) error {
	if len(mutations) == 0 {
		return nil
	}

	return w.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, mutation := range mutations {
			if err := w.applyOne(tx, mutation); err != nil {
				return err
			}
		}
		return nil
	})
}

func (w *MutationWriter) applyOne(tx *sql.Tx, mutation persistence.Mutation) error {
	if mutation.UserID == "" || len(mutation.Fields) == 0 {
		return fmt.Errorf("%w: empty mutation", persistence.ErrConstraintViolation)
	}

	assignments := make([]string, 0, len(mutation.Fields)+1)
	args := make([]any, 0, len(mutation.Fields)+2)

	for _, field := range []string{"role", "override_enabled", "override_expires_at"} {
		value, ok := mutation.Fields[field]
		if !ok {
			continue
		}
		assignments = append(assignments, field+" = ?")
		args = append(args, encodeFieldValue(field, value))
	}

	if len(assignments) != len(mutation.Fields) {
		return fmt.Errorf("%w: unknown mutation field", persistence.ErrConstraintViolation)
	}

	assignments = append(assignments, "updated_at = ?")
	args = append(args, w.now().UTC().Format(time.RFC3339))
	args = append(args, mutation.UserID)

	query := "UPDATE users SET "
	for i, assignment := range assignments {
		if i > 0 {
			query += ", "
		}
		query += assignment
	}
	query += " WHERE id = ?"

	if _, err := w.helper.ExecTx(tx, query, args...); err != nil {
		return MapError(err)
	}
	return nil
}

func encodeFieldValue(field string, value any) any {
	if value == nil {
		return nil
	}
	switch typed := value.(type) {
	case bool:
		if typed {
			return 1
		}
		return 0
	case time.Time:
		return typed.UTC().Format(time.RFC3339)
	case *time.Time:
		if typed == nil {
			return nil
		}
		return typed.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", value)
	}
}
