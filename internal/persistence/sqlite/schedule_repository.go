package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/duty-reconciler/internal/persistence"
)

// ScheduleRepository implements persistence.ScheduleRepository using SQLite.
type ScheduleRepository struct {
	helper *QueryHelper
}

// NewScheduleRepository creates a new SQLite schedule repository.
func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{helper: NewQueryHelper(pool)}
}

// ListActiveSchedules returns every schedule flagged active, ordered by ID
// for deterministic passes. Rows are returned raw; the duty engine decides
// which are well formed.
func (r *ScheduleRepository) ListActiveSchedules(ctx context.Context) ([]persistence.Schedule, error) {
	query := `
		SELECT id, user_id, start_time, end_time, days, active, updated_at
		FROM schedules
		WHERE active = 1
		ORDER BY id ASC
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var schedules []persistence.Schedule
	for rows.Next() {
		var schedule persistence.Schedule
		var active int
		var updatedAtStr string

		err := rows.Scan(
			&schedule.ID,
			&schedule.UserID,
			&schedule.StartTime,
			&schedule.EndTime,
			&schedule.Days,
			&active,
			&updatedAtStr,
		)
		if err != nil {
			return nil, MapError(err)
		}

		schedule.Active = active != 0
		if schedule.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return schedules, nil
}

// InsertSchedule stores a schedule row. Used by fixtures and tests; the
// reconciler itself never creates schedules.
func (r *ScheduleRepository) InsertSchedule(ctx context.Context, schedule persistence.Schedule) error {
	if schedule.UpdatedAt.IsZero() {
		schedule.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO schedules (id, user_id, start_time, end_time, days, active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		schedule.ID,
		schedule.UserID,
		schedule.StartTime,
		schedule.EndTime,
		schedule.Days,
		schedule.Active,
		schedule.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}
