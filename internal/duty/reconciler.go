package duty

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/duty-reconciler/internal/logging"
)

// ScheduleSource lists the stored schedule documents that participate in a
// pass (active = true).
type ScheduleSource interface {
	ListActiveSchedules(ctx context.Context) ([]ScheduleDocument, error)
}

// UserSource fetches a single consistent snapshot of a user document.
type UserSource interface {
	GetUser(ctx context.Context, id string) (User, error)
}

// SessionSource answers existence-only open session lookups. It must return
// an error, never false, when the underlying query fails.
type SessionSource interface {
	HasOpenSession(ctx context.Context, userID string) (bool, error)
}

// Summary reports what one reconciliation pass observed and changed.
type Summary struct {
	SchedulesSeen    int
	SchedulesSkipped int
	UsersEvaluated   int
	UsersSkipped     int
	Promoted         int
	Demoted          int
	OverridesCleared int
	BatchesCommitted int
	BatchesFailed    int
	MutationsApplied int
}

// Reconciler runs the evaluate-then-mutate cycle across all active schedules
// and the users they implicate. Decisions are pure functions of the fetched
// state and the reference instant, so overlapping or repeated passes
// converge on the same stored roles.
type Reconciler struct {
	schedules ScheduleSource
	users     UserSource
	sessions  SessionSource
	committer *Committer
	location  *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewReconciler wires the reconciliation dependencies. The timezone governs
// every window comparison for the pass; when nil, UTC is used. When now is
// nil, wall-clock time is used.
func NewReconciler(
	schedules ScheduleSource,
	users UserSource,
	sessions SessionSource,
	committer *Committer,
	location *time.Location,
	now func() time.Time,
	logger *slog.Logger,
) *Reconciler {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		schedules: schedules,
		users:     users,
		sessions:  sessions,
		committer: committer,
		location:  location,
		now:       now,
		logger:    logger,
	}
}

// Run executes one reconciliation pass. The initial schedule query failing
// aborts the pass; every later failure is scoped to one user or one batch
// and surfaces only in the summary and the logs.
func (r *Reconciler) Run(ctx context.Context) (Summary, error) {
	if r == nil {
		return Summary{}, fmt.Errorf("duty: Reconciler is nil")
	}

	runID := uuid.NewString()
	logger := r.runLogger(ctx).With("run_id", runID)
	now := r.now()

	summary := Summary{}

	documents, err := r.schedules.ListActiveSchedules(ctx)
	if err != nil {
		logger.Error("schedule query failed, aborting pass", "error", err)
		return summary, fmt.Errorf("duty: list active schedules: %w", err)
	}
	summary.SchedulesSeen = len(documents)

	schedules := make([]Schedule, 0, len(documents))
	for _, document := range documents {
		schedule, err := ParseSchedule(document)
		if err != nil {
			summary.SchedulesSkipped++
			logger.Debug("skipping malformed schedule", "schedule_id", document.ID, "error", err)
			continue
		}
		schedules = append(schedules, schedule)
	}

	membership := InAnyWindow(schedules, now, r.location)

	userIDs := make([]string, 0, len(membership))
	for userID := range membership {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	mutations := make([]Mutation, 0)
	for _, userID := range userIDs {
		decision, mutation, err := r.evaluateUser(ctx, userID, membership[userID], now)
		if err != nil {
			summary.UsersSkipped++
			logger.Warn("skipping user for this pass",
				"user_id", userID,
				"kind", ErrorKind(err),
				"error", err,
			)
			continue
		}
		summary.UsersEvaluated++

		if mutation != nil {
			mutations = append(mutations, *mutation)
			if _, ok := mutation.Fields[FieldOverrideEnabled]; ok {
				summary.OverridesCleared++
			}
		}
		if decision.Change {
			switch decision.Target {
			case RoleWorker:
				summary.Promoted++
			case RoleInactive:
				summary.Demoted++
			}
		}
	}

	stats := r.committer.Commit(ctx, mutations)
	summary.BatchesCommitted = stats.Batches - stats.Failed
	summary.BatchesFailed = stats.Failed
	summary.MutationsApplied = stats.Applied

	logger.Info("reconciliation pass complete",
		"schedules", summary.SchedulesSeen,
		"schedules_skipped", summary.SchedulesSkipped,
		"users", summary.UsersEvaluated,
		"users_skipped", summary.UsersSkipped,
		"promoted", summary.Promoted,
		"demoted", summary.Demoted,
		"overrides_cleared", summary.OverridesCleared,
		"mutations_applied", summary.MutationsApplied,
		"batches_failed", summary.BatchesFailed,
	)
	return summary, nil
}

// evaluateUser computes the decision and the planned mutation for one user
// from a single snapshot of their document. The override is resolved before
// the role decision so a stale exemption cleared this pass cannot block a
// demotion in the same pass.
func (r *Reconciler) evaluateUser(ctx context.Context, userID string, inWindow bool, now time.Time) (Decision, *Mutation, error) {
	user, err := r.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Decision{}, nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return Decision{}, nil, fmt.Errorf("fetch user %s: %w", userID, err)
	}

	if user.Role.Protected() {
		return Decision{UserID: userID, Target: user.Role}, nil, nil
	}

	override := ResolveOverride(user, now)

	open, err := r.sessions.HasOpenSession(ctx, userID)
	if err != nil {
		return Decision{}, nil, fmt.Errorf("session lookup for %s: %w", userID, err)
	}

	target, change := Decide(user, inWindow, open, override.Valid)
	decision := Decision{
		UserID:        userID,
		InWindow:      inWindow,
		OpenSession:   open,
		OverrideValid: override.Valid,
		Target:        target,
		Change:        change,
	}

	fields := make(map[string]any)
	if override.MustClear {
		fields[FieldOverrideEnabled] = false
		fields[FieldOverrideExpiry] = nil
	}
	if change {
		fields[FieldRole] = string(target)
	}
	if len(fields) == 0 {
		return decision, nil, nil
	}
	return decision, &Mutation{UserID: userID, Fields: fields}, nil
}

func (r *Reconciler) runLogger(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}
