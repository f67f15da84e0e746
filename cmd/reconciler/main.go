package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/duty-reconciler/internal/config"
	"github.com/example/duty-reconciler/internal/duty"
	"github.com/example/duty-reconciler/internal/logging"
	"github.com/example/duty-reconciler/internal/persistence"
	"github.com/example/duty-reconciler/internal/persistence/sqlite"
)

func main() {
	logger := logging.NewLogger(slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := store.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	committer := duty.NewCommitter(newMutationWriterAdapter(store.Writer), cfg.BatchLimit, logger)
	reconciler := duty.NewReconciler(
		newScheduleSourceAdapter(store.Schedules),
		newUserSourceAdapter(store.Users),
		newSessionSourceAdapter(store.Sessions),
		committer,
		cfg.Timezone,
		time.Now,
		logger,
	)

	logger.Info("duty reconciler starting",
		"timezone", cfg.TimezoneName,
		"interval", cfg.Interval.String(),
		"batch_limit", cfg.BatchLimit,
		"run_once", cfg.RunOnce,
	)

	runPass(ctx, reconciler, logger)
	if cfg.RunOnce {
		return
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("duty reconciler stopping")
			return
		case <-ticker.C:
			runPass(ctx, reconciler, logger)
		}
	}
}

// runPass executes a single pass. A pass that overruns the tick interval
// simply finishes late; decisions are state based, so an overlapping or
// delayed pass converges to the same stored roles.
func runPass(ctx context.Context, reconciler *duty.Reconciler, logger *slog.Logger) {
	if ctx.Err() != nil {
		return
	}
	if _, err := reconciler.Run(logging.WithLogger(ctx, logger)); err != nil {
		logger.Error("reconciliation pass failed", "error", err)
	}
}

// --- duty source adapters over the persistence layer ---

type scheduleSourceAdapter struct {
	repo persistence.ScheduleRepository
}

func newScheduleSourceAdapter(repo persistence.ScheduleRepository) *scheduleSourceAdapter {
	return &scheduleSourceAdapter{repo: repo}
}

func (a *scheduleSourceAdapter) ListActiveSchedules(ctx context.Context) ([]duty.ScheduleDocument, error) {
	records, err := a.repo.ListActiveSchedules(ctx)
	if err != nil {
		return nil, err
	}
	documents := make([]duty.ScheduleDocument, 0, len(records))
	for _, record := range records {
		documents = append(documents, duty.ScheduleDocument{
			ID:        record.ID,
			UserID:    record.UserID,
			StartTime: record.StartTime,
			EndTime:   record.EndTime,
			Days:      record.Days,
			Active:    record.Active,
		})
	}
	return documents, nil
}

type userSourceAdapter struct {
	repo persistence.UserRepository
}

func newUserSourceAdapter(repo persistence.UserRepository) *userSourceAdapter {
	return &userSourceAdapter{repo: repo}
}

func (a *userSourceAdapter) GetUser(ctx context.Context, id string) (duty.User, error) {
	record, err := a.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return duty.User{}, duty.ErrNotFound
		}
		return duty.User{}, err
	}
	return duty.User{
		ID:                record.ID,
		Role:              duty.Role(record.Role),
		OverrideEnabled:   record.OverrideEnabled,
		OverrideExpiresAt: record.OverrideExpiresAt,
	}, nil
}

type sessionSourceAdapter struct {
	repo persistence.SessionRepository
}

func newSessionSourceAdapter(repo persistence.SessionRepository) *sessionSourceAdapter {
	return &sessionSourceAdapter{repo: repo}
}

func (a *sessionSourceAdapter) HasOpenSession(ctx context.Context, userID string) (bool, error) {
	return a.repo.HasOpenSession(ctx, userID)
}

type mutationWriterAdapter struct {
	writer persistence.MutationWriter
}

func newMutationWriterAdapter(writer persistence.MutationWriter) *mutationWriterAdapter {
	return &mutationWriterAdapter{writer: writer}
}

func (a *mutationWriterAdapter) Apply(ctx context.Context, mutations []duty.Mutation) error {
	batch := make([]persistence.Mutation, 0, len(mutations))
	for _, mutation := range mutations {
		batch = append(batch, persistence.Mutation{
			UserID: mutation.UserID,
			Fields: mutation.Fields,
		})
	}
	return a.writer.Apply(ctx, batch)
}
