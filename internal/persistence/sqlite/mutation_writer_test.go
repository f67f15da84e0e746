package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/duty-reconciler/internal/duty"
	"github.com/example/duty-reconciler/internal/persistence"
	"github.com/example/duty-reconciler/internal/testfixtures"
)

func TestMutationWriter_MergesIntoExistingRow(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	user := testfixtures.NewUserFixture(testfixtures.WithRole(duty.RoleInactive))
	if err := store.Users.InsertUser(ctx, user); err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}

	err := store.Writer.Apply(ctx, []persistence.Mutation{
		{UserID: user.ID, Fields: map[string]any{"role": string(duty.RoleWorker)}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	updated, err := store.Users.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if updated.Role != string(duty.RoleWorker) {
		t.Errorf("expected role worker, got %s", updated.Role)
	}
	// Fields the mutation does not name stay untouched.
	if updated.DisplayName != user.DisplayName {
		t.Errorf("display name changed: %s", updated.DisplayName)
	}
	if updated.OverrideEnabled {
		t.Error("override flag changed unexpectedly")
	}
}

func TestMutationWriter_ClearsOverride(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	expiry := testfixtures.ReferenceTime()
	user := testfixtures.NewUserFixture(testfixtures.WithOverride(&expiry))
	if err := store.Users.InsertUser(ctx, user); err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}

	err := store.Writer.Apply(ctx, []persistence.Mutation{
		{UserID: user.ID, Fields: map[string]any{
			"override_enabled":    false,
			"override_expires_at": nil,
		}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	updated, err := store.Users.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if updated.OverrideEnabled {
		t.Error("expected override to be cleared")
	}
	if updated.OverrideExpiresAt != nil {
		t.Errorf("expected override expiry to be null, got %v", updated.OverrideExpiresAt)
	}
}

func TestMutationWriter_BatchIsAtomic(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	user := testfixtures.NewUserFixture(testfixtures.WithRole(duty.RoleWorker))
	if err := store.Users.InsertUser(ctx, user); err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}

	err := store.Writer.Apply(ctx, []persistence.Mutation{
		{UserID: user.ID, Fields: map[string]any{"role": string(duty.RoleInactive)}},
		{UserID: user.ID, Fields: map[string]any{"display_name": "nope"}},
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation for unknown field, got %v", err)
	}

	// The valid mutation in the same batch must have been rolled back.
	updated, err := store.Users.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if updated.Role != string(duty.RoleWorker) {
		t.Errorf("expected role unchanged after rollback, got %s", updated.Role)
	}
}

func TestMutationWriter_MissingUserIsNoOp(t *testing.T) {
	store := setupStore(t)

	err := store.Writer.Apply(context.Background(), []persistence.Mutation{
		{UserID: "gone", Fields: map[string]any{"role": string(duty.RoleInactive)}},
	})
	if err != nil {
		t.Fatalf("expected no-op for missing user, got %v", err)
	}
}

func TestMutationWriter_EmptyBatch(t *testing.T) {
	store := setupStore(t)

	if err := store.Writer.Apply(context.Background(), nil); err != nil {
		t.Fatalf("expected empty batch to succeed, got %v", err)
	}
}

func TestMutationWriter_WritesExpiryAsRFC3339(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	user := testfixtures.NewUserFixture()
	if err := store.Users.InsertUser(ctx, user); err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}

	expiry := testfixtures.ReferenceTime().Add(30 * time.Minute)
	err := store.Writer.Apply(ctx, []persistence.Mutation{
		{UserID: user.ID, Fields: map[string]any{
			"override_enabled":    true,
			"override_expires_at": expiry,
		}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	updated, err := store.Users.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if !updated.OverrideEnabled {
		t.Error("expected override to be enabled")
	}
	if updated.OverrideExpiresAt == nil || !updated.OverrideExpiresAt.Equal(expiry) {
		t.Errorf("unexpected override expiry: %v", updated.OverrideExpiresAt)
	}
}
