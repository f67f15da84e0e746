package duty_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/duty-reconciler/internal/duty"
	"github.com/example/duty-reconciler/internal/testfixtures"
)

func TestResolveOverride(t *testing.T) {
	t.Parallel()

	now := testfixtures.ReferenceTime()
	future := now.Add(2 * time.Hour)
	past := now.Add(-2 * time.Hour)

	cases := []struct {
		name   string
		user   duty.User
		expect duty.OverrideState
	}{
		{
			name:   "disabled override is neither valid nor stale",
			user:   duty.User{ID: "u"},
			expect: duty.OverrideState{},
		},
		{
			name:   "enabled with future expiry is valid",
			user:   duty.User{ID: "u", OverrideEnabled: true, OverrideExpiresAt: &future},
			expect: duty.OverrideState{Valid: true},
		},
		{
			name:   "enabled with past expiry must clear",
			user:   duty.User{ID: "u", OverrideEnabled: true, OverrideExpiresAt: &past},
			expect: duty.OverrideState{MustClear: true},
		},
		{
			name:   "enabled with expiry exactly now must clear",
			user:   duty.User{ID: "u", OverrideEnabled: true, OverrideExpiresAt: &now},
			expect: duty.OverrideState{MustClear: true},
		},
		{
			name:   "enabled without expiry must clear",
			user:   duty.User{ID: "u", OverrideEnabled: true},
			expect: duty.OverrideState{MustClear: true},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, duty.ResolveOverride(tc.user, now))
		})
	}
}
