package duty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/duty-reconciler/internal/duty"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		role          duty.Role
		inWindow      bool
		openSession   bool
		overrideValid bool
		target        duty.Role
		change        bool
	}{
		{
			name: "inactive user in window is promoted",
			role: duty.RoleInactive, inWindow: true,
			target: duty.RoleWorker, change: true,
		},
		{
			name: "worker in window is left alone",
			role: duty.RoleWorker, inWindow: true,
			target: duty.RoleWorker, change: false,
		},
		{
			name: "open session promotes even out of window",
			role: duty.RoleInactive, openSession: true,
			target: duty.RoleWorker, change: true,
		},
		{
			name: "open session keeps a worker on duty out of window",
			role: duty.RoleWorker, openSession: true,
			target: duty.RoleWorker, change: false,
		},
		{
			name: "worker out of window with no session is demoted",
			role: duty.RoleWorker,
			target: duty.RoleInactive, change: true,
		},
		{
			name: "valid override blocks demotion",
			role: duty.RoleWorker, overrideValid: true,
			target: duty.RoleWorker, change: false,
		},
		{
			name: "override never drives promotion",
			role: duty.RoleInactive, overrideValid: true,
			target: duty.RoleInactive, change: false,
		},
		{
			name: "other domain roles are not demoted",
			role: duty.Role("accountant"),
			target: duty.Role("accountant"), change: false,
		},
		{
			name: "other domain roles are promoted in window",
			role: duty.Role("accountant"), inWindow: true,
			target: duty.RoleWorker, change: true,
		},
		{
			name: "admin is never touched in window",
			role: duty.RoleAdmin, inWindow: true,
			target: duty.RoleAdmin, change: false,
		},
		{
			name: "admin is never touched out of window",
			role: duty.RoleAdmin,
			target: duty.RoleAdmin, change: false,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			user := duty.User{ID: "u", Role: tc.role}
			target, change := duty.Decide(user, tc.inWindow, tc.openSession, tc.overrideValid)
			assert.Equal(t, tc.target, target)
			assert.Equal(t, tc.change, change)
		})
	}
}
