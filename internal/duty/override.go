package duty

import "time"

// OverrideState is the resolved status of a user's demotion override.
type OverrideState struct {
	// Valid reports whether the override currently exempts the user from
	// demotion.
	Valid bool
	// MustClear reports whether the enabled flag is stale and has to be
	// cleared this pass.
	MustClear bool
}

// ResolveOverride evaluates a user's override against the reference instant.
//
// An override is valid only while enabled with an expiry in the future. An
// enabled flag whose expiry has passed, or that carries no expiry at all, is
// stale: it is cleared in the same pass so demotion can proceed immediately
// instead of leaving a permanently stuck exemption.
func ResolveOverride(u User, now time.Time) OverrideState {
	if !u.OverrideEnabled {
		return OverrideState{}
	}
	if u.OverrideExpiresAt == nil || !u.OverrideExpiresAt.After(now) {
		return OverrideState{MustClear: true}
	}
	return OverrideState{Valid: true}
}
