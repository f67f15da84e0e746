package duty

// Decide derives the target role for a user from window membership, open
// session state, and override validity. The returned bool reports whether a
// role change is required; when false the returned role equals the current
// one.
//
// An open session always keeps a user on duty regardless of schedule, and
// promotion never consults the override: the override only shields an
// on-duty worker from demotion. Protected roles are never changed.
func Decide(u User, inWindow, openSession, overrideValid bool) (Role, bool) {
	if u.Role.Protected() {
		return u.Role, false
	}

	if inWindow || openSession {
		if u.Role == RoleWorker {
			return u.Role, false
		}
		return RoleWorker, true
	}

	if u.Role != RoleWorker {
		return u.Role, false
	}
	if overrideValid {
		return u.Role, false
	}
	return RoleInactive, true
}
