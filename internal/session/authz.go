// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import "github.com/meetwise/meetwise/internal/platform/sec"

// # Role Authorization
//
// Pure, side-effect-free predicates over a resolved [Session]. These never
// error on bad input: a nil session, an empty role list, or an unknown role
// string all evaluate to false (fail closed).

// HasRole reports whether the session's role, normalized to the canonical
// set, equals role.
func HasRole(current *Session, role sec.Role) bool {
	if current == nil {
		return false
	}
	return sec.NormalizeRole(string(current.Role)) == role
}

// HasAnyRole reports whether at least one of roles matches the session's
// role. Vacuously false for an empty role list.
func HasAnyRole(current *Session, roles []sec.Role) bool {
	for _, role := range roles {
		if HasRole(current, role) {
			return true
		}
	}
	return false
}
