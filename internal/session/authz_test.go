// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meetwise/meetwise/internal/platform/sec"
)

func memberSession(role string) *Session {
	return &Session{
		UserID:      "usr_0001",
		Email:       "alex@meetwise.app",
		Role:        sec.Role(role),
		AccessToken: "header.payload.sig",
	}
}

/*
TestHasRole verifies the pure role predicate, including normalization of
alias and cased spellings and the fail-closed answers for nil sessions and
unknown roles.
*/
func TestHasRole(t *testing.T) {
	testCases := []struct {
		name    string
		current *Session
		role    sec.Role
		want    bool
	}{
		{name: "exact match", current: memberSession("admin"), role: sec.RoleAdmin, want: true},
		{name: "cased alias", current: memberSession("Business Owner"), role: sec.RoleBusinessOwner, want: true},
		{name: "pm shorthand", current: memberSession("PM"), role: sec.RoleProjectManager, want: true},
		{name: "mismatch", current: memberSession("member"), role: sec.RoleAdmin, want: false},
		{name: "unknown role collapses to member", current: memberSession("wizard"), role: sec.RoleMember, want: true},
		{name: "unknown role never grants admin", current: memberSession("wizard"), role: sec.RoleAdmin, want: false},
		{name: "nil session", current: nil, role: sec.RoleMember, want: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, HasRole(testCase.current, testCase.role))
		})
	}
}

/*
TestHasAnyRole verifies disjunctive matching and that the empty role list is
vacuously false rather than a wildcard.
*/
func TestHasAnyRole(t *testing.T) {
	current := memberSession("project_manager")

	assert.True(t, HasAnyRole(current, []sec.Role{sec.RoleAdmin, sec.RoleProjectManager}))
	assert.False(t, HasAnyRole(current, []sec.Role{sec.RoleAdmin, sec.RoleBusinessOwner}))
	assert.False(t, HasAnyRole(current, nil))
	assert.False(t, HasAnyRole(current, []sec.Role{}))
	assert.False(t, HasAnyRole(nil, []sec.Role{sec.RoleMember}))
}
