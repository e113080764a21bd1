// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package sec

import (
	"strings"

	"golang.org/x/text/cases"
)

// # User Roles

// Role represents the authorization level granted to an account.
type Role string

const (
	// Unrestricted system access
	RoleAdmin Role = "admin"

	// Owns the business account: billing, member management, role assignment
	RoleBusinessOwner Role = "business_owner"

	// Can manage projects, milestones, and meeting schedules
	RoleProjectManager Role = "project_manager"

	// Default role for standard registered users
	RoleMember Role = "member"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r Role) AtLeast(target Role) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r Role) level() int {

	// Linear scale (10-40) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 40
	case RoleBusinessOwner:
		return 30
	case RoleProjectManager:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}

// # Role Normalization

// caseFolder performs Unicode case folding, which is stricter than ToLower
// for non-ASCII input coming from legacy upstream systems.
var caseFolder = cases.Fold()

// roleAliases maps every known legacy/variant role spelling (after folding and
// separator stripping) to its canonical [Role].
var roleAliases = map[string]Role{
	"admin":          RoleAdmin,
	"administrator":  RoleAdmin,
	"superadmin":     RoleAdmin,
	"sysadmin":       RoleAdmin,
	"businessowner":  RoleBusinessOwner,
	"owner":          RoleBusinessOwner,
	"accountowner":   RoleBusinessOwner,
	"orgowner":       RoleBusinessOwner,
	"projectmanager": RoleProjectManager,
	"projectlead":    RoleProjectManager,
	"manager":        RoleProjectManager,
	"pm":             RoleProjectManager,
	"member":         RoleMember,
	"user":           RoleMember,
	"staff":          RoleMember,
	"employee":       RoleMember,
	"teammember":     RoleMember,
}

// NormalizeRole maps an inbound role string from any upstream representation
// (case differences, legacy naming, separator styles) to a canonical [Role].
//
// # Fail Closed
//
// The mapping is total: it never returns an error. Unknown values map to
// [RoleMember], the lowest-privilege role, so a garbled role claim can never
// grant elevated access.
func NormalizeRole(raw string) Role {
	folded := caseFolder.String(strings.TrimSpace(raw))

	// Collapse separator styles: "Business_Owner", "business-owner" and
	// "Business Owner" all reduce to "businessowner".
	replacer := strings.NewReplacer("_", "", "-", "", " ", "", ".", "")
	canonical := replacer.Replace(folded)

	if role, ok := roleAliases[canonical]; ok {
		return role
	}
	return RoleMember
}
