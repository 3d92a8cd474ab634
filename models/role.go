// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "strings"

// Role is the authorization role of a user.
type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleDealerManager Role = "DEALER_MANAGER"
	RoleDealerStaff   Role = "DEALER_STAFF"
	RoleUser          Role = "USER"
)

// DefaultRole is assigned on registration when no recognized role is given.
const DefaultRole = RoleDealerStaff

var knownRoles = map[Role]struct{}{
	RoleAdmin:         {},
	RoleDealerManager: {},
	RoleDealerStaff:   {},
	RoleUser:          {},
}

// ParseRole parses s case-insensitively and reports whether it names a known
// role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := knownRoles[r]
	return r, ok
}

// RoleOrDefault parses s and falls back to DefaultRole for empty or
// unrecognized values.
func RoleOrDefault(s string) Role {
	if r, ok := ParseRole(s); ok {
		return r
	}
	return DefaultRole
}

func (r Role) String() string {
	return string(r)
}
