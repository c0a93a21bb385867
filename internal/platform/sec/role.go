// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "github.com/taibuivan/aulagate/pkg/fold"

// # User Roles

// Role represents the authorization level granted to an account.
//
// The underlying string is the value issued by the backend, which is also the
// value persisted in the session store under the "userRole" key.
type Role string

const (
	// RoleNone is the zero value: no role, or a value the gate does not recognize.
	RoleNone Role = ""

	// Platform-wide administration across schools
	RoleSuperUser Role = "SUP"

	// Academic supervision and reporting
	RoleDirector Role = "Director"

	// Payments, enrollment and family records
	RoleAdmin Role = "Administrativo"

	// Courses, grades, attendance and observations
	RoleTeacher Role = "Maestro"

	// Read access to their students' records
	RoleParent Role = "Padre"
)

// Roles lists every known role in a stable order.
var Roles = []Role{RoleSuperUser, RoleDirector, RoleAdmin, RoleTeacher, RoleParent}

// # Parsing

// aliases maps folded spellings to roles. Wire values are matched first in
// [ParseRole]; these cover case/accent drift and the English names.
var aliases = map[string]Role{
	fold.Key("SUP"):            RoleSuperUser,
	fold.Key("superuser"):      RoleSuperUser,
	fold.Key("Director"):       RoleDirector,
	fold.Key("Administrativo"): RoleAdmin,
	fold.Key("admin"):          RoleAdmin,
	fold.Key("Maestro"):        RoleTeacher,
	fold.Key("teacher"):        RoleTeacher,
	fold.Key("Padre"):          RoleParent,
	fold.Key("parent"):         RoleParent,
}

// ParseRole normalizes a loosely-typed role string into a [Role].
//
// It returns RoleNone and false for empty or unknown values.
func ParseRole(value string) (Role, bool) {
	candidate := Role(value)
	if candidate.Valid() {
		return candidate, true
	}

	if role, ok := aliases[fold.Key(value)]; ok && value != "" {
		return role, true
	}

	return RoleNone, false
}

// Valid reports whether r is one of the five known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperUser, RoleDirector, RoleAdmin, RoleTeacher, RoleParent:
		return true
	default:
		return false
	}
}

// String returns the wire value of the role.
func (r Role) String() string {
	return string(r)
}

// Label returns a stable English name, used in logs and metrics labels.
func (r Role) Label() string {
	switch r {
	case RoleSuperUser:
		return "superuser"
	case RoleDirector:
		return "director"
	case RoleAdmin:
		return "admin"
	case RoleTeacher:
		return "teacher"
	case RoleParent:
		return "parent"
	default:
		return "none"
	}
}

// In reports whether r is a member of allowed.
func (r Role) In(allowed []Role) bool {
	for _, candidate := range allowed {
		if candidate == r {
			return true
		}
	}
	return false
}
