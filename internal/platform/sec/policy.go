// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "strings"

// # Role-Route Policy
//
// The policy is a static table. Nothing in it is mutated at runtime, so every
// function here is safe for concurrent use.

// Paths that every caller may visit regardless of role.
const (
	PathRoot  = "/"
	PathLogin = "/login"
)

var prefixes = map[Role]string{
	RoleSuperUser: "/superuser",
	RoleDirector:  "/director",
	RoleAdmin:     "/admin",
	RoleTeacher:   "/teacher",
	RoleParent:    "/parent",
}

// PrefixFor returns the path prefix owned by role.
//
// Unknown roles have no entry and therefore no access.
func PrefixFor(role Role) (string, bool) {
	prefix, ok := prefixes[role]
	return prefix, ok
}

// CanAccess reports whether role may enter path.
//
// The root and login paths are always allowed. Otherwise the path must start
// with the role's prefix.
func CanAccess(role Role, path string) bool {
	if path == PathRoot || path == PathLogin {
		return true
	}

	prefix, ok := PrefixFor(role)
	if !ok {
		return false
	}

	return strings.HasPrefix(path, prefix)
}

// HomeRouteFor returns the landing path for role, or the login path when the
// role is absent or unrecognized.
func HomeRouteFor(role Role) string {
	if prefix, ok := PrefixFor(role); ok {
		return prefix
	}
	return PathLogin
}

// # Permissions

// Permission names a capability granted to a role.
type Permission string

const (
	PermUsersCreate        Permission = "users.create"
	PermUsersRead          Permission = "users.read"
	PermUsersUpdate        Permission = "users.update"
	PermUsersDelete        Permission = "users.delete"
	PermCoursesManage      Permission = "courses.manage"
	PermAllAccess          Permission = "all.access"
	PermReportsView        Permission = "reports.view"
	PermAcademicSupervise  Permission = "academic.supervise"
	PermUsersView          Permission = "users.view"
	PermPaymentsManage     Permission = "payments.manage"
	PermStudentsView       Permission = "students.view"
	PermReportsGenerate    Permission = "reports.generate"
	PermCoursesTeach       Permission = "courses.teach"
	PermTasksManage        Permission = "tasks.manage"
	PermGradesManage       Permission = "grades.manage"
	PermAttendanceManage   Permission = "attendance.manage"
	PermObservationsManage Permission = "observations.manage"
	PermMessagesSend       Permission = "messages.send"
	PermStudentView        Permission = "student.view"
	PermGradesView         Permission = "grades.view"
	PermMessagesReceive    Permission = "messages.receive"
)

var permissions = map[Role][]Permission{
	RoleSuperUser: {
		PermUsersCreate, PermUsersRead, PermUsersUpdate, PermUsersDelete,
		PermCoursesManage, PermAllAccess,
	},
	RoleDirector: {
		PermReportsView, PermAcademicSupervise, PermUsersView,
	},
	RoleAdmin: {
		PermPaymentsManage, PermStudentsView, PermReportsGenerate,
	},
	RoleTeacher: {
		PermCoursesTeach, PermTasksManage, PermGradesManage,
		PermAttendanceManage, PermObservationsManage, PermMessagesSend,
	},
	RoleParent: {
		PermStudentView, PermGradesView, PermMessagesReceive,
	},
}

// Permissions returns a copy of the permission set held by role.
func Permissions(role Role) []Permission {
	granted := permissions[role]
	out := make([]Permission, len(granted))
	copy(out, granted)
	return out
}

// Can reports whether role holds permission.
func Can(role Role, permission Permission) bool {
	for _, granted := range permissions[role] {
		if granted == permission {
			return true
		}
	}
	return false
}
