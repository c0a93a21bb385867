// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package navigation

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/taibuivan/aulagate/internal/platform/sec"
)

// # Built-in Routes

// DefaultRoutes returns the school application's route table.
func DefaultRoutes() []RouteDescriptor {
	return []RouteDescriptor{
		// Public
		{Name: "Home", Path: sec.PathRoot},
		{Name: "Login", Path: sec.PathLogin},
		{Name: "ForgotPassword", Path: PathForgotPassword},
		{Name: "ResetPassword", Path: PathResetPassword},

		// Super user
		{Name: "SuperUserProfile", Path: "/superuser", RequiresAuth: true},
		{Name: "SuperUserUsers", Path: "/superuser/users", RequiresAuth: true, BeforeEnter: RoleGuard(sec.RoleSuperUser)},
		{Name: "SuperUserPlanning", Path: "/superuser/planning", RequiresAuth: true},
		{Name: "SuperUserFiles", Path: "/superuser/files", RequiresAuth: true},

		// Director
		{Name: "DirectorProfile", Path: "/director", RequiresAuth: true},
		{Name: "DirectorReports", Path: "/director/reports", RequiresAuth: true},
		{Name: "DirectorGrades", Path: "/director/grades", RequiresAuth: true},
		{Name: "DirectorFiles", Path: "/director/files", RequiresAuth: true},

		// Administration
		{Name: "AdminProfile", Path: "/admin", RequiresAuth: true},
		{Name: "AdminPayments", Path: "/admin/payments", RequiresAuth: true, Roles: []sec.Role{sec.RoleAdmin}},
		{Name: "AdminEnrollments", Path: "/admin/enrollments", RequiresAuth: true},
		{Name: "AdminFamilies", Path: "/admin/families", RequiresAuth: true},
		{Name: "AdminStudents", Path: "/admin/students/{studentId}", RequiresAuth: true},

		// Teacher
		{Name: "TeacherProfile", Path: "/teacher", RequiresAuth: true},
		{Name: "TeacherCourses", Path: "/teacher/courses", RequiresAuth: true},
		{Name: "TeacherCourse", Path: "/teacher/courses/{courseId}", RequiresAuth: true},
		{Name: "TeacherAttendance", Path: "/teacher/courses/{courseId}/attendance", RequiresAuth: true},
		{Name: "TeacherGrades", Path: "/teacher/courses/{courseId}/grades", RequiresAuth: true, Roles: []sec.Role{sec.RoleTeacher}},
		{Name: "TeacherTasks", Path: "/teacher/tasks", RequiresAuth: true},
		{Name: "TeacherObservations", Path: "/teacher/observations", RequiresAuth: true},
		{Name: "TeacherCalendar", Path: "/teacher/calendar", RequiresAuth: true},
		{Name: "TeacherMessages", Path: "/teacher/messages", RequiresAuth: true},

		// Parent
		{Name: "Parents", Path: "/parent", RequiresAuth: true},
		{Name: "ParentStudent", Path: "/parent/students/{studentId}", RequiresAuth: true},
		{Name: "ParentGrades", Path: "/parent/grades", RequiresAuth: true},
		{Name: "ParentReportCards", Path: "/parent/report-cards", RequiresAuth: true},
		{Name: "ParentMessages", Path: "/parent/messages", RequiresAuth: true},

		// Everything else
		{Name: "NotFound", Path: PathCatchAll, Redirect: sec.PathRoot},
	}
}

// # Route Files

// routeFile is the YAML layout accepted by [LoadRoutes].
//
//	routes:
//	  - name: TeacherGrades
//	    path: /teacher/courses/{courseId}/grades
//	    requires_auth: true
//	    roles: [Maestro]
//	    guard_roles: [Maestro]
type routeFile struct {
	Routes []struct {
		Name         string   `yaml:"name"`
		Path         string   `yaml:"path"`
		RequiresAuth bool     `yaml:"requires_auth"`
		Roles        []string `yaml:"roles"`
		GuardRoles   []string `yaml:"guard_roles"`
		Redirect     string   `yaml:"redirect"`
	} `yaml:"routes"`
}

/*
LoadRoutes reads a route table from YAML.

Description: Role names are normalized as they are everywhere else, so
"teacher" and "Maestro" are the same role. guard_roles attaches a [RoleGuard].

Returns:
  - []RouteDescriptor: Routes in file order, not yet validated (see [NewTable])
  - error: ErrInvalidRoute for unknown keys, unknown roles, empty role lists
    or an empty file
*/
func LoadRoutes(reader io.Reader) ([]RouteDescriptor, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	var file routeFile
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: route file is empty", ErrInvalidRoute)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoute, err)
	}

	routes := make([]RouteDescriptor, 0, len(file.Routes))
	for _, entry := range file.Routes {
		roles, err := parseRoles(entry.Path, entry.Roles)
		if err != nil {
			return nil, err
		}
		guardRoles, err := parseRoles(entry.Path, entry.GuardRoles)
		if err != nil {
			return nil, err
		}

		route := RouteDescriptor{
			Name:         entry.Name,
			Path:         entry.Path,
			RequiresAuth: entry.RequiresAuth,
			Roles:        roles,
			Redirect:     entry.Redirect,
		}
		if len(guardRoles) > 0 {
			route.BeforeEnter = RoleGuard(guardRoles...)
		}

		routes = append(routes, route)
	}

	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: route file declares no routes", ErrInvalidRoute)
	}

	return routes, nil
}

// parseRoles maps a role list. An absent list is nil; an empty one admits
// nobody and is rejected.
func parseRoles(path string, values []string) ([]sec.Role, error) {
	if values == nil {
		return nil, nil
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s: role list is empty", ErrInvalidRoute, path)
	}

	roles := make([]sec.Role, 0, len(values))
	for _, value := range values {
		role, ok := sec.ParseRole(value)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown role %q", ErrInvalidRoute, path, value)
		}
		roles = append(roles, role)
	}
	return roles, nil
}
