// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package navigation decides, before every page transition, whether the client
may proceed or must be sent somewhere else.

Architecture:

  - Table: The immutable route table, matched with the same router the HTTP layer uses.
  - Guard: The per-transition decision function (allow or redirect).
  - Navigator: Resolves, guards and follows redirects until a page settles,
    letting the newest transition of a client win.
  - HTTP: A decision endpoint and the page handler that applies outcomes.
*/
package navigation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/aulagate/internal/platform/sec"
)

// ErrInvalidRoute is returned when a route table cannot be built.
var ErrInvalidRoute = errors.New("navigation: invalid route")

// PathCatchAll is the pattern matching every path no other route claims.
const PathCatchAll = "/*"

// # Route Descriptors

// RouteDescriptor describes one page of the application.
type RouteDescriptor struct {
	// Name is a stable identifier, used in logs and API responses.
	Name string

	// Path is a chi pattern, e.g. /teacher/courses/{courseId}.
	Path string

	// RequiresAuth marks pages outside the public set. The guard decides from
	// the public set itself; this flag is checked against it when the table is built.
	RequiresAuth bool

	// Roles is an explicit allow-list. Nil admits any role the prefix policy admits.
	Roles []sec.Role

	// Redirect, when set, sends every visitor to another path before any guard runs.
	Redirect string

	// BeforeEnter runs after the global guard allowed the transition.
	BeforeEnter GuardFunc
}

// IsPublic reports whether path belongs to the public set that needs no session.
func IsPublic(path string) bool {
	switch path {
	case sec.PathRoot, sec.PathLogin, PathForgotPassword, PathResetPassword:
		return true
	default:
		return false
	}
}

// Public paths besides root and login.
const (
	PathForgotPassword = "/forgot-password"
	PathResetPassword  = "/reset-password"
)

// notFound is used when a table has no catch-all of its own.
var notFound = RouteDescriptor{Name: "NotFound", Path: PathCatchAll, Redirect: sec.PathRoot}

// # Route Table

// Target is a path resolved against a [Table].
type Target struct {
	// Path is the requested path without a trailing slash.
	Path   string
	Route  RouteDescriptor
	Params map[string]string
}

// Param returns a path parameter, or "" when absent.
func (target Target) Param(name string) string {
	return target.Params[name]
}

// Table is an ordered, immutable set of routes. It is safe for concurrent use.
type Table struct {
	routes  []RouteDescriptor
	byPath  map[string]RouteDescriptor
	matcher *chi.Mux
}

/*
NewTable validates routes and builds the matcher.

Description: Routes are matched by the chi router used for HTTP, so pattern
syntax and precedence are the same everywhere.

Returns:
  - *Table: The route table
  - error: ErrInvalidRoute describing the first offending route
*/
func NewTable(routes []RouteDescriptor) (table *Table, err error) {
	table = &Table{
		routes:  make([]RouteDescriptor, 0, len(routes)),
		byPath:  make(map[string]RouteDescriptor, len(routes)),
		matcher: chi.NewMux(),
	}

	// chi reports malformed patterns by panicking.
	defer func() {
		if recovered := recover(); recovered != nil {
			table, err = nil, fmt.Errorf("%w: %v", ErrInvalidRoute, recovered)
		}
	}()

	for _, route := range routes {
		if err := validateRoute(route, table.byPath); err != nil {
			return nil, err
		}

		route.Roles = append([]sec.Role(nil), route.Roles...)
		table.routes = append(table.routes, route)
		table.byPath[route.Path] = route
		table.matcher.Handle(route.Path, http.NotFoundHandler())
	}

	return table, nil
}

// MustTable is [NewTable] for tables known to be valid at compile time.
func MustTable(routes []RouteDescriptor) *Table {
	table, err := NewTable(routes)
	if err != nil {
		panic(err)
	}
	return table
}

func validateRoute(route RouteDescriptor, seen map[string]RouteDescriptor) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidRoute, route.Path, fmt.Sprintf(format, args...))
	}

	switch {
	case route.Name == "":
		return invalid("name is required")
	case !strings.HasPrefix(route.Path, "/"):
		return invalid("path must begin with '/'")
	case route.Redirect != "" && !strings.HasPrefix(route.Redirect, "/"):
		return invalid("redirect must be an absolute path")
	}

	if _, duplicate := seen[route.Path]; duplicate {
		return invalid("duplicate path")
	}

	if IsPublic(route.Path) && route.RequiresAuth {
		return invalid("public paths never require authentication")
	}
	if !IsPublic(route.Path) && route.Redirect == "" && !route.RequiresAuth {
		return invalid("only %s, %s, %s and %s may be public", sec.PathRoot, sec.PathLogin, PathForgotPassword, PathResetPassword)
	}

	if route.Roles != nil && len(route.Roles) == 0 {
		return invalid("an empty allow-list admits nobody")
	}
	if len(route.Roles) > 0 && !route.RequiresAuth {
		return invalid("roles require an authenticated route")
	}
	for _, role := range route.Roles {
		if !role.Valid() {
			return invalid("unknown role %q", role)
		}
	}

	return nil
}

// Routes returns a copy of the routes in declaration order.
func (table *Table) Routes() []RouteDescriptor {
	out := make([]RouteDescriptor, len(table.routes))
	copy(out, table.routes)
	return out
}

// Resolve matches path. Unmatched paths resolve to the catch-all route.
func (table *Table) Resolve(path string) Target {
	path = normalize(path)

	rctx := chi.NewRouteContext()
	pattern := table.matcher.Find(rctx, http.MethodGet, path)

	route, ok := table.byPath[pattern]
	if !ok {
		return Target{Path: path, Route: notFound, Params: map[string]string{}}
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for index, key := range rctx.URLParams.Keys {
		params[key] = rctx.URLParams.Values[index]
	}

	return Target{Path: path, Route: route, Params: params}
}

// normalize trims trailing slashes; the empty path is the root.
func normalize(path string) string {
	if path == "" {
		return sec.PathRoot
	}
	if trimmed := strings.TrimRight(path, "/"); trimmed != "" {
		return trimmed
	}
	return sec.PathRoot
}
