// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package navigation

import (
	"context"
	"log/slog"

	"github.com/taibuivan/aulagate/internal/platform/ctxutil"
	"github.com/taibuivan/aulagate/internal/platform/sec"
	"github.com/taibuivan/aulagate/internal/session"
)

// # Decisions

// Verdict is the outcome of one guard evaluation.
type Verdict int

const (
	VerdictAllow Verdict = iota
	VerdictRedirect
)

// String returns the verdict name used in logs, metrics and API responses.
func (verdict Verdict) String() string {
	if verdict == VerdictRedirect {
		return "redirect"
	}
	return "allow"
}

// Reason explains a [Decision].
type Reason string

const (
	ReasonPublic             Reason = "public"
	ReasonAlreadySignedIn    Reason = "already_signed_in"
	ReasonUnauthenticated    Reason = "unauthenticated"
	ReasonExpired            Reason = "expired"
	ReasonPrefixMismatch     Reason = "prefix_mismatch"
	ReasonRoleNotAllowed     Reason = "role_not_allowed"
	ReasonAllowed            Reason = "allowed"
	ReasonNoHomeRoute        Reason = "no_home_route"
	ReasonRouteRedirect      Reason = "route_redirect"
	ReasonRoleGuardDenied    Reason = "role_guard_denied"
	ReasonRoleGuardSatisfied Reason = "role_guard_satisfied"
)

// Decision is either "allow" or "redirect to Target".
type Decision struct {
	Verdict Verdict
	// Target is set for redirects only.
	Target string
	Reason Reason
}

// Allowed reports whether the transition may proceed.
func (decision Decision) Allowed() bool {
	return decision.Verdict == VerdictAllow
}

func allow(reason Reason) Decision {
	return Decision{Verdict: VerdictAllow, Reason: reason}
}

func redirect(target string, reason Reason) Decision {
	return Decision{Verdict: VerdictRedirect, Target: target, Reason: reason}
}

// Sessions is the view of a client session the guard needs.
// It is satisfied by *session.Service.
type Sessions interface {
	Inspect(ctx context.Context) session.Status
	LogoutFor(ctx context.Context, cause session.LogoutCause) error
}

// GuardFunc decides one transition from the path "from" to target.
type GuardFunc func(ctx context.Context, sessions Sessions, to Target, from string) Decision

// DecisionObserver is notified of every decision.
type DecisionObserver interface {
	ObserveDecision(verdict, reason string)
}

// # Guard

// Guard is the global navigation guard.
type Guard struct {
	observer DecisionObserver
}

// NewGuard creates a new [Guard]. A nil observer is allowed.
func NewGuard(observer DecisionObserver) *Guard {
	return &Guard{observer: observer}
}

/*
Decide evaluates one transition. The first matching rule wins.

# Flow
 1. Public paths are allowed, except that a signed-in user asking for the
    login page is sent home unless they come from the password reset pages
    or their role has no home besides the login page.
 2. A missing or expired session is sent to the login page. An expired one
    is cleared first.
 3. A path outside the role's prefix sends the user home.
 4. A route allow-list the role is not on sends the user home.
 5. Everything else is allowed.
*/
func (guard *Guard) Decide(ctx context.Context, sessions Sessions, to Target, from string) Decision {
	decision := guard.decide(ctx, sessions, to, from)
	guard.record(ctx, to, from, decision)
	return decision
}

func (guard *Guard) decide(ctx context.Context, sessions Sessions, to Target, from string) Decision {

	// ── 1. Public Paths ───────────────────────────────────────────────────
	if IsPublic(to.Path) {
		if to.Path != sec.PathLogin {
			return allow(ReasonPublic)
		}

		status := current(ctx, sessions)
		if !status.Authenticated() || from == PathForgotPassword || from == PathResetPassword {
			return allow(ReasonPublic)
		}

		home := sec.HomeRouteFor(status.Role())
		if home == sec.PathLogin {
			return allow(ReasonNoHomeRoute)
		}
		return redirect(home, ReasonAlreadySignedIn)
	}

	// ── 2. Authentication ─────────────────────────────────────────────────
	status := sessions.Inspect(ctx)
	switch status.State {
	case session.StateExpired:
		logout(ctx, sessions)
		return redirect(sec.PathLogin, ReasonExpired)
	case session.StateMissing:
		return redirect(sec.PathLogin, ReasonUnauthenticated)
	}

	role := status.Role()

	// ── 3. Role Prefix ────────────────────────────────────────────────────
	if !sec.CanAccess(role, to.Path) {
		return redirect(sec.HomeRouteFor(role), ReasonPrefixMismatch)
	}

	// ── 4. Route Allow-List ───────────────────────────────────────────────
	if len(to.Route.Roles) > 0 && !role.In(to.Route.Roles) {
		return redirect(sec.HomeRouteFor(role), ReasonRoleNotAllowed)
	}

	// ── 5. Allow ──────────────────────────────────────────────────────────
	return allow(ReasonAllowed)
}

func (guard *Guard) record(ctx context.Context, to Target, from string, decision Decision) {
	if guard.observer != nil {
		guard.observer.ObserveDecision(decision.Verdict.String(), string(decision.Reason))
	}

	attrs := []any{
		slog.String("to", to.Path),
		slog.String("route", to.Route.Name),
		slog.String("from", from),
		slog.String("verdict", decision.Verdict.String()),
		slog.String("reason", string(decision.Reason)),
	}
	if decision.Target != "" {
		attrs = append(attrs, slog.String("target", decision.Target))
	}

	logger := ctxutil.GetLogger(ctx)
	switch decision.Reason {
	case ReasonUnauthenticated, ReasonExpired, ReasonPrefixMismatch, ReasonRoleNotAllowed:
		logger.WarnContext(ctx, "navigation_denied", attrs...)
	default:
		logger.DebugContext(ctx, "navigation_decided", attrs...)
	}
}

// current inspects sessions, clearing an expired session on the way.
func current(ctx context.Context, sessions Sessions) session.Status {
	status := sessions.Inspect(ctx)
	if status.State == session.StateExpired {
		logout(ctx, sessions)
	}
	return status
}

func logout(ctx context.Context, sessions Sessions) {
	if err := sessions.LogoutFor(ctx, session.CauseExpired); err != nil {
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "session_logout_failed", slog.Any("error", err))
	}
}

// # Route Guards

/*
RoleGuard admits only the listed roles.

Description: Unauthenticated visitors go to the login page; authenticated
users without one of the roles go to their home route.
*/
func RoleGuard(allowed ...sec.Role) GuardFunc {
	return func(ctx context.Context, sessions Sessions, to Target, from string) Decision {
		status := current(ctx, sessions)
		if !status.Authenticated() {
			return redirect(sec.PathLogin, ReasonUnauthenticated)
		}

		if !status.Role().In(allowed) {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "navigation_role_guard_denied",
				slog.String("to", to.Path),
				slog.String("role", status.Role().Label()),
			)
			return redirect(sec.HomeRouteFor(status.Role()), ReasonRoleGuardDenied)
		}

		return allow(ReasonRoleGuardSatisfied)
	}
}
