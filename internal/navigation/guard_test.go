// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package navigation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/aulagate/internal/navigation"
	"github.com/taibuivan/aulagate/internal/platform/sec"
	"github.com/taibuivan/aulagate/internal/session"
)

type decisionRecorder struct {
	decisions []string
}

func (recorder *decisionRecorder) ObserveDecision(verdict, reason string) {
	recorder.decisions = append(recorder.decisions, verdict+":"+reason)
}

/*
TestGuard_Decide covers every rule of the decision order.
*/
func TestGuard_Decide(t *testing.T) {
	guard := navigation.NewGuard(nil)

	tests := []struct {
		name     string
		sessions func(t *testing.T) *session.Service
		to       navigation.Target
		from     string
		want     navigation.Decision
	}{
		{
			name:     "public_root_anonymous",
			sessions: func(*testing.T) *session.Service { return anonymous() },
			to:       to("/"),
			want:     navigation.Decision{Verdict: navigation.VerdictAllow, Reason: navigation.ReasonPublic},
		},
		{
			name:     "forgot_password_while_signed_in",
			sessions: func(t *testing.T) *session.Service { return signedIn(t, sec.RoleAdmin, time.Hour) },
			to:       to("/forgot-password"),
			want:     navigation.Decision{Verdict: navigation.VerdictAllow, Reason: navigation.ReasonPublic},
		},
		{
			name:     "login_while_signed_in_goes_home",
			sessions: func(t *testing.T) *session.Service { return signedIn(t, sec.RoleAdmin, time.Hour) },
			to:       to("/login"),
			from:     "/admin",
			want:     navigation.Decision{Verdict: navigation.VerdictRedirect, Target: "/admin", Reason: navigation.ReasonAlreadySignedIn},
		},
		{
			name:     "login_from_reset_password_is_allowed",
			sessions: func(t *testing.T) *session.Service { return signedIn(t, sec.RoleAdmin, time.Hour) },
			to:       to("/login"),
			from:     "/reset-password",
			want:     navigation.Decision{Verdict: navigation.VerdictAllow, Reason: navigation.ReasonPublic},
		},
		{
			name:     "login_from_forgot_password_is_allowed",
			sessions: func(t *testing.T) *session.Service { return signedIn(t, sec.RoleTeacher, time.Hour) },
			to:       to("/login"),
			from:     "/forgot-password",
			want:     navigation.Decision{Verdict: navigation.VerdictAllow, Reason: navigation.ReasonPublic},
		},
		{
			name:     "login_anonymous",
			sessions: func(*testing.T) *session.Service { return anonymous() },
			to:       to("/login"),
			want:     navigation.Decision{Verdict: navigation.VerdictAllow, Reason: navigation.ReasonPublic},
		},
		{
			name:     "unauthenticated_to_teacher_calendar",
			sessions: func(*testing.T) *session.Service { return anonymous() },
			to:       to("/teacher/calendar"),
			want:     navigation.Decision{Verdict: navigation.VerdictRedirect, Target: "/login", Reason: navigation.ReasonUnauthenticated},
		},
		{
			name:     "expired_session_goes_to_login",
			sessions: func(t *testing.T) *session.Service { return signedIn(t, sec.RoleTeacher, -time.Minute) },
			to:       to("/teacher"),
			want:     navigation.Decision{Verdict: navigation.VerdictRedirect, Target: "/login", Reason: navigation.ReasonExpired},
		},
		{
			name:     "director_to_admin_goes_home",
			sessions: func(t *testing.T) *session.Service { return signedIn(t, sec.RoleDirector, time.Hour) },
			to:       to("/admin"),
			want:     navigation.Decision{Verdict: navigation.VerdictRedirect, Target: "/director", Reason: navigation.ReasonPrefixMismatch},
		},
		{
			name:     "allow_list_overrides_prefix_match",
			sessions: func(t *testing.T) *session.Service { return signedIn(t, sec.RoleTeacher, time.Hour) },
			to:       to("/teacher/courses/5", sec.RoleParent),
			want:     navigation.Decision{Verdict: navigation.VerdictRedirect, Target: "/teacher", Reason: navigation.ReasonRoleNotAllowed},
		},
		{
			name:     "teacher_to_course_is_allowed",
			sessions: func(t *testing.T) *session.Service { return signedIn(t, sec.RoleTeacher, time.Hour) },
			to:       to("/teacher/courses/42"),
			want:     navigation.Decision{Verdict: navigation.VerdictAllow, Reason: navigation.ReasonAllowed},
		},
		{
			name:     "teacher_on_allow_list",
			sessions: func(t *testing.T) *session.Service { return signedIn(t, sec.RoleTeacher, time.Hour) },
			to:       to("/teacher/courses/42/grades", sec.RoleTeacher),
			want:     navigation.Decision{Verdict: navigation.VerdictAllow, Reason: navigation.ReasonAllowed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := guard.Decide(context.Background(), tt.sessions(t), tt.to, tt.from)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestGuard_PublicBypass_AllRoles verifies that every role reaches the password
pages but is sent home from the login page.
*/
func TestGuard_PublicBypass_AllRoles(t *testing.T) {
	guard := navigation.NewGuard(nil)
	ctx := context.Background()

	for _, role := range sec.Roles {
		t.Run(role.Label(), func(t *testing.T) {
			sessions := signedIn(t, role, time.Hour)

			assert.True(t, guard.Decide(ctx, sessions, to("/forgot-password"), "/").Allowed())
			assert.True(t, guard.Decide(ctx, sessions, to("/reset-password"), "/").Allowed())

			decision := guard.Decide(ctx, sessions, to("/login"), "/")
			assert.Equal(t, navigation.VerdictRedirect, decision.Verdict)
			assert.Equal(t, sec.HomeRouteFor(role), decision.Target)
		})
	}
}

/*
TestGuard_ExpiryClearsSession verifies that the guard clears an expired
session explicitly and only once.
*/
func TestGuard_ExpiryClearsSession(t *testing.T) {
	guard := navigation.NewGuard(nil)
	ctx := context.Background()
	sessions := signedIn(t, sec.RoleParent, -time.Second)

	guard.Decide(ctx, sessions, to("/parent"), "/")

	_, ok := sessions.CurrentUser(ctx)
	assert.False(t, ok)

	// A second visit sees a missing session, not an expired one.
	decision := guard.Decide(ctx, sessions, to("/parent"), "/")
	assert.Equal(t, navigation.ReasonUnauthenticated, decision.Reason)
}

/*
TestGuard_NoRoleReachesLogin verifies that a session without a role is not
bounced between protected pages and the login page.
*/
func TestGuard_NoRoleReachesLogin(t *testing.T) {
	guard := navigation.NewGuard(nil)
	ctx := context.Background()
	sessions := signedIn(t, sec.RoleNone, time.Hour)

	decision := guard.Decide(ctx, sessions, to("/teacher"), "/")
	assert.Equal(t, navigation.Decision{Verdict: navigation.VerdictRedirect, Target: "/login", Reason: navigation.ReasonPrefixMismatch}, decision)

	decision = guard.Decide(ctx, sessions, to("/login"), "/teacher")
	assert.Equal(t, navigation.Decision{Verdict: navigation.VerdictAllow, Reason: navigation.ReasonNoHomeRoute}, decision)
}

/*
TestGuard_AllowListAtHome verifies that a route allow-list is enforced even
when the refused page is the role's home.
*/
func TestGuard_AllowListAtHome(t *testing.T) {
	guard := navigation.NewGuard(nil)
	ctx := context.Background()

	decision := guard.Decide(ctx, signedIn(t, sec.RoleTeacher, time.Hour), to("/teacher", sec.RoleParent), "/")
	assert.Equal(t, navigation.Decision{Verdict: navigation.VerdictRedirect, Target: "/teacher", Reason: navigation.ReasonRoleNotAllowed}, decision)
	assert.False(t, decision.Allowed())

	decision = navigation.RoleGuard(sec.RoleParent)(ctx, signedIn(t, sec.RoleTeacher, time.Hour), to("/teacher"), "/")
	assert.Equal(t, navigation.ReasonRoleGuardDenied, decision.Reason)
	assert.False(t, decision.Allowed())
}

/*
TestGuard_Observer verifies that every decision is reported.
*/
func TestGuard_Observer(t *testing.T) {
	recorder := &decisionRecorder{}
	guard := navigation.NewGuard(recorder)
	ctx := context.Background()

	guard.Decide(ctx, anonymous(), to("/"), "")
	guard.Decide(ctx, anonymous(), to("/teacher"), "")

	assert.Equal(t, []string{"allow:public", "redirect:unauthenticated"}, recorder.decisions)
}

/*
TestRoleGuard verifies the per-route role guard.
*/
func TestRoleGuard(t *testing.T) {
	guard := navigation.RoleGuard(sec.RoleSuperUser, sec.RoleDirector)
	ctx := context.Background()

	decision := guard(ctx, anonymous(), to("/superuser/users"), "/")
	assert.Equal(t, navigation.Decision{Verdict: navigation.VerdictRedirect, Target: "/login", Reason: navigation.ReasonUnauthenticated}, decision)

	decision = guard(ctx, signedIn(t, sec.RoleParent, time.Hour), to("/superuser/users"), "/")
	assert.Equal(t, navigation.Decision{Verdict: navigation.VerdictRedirect, Target: "/parent", Reason: navigation.ReasonRoleGuardDenied}, decision)

	decision = guard(ctx, signedIn(t, sec.RoleDirector, time.Hour), to("/superuser/users"), "/")
	assert.True(t, decision.Allowed())

	decision = guard(ctx, signedIn(t, sec.RoleSuperUser, -time.Hour), to("/superuser/users"), "/")
	assert.Equal(t, "/login", decision.Target)
}
