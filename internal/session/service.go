// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session answers "who is the current user, and may they be here?" for
one client.

It combines a persisted [Record] with the claims decoded from its token and
exposes the result through [Service].

Architecture:

  - Store: Where the record lives (memory, Redis, PostgreSQL or a local file).
  - Service: The oracle. Reads are pure; clearing a session is always an
    explicit [Service.Logout] or [Service.LogoutFor] call.
  - HTTP: Login, logout and password-reset endpoints backed by the school API.
*/
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/aulagate/internal/platform/ctxutil"
	"github.com/taibuivan/aulagate/internal/platform/sec"
)

// ErrNoSession is returned when an operation needs a stored token and there is none.
var ErrNoSession = errors.New("session: no active session")

// LogoutObserver is notified every time a session is cleared.
type LogoutObserver interface {
	ObserveLogout(cause LogoutCause)
}

// Option configures a [Service].
type Option func(*Service)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(service *Service) {
		service.now = now
	}
}

// WithObserver registers an observer for logouts.
func WithObserver(observer LogoutObserver) Option {
	return func(service *Service) {
		service.observer = observer
	}
}

// Service is the session oracle for a single client.
type Service struct {
	store    Store
	now      func() time.Time
	observer LogoutObserver
}

// NewService creates a new [Service] over store.
func NewService(store Store, options ...Option) *Service {
	service := &Service{store: store, now: time.Now}
	for _, option := range options {
		option(service)
	}
	return service
}

// # Identity

/*
CurrentUser resolves the user behind the stored session.

Description: Stored id and role take precedence over the token's claims.
When the token cannot be decoded the stored id and role are used on their
own, provided both are present.

Returns:
  - *User: The resolved user
  - bool: False when there is no usable session
*/
func (service *Service) CurrentUser(ctx context.Context) (*User, bool) {
	return service.resolve(ctx, service.store.Get(ctx))
}

func (service *Service) resolve(ctx context.Context, record Record) (*User, bool) {
	if !record.HasToken() {
		return nil, false
	}

	claims, err := sec.DecodeToken(record.Token)
	if err == nil {
		user := &User{
			ID:        record.UserID,
			Role:      record.Role,
			Email:     claims.Email,
			ExpiresAt: claims.ExpiresAt,
		}
		if user.ID == "" {
			user.ID = claims.SubjectID
		}
		if user.Role == sec.RoleNone {
			user.Role = claims.Role
		}
		return user, true
	}

	ctxutil.GetLogger(ctx).DebugContext(ctx, "session_token_malformed", slog.Any("error", err))

	if record.UserID != "" && record.Role != sec.RoleNone {
		return &User{ID: record.UserID, Role: record.Role, Fallback: true}, true
	}

	return nil, false
}

// IsExpired reports whether user's token expiry lies before now, compared
// at second precision. Users without an expiry never expire.
func IsExpired(user *User, now time.Time) bool {
	return user.HasExpiry() && user.ExpiresAt.Unix() < now.Unix()
}

// IsExpired is [IsExpired] evaluated against the service clock.
func (service *Service) IsExpired(user *User) bool {
	return IsExpired(user, service.now())
}

// Inspect classifies the session without changing it.
func (service *Service) Inspect(ctx context.Context) Status {
	user, ok := service.CurrentUser(ctx)
	switch {
	case !ok:
		return Status{State: StateMissing}
	case service.IsExpired(user):
		return Status{State: StateExpired, User: user}
	default:
		return Status{State: StateActive, User: user}
	}
}

/*
IsAuthenticated reports whether the session is active.

Description: An expired session is cleared before returning false, so a
later [Service.CurrentUser] reports no user.
*/
func (service *Service) IsAuthenticated(ctx context.Context) bool {
	status := service.Inspect(ctx)
	if status.State == StateExpired {
		if err := service.LogoutFor(ctx, CauseExpired); err != nil {
			ctxutil.GetLogger(ctx).ErrorContext(ctx, "session_logout_failed", slog.Any("error", err))
		}
		return false
	}
	return status.Authenticated()
}

// # Lifecycle

// Logout clears the session and its scratch entries. It is idempotent.
func (service *Service) Logout(ctx context.Context) error {
	return service.LogoutFor(ctx, CauseExplicit)
}

// LogoutFor is [Service.Logout] with the reason recorded in logs and metrics.
func (service *Service) LogoutFor(ctx context.Context, cause LogoutCause) error {
	if err := service.store.Clear(ctx); err != nil {
		return err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "session_cleared", slog.String("cause", string(cause)))
	if service.observer != nil {
		service.observer.ObserveLogout(cause)
	}
	return nil
}

/*
Establish stores a freshly issued session.

Parameters:
  - token: Compact token returned by the login backend
  - userID: Identifier returned alongside the token
  - role: Role returned alongside the token

Returns:
  - error: ErrInvalidRecord or store write failures
*/
func (service *Service) Establish(ctx context.Context, token, userID string, role sec.Role) error {
	if role != sec.RoleNone && !role.Valid() {
		return errors.Join(ErrInvalidRecord, errors.New("unknown role "+role.String()))
	}
	return service.store.Set(ctx, Record{Token: token, UserID: userID, Role: role})
}

// # Authorization

// CanAccessRoute reports whether the current user may enter path. It is
// false whenever the session is not authenticated.
func (service *Service) CanAccessRoute(ctx context.Context, path string) bool {
	if !service.IsAuthenticated(ctx) {
		return false
	}
	user, ok := service.CurrentUser(ctx)
	if !ok {
		return false
	}
	return sec.CanAccess(user.Role, path)
}

// HomeRoute returns the landing path for the current user, or the login path.
func (service *Service) HomeRoute(ctx context.Context) string {
	user, ok := service.CurrentUser(ctx)
	if !ok {
		return sec.PathLogin
	}
	return sec.HomeRouteFor(user.Role)
}

// Permissions lists the permissions of the current user's role.
func (service *Service) Permissions(ctx context.Context) []sec.Permission {
	user, ok := service.CurrentUser(ctx)
	if !ok {
		return []sec.Permission{}
	}
	return sec.Permissions(user.Role)
}

// HasRole reports whether the current user holds role.
func (service *Service) HasRole(ctx context.Context, role sec.Role) bool {
	user, ok := service.CurrentUser(ctx)
	return ok && user.Role == role
}

// AuthHeader returns the Authorization header value for backend calls.
func (service *Service) AuthHeader(ctx context.Context) (string, error) {
	record := service.store.Get(ctx)
	if !record.HasToken() {
		return "", ErrNoSession
	}
	return "Bearer " + record.Token, nil
}

// Token returns the stored raw token.
func (service *Service) Token(ctx context.Context) (string, bool) {
	record := service.store.Get(ctx)
	return record.Token, record.HasToken()
}

// Store exposes the underlying store for scratch access.
func (service *Service) Store() Store {
	return service.store
}
