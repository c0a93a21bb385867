// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/aulagate/internal/backend"
	"github.com/taibuivan/aulagate/internal/platform/apperr"
	"github.com/taibuivan/aulagate/internal/platform/constants"
	"github.com/taibuivan/aulagate/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/aulagate/internal/platform/request"
	"github.com/taibuivan/aulagate/internal/platform/respond"
	"github.com/taibuivan/aulagate/internal/platform/sec"
	"github.com/taibuivan/aulagate/internal/platform/validate"
)

// Backend is the part of the school API the session endpoints call.
type Backend interface {
	Login(ctx context.Context, email, password string) (*backend.Grant, error)
	VerifyToken(ctx context.Context, token string) (bool, error)
	RefreshToken(ctx context.Context, token string) (*backend.Grant, error)
	RequestPasswordReset(ctx context.Context, email string) (*backend.Message, error)
	ValidateResetToken(ctx context.Context, token string) (*backend.Message, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*backend.Message, error)
}

// Handler implements the session HTTP endpoints.
//
// # Scope
//
// Everything a login screen and a logout button need: establishing a session
// from credentials, reading it back, refreshing it and clearing it, plus the
// password reset round trip. Each request works on the session bound by the
// client session middleware.
type Handler struct {
	backend Backend
}

// NewHandler constructs a new [Handler].
func NewHandler(schoolAPI Backend) *Handler {
	return &Handler{backend: schoolAPI}
}

// Routes returns a [chi.Router] configured with the session routes.
//
// # Endpoints
//   - GET    /                        : Current session.
//   - DELETE /                        : Logout.
//   - POST   /login                   : Exchange credentials for a session.
//   - POST   /verify                  : Ask the backend whether the token is still valid.
//   - POST   /refresh                 : Replace the token with a fresh one.
//   - GET    /access?path=            : Whether the current user may enter path.
//   - POST   /password/forgot         : Request a reset email.
//   - GET    /password/validate/{token}: Check a reset token.
//   - POST   /password/reset          : Set a new password.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.current)
	router.Delete("/", handler.logout)
	router.Post("/login", handler.login)
	router.Post("/verify", handler.verify)
	router.Post("/refresh", handler.refresh)
	router.Get("/access", handler.access)

	router.Route("/password", func(router chi.Router) {
		router.Post("/forgot", handler.forgotPassword)
		router.Get("/validate/{token}", handler.validateResetToken)
		router.Post("/reset", handler.resetPassword)
	})

	return router
}

// # Presentation

// userView is the JSON shape of a resolved user.
type userView struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	RoleLabel string     `json:"role_label"`
	Email     string     `json:"email,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Fallback  bool       `json:"fallback,omitempty"`
}

// sessionView is the JSON shape of a session.
type sessionView struct {
	Authenticated bool             `json:"authenticated"`
	State         string           `json:"state"`
	User          *userView        `json:"user,omitempty"`
	HomeRoute     string           `json:"home_route"`
	Permissions   []sec.Permission `json:"permissions"`
}

// describe inspects service, clearing an expired session first.
func describe(ctx context.Context, service *Service) sessionView {
	status := service.Inspect(ctx)
	if status.State == StateExpired {
		if err := service.LogoutFor(ctx, CauseExpired); err != nil {
			ctxutil.GetLogger(ctx).ErrorContext(ctx, "session_logout_failed", slog.Any("error", err))
		}
	}

	view := sessionView{
		Authenticated: status.Authenticated(),
		State:         status.State.String(),
		HomeRoute:     sec.PathLogin,
		Permissions:   []sec.Permission{},
	}

	if status.Authenticated() {
		user := status.User
		view.User = &userView{
			ID:        user.ID,
			Role:      user.Role.String(),
			RoleLabel: user.Role.Label(),
			Email:     user.Email,
			Fallback:  user.Fallback,
		}
		if user.HasExpiry() {
			expiresAt := user.ExpiresAt.UTC()
			view.User.ExpiresAt = &expiresAt
		}
		view.HomeRoute = sec.HomeRouteFor(user.Role)
		view.Permissions = sec.Permissions(user.Role)
	}

	return view
}

// serviceFrom returns the request's session service or writes a 500.
func serviceFrom(writer http.ResponseWriter, request *http.Request) (*Service, bool) {
	service := FromContext(request.Context())
	if service == nil {
		respond.Error(writer, request, apperr.Internal(errors.New("session: client session middleware not mounted")))
		return nil, false
	}
	return service, true
}

// backendError maps a backend failure to an [apperr.AppError]. A 401 on an
// authenticated call clears the session first.
func backendError(ctx context.Context, service *Service, err error) error {
	var failure *backend.Error

	switch {
	case errors.Is(err, backend.ErrInvalidCredentials):
		return apperr.Unauthorized("Invalid email or password")

	case errors.Is(err, backend.ErrUnauthorized):
		if service != nil {
			if logoutErr := service.LogoutFor(ctx, CauseUnauthorized); logoutErr != nil {
				ctxutil.GetLogger(ctx).ErrorContext(ctx, "session_logout_failed", slog.Any("error", logoutErr))
			}
		}
		return apperr.Unauthorized("Session is no longer valid")

	case errors.As(err, &failure) && failure.Status >= 400 && failure.Status < 500:
		message := failure.Message
		if message == "" {
			message = "Request rejected by the school backend"
		}
		return apperr.ValidationError(message)

	default:
		return apperr.BadGateway("School backend is unavailable", err)
	}
}

// establish stores grant, tolerating roles the gate does not recognize.
func establish(ctx context.Context, service *Service, grant *backend.Grant) error {
	role, ok := sec.ParseRole(grant.Role)
	if !ok && grant.Role != "" {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "session_unknown_role_issued", slog.String("role", grant.Role))
	}
	return service.Establish(ctx, grant.Token, grant.UserID, role)
}

// # Session Endpoints

// current handles GET /api/v1/session.
func (handler *Handler) current(writer http.ResponseWriter, request *http.Request) {
	service, ok := serviceFrom(writer, request)
	if !ok {
		return
	}
	respond.OK(writer, describe(request.Context(), service))
}

// logout handles DELETE /api/v1/session.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	service, ok := serviceFrom(writer, request)
	if !ok {
		return
	}

	if err := service.Logout(request.Context()); err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.NoContent(writer)
}

// loginRequest represents the JSON payload expected for authentication.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login handles POST /api/v1/session/login.
//
// # Returns
//   - Writes HTTP 200 OK with the new session.
//   - Writes HTTP 400 Bad Request if validation rules fail.
//   - Writes HTTP 401 Unauthorized for bad credentials.
//   - Writes HTTP 502 Bad Gateway when the school backend is unreachable.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	service, ok := serviceFrom(writer, request)
	if !ok {
		return
	}
	ctx := request.Context()

	// ── 1. Payload Extraction ─────────────────────────────────────────────
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────
	if err := (&validate.Validator{}).
		Required("email", input.Email).
		MaxLen("email", input.Email, constants.MaxEmailLength).
		Email("email", input.Email).
		Required("password", input.Password).
		Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Backend Login ──────────────────────────────────────────────────
	grant, err := handler.backend.Login(ctx, input.Email, input.Password)
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "session_login_failed", slog.Any("error", err))
		respond.Error(writer, request, backendError(ctx, nil, err))
		return
	}

	// ── 4. Session Establishment ──────────────────────────────────────────
	if err := establish(ctx, service, grant); err != nil {
		respond.Error(writer, request, apperr.BadGateway("School backend issued an unusable session", err))
		return
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "session_established", slog.String("user_id", grant.UserID))

	// ── 5. Presentation Output ────────────────────────────────────────────
	respond.OK(writer, describe(ctx, service))
}

// verify handles POST /api/v1/session/verify.
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	service, ok := serviceFrom(writer, request)
	if !ok {
		return
	}
	ctx := request.Context()

	token, present := service.Token(ctx)
	if !present {
		respond.OK(writer, map[string]bool{"valid": false})
		return
	}

	valid, err := handler.backend.VerifyToken(ctx, token)
	if err != nil {
		respond.Error(writer, request, backendError(ctx, service, err))
		return
	}

	respond.OK(writer, map[string]bool{"valid": valid})
}

// refresh handles POST /api/v1/session/refresh.
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	service, ok := serviceFrom(writer, request)
	if !ok {
		return
	}
	ctx := request.Context()

	token, present := service.Token(ctx)
	if !present {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	grant, err := handler.backend.RefreshToken(ctx, token)
	if err != nil {
		respond.Error(writer, request, backendError(ctx, service, err))
		return
	}

	if err := establish(ctx, service, grant); err != nil {
		respond.Error(writer, request, apperr.BadGateway("School backend issued an unusable session", err))
		return
	}

	respond.OK(writer, describe(ctx, service))
}

// accessView answers whether a path may be entered.
type accessView struct {
	Path      string `json:"path"`
	Allowed   bool   `json:"allowed"`
	HomeRoute string `json:"home_route"`
}

// access handles GET /api/v1/session/access?path=.
func (handler *Handler) access(writer http.ResponseWriter, request *http.Request) {
	service, ok := serviceFrom(writer, request)
	if !ok {
		return
	}
	ctx := request.Context()

	path := requestutil.Query(request, "path")
	if err := (&validate.Validator{}).Path("path", path).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, accessView{
		Path:      path,
		Allowed:   service.CanAccessRoute(ctx, path),
		HomeRoute: service.HomeRoute(ctx),
	})
}

// # Password Reset Endpoints

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// forgotPassword handles POST /api/v1/session/password/forgot.
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := (&validate.Validator{}).
		Required("email", input.Email).
		MaxLen("email", input.Email, constants.MaxEmailLength).
		Email("email", input.Email).
		Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := handler.backend.RequestPasswordReset(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, backendError(request.Context(), nil, err))
		return
	}

	respond.OK(writer, message)
}

// validateResetToken handles GET /api/v1/session/password/validate/{token}.
func (handler *Handler) validateResetToken(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.Param(request, "token")

	message, err := handler.backend.ValidateResetToken(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, backendError(request.Context(), nil, err))
		return
	}

	respond.OK(writer, message)
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
	// ConfirmPassword is optional; when sent it must repeat NewPassword.
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

// resetPassword handles POST /api/v1/session/password/reset.
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := (&validate.Validator{}).
		Required("token", input.Token).
		Required("new_password", input.NewPassword).
		MinLen("new_password", input.NewPassword, constants.MinPasswordLength).
		Custom("confirm_password", input.ConfirmPassword != "" && input.ConfirmPassword != input.NewPassword, "Passwords do not match").
		Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := handler.backend.ResetPassword(request.Context(), input.Token, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, backendError(request.Context(), nil, err))
		return
	}

	respond.OK(writer, message)
}
