// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/taibuivan/aulagate/internal/platform/apperr"
	"github.com/taibuivan/aulagate/internal/platform/ctxutil"
	"github.com/taibuivan/aulagate/internal/platform/respond"
	"github.com/taibuivan/aulagate/internal/platform/sec"
	"github.com/taibuivan/aulagate/internal/session"
	"github.com/taibuivan/aulagate/pkg/uuid"
)

// ClientCookie configures the cookie that names a browser client.
type ClientCookie struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

/*
ClientSession binds every request to the session of the client that sent it.

# Flow
 1. Read the client cookie; mint a fresh UUIDv7 when absent or malformed.
 2. Open the client's store from provider and wrap it in a [session.Service].
 3. Record the client and, when resolvable, the user for the access log.
 4. Inject the service into the request context.
*/
func ClientSession(provider session.Provider, cookie ClientCookie, options ...session.Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Client Identity ────────────────────────────────────────────
			clientID := ""
			if existing, err := request.Cookie(cookie.Name); err == nil && uuid.Valid(existing.Value) {
				clientID = existing.Value
			}
			if clientID == "" {
				clientID = uuid.New()
			}

			// Refresh the cookie on every request so an active client keeps its id.
			http.SetCookie(writer, &http.Cookie{
				Name:     cookie.Name,
				Value:    clientID,
				Path:     "/",
				MaxAge:   int(cookie.MaxAge.Seconds()),
				HttpOnly: true,
				Secure:   cookie.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			// ── 2. Session Service ────────────────────────────────────────────
			service := session.NewService(provider.Open(clientID), options...)
			ctx := ctxutil.WithClientID(request.Context(), clientID)

			// ── 3. Access Log Identity ────────────────────────────────────────
			if info := ctxutil.GetRequestInfo(ctx); info != nil {
				info.ClientID = clientID
				if user, ok := service.CurrentUser(ctx); ok {
					info.UserID = user.ID
					info.Role = user.Role.Label()
				}
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			next.ServeHTTP(writer, request.WithContext(session.NewContext(ctx, service)))
		})
	}
}

// RequireSession blocks requests whose session is not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [ClientSession]. An expired session
// is cleared before the 401 is written.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		service := session.FromContext(request.Context())
		if service == nil || !service.IsAuthenticated(request.Context()) {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests unless the current user holds one of allowed.
//
// It implies [RequireSession], so you don't need to mount both.
func RequireRole(allowed ...sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireSession(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			service := session.FromContext(ctx)

			held := slices.ContainsFunc(allowed, func(role sec.Role) bool {
				return service.HasRole(ctx, role)
			})
			if !held {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		}))
	}
}
