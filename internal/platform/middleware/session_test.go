// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aulagate/internal/platform/ctxutil"
	"github.com/taibuivan/aulagate/internal/platform/middleware"
	"github.com/taibuivan/aulagate/internal/platform/sec"
	"github.com/taibuivan/aulagate/internal/session"
	"github.com/taibuivan/aulagate/pkg/uuid"
)

var cookie = middleware.ClientCookie{Name: "aulagate_client", MaxAge: time.Hour}

// signIn stores a session for clientID in provider.
func signIn(t *testing.T, provider session.Provider, clientID string, role sec.Role) {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "9",
		"rol":    role.String(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)

	service := session.NewService(provider.Open(clientID))
	require.NoError(t, service.Establish(context.Background(), token, "9", role))
}

func request(clientID string) *http.Request {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if clientID != "" {
		request.AddCookie(&http.Cookie{Name: cookie.Name, Value: clientID})
	}
	return request
}

/*
TestClientSession_Identity verifies that a valid client cookie is kept and
anything else is replaced with a fresh id.
*/
func TestClientSession_Identity(t *testing.T) {
	var seen string
	handler := middleware.ClientSession(session.NewMemoryProvider(), cookie)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetClientID(request.Context())
		assert.NotNil(t, session.FromContext(request.Context()))
	}))

	existing := uuid.New()

	tests := []struct {
		name   string
		cookie string
		keep   bool
	}{
		{name: "valid_cookie", cookie: existing, keep: true},
		{name: "no_cookie"},
		{name: "forged_cookie", cookie: "../../etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request(tt.cookie))

			assert.True(t, uuid.Valid(seen))
			if tt.keep {
				assert.Equal(t, tt.cookie, seen)
			} else {
				assert.NotEqual(t, tt.cookie, seen)
			}

			cookies := recorder.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, seen, cookies[0].Value)
			assert.True(t, cookies[0].HttpOnly)
			assert.Equal(t, 3600, cookies[0].MaxAge)
		})
	}
}

/*
TestClientSession_RequestInfo verifies that the access log learns the user.
*/
func TestClientSession_RequestInfo(t *testing.T) {
	provider := session.NewMemoryProvider()
	clientID := uuid.New()
	signIn(t, provider, clientID, sec.RoleParent)

	var info *ctxutil.RequestInfo
	handler := middleware.ClientSession(provider, cookie)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		info = ctxutil.GetRequestInfo(request.Context())
	}))

	ctx, _ := ctxutil.WithRequestInfo(context.Background())
	handler.ServeHTTP(httptest.NewRecorder(), request(clientID).WithContext(ctx))

	require.NotNil(t, info)
	assert.Equal(t, clientID, info.ClientID)
	assert.Equal(t, "9", info.UserID)
	assert.Equal(t, "parent", info.Role)
}

/*
TestRequireRole verifies the session and role gates.
*/
func TestRequireRole(t *testing.T) {
	provider := session.NewMemoryProvider()
	ok := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	})

	director, parent := uuid.New(), uuid.New()
	signIn(t, provider, director, sec.RoleDirector)
	signIn(t, provider, parent, sec.RoleParent)

	withSession := middleware.ClientSession(provider, cookie)
	requireSession := withSession(middleware.RequireSession(ok))
	requireRole := withSession(middleware.RequireRole(sec.RoleDirector, sec.RoleSuperUser)(ok))

	tests := []struct {
		name    string
		handler http.Handler
		client  string
		want    int
	}{
		{name: "session_anonymous", handler: requireSession, client: uuid.New(), want: http.StatusUnauthorized},
		{name: "session_signed_in", handler: requireSession, client: parent, want: http.StatusNoContent},
		{name: "role_anonymous", handler: requireRole, client: uuid.New(), want: http.StatusUnauthorized},
		{name: "role_denied", handler: requireRole, client: parent, want: http.StatusForbidden},
		{name: "role_allowed", handler: requireRole, client: director, want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			tt.handler.ServeHTTP(recorder, request(tt.client))
			assert.Equal(t, tt.want, recorder.Code)
		})
	}

	// Without the client session middleware nothing gets through.
	recorder := httptest.NewRecorder()
	middleware.RequireSession(ok).ServeHTTP(recorder, request(""))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestRequestID verifies that an incoming request id is kept and echoed.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	incoming := request("")
	incoming.Header.Set("X-Request-ID", "req-1")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, incoming)

	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", recorder.Header().Get("X-Request-ID"))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request(""))
	assert.True(t, uuid.Valid(seen))
}
