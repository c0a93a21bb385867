// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package navigation_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aulagate/internal/navigation"
	"github.com/taibuivan/aulagate/internal/platform/sec"
	"github.com/taibuivan/aulagate/internal/session"
)

var now = time.Unix(1_760_000_000, 0)

func fixedClock() time.Time { return now }

// anonymous returns a session with nothing stored.
func anonymous() *session.Service {
	return session.NewService(session.NewMemoryStore(), session.WithClock(fixedClock))
}

// signedIn returns a session for role whose token expires after ttl.
// A negative ttl yields an expired session.
func signedIn(t *testing.T, role sec.Role, ttl time.Duration) *session.Service {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "1",
		"rol":    role.String(),
		"exp":    now.Add(ttl).Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)

	service := anonymous()
	require.NoError(t, service.Establish(context.Background(), token, "1", role))
	return service
}

// to builds a Target for path on a protected route with the given allow-list.
func to(path string, roles ...sec.Role) navigation.Target {
	return navigation.Target{
		Path:   path,
		Route:  navigation.RouteDescriptor{Name: "Test", Path: path, RequiresAuth: true, Roles: roles},
		Params: map[string]string{},
	}
}
