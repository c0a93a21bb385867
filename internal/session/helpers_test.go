// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aulagate/internal/session"
)

// now is the fixed clock used by the session tests.
var now = time.Unix(1_760_000_000, 0)

func fixedClock() time.Time { return now }

// issue signs claims the way the school backend does. The gate never checks
// the signature, so the key is irrelevant.
func issue(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

// logoutRecorder collects logout causes.
type logoutRecorder struct {
	mu     sync.Mutex
	causes []session.LogoutCause
}

func (recorder *logoutRecorder) ObserveLogout(cause session.LogoutCause) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.causes = append(recorder.causes, cause)
}

func (recorder *logoutRecorder) Causes() []session.LogoutCause {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return append([]session.LogoutCause(nil), recorder.causes...)
}
