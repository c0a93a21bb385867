// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aulagate/internal/backend"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (observer *recordingObserver) ObserveBackendRequest(op, status string) {
	observer.mu.Lock()
	defer observer.mu.Unlock()
	observer.calls = append(observer.calls, op+":"+status)
}

// newBackend starts a fake school API and returns a client pointed at it.
func newBackend(t *testing.T, observer backend.RequestObserver) *backend.Client {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", func(writer http.ResponseWriter, request *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(request.Body).Decode(&body)

		writer.Header().Set("Content-Type", "application/json")
		switch body["password"] {
		case "correcta":
			_, _ = writer.Write([]byte(`{"success":true,"token":"a.b.c","user":{"id":42,"rol":"Maestro"}}`))
		case "rechazada":
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"message":"Credenciales incorrectas"}`))
		default:
			_, _ = writer.Write([]byte(`{"success":false}`))
		}
	})

	mux.HandleFunc("GET /api/verify-token", func(writer http.ResponseWriter, request *http.Request) {
		if request.Header.Get("Authorization") != "Bearer valid" {
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = writer.Write([]byte(`{"valid":true}`))
	})

	mux.HandleFunc("POST /api/refresh-token", func(writer http.ResponseWriter, request *http.Request) {
		if request.Header.Get("Authorization") != "Bearer valid" {
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = writer.Write([]byte(`{"success":true,"token":"x.y.z","user":{"id":"u-7","rol":"Padre"}}`))
	})

	mux.HandleFunc("POST /api/password/request-reset", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"success":true,"message":"Correo enviado"}`))
	})

	mux.HandleFunc("GET /api/password/validate-token/{token}", func(writer http.ResponseWriter, request *http.Request) {
		if request.PathValue("token") != "reset-ok" {
			writer.WriteHeader(http.StatusBadRequest)
			_, _ = writer.Write([]byte(`{"message":"Token inválido"}`))
			return
		}
		_, _ = writer.Write([]byte(`{"success":true}`))
	})

	mux.HandleFunc("POST /api/password/reset", func(writer http.ResponseWriter, request *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(request.Body).Decode(&body)
		if body["token"] != "reset-ok" || body["newPassword"] == "" {
			writer.WriteHeader(http.StatusBadRequest)
			_, _ = writer.Write([]byte(`{"error":"Token expirado"}`))
			return
		}
		_, _ = writer.Write([]byte(`{"success":true,"message":"Contraseña actualizada"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return backend.NewClient(server.URL+"/", 2*time.Second, observer)
}

/*
TestClient_Login verifies the grant mapping and both rejection shapes.
*/
func TestClient_Login(t *testing.T) {
	observer := &recordingObserver{}
	client := newBackend(t, observer)
	ctx := context.Background()

	grant, err := client.Login(ctx, "maestra@escuela.edu", "correcta")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", grant.Token)
	assert.Equal(t, "42", grant.UserID)
	assert.Equal(t, "Maestro", grant.Role)

	_, err = client.Login(ctx, "maestra@escuela.edu", "rechazada")
	assert.ErrorIs(t, err, backend.ErrInvalidCredentials)

	_, err = client.Login(ctx, "maestra@escuela.edu", "otra")
	assert.ErrorIs(t, err, backend.ErrInvalidCredentials)

	assert.Equal(t, []string{"login:200", "login:401", "login:200"}, observer.calls)
}

/*
TestClient_VerifyAndRefresh verifies bearer forwarding and the 401 mapping.
*/
func TestClient_VerifyAndRefresh(t *testing.T) {
	client := newBackend(t, nil)
	ctx := context.Background()

	valid, err := client.VerifyToken(ctx, "valid")
	require.NoError(t, err)
	assert.True(t, valid)

	_, err = client.VerifyToken(ctx, "stale")
	assert.ErrorIs(t, err, backend.ErrUnauthorized)

	grant, err := client.RefreshToken(ctx, "valid")
	require.NoError(t, err)
	assert.Equal(t, &backend.Grant{Token: "x.y.z", UserID: "u-7", Role: "Padre"}, grant)

	_, err = client.RefreshToken(ctx, "stale")
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
}

/*
TestClient_PasswordReset verifies the three password endpoints and error messages.
*/
func TestClient_PasswordReset(t *testing.T) {
	client := newBackend(t, nil)
	ctx := context.Background()

	message, err := client.RequestPasswordReset(ctx, "padre@familia.mx")
	require.NoError(t, err)
	assert.Equal(t, "Correo enviado", message.Message)

	_, err = client.ValidateResetToken(ctx, "reset-ok")
	assert.NoError(t, err)

	_, err = client.ValidateResetToken(ctx, "caducado")
	var failure *backend.Error
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, http.StatusBadRequest, failure.Status)
	assert.Equal(t, "Token inválido", failure.Message)

	message, err = client.ResetPassword(ctx, "reset-ok", "nueva-clave")
	require.NoError(t, err)
	assert.True(t, message.Success)

	_, err = client.ResetPassword(ctx, "caducado", "nueva-clave")
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "Token expirado", failure.Message)
}

/*
TestClient_Unreachable verifies that transport failures are observed as "error".
*/
func TestClient_Unreachable(t *testing.T) {
	observer := &recordingObserver{}
	client := backend.NewClient("http://127.0.0.1:1", 200*time.Millisecond, observer)

	_, err := client.VerifyToken(context.Background(), "valid")
	require.Error(t, err)
	assert.Equal(t, []string{"verify_token:error"}, observer.calls)
}
