// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package backend is the client for the school REST API that issues tokens.

The gate never checks credentials itself. Login, token verification, token
refresh and password reset are forwarded here, and the session package
stores whatever this client returns.

Error Model:

  - ErrInvalidCredentials: Login was rejected.
  - ErrUnauthorized: An authenticated call got 401; the caller must log out.
  - *Error: Any other non-2xx answer, carrying the backend's message.
*/
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/aulagate/internal/platform/constants"
)

var (
	// ErrUnauthorized is returned when an authenticated call is answered with 401.
	ErrUnauthorized = errors.New("backend: unauthorized")

	// ErrInvalidCredentials is returned when login does not succeed.
	ErrInvalidCredentials = errors.New("backend: invalid credentials")
)

// Error is a non-2xx answer that is neither of the sentinel cases.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: request failed with status %d", e.Status)
	}
	return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
}

// Operation names, used as the "op" metrics label.
const (
	OpLogin         = "login"
	OpVerifyToken   = "verify_token"
	OpRefreshToken  = "refresh_token"
	OpRequestReset  = "request_reset"
	OpValidateReset = "validate_reset"
	OpResetPassword = "reset_password"
)

// RequestObserver is notified after every backend round trip. Status is the
// HTTP status code, or "error" when no response arrived.
type RequestObserver interface {
	ObserveBackendRequest(op, status string)
}

// # Client

// Client talks to the school REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   RequestObserver
}

// NewClient creates a new backend client. A nil observer is allowed.
func NewClient(baseURL string, timeout time.Duration, observer RequestObserver) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		observer:   observer,
	}
}

// Grant is a freshly issued session: the token plus the user it was issued to.
type Grant struct {
	Token  string
	UserID string
	// Role is the raw role string; the session layer normalizes it.
	Role string
}

// flexibleID accepts identifiers encoded as JSON strings or numbers.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*id = flexibleID(value)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*id = flexibleID(number.String())
	return nil
}

type grantResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
	User    struct {
		ID  flexibleID `json:"id"`
		Rol string     `json:"rol"`
	} `json:"user"`
}

func (response grantResponse) grant() (*Grant, error) {
	if !response.Success || response.Token == "" {
		return nil, ErrInvalidCredentials
	}
	return &Grant{Token: response.Token, UserID: string(response.User.ID), Role: response.User.Rol}, nil
}

/*
Login exchanges credentials for a [Grant].

Returns:
  - *Grant: Token, user id and raw role
  - error: ErrInvalidCredentials, *Error, or transport failures
*/
func (client *Client) Login(ctx context.Context, email, password string) (*Grant, error) {
	payload := map[string]string{"email": email, "password": password}

	var response grantResponse
	err := client.do(ctx, OpLogin, http.MethodPost, "/login", "", payload, &response)
	if errors.Is(err, ErrUnauthorized) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	return response.grant()
}

// VerifyToken asks the backend whether token is still valid.
func (client *Client) VerifyToken(ctx context.Context, token string) (bool, error) {
	var response struct {
		Valid bool `json:"valid"`
	}
	if err := client.do(ctx, OpVerifyToken, http.MethodGet, "/api/verify-token", token, nil, &response); err != nil {
		return false, err
	}
	return response.Valid, nil
}

// RefreshToken exchanges token for a new [Grant].
func (client *Client) RefreshToken(ctx context.Context, token string) (*Grant, error) {
	var response grantResponse
	if err := client.do(ctx, OpRefreshToken, http.MethodPost, "/api/refresh-token", token, struct{}{}, &response); err != nil {
		return nil, err
	}

	grant, err := response.grant()
	if errors.Is(err, ErrInvalidCredentials) {
		return nil, ErrUnauthorized
	}
	return grant, err
}

// # Password Reset

// Message is the free-form acknowledgement returned by the password endpoints.
type Message struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RequestPasswordReset asks the backend to email a reset link.
func (client *Client) RequestPasswordReset(ctx context.Context, email string) (*Message, error) {
	var response Message
	payload := map[string]string{"email": email}
	if err := client.do(ctx, OpRequestReset, http.MethodPost, "/api/password/request-reset", "", payload, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ValidateResetToken checks a reset token before the new password is asked for.
func (client *Client) ValidateResetToken(ctx context.Context, token string) (*Message, error) {
	var response Message
	path := "/api/password/validate-token/" + url.PathEscape(token)
	if err := client.do(ctx, OpValidateReset, http.MethodGet, path, "", nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ResetPassword sets a new password using a reset token.
func (client *Client) ResetPassword(ctx context.Context, token, newPassword string) (*Message, error) {
	var response Message
	payload := map[string]string{"token": token, "newPassword": newPassword}
	if err := client.do(ctx, OpResetPassword, http.MethodPost, "/api/password/reset", "", payload, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// # Transport

// do performs one JSON round trip. A non-empty bearer is sent as the
// Authorization header.
func (client *Client) do(ctx context.Context, op, method, path, bearer string, body, target any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend: create %s request: %w", op, err)
	}

	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+bearer)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		client.observe(op, "error")
		return fmt.Errorf("backend: %s: %w", op, err)
	}
	defer response.Body.Close()

	client.observe(op, strconv.Itoa(response.StatusCode))
	return parseResponse(response, target)
}

func (client *Client) observe(op, status string) {
	if client.observer != nil {
		client.observer.ObserveBackendRequest(op, status)
	}
}

// parseResponse decodes a 2xx body into target and maps everything else to an error.
func parseResponse(response *http.Response, target any) error {
	if response.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 4096))

		var failure struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		message := ""
		if err := json.Unmarshal(body, &failure); err == nil {
			message = failure.Message
			if message == "" {
				message = failure.Error
			}
		}
		return &Error{Status: response.StatusCode, Message: message}
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("backend: decode response: %w", err)
	}
	return nil
}
