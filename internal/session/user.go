// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"time"

	"github.com/taibuivan/aulagate/internal/platform/sec"
)

// # Domain Types

// Record is the persisted session of one client: the raw token plus the
// user id and role stored beside it at login.
//
// UserID and Role duplicate claims inside the token. When both are present
// the stored values win; when the token cannot be decoded they are the only
// source left. That fallback is a resilience choice, not a security control.
type Record struct {
	Token  string
	UserID string
	Role   sec.Role
}

// HasToken reports whether a token is stored.
func (record Record) HasToken() bool {
	return record.Token != ""
}

// User is the identity the gate works with after combining a [Record] with
// its decoded token.
type User struct {
	ID        string
	Role      sec.Role
	Email     string
	ExpiresAt time.Time

	// Fallback is true when the token could not be decoded and the user was
	// rebuilt from the stored id and role alone.
	Fallback bool
}

// HasExpiry reports whether the user's token declared an expiry.
func (user *User) HasExpiry() bool {
	return user != nil && !user.ExpiresAt.IsZero()
}

// # Session State

// State classifies a client's session at a point in time.
type State int

const (
	// StateMissing means no usable session: no token, or a token that could
	// not be decoded without stored fallback fields.
	StateMissing State = iota

	// StateExpired means a user was resolved but the token expiry has passed.
	StateExpired

	// StateActive means the session may be used.
	StateActive
)

// String returns the state name used in logs and API responses.
func (state State) String() string {
	switch state {
	case StateExpired:
		return "expired"
	case StateActive:
		return "active"
	default:
		return "missing"
	}
}

// Status is the result of inspecting a session without side effects.
type Status struct {
	State State
	// User is nil for StateMissing.
	User *User
}

// Authenticated reports whether the session is active.
func (status Status) Authenticated() bool {
	return status.State == StateActive
}

// Role returns the user's role, or RoleNone when there is no user.
func (status Status) Role() sec.Role {
	if status.User == nil {
		return sec.RoleNone
	}
	return status.User.Role
}

// LogoutCause labels why a session was cleared.
type LogoutCause string

const (
	CauseExplicit     LogoutCause = "explicit"
	CauseExpired      LogoutCause = "expired"
	CauseUnauthorized LogoutCause = "unauthorized"
)
