// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec holds the security primitives shared by the gate: the role
// enumeration, the role-route policy and the token claims decoder.
//
// # Architecture
//
// Nothing in this package performs I/O. The decoder reads the claims segment
// of a compact token WITHOUT verifying its signature; signature checks belong
// to the backend, which re-validates the token on every API call. Claims read
// here are for routing and display only and must never be treated as proof
// of identity.
package sec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a token cannot be split or its claims
// segment cannot be decoded into a JSON object.
var ErrMalformedToken = errors.New("sec: malformed token")

// Claim names issued by the backend. The first non-empty value wins.
var (
	subjectClaims = []string{"userId", "id"}
	roleClaims    = []string{"rol", "role"}
)

// segmentParser is only used for [jwt.Parser.DecodeSegment], which reads no
// mutable state and is safe for concurrent use.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// TokenClaims is the subset of a token payload the gate cares about.
type TokenClaims struct {
	// SubjectID is the user identifier carried by the token.
	SubjectID string
	// Role is the normalized role; RoleNone when absent or unknown.
	Role Role
	// RawRole is the role value exactly as issued.
	RawRole string
	// Email is optional.
	Email string
	// ExpiresAt is the zero time when the token carries no usable expiry.
	ExpiresAt time.Time
}

// HasExpiry reports whether the token declared an expiry.
func (claims TokenClaims) HasExpiry() bool {
	return !claims.ExpiresAt.IsZero()
}

// DecodeToken extracts [TokenClaims] from the payload segment of token.
//
// # Flow
//  1. Split on "." and require at least two segments.
//  2. Base64url-decode the second segment (padding tolerated).
//  3. Parse it as a single JSON object.
//  4. Pick subject, role, email and expiry claims.
//
// Every failure is reported as [ErrMalformedToken].
func DecodeToken(token string) (TokenClaims, error) {

	// ── 1. Segments ───────────────────────────────────────────────────────
	segments := strings.Split(token, ".")
	if len(segments) < 2 {
		return TokenClaims{}, fmt.Errorf("%w: expected at least 2 segments, got %d", ErrMalformedToken, len(segments))
	}

	// ── 2. Payload bytes ──────────────────────────────────────────────────
	payload, err := segmentParser.DecodeSegment(segments[1])
	if err != nil {
		return TokenClaims{}, fmt.Errorf("%w: payload is not base64url: %v", ErrMalformedToken, err)
	}

	// ── 3. JSON object ────────────────────────────────────────────────────
	claims, err := parseClaims(payload)
	if err != nil {
		return TokenClaims{}, err
	}

	// ── 4. Extraction ─────────────────────────────────────────────────────
	rawRole := firstString(claims, roleClaims...)
	role, _ := ParseRole(rawRole)

	result := TokenClaims{
		SubjectID: firstString(claims, subjectClaims...),
		Role:      role,
		RawRole:   rawRole,
		Email:     firstString(claims, "email"),
	}

	// An unreadable or zero "exp" is treated as "no expiry", matching how the
	// web client skipped falsy expiry values.
	if expiry, err := claims.GetExpirationTime(); err == nil && expiry != nil && expiry.Unix() != 0 {
		result.ExpiresAt = expiry.Time
	}

	return result, nil
}

func parseClaims(payload []byte) (jwt.MapClaims, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var claims jwt.MapClaims
	if err := decoder.Decode(&claims); err != nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object: %v", ErrMalformedToken, err)
	}

	if claims == nil {
		return nil, fmt.Errorf("%w: payload is null", ErrMalformedToken)
	}

	if decoder.More() {
		return nil, fmt.Errorf("%w: trailing data after payload", ErrMalformedToken)
	}

	return claims, nil
}

// firstString returns the first truthy claim among names, rendered as a string.
func firstString(claims jwt.MapClaims, names ...string) string {
	for _, name := range names {
		switch value := claims[name].(type) {
		case string:
			if value != "" {
				return value
			}
		case json.Number:
			if text := value.String(); text != "0" {
				return text
			}
		}
	}
	return ""
}
