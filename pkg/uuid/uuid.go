// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for the gate.

It wraps the standard UUID library to specifically generate Version 7 values.

Usage:

  - Request IDs: Correlate log lines of one request.
  - Client IDs: Name the browser or CLI that owns a session.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// # Validation

// Valid reports whether value is a canonical UUID of any version.
//
// Client IDs arrive in cookies, so anything else is discarded and replaced.
func Valid(value string) bool {
	id, err := uuid.Parse(value)
	return err == nil && id.String() == value
}
