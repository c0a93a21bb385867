// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr classifies low-level PostgreSQL errors for the session store.
package dberr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a queried row doesn't exist.
	ErrNotFound = errors.New("dberr: not found")

	// ErrUnavailable is returned when the database could not be reached in time.
	ErrUnavailable = errors.New("dberr: database unavailable")
)

// Wrap classifies err and prefixes it with action.
//
// The original error stays in the chain, so callers may still inspect it.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	}

	// 2. Server-side failures carry a SQLSTATE
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return fmt.Errorf("%s: sqlstate %s: %w", action, pgError.Code, err)
	}

	// 3. Timeouts and failures before anything was sent
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", action, ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w", action, err)
}

// IsNotFound reports whether err is, or wraps, a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}
