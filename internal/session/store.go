// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taibuivan/aulagate/internal/platform/constants"
	"github.com/taibuivan/aulagate/internal/platform/ctxutil"
	"github.com/taibuivan/aulagate/internal/platform/sec"
)

// ErrInvalidRecord is returned when a record without a token, or with an
// unknown role, is written to a store.
var ErrInvalidRecord = errors.New("session: invalid record")

// # Storage Contracts

// Store persists the session of a single client.
type Store interface {

	/*
		Get returns the stored record.

		Description: Pure read. A backend failure is logged and reported as the
		empty record, so an unavailable store behaves like a logged-out client.
	*/
	Get(ctx context.Context) Record

	/*
		Set overwrites token, user id and role in one step.

		Returns:
		  - error: ErrInvalidRecord or backend write failures
	*/
	Set(ctx context.Context, record Record) error

	/*
		Clear removes the record and every scratch entry. Clearing an empty
		store succeeds.
	*/
	Clear(ctx context.Context) error

	// Scratch reads a transient, session-scoped value.
	Scratch(ctx context.Context, key string) (string, bool)

	// SetScratch writes a transient, session-scoped value. It is removed by Clear.
	SetScratch(ctx context.Context, key, value string) error
}

// Provider opens the [Store] belonging to a client.
type Provider interface {
	Open(clientID string) Store
}

// # Field Layout

// recordFields renders record with the persisted field names. Empty values
// are omitted.
func recordFields(record Record) map[string]string {
	fields := map[string]string{constants.FieldToken: record.Token}
	if record.UserID != "" {
		fields[constants.FieldUserID] = record.UserID
	}
	if record.Role != sec.RoleNone {
		fields[constants.FieldUserRole] = record.Role.String()
	}
	return fields
}

// fieldsRecord parses persisted fields back into a [Record], normalizing the role.
func fieldsRecord(ctx context.Context, fields map[string]string) Record {
	record := Record{
		Token:  fields[constants.FieldToken],
		UserID: fields[constants.FieldUserID],
	}

	if raw := fields[constants.FieldUserRole]; raw != "" {
		role, ok := sec.ParseRole(raw)
		if !ok {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "session_store_unknown_role",
				slog.String("role", raw),
			)
		}
		record.Role = role
	}

	return record
}

// validateRecord rejects records a store must never hold.
func validateRecord(record Record) error {
	if !record.HasToken() {
		return errors.Join(ErrInvalidRecord, errors.New("token is empty"))
	}
	if record.Role != sec.RoleNone && !record.Role.Valid() {
		return errors.Join(ErrInvalidRecord, errors.New("unknown role "+record.Role.String()))
	}
	return nil
}

// logReadFailure reports a backend read failure; callers then return the empty record.
func logReadFailure(ctx context.Context, backend string, err error) {
	ctxutil.GetLogger(ctx).WarnContext(ctx, "session_store_read_failed",
		slog.String("backend", backend),
		slog.Any("error", err),
	)
}
