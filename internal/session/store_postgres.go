// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/aulagate/internal/platform/constants"
	"github.com/taibuivan/aulagate/internal/platform/database/schema"
	"github.com/taibuivan/aulagate/internal/platform/dberr"
)

const backendPostgres = "postgres"

// # PostgreSQL Store

// PostgresStore persists one client's session in gate.client_session and
// its scratch entries in gate.client_scratch.
type PostgresStore struct {
	pool     *pgxpool.Pool
	clientID string
}

// NewPostgresStore returns a [PostgresStore] for clientID.
func NewPostgresStore(pool *pgxpool.Pool, clientID string) *PostgresStore {
	return &PostgresStore{pool: pool, clientID: clientID}
}

/*
Get reads the client's row.

Description: A missing row is the empty record. Query failures are logged and
also reported as the empty record.
*/
func (store *PostgresStore) Get(ctx context.Context) Record {
	table := schema.GateClientSession
	query := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		table.Token, table.UserID, table.UserRole,
		table.Table, table.ClientID,
	)

	var token, userID, userRole string
	err := store.pool.QueryRow(ctx, query, store.clientID).Scan(&token, &userID, &userRole)
	if err != nil {
		if !dberr.IsNotFound(err) {
			logReadFailure(ctx, backendPostgres, dberr.Wrap(err, "postgres_session_store_get"))
		}
		return Record{}
	}

	return fieldsRecord(ctx, map[string]string{
		constants.FieldToken:    token,
		constants.FieldUserID:   userID,
		constants.FieldUserRole: userRole,
	})
}

// Set upserts the client's row.
func (store *PostgresStore) Set(ctx context.Context, record Record) error {
	if err := validateRecord(record); err != nil {
		return err
	}

	table := schema.GateClientSession
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = now()`,
		table.Table, table.ClientID, table.Token, table.UserID, table.UserRole, table.UpdatedAt,
		table.ClientID,
		table.Token, table.Token,
		table.UserID, table.UserID,
		table.UserRole, table.UserRole,
		table.UpdatedAt,
	)

	_, err := store.pool.Exec(ctx, query, store.clientID, record.Token, record.UserID, record.Role.String())
	if err != nil {
		return dberr.Wrap(err, "postgres_session_store_set_failed")
	}

	return nil
}

// Clear deletes the client's row and scratch entries in one transaction.
func (store *PostgresStore) Clear(ctx context.Context) error {
	sessions, scratch := schema.GateClientSession, schema.GateClientScratch

	err := pgx.BeginFunc(ctx, store.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, sessions.Table, sessions.ClientID),
			store.clientID,
		); err != nil {
			return err
		}

		_, err := tx.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, scratch.Table, scratch.ClientID),
			store.clientID,
		)
		return err
	})
	if err != nil {
		return dberr.Wrap(err, "postgres_session_store_clear_failed")
	}

	return nil
}

// Scratch implements [Store].
func (store *PostgresStore) Scratch(ctx context.Context, key string) (string, bool) {
	table := schema.GateClientScratch
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		table.Value, table.Table, table.ClientID, table.Key,
	)

	var value string
	if err := store.pool.QueryRow(ctx, query, store.clientID, key).Scan(&value); err != nil {
		if !dberr.IsNotFound(err) {
			logReadFailure(ctx, backendPostgres, dberr.Wrap(err, "postgres_session_store_scratch"))
		}
		return "", false
	}

	return value, true
}

// SetScratch implements [Store].
func (store *PostgresStore) SetScratch(ctx context.Context, key, value string) error {
	table := schema.GateClientScratch
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (%s, %s) DO UPDATE SET %s = EXCLUDED.%s, %s = now()`,
		table.Table, table.ClientID, table.Key, table.Value, table.UpdatedAt,
		table.ClientID, table.Key,
		table.Value, table.Value,
		table.UpdatedAt,
	)

	if _, err := store.pool.Exec(ctx, query, store.clientID, key, value); err != nil {
		return dberr.Wrap(err, "postgres_session_store_scratch_failed")
	}

	return nil
}

// # PostgreSQL Provider

// PostgresProvider opens [PostgresStore] values over a shared pool.
type PostgresProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresProvider returns a [PostgresProvider].
func NewPostgresProvider(pool *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

// Open implements [Provider].
func (provider *PostgresProvider) Open(clientID string) Store {
	return NewPostgresStore(provider.pool, clientID)
}

/*
Sweep deletes sessions and scratch entries untouched for longer than idle.

Returns:
  - int64: Number of session rows removed
  - error: Database execution failure
*/
func (provider *PostgresProvider) Sweep(ctx context.Context, idle time.Duration) (int64, error) {
	sessions, scratch := schema.GateClientSession, schema.GateClientScratch
	cutoff := time.Now().Add(-idle)

	var removed int64
	err := pgx.BeginFunc(ctx, provider.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE %s < $1`, sessions.Table, sessions.UpdatedAt),
			cutoff,
		)
		if err != nil {
			return err
		}
		removed = tag.RowsAffected()

		_, err = tx.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE %s < $1`, scratch.Table, scratch.UpdatedAt),
			cutoff,
		)
		return err
	})
	if err != nil {
		return 0, dberr.Wrap(err, "postgres_session_sweep_failed")
	}

	return removed, nil
}
