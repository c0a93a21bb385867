// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aulagate/internal/platform/sec"
	"github.com/taibuivan/aulagate/internal/session"
)

// storeFactories lists every backend that can run without external services.
func storeFactories(t *testing.T) map[string]func() session.Store {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	dir := t.TempDir()

	// Every call yields a fresh, isolated store.
	var opened int
	next := func() string {
		opened++
		return "client-" + strconv.Itoa(opened)
	}

	return map[string]func() session.Store{
		"memory": func() session.Store { return session.NewMemoryStore() },
		"redis":  func() session.Store { return session.NewRedisStore(client, next(), time.Hour) },
		"file":   func() session.Store { return session.NewFileStore(filepath.Join(dir, next()+".json")) },
	}
}

/*
TestStore_Contract verifies the behavior every backend must share.
*/
func TestStore_Contract(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("empty_store_reads_absent", func(t *testing.T) {
				store := factory()
				assert.Equal(t, session.Record{}, store.Get(ctx))

				_, ok := store.Scratch(ctx, "last_path")
				assert.False(t, ok)
			})

			t.Run("set_then_get", func(t *testing.T) {
				store := factory()
				record := session.Record{Token: "a.b.c", UserID: "42", Role: sec.RoleTeacher}

				require.NoError(t, store.Set(ctx, record))
				assert.Equal(t, record, store.Get(ctx))
			})

			t.Run("set_overwrites_all_fields", func(t *testing.T) {
				store := factory()
				require.NoError(t, store.Set(ctx, session.Record{Token: "old", UserID: "1", Role: sec.RoleParent}))
				require.NoError(t, store.Set(ctx, session.Record{Token: "new"}))

				assert.Equal(t, session.Record{Token: "new"}, store.Get(ctx))
			})

			t.Run("set_rejects_empty_token", func(t *testing.T) {
				store := factory()
				err := store.Set(ctx, session.Record{UserID: "42", Role: sec.RoleTeacher})

				assert.ErrorIs(t, err, session.ErrInvalidRecord)
				assert.Equal(t, session.Record{}, store.Get(ctx))
			})

			t.Run("set_rejects_unknown_role", func(t *testing.T) {
				store := factory()
				err := store.Set(ctx, session.Record{Token: "a.b.c", Role: sec.Role("Conserje")})

				assert.ErrorIs(t, err, session.ErrInvalidRecord)
			})

			t.Run("clear_is_idempotent_and_drops_scratch", func(t *testing.T) {
				store := factory()
				require.NoError(t, store.Set(ctx, session.Record{Token: "a.b.c", UserID: "42", Role: sec.RoleAdmin}))
				require.NoError(t, store.SetScratch(ctx, "last_path", "/admin"))

				require.NoError(t, store.Clear(ctx))
				require.NoError(t, store.Clear(ctx))

				assert.Equal(t, session.Record{}, store.Get(ctx))
				_, ok := store.Scratch(ctx, "last_path")
				assert.False(t, ok)
			})

			t.Run("scratch_round_trip", func(t *testing.T) {
				store := factory()
				require.NoError(t, store.SetScratch(ctx, "last_path", "/teacher"))
				require.NoError(t, store.SetScratch(ctx, "last_path", "/teacher/courses"))

				value, ok := store.Scratch(ctx, "last_path")
				assert.True(t, ok)
				assert.Equal(t, "/teacher/courses", value)
			})
		})
	}
}

/*
TestRedisStore_TTL verifies that writes refresh the idle expiry on both keys.
*/
func TestRedisStore_TTL(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	ctx := context.Background()
	store := session.NewRedisStore(client, "client-1", 10*time.Minute)

	require.NoError(t, store.SetScratch(ctx, "last_path", "/parent"))
	require.NoError(t, store.Set(ctx, session.Record{Token: "a.b.c", UserID: "7", Role: sec.RoleParent}))

	assert.Equal(t, 10*time.Minute, server.TTL("aulagate:session:client-1"))
	assert.Equal(t, 10*time.Minute, server.TTL("aulagate:scratch:client-1"))

	server.FastForward(11 * time.Minute)
	assert.Equal(t, session.Record{}, store.Get(ctx))
}

/*
TestRedisStore_Unavailable verifies that a failing backend reads as logged out.
*/
func TestRedisStore_Unavailable(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	defer client.Close()

	ctx := context.Background()
	store := session.NewRedisStore(client, "client-1", time.Hour)
	require.NoError(t, store.Set(ctx, session.Record{Token: "a.b.c"}))

	server.Close()

	assert.Equal(t, session.Record{}, store.Get(ctx))
	assert.Error(t, store.Set(ctx, session.Record{Token: "a.b.c"}))
}

/*
TestRedisStore_NormalizesRole verifies that stored role spellings are folded on read.
*/
func TestRedisStore_NormalizesRole(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	server.HSet("aulagate:session:legacy", "token", "a.b.c", "userId", "3", "userRole", "maestro")

	record := session.NewRedisStore(client, "legacy", time.Hour).Get(context.Background())
	assert.Equal(t, sec.RoleTeacher, record.Role)
}

/*
TestFileStore_CorruptFile verifies that an unreadable document reads as logged out.
*/
func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := session.NewFileStore(path)
	assert.Equal(t, session.Record{}, store.Get(context.Background()))

	require.NoError(t, store.Set(context.Background(), session.Record{Token: "a.b.c"}))
	assert.Equal(t, "a.b.c", store.Get(context.Background()).Token)
}

/*
TestMemoryProvider_Open verifies that one client always maps to one store.
*/
func TestMemoryProvider_Open(t *testing.T) {
	provider := session.NewMemoryProvider()
	ctx := context.Background()

	require.NoError(t, provider.Open("a").Set(ctx, session.Record{Token: "a.b.c"}))

	assert.Equal(t, "a.b.c", provider.Open("a").Get(ctx).Token)
	assert.False(t, provider.Open("b").Get(ctx).HasToken())
}
