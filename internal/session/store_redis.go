// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/aulagate/internal/platform/constants"
)

// # Redis Store
//
// Key layout per client:
//
//	aulagate:session:<client>  HASH token, userId, userRole
//	aulagate:scratch:<client>  HASH arbitrary scratch entries
//
// Both keys expire after the idle TTL, which is refreshed on every write.

const backendRedis = "redis"

// RedisStore persists one client's session as Redis hashes.
type RedisStore struct {
	client   *redis.Client
	clientID string
	ttl      time.Duration
}

// NewRedisStore returns a [RedisStore] for clientID. A non-positive ttl disables expiry.
func NewRedisStore(client *redis.Client, clientID string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, clientID: clientID, ttl: ttl}
}

func (store *RedisStore) sessionKey() string {
	return constants.RedisPrefixSession + store.clientID
}

func (store *RedisStore) scratchKey() string {
	return constants.RedisPrefixScratch + store.clientID
}

// Get implements [Store].
func (store *RedisStore) Get(ctx context.Context) Record {
	fields, err := store.client.HGetAll(ctx, store.sessionKey()).Result()
	if err != nil {
		logReadFailure(ctx, backendRedis, err)
		return Record{}
	}
	return fieldsRecord(ctx, fields)
}

// Set implements [Store]. The previous hash is replaced atomically.
func (store *RedisStore) Set(ctx context.Context, record Record) error {
	if err := validateRecord(record); err != nil {
		return err
	}

	key := store.sessionKey()
	_, err := store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, recordFields(record))
		if store.ttl > 0 {
			pipe.Expire(ctx, key, store.ttl)
			pipe.Expire(ctx, store.scratchKey(), store.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}

	return nil
}

// Clear implements [Store].
func (store *RedisStore) Clear(ctx context.Context) error {
	if err := store.client.Del(ctx, store.sessionKey(), store.scratchKey()).Err(); err != nil {
		return fmt.Errorf("session: redis clear: %w", err)
	}
	return nil
}

// Scratch implements [Store].
func (store *RedisStore) Scratch(ctx context.Context, key string) (string, bool) {
	value, err := store.client.HGet(ctx, store.scratchKey(), key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		logReadFailure(ctx, backendRedis, err)
		return "", false
	}
	return value, true
}

// SetScratch implements [Store].
func (store *RedisStore) SetScratch(ctx context.Context, key, value string) error {
	scratch := store.scratchKey()
	_, err := store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, scratch, key, value)
		if store.ttl > 0 {
			pipe.Expire(ctx, scratch, store.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: redis scratch: %w", err)
	}
	return nil
}

// RedisProvider opens [RedisStore] values sharing one client connection pool.
type RedisProvider struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProvider returns a [RedisProvider].
func NewRedisProvider(client *redis.Client, ttl time.Duration) *RedisProvider {
	return &RedisProvider{client: client, ttl: ttl}
}

// Open implements [Provider].
func (provider *RedisProvider) Open(clientID string) Store {
	return NewRedisStore(provider.client, clientID, provider.ttl)
}
