// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"maps"
	"sync"
)

// # In-Memory Store

// MemoryStore keeps one client's session in process memory.
//
// It is intended for tests and single-node development; nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	fields  map[string]string
	scratch map[string]string
}

// NewMemoryStore returns an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		fields:  map[string]string{},
		scratch: map[string]string{},
	}
}

// Get implements [Store].
func (store *MemoryStore) Get(ctx context.Context) Record {
	store.mu.RLock()
	fields := maps.Clone(store.fields)
	store.mu.RUnlock()

	return fieldsRecord(ctx, fields)
}

// Set implements [Store].
func (store *MemoryStore) Set(_ context.Context, record Record) error {
	if err := validateRecord(record); err != nil {
		return err
	}

	fields := recordFields(record)

	store.mu.Lock()
	store.fields = fields
	store.mu.Unlock()

	return nil
}

// Clear implements [Store].
func (store *MemoryStore) Clear(_ context.Context) error {
	store.mu.Lock()
	store.fields = map[string]string{}
	store.scratch = map[string]string{}
	store.mu.Unlock()

	return nil
}

// Scratch implements [Store].
func (store *MemoryStore) Scratch(_ context.Context, key string) (string, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	value, ok := store.scratch[key]
	return value, ok
}

// SetScratch implements [Store].
func (store *MemoryStore) SetScratch(_ context.Context, key, value string) error {
	store.mu.Lock()
	store.scratch[key] = value
	store.mu.Unlock()

	return nil
}

// # In-Memory Provider

// MemoryProvider hands out one [MemoryStore] per client.
type MemoryProvider struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

// NewMemoryProvider returns an empty [MemoryProvider].
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{stores: map[string]*MemoryStore{}}
}

// Open implements [Provider]. The same client always gets the same store.
func (provider *MemoryProvider) Open(clientID string) Store {
	provider.mu.Lock()
	defer provider.mu.Unlock()

	store, ok := provider.stores[clientID]
	if !ok {
		store = NewMemoryStore()
		provider.stores[clientID] = store
	}
	return store
}
