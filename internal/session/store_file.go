// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const backendFile = "file"

// # File Store

// fileDocument is the on-disk layout of a [FileStore].
type fileDocument struct {
	Fields  map[string]string `json:"fields"`
	Scratch map[string]string `json:"scratch"`
}

// FileStore persists a single session as a JSON document, the command-line
// counterpart of a browser's local storage.
//
// Writes go to a temporary file that is renamed over the target, so a reader
// never observes a partial document.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a [FileStore] backed by path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (store *FileStore) Path() string {
	return store.path
}

func (store *FileStore) load() (fileDocument, error) {
	doc := fileDocument{Fields: map[string]string{}, Scratch: map[string]string{}}

	raw, err := os.ReadFile(store.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, err
	}

	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("session: corrupt file %s: %w", store.path, err)
	}
	if doc.Fields == nil {
		doc.Fields = map[string]string{}
	}
	if doc.Scratch == nil {
		doc.Scratch = map[string]string{}
	}

	return doc, nil
}

func (store *FileStore) save(doc fileDocument) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("session: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("session: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), store.path)
}

// Get implements [Store].
func (store *FileStore) Get(ctx context.Context) Record {
	store.mu.Lock()
	doc, err := store.load()
	store.mu.Unlock()

	if err != nil {
		logReadFailure(ctx, backendFile, err)
		return Record{}
	}
	return fieldsRecord(ctx, doc.Fields)
}

// Set implements [Store].
func (store *FileStore) Set(_ context.Context, record Record) error {
	if err := validateRecord(record); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	doc, err := store.load()
	if err != nil {
		doc = fileDocument{Scratch: map[string]string{}}
	}
	doc.Fields = recordFields(record)

	return store.save(doc)
}

// Clear implements [Store]. A missing file is already clear.
func (store *FileStore) Clear(_ context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := os.Remove(store.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: remove file: %w", err)
	}
	return nil
}

// Scratch implements [Store].
func (store *FileStore) Scratch(ctx context.Context, key string) (string, bool) {
	store.mu.Lock()
	doc, err := store.load()
	store.mu.Unlock()

	if err != nil {
		logReadFailure(ctx, backendFile, err)
		return "", false
	}

	value, ok := doc.Scratch[key]
	return value, ok
}

// SetScratch implements [Store].
func (store *FileStore) SetScratch(_ context.Context, key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	doc, err := store.load()
	if err != nil {
		return err
	}
	doc.Scratch[key] = value

	return store.save(doc)
}
