// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStorage persists records as files inside a directory, one file per key.
//
// This is the desktop/CLI analog of browser local storage: the session
// survives process restarts. Files are written with owner-only permissions
// because they contain bearer credentials.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the directory (0700) if needed and returns a backend
// rooted in it.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("session: failed to create storage directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

// Get reads the record for key, returning [ErrNotFound] when absent.
func (storage *FileStorage) Get(_ context.Context, key string) (string, error) {
	data, err := os.ReadFile(storage.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("session: failed to read record: %w", err)
	}
	return string(data), nil
}

// Set replaces the record for key atomically (temp file + rename), so a crash
// mid-write can never leave a half-written session behind.
func (storage *FileStorage) Set(_ context.Context, key, value string) error {
	target := storage.path(key)
	temp := target + ".tmp"

	if err := os.WriteFile(temp, []byte(value), 0o600); err != nil {
		return fmt.Errorf("session: failed to write record: %w", err)
	}

	if err := os.Rename(temp, target); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("session: failed to replace record: %w", err)
	}
	return nil
}

// Remove deletes the record for key. Missing files are not an error.
func (storage *FileStorage) Remove(_ context.Context, key string) error {
	if err := os.Remove(storage.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: failed to remove record: %w", err)
	}
	return nil
}

// path maps a key to a filename, replacing separators that are unsafe on disk.
func (storage *FileStorage) path(key string) string {
	safe := make([]rune, 0, len(key))
	for _, r := range key {
		if r == ':' || r == '/' || r == '\\' {
			r = '_'
		}
		safe = append(safe, r)
	}
	return filepath.Join(storage.dir, string(safe)+".json")
}
