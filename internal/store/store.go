// SPDX-FileCopyrightText: Copyright (c) The mvmont Authors
//
// SPDX-License-Identifier: MIT

// Package store keeps collections of records as JSON arrays in flat files, one
// file per collection.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// ErrInvalidName is returned for collection names that are not a plain file name
var ErrInvalidName = errors.New("invalid collection name")

// nameRegexp matches valid collection names
var nameRegexp = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Store is a directory of JSON collections. All access to the collections of a
// Store is serialized.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New returns a Store for the given directory, creating it if needed
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory of the Store
func (s *Store) Dir() string {
	return s.dir
}

// Ensure creates the collection as an empty array if it does not exist yet
func (s *Store) Ensure(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensure(name)
}

// Read decodes the collection into a slice of T. A missing collection is created
// and read as empty.
func Read[T any](s *Store, name string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return read[T](s, name)
}

// Write replaces the collection with items
func Write[T any](s *Store, name string, items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(name, items)
}

// Update reads the collection, passes it to fn and writes the result back unless
// fn returns an error. The whole cycle holds the Store lock.
func Update[T any](s *Store, name string, fn func([]T) ([]T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := read[T](s, name)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return s.write(name, items)
}

func (s *Store) path(name string) (string, error) {
	if !nameRegexp.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

func (s *Store) ensure(name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if _, err = os.Stat(p); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat collection %s: %w", name, err)
	}
	return s.write(name, []struct{}{})
}

func read[T any](s *Store, name string) ([]T, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		if err = s.ensure(name); err != nil {
			return nil, err
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", name, err)
	}
	items := []T{}
	if len(bytes.TrimSpace(data)) == 0 {
		return items, nil
	}
	if err = json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode collection %s: %w", name, err)
	}
	return items, nil
}

// write encodes v into a temporary file in the Store directory and renames it over
// the collection file, so readers never see a partially written collection
func (s *Store) write(name string, v any) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write collection %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", name, err)
	}
	if err = os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to replace collection %s: %w", name, err)
	}
	return nil
}
