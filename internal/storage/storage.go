// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// DefaultListPageSize matches the scheduler's own default list page size.
const DefaultListPageSize = 50

// Engine is the raw byte store underneath a Storage. Get and Delete must
// return ErrNotFound (possibly wrapped) for keys that do not exist.
type Engine interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options tune a Storage.
type Options struct {
	// ListPageSize is the number of items per list page for newly created
	// lists. Existing lists keep the page size stored in their header.
	ListPageSize int
	// Debugf, when set, receives a line per storage operation.
	Debugf func(format string, args ...any)
}

// Storage provides JSON records and paged lists on top of an Engine.
// It is safe for concurrent use; list mutations on the same key are
// serialized.
type Storage struct {
	engine   Engine
	pageSize int
	locks    *keyLocks
	debugf   func(format string, args ...any)
}

// New wraps engine.
func New(engine Engine, opts Options) *Storage {
	size := opts.ListPageSize
	if size <= 0 {
		size = DefaultListPageSize
	}
	debugf := opts.Debugf
	if debugf == nil {
		debugf = func(string, ...any) {}
	}
	return &Storage{
		engine:   engine,
		pageSize: size,
		locks:    newKeyLocks(),
		debugf:   debugf,
	}
}

// Engine returns the underlying engine.
func (s *Storage) Engine() Engine { return s.engine }

// Close closes the underlying engine.
func (s *Storage) Close() error { return s.engine.Close() }

// Get decodes the record at key into dst.
func (s *Storage) Get(ctx context.Context, key string, dst any) error {
	key = NormalizeKey(key)
	s.debugf("storage: get %s", key)
	raw, err := s.engine.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := decode(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Put encodes v as JSON and stores it at key.
func (s *Storage) Put(ctx context.Context, key string, v any) error {
	key = NormalizeKey(key)
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.debugf("storage: put %s (%d bytes)", key, len(raw))
	if err := s.engine.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Delete removes the record at key.
func (s *Storage) Delete(ctx context.Context, key string) error {
	key = NormalizeKey(key)
	s.debugf("storage: delete %s", key)
	if err := s.engine.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Exists reports whether a record is stored at key.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.engine.Get(ctx, NormalizeKey(key))
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// decode keeps numbers as json.Number so integer fields such as unix
// timestamps survive a read-modify-write untouched.
func decode(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dst)
}
