// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup snapshots the lists the hook writes to, so a deploy can be
// rolled back, and restores such snapshots.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/spryker/cronicle-hook/internal/model"
	"github.com/spryker/cronicle-hook/internal/storage"
)

// FormatVersion is written into every snapshot.
const FormatVersion = 1

// Lists are the lists a snapshot covers.
var Lists = []string{
	model.UsersList,
	model.APIKeysList,
	model.ServerGroupsList,
	model.CategoriesList,
	model.ScheduleList,
}

// Snapshot holds list contents and the user records global/users refers to.
type Snapshot struct {
	Version int                       `json:"version"`
	Created time.Time                 `json:"created"`
	Lists   map[string][]storage.Item `json:"lists"`
	Users   map[string]storage.Item   `json:"users"`
}

// Take reads a snapshot from store. Lists that do not exist are left out.
func Take(ctx context.Context, store *storage.Storage) (*Snapshot, error) {
	snap := &Snapshot{
		Version: FormatVersion,
		Created: time.Now().UTC(),
		Lists:   map[string][]storage.Item{},
		Users:   map[string]storage.Item{},
	}
	for _, key := range Lists {
		items, err := store.ListGet(ctx, key, 0, 0)
		if errors.Is(err, storage.ErrListNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		snap.Lists[key] = items
	}
	for _, ref := range snap.Lists[model.UsersList] {
		name := fmt.Sprint(ref["username"])
		var user storage.Item
		err := store.Get(ctx, model.UserKey(name), &user)
		if storage.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read user %s: %w", name, err)
		}
		snap.Users[name] = user
	}
	return snap, nil
}

// Restore replaces every list in snap and writes its user records.
// Lists not contained in snap are left alone.
func Restore(ctx context.Context, store *storage.Storage, snap *Snapshot) error {
	if snap.Version != FormatVersion {
		return fmt.Errorf("unsupported backup version %d", snap.Version)
	}
	for _, key := range Lists {
		items, ok := snap.Lists[key]
		if !ok {
			continue
		}
		if err := store.ListDelete(ctx, key); err != nil && !errors.Is(err, storage.ErrListNotFound) {
			return fmt.Errorf("clear %s: %w", key, err)
		}
		if _, err := store.ListCreate(ctx, key); err != nil {
			return fmt.Errorf("create %s: %w", key, err)
		}
		if len(items) == 0 {
			continue
		}
		vals := make([]any, len(items))
		for i, it := range items {
			vals[i] = it
		}
		if err := store.ListPush(ctx, key, vals...); err != nil {
			return fmt.Errorf("restore %s: %w", key, err)
		}
	}
	for name, user := range snap.Users {
		if err := store.Put(ctx, model.UserKey(name), user); err != nil {
			return fmt.Errorf("restore user %s: %w", name, err)
		}
	}
	return nil
}

// Write encodes snap as zstd-compressed JSON.
func Write(w io.Writer, snap *Snapshot) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	encoder := json.NewEncoder(zw)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		_ = zw.Close()
		return fmt.Errorf("could not encode json to zstd writer: %w", err)
	}
	return zw.Close()
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader) (*Snapshot, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("could not decompress backup: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("could not decode json from zstd reader: %w", err)
	}
	return &snap, nil
}

// DefaultFileName returns the file name used when none is given.
func DefaultFileName(t time.Time) string {
	return fmt.Sprintf("cronicle-hook-backup-%s.json.zst", t.UTC().Format("20060102-150405"))
}

// WriteFile writes snap to path, appending ".zst" when missing.
// It returns the path written.
func WriteFile(path string, snap *Snapshot) (string, error) {
	if !strings.HasSuffix(path, ".zst") {
		path += ".zst"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("could not create directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("could not create file: %w", err)
	}
	if err := Write(file, snap); err != nil {
		_ = file.Close()
		return "", err
	}
	return path, file.Close()
}

// ReadFile reads a snapshot from path.
func ReadFile(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return Read(file)
}
