// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"

	"github.com/spf13/afero"
)

// FilesystemOptions configure a FilesystemEngine.
type FilesystemOptions struct {
	// BaseDir is the root directory of the store.
	BaseDir string
	// KeyNamespaces puts each key below a directory named after its first
	// path segment ("users/bob" -> "<base>/users/...").
	KeyNamespaces bool
	// RawFilePaths stores keys at their literal path instead of a hashed one.
	RawFilePaths bool
}

var (
	namespacePrefix = regexp.MustCompile(`^([\w\-.]+)/`)
	keyExtension    = regexp.MustCompile(`\.(\w+)$`)
)

// FilesystemEngine stores each key as one file. The hashed layout matches
// the scheduler's own Filesystem engine, so a data directory written by the
// hook is read by the scheduler as-is.
type FilesystemEngine struct {
	fs   afero.Fs
	opts FilesystemOptions
}

// NewFilesystemEngine returns an engine rooted at opts.BaseDir on fsys.
func NewFilesystemEngine(fsys afero.Fs, opts FilesystemOptions) *FilesystemEngine {
	if opts.BaseDir == "" {
		opts.BaseDir = "data"
	}
	return &FilesystemEngine{fs: fsys, opts: opts}
}

// NewMemoryEngine returns a FilesystemEngine backed by an in-memory filesystem.
func NewMemoryEngine() *FilesystemEngine {
	return NewFilesystemEngine(afero.NewMemMapFs(), FilesystemOptions{BaseDir: "/data", KeyNamespaces: true})
}


// FilePath returns the file a key is stored in.
func (e *FilesystemEngine) FilePath(key string) string {
	m := keyExtension.FindStringSubmatch(key)
	if e.opts.RawFilePaths {
		if m != nil {
			return path.Join(e.opts.BaseDir, key)
		}
		return path.Join(e.opts.BaseDir, key) + ".json"
	}

	sum := md5.Sum([]byte(key))
	hash := hex.EncodeToString(sum[:])

	dir := e.opts.BaseDir
	if e.opts.KeyNamespaces {
		if m := namespacePrefix.FindStringSubmatch(key); m != nil {
			dir = path.Join(dir, m[1])
		} else {
			dir = path.Join(dir, key)
		}
	}
	dir = path.Join(dir, hash[0:2], hash[2:4], hash[4:6])

	// keys carrying their own extension (binary blobs) keep it
	file := path.Join(dir, hash)
	if m != nil {
		return file + "." + m[1]
	}
	return file + ".json"
}

func (e *FilesystemEngine) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(e.fs, e.FilePath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return data, err
}

// Put writes to a temp file in the target directory and renames it into
// place so readers never see a partial record.
func (e *FilesystemEngine) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	file := e.FilePath(key)
	dir := path.Dir(file)
	if err := e.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create directory %s: %w", dir, err)
	}
	tmp, err := afero.TempFile(e.fs, dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = e.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = e.fs.Remove(tmpName)
		return err
	}
	if err := e.fs.Rename(tmpName, file); err != nil {
		_ = e.fs.Remove(tmpName)
		return err
	}
	return nil
}

func (e *FilesystemEngine) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := e.fs.Remove(e.FilePath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return err
}

func (e *FilesystemEngine) Close() error { return nil }
