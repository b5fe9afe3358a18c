// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

// Package engines builds the configured storage engine.
package engines

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/spryker/cronicle-hook/internal/config"
	"github.com/spryker/cronicle-hook/internal/db"
	"github.com/spryker/cronicle-hook/internal/logging"
	"github.com/spryker/cronicle-hook/internal/storage"
)

// Engine names as they appear in Storage.engine.
const (
	Filesystem = "filesystem"
	Memory     = "memory"
	SQLite     = "sqlite"
	SQL        = "sql"
	S3         = "s3"
)

// osFs is the filesystem the Filesystem engine writes to.
var osFs afero.Fs = afero.NewOsFs()

// NewEngine returns the raw engine selected by cfg.Engine (case-insensitive).
func NewEngine(ctx context.Context, cfg config.StorageConfig) (storage.Engine, error) {
	db.SetDebug(cfg.Debug)

	switch strings.ToLower(cfg.Engine) {
	case Filesystem, "":
		return storage.NewFilesystemEngine(osFs, storage.FilesystemOptions{
			BaseDir:       cfg.Filesystem.BaseDir,
			KeyNamespaces: cfg.Filesystem.KeyNamespaces,
			RawFilePaths:  cfg.Filesystem.RawFilePaths,
		}), nil
	case Memory:
		return storage.NewMemoryEngine(), nil
	case SQLite:
		if err := os.MkdirAll(cfg.SQLite.BaseDir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create directory %s: %w", cfg.SQLite.BaseDir, err)
		}
		return engineOrNil(db.Open(db.TypeSQLite, sqliteDSN(cfg.SQLite)))
	case SQL:
		if cfg.SQL.DSN == "" {
			return nil, fmt.Errorf("storage engine SQL needs a dsn")
		}
		return engineOrNil(db.Open(strings.ToLower(cfg.SQL.Type), cfg.SQL.DSN))
	case S3:
		return engineOrNil(NewS3Engine(ctx, cfg.S3))
	default:
		return nil, fmt.Errorf("unsupported storage engine: '%s'", cfg.Engine)
	}
}

// engineOrNil keeps a failed constructor's typed nil out of the interface.
func engineOrNil[E storage.Engine](e E, err error) (storage.Engine, error) {
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Open returns a Storage over the configured engine.
func Open(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	engine, err := NewEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts := storage.Options{ListPageSize: cfg.ListPageSize}
	if cfg.Debug {
		opts.Debugf = logging.Debugf
	}
	return storage.New(engine, opts), nil
}

// SQLTarget returns the database type and DSN of SQL-backed engines.
func SQLTarget(cfg config.StorageConfig) (dbType, dsn string, ok bool) {
	switch strings.ToLower(cfg.Engine) {
	case SQLite:
		return db.TypeSQLite, sqliteDSN(cfg.SQLite), true
	case SQL:
		return strings.ToLower(cfg.SQL.Type), cfg.SQL.DSN, true
	}
	return "", "", false
}

func sqliteDSN(c config.SQLiteConfig) string {
	name := c.Filename
	if name == "" {
		name = "storage.sqlite"
	}
	return filepath.Join(c.BaseDir, name) + "?_pragma=busy_timeout(5000)"
}
