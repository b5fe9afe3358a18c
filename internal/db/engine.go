// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/spryker/cronicle-hook/internal/storage"
)

// ItemModel is one stored record.
type ItemModel struct {
	bun.BaseModel `bun:"table:storage_items"`

	Key      string    `bun:"item_key,pk"`
	Value    []byte    `bun:"item_value,notnull"`
	Modified time.Time `bun:"modified,notnull"`
}

// Engine is a storage.Engine backed by a SQL database.
type Engine struct {
	bun    *bun.DB
	dbType string
}

var _ storage.Engine = (*Engine)(nil)

// BunDB exposes the underlying Bun handle.
func (e *Engine) BunDB() *bun.DB { return e.bun }

func (e *Engine) Get(ctx context.Context, key string) ([]byte, error) {
	m := new(ItemModel)
	err := e.bun.NewSelect().
		Model(m).
		Column("item_value").
		Where("item_key = ?", key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return m.Value, nil
}

// Put inserts or replaces the record at key.
func (e *Engine) Put(ctx context.Context, key string, value []byte) error {
	m := &ItemModel{Key: key, Value: value, Modified: time.Now().UTC()}
	q := e.bun.NewInsert().Model(m)
	if e.dbType == TypeMySQL {
		q = q.On("DUPLICATE KEY UPDATE")
	} else {
		q = q.On("CONFLICT (item_key) DO UPDATE")
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	dbLogf("db: put %s (%d bytes)", key, len(value))
	return nil
}

func (e *Engine) Delete(ctx context.Context, key string) error {
	res, err := e.bun.NewDelete().
		Model((*ItemModel)(nil)).
		Where("item_key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", key, storage.ErrNotFound)
	}
	return nil
}

// Count returns the number of stored records.
func (e *Engine) Count(ctx context.Context) (int, error) {
	return e.bun.NewSelect().Model((*ItemModel)(nil)).Count(ctx)
}

func (e *Engine) Close() error {
	return e.bun.Close()
}
