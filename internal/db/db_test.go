// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "modernc.org/sqlite"

	"github.com/spryker/cronicle-hook/internal/storage"
)

func memoryDSN(t *testing.T) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
}

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(TypeSQLite, memoryDSN(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestEngine_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	e := openTestEngine(t)

	if _, err := e.Get(ctx, "global/users"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := e.Put(ctx, "global/users", []byte(`{"type":"list"}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := e.Put(ctx, "global/users", []byte(`{"type":"list","length":2}`)); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, err := e.Get(ctx, "global/users")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"type":"list","length":2}` {
		t.Fatalf("unexpected value %s", got)
	}
	if n, err := e.Count(ctx); err != nil || n != 1 {
		t.Fatalf("Count = %d, %v; want 1", n, err)
	}

	if err := e.Delete(ctx, "global/users"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := e.Delete(ctx, "global/users"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestEngine_BacksListStorage(t *testing.T) {
	ctx := context.Background()
	s := storage.New(openTestEngine(t), storage.Options{ListPageSize: 2})

	for i := 0; i < 3; i++ {
		if err := s.ListPush(ctx, "global/schedule", storage.Item{"id": fmt.Sprintf("j%d", i)}); err != nil {
			t.Fatalf("ListPush: %v", err)
		}
	}
	if err := s.ListUnshift(ctx, "global/schedule", storage.Item{"id": "first"}); err != nil {
		t.Fatalf("ListUnshift: %v", err)
	}
	items, err := s.ListGet(ctx, "global/schedule", 0, 0)
	if err != nil {
		t.Fatalf("ListGet: %v", err)
	}
	if len(items) != 4 || items[0]["id"] != "first" || items[3]["id"] != "j2" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestOpen_RejectsUnknownType(t *testing.T) {
	if _, err := Open("oracle", "x"); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestOpen_MemorySQLiteUsesSingleConnection(t *testing.T) {
	t.Setenv("HOOK_DB_MAX_OPEN_CONNS", "")
	e := openTestEngine(t)
	if got := e.BunDB().DB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d; want 1", got)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	dbConn, err := sql.Open("sqlite", memoryDSN(t))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer func() { _ = dbConn.Close() }()

	for i := 0; i < 2; i++ {
		if err := RunMigrations(dbConn, TypeSQLite); err != nil {
			t.Fatalf("RunMigrations run %d: %v", i, err)
		}
	}
	var n int
	if err := dbConn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 applied migration, got %d", n)
	}
	if _, err := dbConn.Exec("SELECT item_key, item_value, modified FROM storage_items"); err != nil {
		t.Fatalf("storage_items missing: %v", err)
	}
}

func TestMaintain_SQLite(t *testing.T) {
	dsn := memoryDSN(t)
	e, err := Open(TypeSQLite, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = e.Close() }()
	if err := e.Put(context.Background(), "k", []byte("{}")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := Maintain(context.Background(), TypeSQLite, dsn); err != nil {
		t.Fatalf("Maintain: %v", err)
	}
	if _, err := e.Get(context.Background(), "k"); err != nil {
		t.Fatalf("Get after maintenance: %v", err)
	}
}

func TestMaintain_PostgresWithMock(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	orig := sqlOpenFunc
	sqlOpenFunc = func(driverName, dsn string) (*sql.DB, error) { return dbMock, nil }
	defer func() { sqlOpenFunc = orig }()

	mock.ExpectExec("VACUUM ANALYZE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	if err := Maintain(context.Background(), TypePostgres, "whatever"); err != nil {
		t.Fatalf("Maintain: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMaintain_MySQLReportsTableErrors(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	orig := sqlOpenFunc
	sqlOpenFunc = func(driverName, dsn string) (*sql.DB, error) { return dbMock, nil }
	defer func() { sqlOpenFunc = orig }()

	mock.ExpectQuery("SHOW TABLES").WillReturnRows(sqlmock.NewRows([]string{"t"}).AddRow("storage_items").AddRow("schema_migrations"))
	mock.ExpectExec("OPTIMIZE TABLE storage_items").WillReturnError(errors.New("locked"))
	mock.ExpectExec("OPTIMIZE TABLE schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := Maintain(context.Background(), TypeMySQL, "whatever"); err == nil {
		t.Fatalf("expected error when a table fails to optimize")
	}
}

func TestMaintain_UnsupportedType(t *testing.T) {
	dbMock, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	orig := sqlOpenFunc
	sqlOpenFunc = func(driverName, dsn string) (*sql.DB, error) { return dbMock, nil }
	defer func() { sqlOpenFunc = orig }()

	if err := Maintain(context.Background(), "oracle", "x"); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}
